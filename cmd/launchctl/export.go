package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"launchhub/internal/export"
)

func newExportCmd() *cobra.Command {
	var (
		progressPath string
		format       string
		stakeholder  bool
		sections     []string
		output       string
	)
	cmd := &cobra.Command{
		Use:   "export <project-file>",
		Short: "Render a project report as json, csv, markdown, pdf or xlsx",
		Long: `Renders the project and its progress in the requested format.

By default the file is written to the current directory under its generated
name. Use --output - to write to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, u, err := loadProject(cmd, args[0], progressPath)
			if err != nil {
				return err
			}
			res, err := export.NewExporter(sections).Export(p, u, export.Options{
				Format:          export.Format(strings.ToLower(format)),
				StakeholderView: stakeholder,
			})
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := cmd.OutOrStdout().Write(res.Data)
				return err
			}
			if output == "" {
				output = res.Filename
			}
			if err := os.WriteFile(output, res.Data, 0o644); err != nil {
				return fmt.Errorf("cannot write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s, %d bytes)\n", output, res.MimeType, len(res.Data))
			return nil
		},
	}
	cmd.Flags().StringVar(&progressPath, "progress", "", "Progress document for the project")
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatJSON), "Output format")
	cmd.Flags().BoolVar(&stakeholder, "stakeholder", false, "Only include stakeholder sections")
	cmd.Flags().StringSliceVar(&sections, "sections", nil, "Sections kept in the stakeholder view")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path, or - for stdout")
	return cmd
}
