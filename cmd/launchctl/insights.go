package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"launchhub/internal/insight"
)

func newInsightsCmd() *cobra.Command {
	var (
		progressPath string
		asJSON       bool
	)
	cmd := &cobra.Command{
		Use:   "insights <project-file>",
		Short: "Compute readiness, risk and next steps for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, u, err := loadProject(cmd, args[0], progressPath)
			if err != nil {
				return err
			}
			in := insight.Compose(p, u)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), in)
			}
			printInsights(cmd, p.Name, in)
			return nil
		},
	}
	cmd.Flags().StringVar(&progressPath, "progress", "", "Progress document for the project")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON instead of a summary")
	return cmd
}

func printInsights(cmd *cobra.Command, name string, in insight.Insights) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n\n", name)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Readiness\t%d/100\n", in.ReadinessScore)
	fmt.Fprintf(w, "Completion\t%.0f%%\n", in.CompletionRate)
	fmt.Fprintf(w, "Risk\t%s\n", in.RiskLevel)
	fmt.Fprintf(w, "Days in progress\t%d\n", in.TimeSpent)
	w.Flush()

	if len(in.KeyFindings) > 0 {
		fmt.Fprintln(out, "\nKey findings:")
		for _, f := range in.KeyFindings {
			fmt.Fprintf(out, "  - %s\n", f)
		}
	}
	if len(in.NextSteps) > 0 {
		fmt.Fprintln(out, "\nNext steps:")
		for _, s := range in.NextSteps {
			fmt.Fprintf(out, "  - %s\n", s)
		}
	}
}
