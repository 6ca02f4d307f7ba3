package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"launchhub/internal/service"
	"launchhub/internal/template"
)

func newRenderCmd() *cobra.Command {
	var (
		valuesPath string
		sets       []string
		list       bool
	)
	cmd := &cobra.Command{
		Use:   "render [template-id]",
		Short: "Fill in a document template",
		Long: `Renders a built-in template. Values come from a JSON or YAML file
(--values) and from --set key=value flags, which take precedence.

Use --list to see the available templates.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := service.NewTemplateService(template.NewRegistry())
			if list || len(args) == 0 {
				printTemplates(cmd, svc.List(""))
				return nil
			}

			values := map[string]string{}
			if valuesPath != "" {
				if err := readDoc(cmd, valuesPath, &values); err != nil {
					return err
				}
			}
			for _, kv := range sets {
				k, v, ok := strings.Cut(kv, "=")
				if !ok || k == "" {
					return fmt.Errorf("invalid --set %q, want key=value", kv)
				}
				values[k] = v
			}

			out, err := svc.Render(args[0], values)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&valuesPath, "values", "", "File with template values")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Template value as key=value (repeatable)")
	cmd.Flags().BoolVar(&list, "list", false, "List available templates")
	return cmd
}

func printTemplates(cmd *cobra.Command, list []*template.Template) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tNAME")
	for _, t := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.ID, t.Category, t.Name)
	}
	w.Flush()
}
