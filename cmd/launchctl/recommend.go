package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"launchhub/internal/recommend"
	"launchhub/internal/service"
)

var recommendKinds = []string{"technologies", "architecture", "performance", "security", "cost", "plan"}

func newRecommendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <kind> <input-file>",
		Short: "Score a recommendation catalogue against an input document",
		Long: `Scores one catalogue and prints the ranked recommendations as JSON.

Kinds: ` + strings.Join(recommendKinds, ", ") + `

The input document has the same shape as the body of the matching
/recommendations endpoint.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: recommendKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := runRecommend(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func runRecommend(cmd *cobra.Command, kind, path string) (any, error) {
	svc := service.NewRecommendationService()
	switch kind {
	case "technologies":
		var req service.TechnologyRequest
		if err := readDoc(cmd, path, &req); err != nil {
			return nil, err
		}
		return svc.Technologies(req)
	case "architecture":
		var req recommend.ArchitectureRequirements
		if err := readDoc(cmd, path, &req); err != nil {
			return nil, err
		}
		return svc.Architecture(req), nil
	case "performance":
		var req recommend.PerformanceContext
		if err := readDoc(cmd, path, &req); err != nil {
			return nil, err
		}
		return svc.Performance(req), nil
	case "security":
		var req recommend.SecurityContext
		if err := readDoc(cmd, path, &req); err != nil {
			return nil, err
		}
		return svc.Security(req), nil
	case "cost":
		var req recommend.CostContext
		if err := readDoc(cmd, path, &req); err != nil {
			return nil, err
		}
		return svc.Cost(req), nil
	case "plan":
		var req recommend.TechnicalPlanRequest
		if err := readDoc(cmd, path, &req); err != nil {
			return nil, err
		}
		return svc.Plan(req), nil
	}
	return nil, fmt.Errorf("unknown kind %q (want one of %s)", kind, strings.Join(recommendKinds, ", "))
}
