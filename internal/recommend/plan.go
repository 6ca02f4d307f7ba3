package recommend

// TechnicalPlanRequest gathers the inputs of every recommender.
type TechnicalPlanRequest struct {
	Context      Context                  `json:"context"`
	Weights      *Weights                 `json:"weights,omitempty"`
	Architecture ArchitectureRequirements `json:"architecture"`
	Performance  PerformanceContext       `json:"performance"`
	Security     SecurityContext          `json:"security"`
	Cost         CostContext              `json:"cost"`
}

// TechnicalPlan is the bundled output for a project's technical phase.
type TechnicalPlan struct {
	Technologies  map[string][]ScoredRecommendation `json:"technologies"`
	Architecture  []ScoredRecommendation            `json:"architecture"`
	Performance   []ScoredRecommendation            `json:"performance"`
	Security      []ScoredRecommendation            `json:"security"`
	Cost          []ScoredRecommendation            `json:"cost"`
	SelectedStack []string                          `json:"selectedStack"`
}

// GenerateTechnicalPlan runs every recommender and picks the top technology
// per category as the suggested stack.
func GenerateTechnicalPlan(req TechnicalPlanRequest) TechnicalPlan {
	w := DefaultWeights
	if req.Weights != nil {
		w = *req.Weights
	}
	plan := TechnicalPlan{
		Technologies: make(map[string][]ScoredRecommendation),
		Architecture: RecommendArchitecturePattern(req.Architecture),
		Performance:  IdentifyPerformanceOptimizations(req.Performance),
		Security:     RecommendSecurityMeasures(req.Security),
		Cost:         IdentifyCostOptimizations(req.Cost),
	}
	for _, cat := range []string{CategoryFrontend, CategoryBackend, CategoryDatabase, CategoryInfrastructure} {
		recs := SelectOptimalTechnologies(Requirements{Category: cat}, req.Context, w)
		plan.Technologies[cat] = recs
		if len(recs) > 0 {
			plan.SelectedStack = append(plan.SelectedStack, recs[0].Recommendation)
		}
	}
	return plan
}
