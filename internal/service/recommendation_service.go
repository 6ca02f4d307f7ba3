package service

import (
	"launchhub/internal/apperrors"
	"launchhub/internal/recommend"
	"launchhub/pkg/metrics"
)

// RecommendationService fronts the recommendation scorer.
type RecommendationService struct{}

func NewRecommendationService() *RecommendationService {
	return &RecommendationService{}
}

// TechnologyRequest selects and weighs a technology catalogue.
type TechnologyRequest struct {
	Requirements recommend.Requirements `json:"requirements"`
	Context      recommend.Context      `json:"context"`
	Weights      *recommend.Weights     `json:"weights,omitempty"`
}

func (s *RecommendationService) Technologies(req TechnologyRequest) ([]recommend.ScoredRecommendation, error) {
	if req.Requirements.Category == "" {
		return nil, apperrors.NewValidationError("requirements.category", "required", "category is required",
			recommend.CategoryFrontend, recommend.CategoryBackend, recommend.CategoryDatabase, recommend.CategoryInfrastructure)
	}
	w := recommend.DefaultWeights
	if req.Weights != nil {
		w = *req.Weights
		if w.Cost < 0 || w.Cost > 100 || w.Performance < 0 || w.Performance > 100 {
			return nil, apperrors.NewValidationError("weights", "out_of_range", "weights must be between 0 and 100")
		}
	}
	metrics.IncrementRecommendation("technology")
	return recommend.SelectOptimalTechnologies(req.Requirements, req.Context, w), nil
}

func (s *RecommendationService) Architecture(req recommend.ArchitectureRequirements) []recommend.ScoredRecommendation {
	metrics.IncrementRecommendation("architecture")
	return recommend.RecommendArchitecturePattern(req)
}

func (s *RecommendationService) Performance(req recommend.PerformanceContext) []recommend.ScoredRecommendation {
	metrics.IncrementRecommendation("performance")
	return recommend.IdentifyPerformanceOptimizations(req)
}

func (s *RecommendationService) Security(req recommend.SecurityContext) []recommend.ScoredRecommendation {
	metrics.IncrementRecommendation("security")
	return recommend.RecommendSecurityMeasures(req)
}

func (s *RecommendationService) Cost(req recommend.CostContext) []recommend.ScoredRecommendation {
	metrics.IncrementRecommendation("cost")
	return recommend.IdentifyCostOptimizations(req)
}

func (s *RecommendationService) Plan(req recommend.TechnicalPlanRequest) recommend.TechnicalPlan {
	metrics.IncrementRecommendation("plan")
	return recommend.GenerateTechnicalPlan(req)
}
