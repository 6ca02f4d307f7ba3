package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"launchhub/internal/recommend"
	"launchhub/internal/service"
)

type RecommendationHandler struct {
	recs *service.RecommendationService
	errs *ErrorWriter
}

func NewRecommendationHandler(recs *service.RecommendationService, errs *ErrorWriter) *RecommendationHandler {
	return &RecommendationHandler{recs: recs, errs: errs}
}

// bind decodes the body into T, answering 400 on failure.
func bind[T any](c *gin.Context) (T, bool) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return req, false
	}
	return req, true
}

func respondRecommendations(c *gin.Context, recs []recommend.ScoredRecommendation) {
	if recs == nil {
		recs = []recommend.ScoredRecommendation{}
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

// Technologies handles POST /recommendations/technologies
func (h *RecommendationHandler) Technologies(c *gin.Context) {
	req, ok := bind[service.TechnologyRequest](c)
	if !ok {
		return
	}
	recs, err := h.recs.Technologies(req)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	respondRecommendations(c, recs)
}

// Architecture handles POST /recommendations/architecture
func (h *RecommendationHandler) Architecture(c *gin.Context) {
	if req, ok := bind[recommend.ArchitectureRequirements](c); ok {
		respondRecommendations(c, h.recs.Architecture(req))
	}
}

// Performance handles POST /recommendations/performance
func (h *RecommendationHandler) Performance(c *gin.Context) {
	if req, ok := bind[recommend.PerformanceContext](c); ok {
		respondRecommendations(c, h.recs.Performance(req))
	}
}

// Security handles POST /recommendations/security
func (h *RecommendationHandler) Security(c *gin.Context) {
	if req, ok := bind[recommend.SecurityContext](c); ok {
		respondRecommendations(c, h.recs.Security(req))
	}
}

// Cost handles POST /recommendations/cost
func (h *RecommendationHandler) Cost(c *gin.Context) {
	if req, ok := bind[recommend.CostContext](c); ok {
		respondRecommendations(c, h.recs.Cost(req))
	}
}

// Plan handles POST /recommendations/plan
func (h *RecommendationHandler) Plan(c *gin.Context) {
	if req, ok := bind[recommend.TechnicalPlanRequest](c); ok {
		c.JSON(http.StatusOK, h.recs.Plan(req))
	}
}
