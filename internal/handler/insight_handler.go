package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"launchhub/internal/service"
)

type InsightHandler struct {
	insights *service.InsightService
	errs     *ErrorWriter
}

func NewInsightHandler(insights *service.InsightService, errs *ErrorWriter) *InsightHandler {
	return &InsightHandler{insights: insights, errs: errs}
}

// Get handles GET /projects/:id/insights
func (h *InsightHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	in, err := h.insights.GetInsights(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, in)
}
