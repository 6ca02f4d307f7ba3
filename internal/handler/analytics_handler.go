package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"launchhub/internal/service"
)

type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	errs      *ErrorWriter
}

func NewAnalyticsHandler(analytics *service.AnalyticsService, errs *ErrorWriter) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, errs: errs}
}

// Summary handles GET /analytics
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	s, err := h.analytics.Summary(c.Request.Context(), a)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
