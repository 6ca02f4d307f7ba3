package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"launchhub/internal/model"
	"launchhub/internal/service"
)

type ProgressHandler struct {
	progress *service.ProgressService
	errs     *ErrorWriter
}

func NewProgressHandler(progress *service.ProgressService, errs *ErrorWriter) *ProgressHandler {
	return &ProgressHandler{progress: progress, errs: errs}
}

// Get handles GET /projects/:id/progress. A project without a progress
// document answers {"progress": null}.
func (h *ProgressHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	u, err := h.progress.GetUserProgress(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": u})
}

// Initialize handles POST /projects/:id/progress
func (h *ProgressHandler) Initialize(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	u, err := h.progress.InitializeProgress(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"progress": u})
}

// UpdateStep handles PUT /projects/:id/progress/:phase/steps/:step
func (h *ProgressHandler) UpdateStep(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var in service.StepUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	u, err := h.progress.UpdateStepProgress(c.Request.Context(), a, c.Param("id"),
		model.Phase(c.Param("phase")), c.Param("step"), in)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": u})
}
