package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"launchhub/internal/apperrors"
	"launchhub/internal/model"
	"launchhub/internal/service"
)

type ProjectHandler struct {
	projects *service.ProjectService
	errs     *ErrorWriter
}

func NewProjectHandler(projects *service.ProjectService, errs *ErrorWriter) *ProjectHandler {
	return &ProjectHandler{projects: projects, errs: errs}
}

// List handles GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	projects, err := h.projects.List(c.Request.Context(), a)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	if projects == nil {
		projects = []*model.Project{}
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects, "count": len(projects)})
}

// Create handles POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var in service.CreateProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request")
		return
	}
	p, err := h.projects.Create(c.Request.Context(), a, in)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Get handles GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	p, err := h.projects.Get(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdatePhase handles PUT /projects/:id/phases/:phase. The body replaces
// the section's data.
func (h *ProjectHandler) UpdatePhase(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	section := c.Param("phase")
	if !service.ValidSection(section) {
		h.errs.Write(c, apperrors.NewValidationError("phase", "invalid_phase", "unknown phase "+section))
		return
	}
	var data model.PhaseData
	if err := c.ShouldBindJSON(&data); err != nil {
		badRequest(c, "invalid request")
		return
	}
	p, err := h.projects.UpdateProjectPhaseData(c.Request.Context(), a, c.Param("id"), section, data)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		h.errs.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
