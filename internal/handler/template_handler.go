package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"launchhub/internal/service"
	"launchhub/internal/template"
)

type TemplateHandler struct {
	templates *service.TemplateService
	errs      *ErrorWriter
}

func NewTemplateHandler(templates *service.TemplateService, errs *ErrorWriter) *TemplateHandler {
	return &TemplateHandler{templates: templates, errs: errs}
}

// List handles GET /templates?category=
func (h *TemplateHandler) List(c *gin.Context) {
	list := h.templates.List(c.Query("category"))
	if list == nil {
		list = []*template.Template{}
	}
	c.JSON(http.StatusOK, gin.H{"templates": list, "count": len(list)})
}

// Get handles GET /templates/:id
func (h *TemplateHandler) Get(c *gin.Context) {
	t, err := h.templates.Get(c.Param("id"))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Render handles POST /templates/:id/render
func (h *TemplateHandler) Render(c *gin.Context) {
	var req struct {
		Values map[string]string `json:"values"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	out, err := h.templates.Render(c.Param("id"), req.Values)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": out})
}
