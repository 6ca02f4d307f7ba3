package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"launchhub/internal/service"
)

type ExportHandler struct {
	exports *service.ExportService
	errs    *ErrorWriter
}

func NewExportHandler(exports *service.ExportService, errs *ErrorWriter) *ExportHandler {
	return &ExportHandler{exports: exports, errs: errs}
}

// Export handles GET /projects/:id/export?format=&stakeholder=
// The rendered file is sent as an attachment.
func (h *ExportHandler) Export(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	stakeholder := false
	if v := c.Query("stakeholder"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(c, "invalid stakeholder parameter")
			return
		}
		stakeholder = b
	}

	res, err := h.exports.Export(c.Request.Context(), a, c.Param("id"), c.Query("format"), stakeholder)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	c.Data(http.StatusOK, res.MimeType, res.Data)
}
