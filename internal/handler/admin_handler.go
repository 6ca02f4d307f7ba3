package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"launchhub/internal/apperrors"
	"launchhub/pkg/outbox"
)

// AdminHandler 管理员接口：outbox 重放和错误日志
type AdminHandler struct {
	replay *outbox.ReplayService
	errLog *apperrors.ErrorLogger
	errs   *ErrorWriter
	logger *zap.Logger
}

func NewAdminHandler(replay *outbox.ReplayService, errLog *apperrors.ErrorLogger, errs *ErrorWriter, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{replay: replay, errLog: errLog, errs: errs, logger: logger}
}

// ReplayOutboxEvent 重放单个 outbox 事件
// POST /admin/outbox/replay?id=xxx
func (h *AdminHandler) ReplayOutboxEvent(c *gin.Context) {
	idStr := c.Query("id")
	if idStr == "" {
		badRequest(c, "missing id parameter")
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		badRequest(c, "invalid id parameter")
		return
	}

	if err := h.replay.ReplayEvent(c.Request.Context(), id); err != nil {
		h.logger.Error("Failed to replay event", zap.Int64("id", id), zap.Error(err))
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "replayed", "id": id})
}

// ReplayFailedEvents 批量重放失败事件
// POST /admin/outbox/replay-failed?limit=100
func (h *AdminHandler) ReplayFailedEvents(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	n, err := h.replay.ReplayFailedEvents(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to replay failed events", zap.Error(err))
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed", "success_count": n, "limit": limit})
}

// Errors handles GET /admin/errors?unresolved=true
func (h *AdminHandler) Errors(c *gin.Context) {
	var entries []apperrors.LogEntry
	if c.Query("unresolved") == "true" {
		entries = h.errLog.Unresolved()
	} else {
		entries = h.errLog.Entries()
	}
	if entries == nil {
		entries = []apperrors.LogEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"errors": entries, "count": len(entries)})
}

// ResolveError handles POST /admin/errors/:id/resolve
func (h *AdminHandler) ResolveError(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid id parameter")
		return
	}
	if !h.errLog.Resolve(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "error entry not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resolved", "id": id})
}
