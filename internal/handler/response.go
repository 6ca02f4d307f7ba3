package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"launchhub/internal/apperrors"
	"launchhub/internal/export"
	"launchhub/internal/service"
	"launchhub/pkg/outbox"
	"launchhub/pkg/rbac"
	"launchhub/pkg/trace"
)

// Context keys set by the auth middleware.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// actor reads the authenticated caller. It writes 401 and returns false when
// the request is anonymous.
func actor(c *gin.Context) (service.Actor, bool) {
	userID := c.GetString(CtxUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return service.Actor{}, false
	}
	return service.Actor{UserID: userID, Role: c.GetString(CtxRole)}, true
}

// StatusOf maps an error to its HTTP status.
func StatusOf(err error) int {
	var (
		ve  *apperrors.ValidationError
		ves apperrors.ValidationErrors
		ufe *export.UnsupportedFormatError
		oe  *rbac.OwnershipError
		pde *rbac.PermissionDeniedError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &ves), errors.As(err, &ufe):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.As(err, &oe), errors.As(err, &pde), errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, outbox.ErrEventNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// ErrorWriter turns service errors into JSON responses. Server errors are
// recorded in the error log and answered with the classified message only.
type ErrorWriter struct {
	errs *apperrors.ErrorLogger
}

func NewErrorWriter(errs *apperrors.ErrorLogger) *ErrorWriter {
	return &ErrorWriter{errs: errs}
}

func (w *ErrorWriter) Write(c *gin.Context, err error) {
	status := StatusOf(err)
	if status != http.StatusInternalServerError {
		body := gin.H{"error": err.Error()}
		var ve *apperrors.ValidationError
		var ves apperrors.ValidationErrors
		switch {
		case errors.As(err, &ves):
			body["details"] = ves
		case errors.As(err, &ve):
			body["details"] = []*apperrors.ValidationError{ve}
		}
		c.JSON(status, body)
		return
	}

	ue := apperrors.Classify(err)
	id := 0
	if w.errs != nil {
		id = w.errs.Log(err, map[string]string{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"trace_id": trace.FromContext(c.Request.Context()),
		})
	}
	c.JSON(status, gin.H{
		"error":     ue.Message,
		"severity":  ue.Severity,
		"actions":   ue.Actions,
		"retryable": ue.Retryable,
		"errorId":   id,
	})
}

// badRequest answers a malformed body or parameter.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
