package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"launchhub/internal/service"
)

type AuthHandler struct {
	auth   *service.AuthService
	errs   *ErrorWriter
	logger *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, errs *ErrorWriter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, errs: errs, logger: logger}
}

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	u, err := h.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	h.logger.Info("User registered", zap.String("user_id", u.ID))
	c.JSON(http.StatusCreated, u)
}

// Login handles POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
