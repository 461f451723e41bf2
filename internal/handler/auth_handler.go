package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskmanager/internal/service/auth"
	"taskmanager/pkg/logger"
)

const MsgRegistered = "User registered successfully"

type AuthHandler struct {
	authService *auth.Service
	logger      *zap.Logger
}

func NewAuthHandler(authService *auth.Service, logger *zap.Logger) *AuthHandler {
	registerValidators()
	return &AuthHandler{authService: authService, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,notblank"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (registerRequest) fieldMessages() map[string]string {
	return map[string]string{
		"name":     "Name is required",
		"email":    "Valid email is required",
		"password": "Password must be at least 6 characters",
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (loginRequest) fieldMessages() map[string]string {
	return map[string]string{
		"email":    "Valid email is required",
		"password": "Password is required",
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		logger.WithTrace(c.Request.Context(), h.logger).Warn("Register: invalid input", zap.Error(err))
		_ = c.Error(err)
		return
	}

	if _, err := h.authService.Register(c.Request.Context(), strings.TrimSpace(req.Name), req.Email, req.Password); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": MsgRegistered})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		logger.WithTrace(c.Request.Context(), h.logger).Warn("Login: invalid input", zap.Error(err))
		_ = c.Error(err)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, res)
}
