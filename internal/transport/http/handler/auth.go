package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"devconnector/internal/app"
	"devconnector/internal/transport/http/middleware"
	"devconnector/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
	log         logrus.FieldLogger
}

func NewAuthHandler(authService *app.AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

// Register handles POST /api/users.
func (h *AuthHandler) Register(c *gin.Context) {
	var req app.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, err, "register")
		return
	}
	response.OK(c, gin.H{"token": result.Token})
}

// Login handles POST /api/auth.
func (h *AuthHandler) Login(c *gin.Context) {
	var req app.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, err, "login")
		return
	}
	response.OK(c, gin.H{"token": result.Token})
}

// Me handles GET /api/auth.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	user, err := h.authService.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.log, err, "current user")
		return
	}
	response.OK(c, user)
}
