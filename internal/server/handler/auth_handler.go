package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authservice "securetask/backend/internal/auth/service"
)

// AuthAPI is the auth orchestrator surface used by the HTTP handlers.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*authservice.AuthResult, error)
	Register(ctx context.Context, username, email, password, confirmation string) (*authservice.AuthResult, error)
	Refresh(ctx context.Context, oldToken string) (*authservice.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
}

// AuthHandler exposes login, register, refresh, and logout over HTTP.
type AuthHandler struct {
	auth   AuthAPI
	logger *zap.Logger
}

// NewAuthHandler returns an AuthHandler with the given dependencies.
func NewAuthHandler(auth AuthAPI, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Username             string `json:"username" binding:"required"`
	Email                string `json:"email" binding:"required"`
	Password             string `json:"password" binding:"required"`
	PasswordConfirmation string `json:"passwordConfirmation" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Subject      string `json:"subject"`
	ExpiresAt    int64  `json:"expiresAt"`
}

func toAuthResponse(r *authservice.AuthResult) authResponse {
	return authResponse{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		Subject:      r.Subject,
		ExpiresAt:    r.ExpiresAt,
	}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}
	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toAuthResponse(result))
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username, email, password, and passwordConfirmation are required")
		return
	}
	result, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.PasswordConfirmation)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toAuthResponse(result))
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "refreshToken is required")
		return
	}
	result, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toAuthResponse(result))
}

// Logout handles POST /api/v1/auth/logout. Always succeeds for well-formed
// requests, whether or not the token was live.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request body must be valid JSON")
		return
	}
	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
