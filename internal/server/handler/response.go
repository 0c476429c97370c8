package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authservice "securetask/backend/internal/auth/service"
	"securetask/backend/internal/platform/rbac"
	taskdomain "securetask/backend/internal/task/domain"
	taskservice "securetask/backend/internal/task/service"
	tokenservice "securetask/backend/internal/token/service"
)

// ErrorResponse is the wire shape of every error body.
type ErrorResponse struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path"`
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, message := mapError(err)
	if status == http.StatusInternalServerError {
		if logger == nil {
			logger = zap.L()
		}
		logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		message = "An unexpected error occurred"
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      c.Request.URL.Path,
	})
}

// mapError translates service sentinels into HTTP statuses. Unknown errors
// become 500 with a generic message so internals never leak to clients.
func mapError(err error) (int, string) {
	var transition *taskdomain.InvalidTransitionError
	switch {
	case errors.Is(err, authservice.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, tokenservice.ErrRefreshTokenExpired):
		return http.StatusUnauthorized, "Refresh token has expired. Please log in again"
	case errors.Is(err, tokenservice.ErrInvalidRefreshToken):
		return http.StatusUnauthorized, "Invalid refresh token"
	case errors.Is(err, authservice.ErrEmailTaken),
		errors.Is(err, authservice.ErrUsernameTaken):
		return http.StatusConflict, err.Error()
	case errors.Is(err, taskservice.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, rbac.ErrAccessDenied):
		return http.StatusForbidden, "You do not have permission to access this task"
	case errors.Is(err, taskservice.ErrTaskNotFound),
		errors.Is(err, taskservice.ErrUserNotFound),
		errors.Is(err, taskservice.ErrAssigneeNotFound),
		errors.Is(err, tokenservice.ErrUserNotFound):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &transition):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, authservice.ErrValidation),
		errors.Is(err, taskservice.ErrValidation):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    http.StatusBadRequest,
		Error:     http.StatusText(http.StatusBadRequest),
		Message:   message,
		Path:      c.Request.URL.Path,
	})
}
