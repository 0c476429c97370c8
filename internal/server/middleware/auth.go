package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"securetask/backend/internal/security"
	userdomain "securetask/backend/internal/user/domain"
)

const identityKey = "auth_identity"

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID string
	Email  string
	Role   userdomain.Role
}

// UserLookup resolves the token subject to a stored user.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
}

// Authenticator verifies bearer tokens and attaches the caller identity.
type Authenticator struct {
	tokens *security.TokenProvider
	users  UserLookup
}

// NewAuthenticator returns an Authenticator backed by the given verifier and lookup.
func NewAuthenticator(tokens *security.TokenProvider, users UserLookup) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// RequireAuth rejects requests without a valid bearer access token. On
// success the resolved Identity is stored on the context for handlers.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractBearer(c.Request.Header.Get("Authorization"))
		if !ok {
			unauthorized(c, "Missing or malformed Authorization header")
			return
		}

		subject, _, _, err := a.tokens.Verify(token)
		if err != nil {
			if errors.Is(err, security.ErrExpiredToken) {
				unauthorized(c, "Access token has expired")
				return
			}
			unauthorized(c, "Invalid access token")
			return
		}

		u, err := a.users.GetByEmail(c.Request.Context(), subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
				"status":    http.StatusInternalServerError,
				"error":     "Internal Server Error",
				"message":   "Could not resolve caller identity",
				"path":      c.Request.URL.Path,
			})
			return
		}
		if u == nil {
			unauthorized(c, "Invalid access token")
			return
		}

		c.Set(identityKey, Identity{UserID: u.ID, Email: u.Email, Role: u.Role})
		c.Next()
	}
}

// GetIdentity returns the caller identity set by RequireAuth.
func GetIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

func extractBearer(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="securetask"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"status":    http.StatusUnauthorized,
		"error":     "Unauthorized",
		"message":   message,
		"path":      c.Request.URL.Path,
	})
}
