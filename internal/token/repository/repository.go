package repository

import (
	"context"

	"securetask/backend/internal/token/domain"
)

// Repository defines persistence for refresh tokens.
type Repository interface {
	GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	// Replace atomically deletes any existing token for t.UserID and inserts t.
	// The delete must be visible before the insert commits so no execution
	// leaves two live tokens for one user.
	Replace(ctx context.Context, t *domain.RefreshToken) error
	// DeleteByToken removes the token row. Returns true when a row was
	// deleted; deleting a non-existent token is not an error.
	DeleteByToken(ctx context.Context, token string) (bool, error)
}
