// Package service implements the refresh-token ledger: one live opaque token
// per user, expiry checks, and single-use rotation.
package service

import (
	"context"
	"errors"
	"time"

	"securetask/backend/internal/security"
	"securetask/backend/internal/token/domain"
	userdomain "securetask/backend/internal/user/domain"
)

// Sentinel errors for the refresh-token ledger; callers map them to API errors.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired, please log in again")
)

// UserGetter is the minimal user lookup needed by the ledger.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// TokenRepo is the minimal refresh-token repository needed by the ledger.
type TokenRepo interface {
	GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	Replace(ctx context.Context, t *domain.RefreshToken) error
	DeleteByToken(ctx context.Context, token string) (bool, error)
}

// Ledger enforces the single-active-refresh-token policy per user.
type Ledger struct {
	users  UserGetter
	tokens TokenRepo
	ttl    time.Duration
	now    func() time.Time
}

// NewLedger returns a Ledger issuing tokens with the given TTL.
func NewLedger(users UserGetter, tokens TokenRepo, ttl time.Duration) *Ledger {
	return &Ledger{users: users, tokens: tokens, ttl: ttl, now: time.Now}
}

// WithClock overrides the ledger's clock. Intended for tests.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Create issues a new opaque refresh token for userID, replacing any existing
// token for that user. The old token stops being valid the moment the new one
// is created. Fails with ErrUserNotFound when the user no longer exists.
func (l *Ledger) Create(ctx context.Context, userID string) (*domain.RefreshToken, error) {
	u, err := l.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	opaque, err := security.NewOpaqueToken()
	if err != nil {
		return nil, err
	}
	t := &domain.RefreshToken{
		Token:     opaque,
		UserID:    userID,
		ExpiresAt: l.now().UTC().Add(l.ttl),
	}
	if err := l.tokens.Replace(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// FindByToken returns the token record, or nil when unknown.
func (l *Ledger) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	return l.tokens.GetByToken(ctx, token)
}

// VerifyNotExpired returns the record unchanged when it is still live. When
// the expiry has passed the stale record is deleted and ErrRefreshTokenExpired
// is returned; the deletion is a side effect of the failure and is not retried.
func (l *Ledger) VerifyNotExpired(ctx context.Context, t *domain.RefreshToken) (*domain.RefreshToken, error) {
	if t.ExpiredAt(l.now()) {
		_, _ = l.tokens.DeleteByToken(ctx, t.Token)
		return nil, ErrRefreshTokenExpired
	}
	return t, nil
}

// DeleteByToken removes the token. Idempotent: unknown tokens are not an error.
func (l *Ledger) DeleteByToken(ctx context.Context, token string) error {
	_, err := l.tokens.DeleteByToken(ctx, token)
	return err
}

// Rotate performs the single-use rotation protocol: look the token up, check
// expiry, consume it, and issue a replacement for the same user. The used
// token is never valid again; when two rotations race on the same token the
// delete succeeds for exactly one caller and the others fail with
// ErrInvalidRefreshToken.
func (l *Ledger) Rotate(ctx context.Context, oldToken string) (*domain.RefreshToken, error) {
	t, err := l.tokens.GetByToken(ctx, oldToken)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrInvalidRefreshToken
	}
	if _, err := l.VerifyNotExpired(ctx, t); err != nil {
		return nil, err
	}
	deleted, err := l.tokens.DeleteByToken(ctx, oldToken)
	if err != nil {
		return nil, err
	}
	if !deleted {
		// A concurrent rotation already consumed this token.
		return nil, ErrInvalidRefreshToken
	}
	return l.Create(ctx, t.UserID)
}
