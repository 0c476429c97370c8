// Package service implements the auth orchestrator: credential verification,
// access-token issuance, and refresh-token rotation.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"securetask/backend/internal/security"
	tokendomain "securetask/backend/internal/token/domain"
	tokenservice "securetask/backend/internal/token/service"
	userdomain "securetask/backend/internal/user/domain"
)

// Sentinel errors for the auth service; handlers map them to HTTP statuses.
var (
	// ErrInvalidCredentials never distinguishes whether the identifier or the
	// password was wrong.
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrValidation          = errors.New("validation failed")
	ErrEmailTaken          = errors.New("email already in use")
	ErrUsernameTaken       = errors.New("username already in use")
	ErrInvalidRefreshToken = tokenservice.ErrInvalidRefreshToken
	ErrRefreshTokenExpired = tokenservice.ErrRefreshTokenExpired
)

// AuthResult holds the outcome of Login, Register, or Refresh.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	// Subject is the label the access token is bound to (the user's email).
	Subject string
	// ExpiresAt is the access-token expiry in epoch milliseconds.
	ExpiresAt int64
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// RefreshLedger is the refresh-token ledger interface needed by the auth service.
type RefreshLedger interface {
	Create(ctx context.Context, userID string) (*tokendomain.RefreshToken, error)
	Rotate(ctx context.Context, oldToken string) (*tokendomain.RefreshToken, error)
	DeleteByToken(ctx context.Context, token string) error
}

// AuthService composes credential verification, token signing, and the
// refresh-token ledger to implement login, register, refresh, and logout.
type AuthService struct {
	users  UserRepo
	ledger RefreshLedger
	hasher *security.Hasher
	tokens *security.TokenProvider
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(users UserRepo, ledger RefreshLedger, hasher *security.Hasher, tokens *security.TokenProvider) *AuthService {
	return &AuthService{users: users, ledger: ledger, hasher: hasher, tokens: tokens}
}

// Login authenticates with email and password and returns a fresh token pair.
// The user's refresh token is rotated unconditionally: any previously issued
// refresh token stops working even if it had not expired.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issuePair(ctx, user)
}

// Register creates a user with role USER and a freshly hashed password, then
// returns a token pair as if the user had logged in. The raw password is
// never stored or logged. Duplicate checks run email first, then username;
// the first collision wins.
func (s *AuthService) Register(ctx context.Context, username, email, password, confirmation string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if password != confirmation {
		return nil, fmt.Errorf("password and confirmation do not match: %w", ErrValidation)
	}

	emailTaken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if emailTaken {
		return nil, ErrEmailTaken
	}
	usernameTaken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if usernameTaken {
		return nil, ErrUsernameTaken
	}

	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         userdomain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issuePair(ctx, user)
}

// Refresh exchanges a live refresh token for a new token pair via the
// single-use rotation protocol. The old token is never usable again; an
// expired token is deleted as a side effect of the failure.
func (s *AuthService) Refresh(ctx context.Context, oldToken string) (*AuthResult, error) {
	if oldToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	rotated, err := s.ledger.Rotate(ctx, oldToken)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, rotated.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidRefreshToken
	}
	access, expiresAt, err := s.tokens.Issue(user.Email, user.Role.Authority())
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:  access,
		RefreshToken: rotated.Token,
		Subject:      user.Email,
		ExpiresAt:    expiresAt.UnixMilli(),
	}, nil
}

// Logout deletes the refresh token. Idempotent: unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.ledger.DeleteByToken(ctx, refreshToken)
}

func (s *AuthService) issuePair(ctx context.Context, user *userdomain.User) (*AuthResult, error) {
	access, expiresAt, err := s.tokens.Issue(user.Email, user.Role.Authority())
	if err != nil {
		return nil, err
	}
	refresh, err := s.ledger.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		Subject:      user.Email,
		ExpiresAt:    expiresAt.UnixMilli(),
	}, nil
}

func validateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required: %w", ErrValidation)
	}
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters: %w", ErrValidation)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required: %w", ErrValidation)
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return fmt.Errorf("invalid email format: %w", ErrValidation)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", ErrValidation)
	}
	return nil
}
