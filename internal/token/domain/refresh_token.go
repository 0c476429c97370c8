package domain

import "time"

// RefreshToken is a persisted opaque credential exchanged for new access
// tokens. At most one live token exists per user at any instant; the token
// string carries no claims and is only meaningful as a ledger lookup key.
type RefreshToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// ExpiredAt reports whether the token's expiry has passed at the given instant.
func (t *RefreshToken) ExpiredAt(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
