package security

import (
	"testing"
	"time"
)

func newTestProvider(t *testing.T, ttl time.Duration) *TokenProvider {
	t.Helper()
	p, err := NewTokenProvider([]byte("0123456789abcdef0123456789abcdef"), "securetask", ttl)
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}
	return p
}

func TestTokenProvider_IssueAndVerify(t *testing.T) {
	p := newTestProvider(t, 15*time.Minute)

	token, exp, err := p.Issue("alice@example.com", "ROLE_USER")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("Issue returned empty token")
	}
	if exp.Before(time.Now()) {
		t.Fatal("expires at in the past")
	}

	subject, scope, gotExp, err := p.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if subject != "alice@example.com" {
		t.Errorf("subject = %q, want %q", subject, "alice@example.com")
	}
	if scope != "ROLE_USER" {
		t.Errorf("scope = %q, want %q", scope, "ROLE_USER")
	}
	if gotExp.Unix() != exp.Unix() {
		t.Errorf("expiry = %v, want %v", gotExp, exp)
	}
}

func TestTokenProvider_DeterministicExpiry(t *testing.T) {
	p := newTestProvider(t, time.Hour)
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p.WithClock(func() time.Time { return issued })

	_, exp, err := p.Issue("u1", "ROLE_USER")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if want := issued.Add(time.Hour); !exp.Equal(want) {
		t.Errorf("expiry = %v, want %v", exp, want)
	}
}

func TestTokenProvider_VerifyExpired(t *testing.T) {
	p := newTestProvider(t, time.Minute)
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p.WithClock(func() time.Time { return issued })

	token, _, err := p.Issue("u1", "ROLE_USER")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Just before expiry: still valid.
	p.WithClock(func() time.Time { return issued.Add(time.Minute - time.Second) })
	if _, _, _, err := p.Verify(token); err != nil {
		t.Fatalf("Verify before expiry: %v", err)
	}

	// At and after expiry: ExpiredToken, not InvalidToken.
	p.WithClock(func() time.Time { return issued.Add(2 * time.Minute) })
	if _, _, _, err := p.Verify(token); err != ErrExpiredToken {
		t.Errorf("Verify after expiry: want ErrExpiredToken, got %v", err)
	}
}

func TestTokenProvider_VerifyInvalid(t *testing.T) {
	p := newTestProvider(t, time.Minute)
	if _, _, _, err := p.Verify("not-a-token"); err != ErrInvalidToken {
		t.Errorf("Verify malformed: want ErrInvalidToken, got %v", err)
	}

	other, err := NewTokenProvider([]byte("another-secret-another-secret-xx"), "securetask", time.Minute)
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}
	token, _, err := other.Issue("u1", "ROLE_USER")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, _, _, err := p.Verify(token); err != ErrInvalidToken {
		t.Errorf("Verify wrong key: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_VerifyWrongIssuer(t *testing.T) {
	p := newTestProvider(t, time.Minute)
	other, err := NewTokenProvider([]byte("0123456789abcdef0123456789abcdef"), "someone-else", time.Minute)
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}
	token, _, err := other.Issue("u1", "ROLE_USER")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, _, _, err := p.Verify(token); err != ErrInvalidToken {
		t.Errorf("Verify wrong issuer: want ErrInvalidToken, got %v", err)
	}
}

func TestNewTokenProvider_EmptySecret(t *testing.T) {
	if _, err := NewTokenProvider(nil, "securetask", time.Minute); err != ErrInvalidSigningKey {
		t.Errorf("want ErrInvalidSigningKey, got %v", err)
	}
}

func TestNewOpaqueToken(t *testing.T) {
	a, err := NewOpaqueToken()
	if err != nil {
		t.Fatalf("NewOpaqueToken: %v", err)
	}
	b, err := NewOpaqueToken()
	if err != nil {
		t.Fatalf("NewOpaqueToken: %v", err)
	}
	if len(a) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(a))
	}
	if a == b {
		t.Error("two opaque tokens should not collide")
	}
}
