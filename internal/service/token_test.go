package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/task-tracker/backend/internal/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		AccessSecret:    "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTTL:       "15m",
		RefreshTTL:      "168h",
		VerificationTTL: "24h",
		ReaperInterval:  "1h",
	}
}

func newTestTokenManager(t *testing.T) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager(testAuthConfig())
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return tm
}

func TestTokenManagerValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.AuthConfig)
	}{
		{"missing access secret", func(c *config.AuthConfig) { c.AccessSecret = "" }},
		{"missing refresh secret", func(c *config.AuthConfig) { c.RefreshSecret = "" }},
		{"identical secrets", func(c *config.AuthConfig) { c.RefreshSecret = c.AccessSecret }},
		{"bad access ttl", func(c *config.AuthConfig) { c.AccessTTL = "15 minutes" }},
		{"bad refresh ttl", func(c *config.AuthConfig) { c.RefreshTTL = "7d" }},
		{"bad verification ttl", func(c *config.AuthConfig) { c.VerificationTTL = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testAuthConfig()
			tc.mutate(&cfg)
			if _, err := NewTokenManager(cfg); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tm := newTestTokenManager(t)
	userID := uuid.New()

	token, err := tm.GenerateAccessToken(userID, "a@x.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	user, err := tm.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if user.ID != userID || user.Email != "a@x.com" {
		t.Fatalf("unexpected payload: %+v", user)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tm := newTestTokenManager(t)
	userID := uuid.New()
	family := NewFamilyID()

	token, err := tm.GenerateRefreshToken(userID, family)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	gotID, gotFamily, err := tm.ParseRefreshToken(token)
	if err != nil {
		t.Fatalf("ParseRefreshToken: %v", err)
	}
	if gotID != userID || gotFamily != family {
		t.Fatalf("unexpected payload: %s %s", gotID, gotFamily)
	}
}

// Two refresh tokens minted back to back for the same user and family
// must differ, even within one second: the stored hash is unique per
// token and rotation depends on the replacement never colliding with
// the token it replaces.
func TestRefreshTokensUniquePerIssue(t *testing.T) {
	tm := newTestTokenManager(t)
	userID := uuid.New()
	family := NewFamilyID()

	a, err := tm.GenerateRefreshToken(userID, family)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	b, err := tm.GenerateRefreshToken(userID, family)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	if a == b {
		t.Fatal("two refresh tokens from the same second are identical")
	}
}

// A refresh token must never verify as an access token, and vice versa.
func TestTokenKindSeparation(t *testing.T) {
	tm := newTestTokenManager(t)
	userID := uuid.New()

	refresh, _ := tm.GenerateRefreshToken(userID, NewFamilyID())
	if _, err := tm.ParseAccessToken(refresh); err == nil {
		t.Fatalf("refresh token passed the access verifier")
	}

	access, _ := tm.GenerateAccessToken(userID, "a@x.com")
	if _, _, err := tm.ParseRefreshToken(access); err == nil {
		t.Fatalf("access token passed the refresh verifier")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	tm := newTestTokenManager(t)

	if _, err := tm.ParseAccessToken("not-a-jwt"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, _, err := tm.ParseRefreshToken(""); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestHashTokenDeterministic(t *testing.T) {
	if HashToken("abc") != HashToken("abc") {
		t.Fatalf("hash is not deterministic")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Fatalf("different inputs hashed equal")
	}
	if len(HashToken("abc")) != 64 {
		t.Fatalf("expected sha256 hex digest")
	}
}

func TestNewOpaqueToken(t *testing.T) {
	a, err := NewOpaqueToken()
	if err != nil {
		t.Fatalf("NewOpaqueToken: %v", err)
	}
	b, _ := NewOpaqueToken()

	if len(a) != 80 {
		t.Fatalf("expected 80 hex chars, got %d", len(a))
	}
	if a == b {
		t.Fatalf("two opaque tokens collided")
	}
}

func TestNewFamilyIDUnique(t *testing.T) {
	if NewFamilyID() == NewFamilyID() {
		t.Fatalf("family ids collided")
	}
}
