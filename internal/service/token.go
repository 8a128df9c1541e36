package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/task-tracker/backend/internal/config"
	"github.com/task-tracker/backend/internal/model"
)

// TokenManager signs and verifies the two token kinds. Access and refresh
// tokens use separate secrets, so neither kind verifies under the other's
// key.
type TokenManager struct {
	accessSecret    []byte
	refreshSecret   []byte
	accessTTL       time.Duration
	refreshTTL      time.Duration
	verificationTTL time.Duration
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	Family string `json:"family"`
	jwt.RegisteredClaims
}

func NewTokenManager(cfg config.AuthConfig) (*TokenManager, error) {
	if cfg.AccessSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}
	if cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("%w: JWT_REFRESH_SECRET is required", ErrMisconfigured)
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, fmt.Errorf("%w: JWT_SECRET and JWT_REFRESH_SECRET must differ", ErrMisconfigured)
	}

	accessTTL, err := time.ParseDuration(cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_ACCESS_TTL", ErrMisconfigured)
	}

	refreshTTL, err := time.ParseDuration(cfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_REFRESH_TTL", ErrMisconfigured)
	}

	verificationTTL, err := time.ParseDuration(cfg.VerificationTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid VERIFICATION_TTL", ErrMisconfigured)
	}

	return &TokenManager{
		accessSecret:    []byte(cfg.AccessSecret),
		refreshSecret:   []byte(cfg.RefreshSecret),
		accessTTL:       accessTTL,
		refreshTTL:      refreshTTL,
		verificationTTL: verificationTTL,
	}, nil
}

func (tm *TokenManager) AccessTTL() time.Duration       { return tm.accessTTL }
func (tm *TokenManager) RefreshTTL() time.Duration      { return tm.refreshTTL }
func (tm *TokenManager) VerificationTTL() time.Duration { return tm.verificationTTL }

func (tm *TokenManager) GenerateAccessToken(userID uuid.UUID, email string) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.accessSecret)
}

func (tm *TokenManager) GenerateRefreshToken(userID uuid.UUID, family string) (string, error) {
	now := time.Now()
	claims := refreshClaims{
		Family: family,
		RegisteredClaims: jwt.RegisteredClaims{
			// iat/exp only resolve to the second; the jti keeps two tokens
			// minted in the same second from hashing identically.
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.refreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.refreshSecret)
}

func (tm *TokenManager) ParseAccessToken(tokenStr string) (*model.AuthUser, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tm.accessSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &model.AuthUser{ID: userID, Email: claims.Email}, nil
}

// ParseRefreshToken returns the owning user id and the token family. A
// token signed with the access secret, or one missing the family claim,
// does not pass.
func (tm *TokenManager) ParseRefreshToken(tokenStr string) (uuid.UUID, string, error) {
	claims := &refreshClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tm.refreshSecret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, "", ErrInvalidToken
	}

	if claims.Family == "" {
		return uuid.Nil, "", ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", ErrInvalidToken
	}

	return userID, claims.Family, nil
}

// NewFamilyID mints the opaque id shared by every refresh token descended
// from one login.
func NewFamilyID() string {
	return uuid.NewString()
}

// NewOpaqueToken returns a random token for verification links. The raw
// value goes into the email; only its hash is stored.
func NewOpaqueToken() (string, error) {
	raw := make([]byte, 40)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// HashToken is the storage form of refresh and verification tokens:
// deterministic SHA-256 so lookups work without persisting raw tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
