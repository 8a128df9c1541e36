package model

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ResendVerificationRequest struct {
	Email string `json:"email"`
}

type TokenPair struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *UserSummary `json:"user,omitempty"`
}

// RefreshToken is one stored refresh-token record. Only the SHA-256 hash
// of the issued token is persisted; Family groups every token descended
// from one login so the whole lineage can be revoked at once.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Family    string
	TokenHash string
	IsUsed    bool
	ExpiresAt time.Time
	CreatedAt time.Time
}
