package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PendingUser is an unverified registration. A real User row is created
// only after the verification link is followed.
type PendingUser struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	TokenHash    string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// AuthUser is the identity extracted from a verified access token.
type AuthUser struct {
	ID    uuid.UUID
	Email string
}

type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}
