package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/task-tracker/backend/internal/db"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// UserService handles signup. Registration never creates a user row
// directly; it hashes the password and hands off to the pending
// registration flow, which the verification link completes.
type UserService struct {
	users UserStore
	auth  *AuthService
}

func NewUserService(users UserStore, auth *AuthService) *UserService {
	return &UserService{users: users, auth: auth}
}

func (s *UserService) Register(ctx context.Context, name, email, password string) error {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if name == "" || len(password) < minPasswordLength {
		return ErrInvalidInput
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidInput
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return ErrConflict
	}
	if !db.IsNoRows(err) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.auth.CreatePendingRegistration(ctx, name, email, string(hash))
	return err
}

// IsVerified reports whether a verified account exists for the email.
func (s *UserService) IsVerified(ctx context.Context, email string) (bool, error) {
	_, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if db.IsNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
