package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/task-tracker/backend/internal/db"
	"github.com/task-tracker/backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMisconfigured = errors.New("auth config invalid")
	ErrInvalidInput  = errors.New("invalid input")

	// ErrInvalidCredentials covers both unknown email and wrong password;
	// callers must not be able to tell which.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken: malformed or badly signed token, or one with no
	// stored record (never issued, or its family was already revoked).
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrTokenReused: a rotated refresh token was presented again. The
	// whole family is revoked before this is returned.
	ErrTokenReused = errors.New("refresh token reuse detected")

	// ErrTokenExpired: the stored record outlived its expiry.
	ErrTokenExpired = errors.New("refresh token has expired")

	ErrConflict        = errors.New("account already exists")
	ErrAlreadyVerified = errors.New("email already verified")
	ErrUserNotFound    = errors.New("user not found")
)

type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type RefreshTokenStore interface {
	InsertRefreshToken(ctx context.Context, userID uuid.UUID, family, tokenHash string, expiresAt time.Time) error
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	MarkTokenUsed(ctx context.Context, tokenID uuid.UUID) (bool, error)
	RevokeFamily(ctx context.Context, family string) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

type PendingUserStore interface {
	UpsertPendingUser(ctx context.Context, name, email, passwordHash, tokenHash string, expiresAt time.Time) (*model.PendingUser, error)
	GetPendingUserByTokenHash(ctx context.Context, tokenHash string) (*model.PendingUser, error)
	UpdatePendingUserToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) (*model.PendingUser, error)
	DeletePendingUser(ctx context.Context, pendingID uuid.UUID) error
	PromotePendingUser(ctx context.Context, pending *model.PendingUser) (*model.User, error)
}

type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, rawToken string) error
}

// AuthService owns the token lifecycle: login, refresh rotation with
// replay detection, logout, and the email verification flow. Store and
// mail errors pass through unwrapped so transport can distinguish "your
// token is bad" from "the system is down".
type AuthService struct {
	tokens  *TokenManager
	users   UserStore
	refresh RefreshTokenStore
	pending PendingUserStore
	mailer  Mailer
}

func NewAuthService(tokens *TokenManager, users UserStore, refresh RefreshTokenStore, pending PendingUserStore, mailer Mailer) *AuthService {
	return &AuthService{
		tokens:  tokens,
		users:   users,
		refresh: refresh,
		pending: pending,
		mailer:  mailer,
	}
}

func (s *AuthService) Tokens() *TokenManager {
	return s.tokens
}

// normalizeEmail is applied to every email taken from a request, so the
// address a user logs in with matches the one registration stored.
func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// Login checks credentials and opens a new token family.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	family := NewFamilyID()
	pair, err := s.issueTokenPair(ctx, user, family)
	if err != nil {
		return nil, err
	}

	pair.User = &model.UserSummary{ID: user.ID, Name: user.Name, Email: user.Email}
	return pair, nil
}

// Refresh rotates a refresh token. Presenting an already-rotated token is
// treated as theft: the family dies for the legitimate holder and the
// attacker alike, since the two cannot be told apart.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	if _, _, err := s.tokens.ParseRefreshToken(refreshToken); err != nil {
		return nil, ErrInvalidToken
	}

	record, err := s.refresh.GetRefreshTokenByHash(ctx, HashToken(refreshToken))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if record.IsUsed {
		if err := s.refresh.RevokeFamily(ctx, record.Family); err != nil {
			return nil, err
		}
		log.Printf("[Auth] Refresh token reuse detected, family %s revoked (user_id=%s)", record.Family, record.UserID)
		return nil, ErrTokenReused
	}

	if time.Now().After(record.ExpiresAt) {
		if err := s.refresh.RevokeFamily(ctx, record.Family); err != nil {
			return nil, err
		}
		return nil, ErrTokenExpired
	}

	claimed, err := s.refresh.MarkTokenUsed(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Lost the race against a concurrent refresh of the same token:
		// same signal as finding the used flag set.
		if err := s.refresh.RevokeFamily(ctx, record.Family); err != nil {
			return nil, err
		}
		log.Printf("[Auth] Concurrent refresh of one token, family %s revoked (user_id=%s)", record.Family, record.UserID)
		return nil, ErrTokenReused
	}

	user, err := s.users.GetUserByID(ctx, record.UserID)
	if err != nil {
		if db.IsNoRows(err) {
			// The account is gone; none of its remaining tokens can ever
			// refresh again, so drop them all.
			if err := s.refresh.RevokeAllForUser(ctx, record.UserID); err != nil {
				return nil, err
			}
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return s.issueTokenPair(ctx, user, record.Family)
}

// Logout revokes the whole family behind a refresh token. Unknown tokens
// are not an error; logging out twice is fine.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	record, err := s.refresh.GetRefreshTokenByHash(ctx, HashToken(refreshToken))
	if err != nil {
		if db.IsNoRows(err) {
			return nil
		}
		return err
	}
	return s.refresh.RevokeFamily(ctx, record.Family)
}

// CreatePendingRegistration stores (or replaces) the unverified signup for
// an email and mails out the raw verification token. Re-registering kills
// any earlier verification link for the same address.
func (s *AuthService) CreatePendingRegistration(ctx context.Context, name, email, passwordHash string) (*model.PendingUser, error) {
	rawToken, err := NewOpaqueToken()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.tokens.VerificationTTL())
	pending, err := s.pending.UpsertPendingUser(ctx, name, email, passwordHash, HashToken(rawToken), expiresAt)
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendVerificationEmail(ctx, email, rawToken); err != nil {
		return nil, err
	}
	return pending, nil
}

// VerifyEmail promotes a pending registration into a real user.
func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string) error {
	pending, err := s.pending.GetPendingUserByTokenHash(ctx, HashToken(rawToken))
	if err != nil {
		if db.IsNoRows(err) {
			return ErrInvalidToken
		}
		return err
	}

	_, err = s.users.GetUserByEmail(ctx, pending.Email)
	if err == nil {
		// Verified through another path in the meantime; the pending row
		// is stale.
		if err := s.pending.DeletePendingUser(ctx, pending.ID); err != nil {
			return err
		}
		return ErrConflict
	}
	if !db.IsNoRows(err) {
		return err
	}

	if _, err := s.pending.PromotePendingUser(ctx, pending); err != nil {
		if db.IsUniqueViolation(err) {
			if delErr := s.pending.DeletePendingUser(ctx, pending.ID); delErr != nil {
				return delErr
			}
			return ErrConflict
		}
		return err
	}

	log.Printf("[Auth] Email verified, account created (email=%s)", pending.Email)
	return nil
}

// ResendVerificationEmail issues a fresh token for an unverified signup.
// When no pending registration exists it succeeds silently, so the
// endpoint cannot be used to probe which emails are registered.
func (s *AuthService) ResendVerificationEmail(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return ErrAlreadyVerified
	}
	if !db.IsNoRows(err) {
		return err
	}

	rawToken, err := NewOpaqueToken()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(s.tokens.VerificationTTL())
	_, err = s.pending.UpdatePendingUserToken(ctx, email, HashToken(rawToken), expiresAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil
		}
		return err
	}

	return s.mailer.SendVerificationEmail(ctx, email, rawToken)
}

func (s *AuthService) issueTokenPair(ctx context.Context, user *model.User, family string) (*model.TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID, family)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.tokens.RefreshTTL())
	if err := s.refresh.InsertRefreshToken(ctx, user.ID, family, HashToken(refreshToken), expiresAt); err != nil {
		return nil, err
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
