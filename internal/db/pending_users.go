package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/task-tracker/backend/internal/model"
)

// UpsertPendingUser creates or fully replaces the pending registration for
// an email. Re-registering overwrites the stored password and verification
// token, so only the newest verification link stays valid.
func (db *Postgres) UpsertPendingUser(ctx context.Context, name, email, passwordHash, tokenHash string, expiresAt time.Time) (*model.PendingUser, error) {
	query := `
		INSERT INTO pending_users (id, name, email, password_hash, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name,
			password_hash = EXCLUDED.password_hash,
			token_hash = EXCLUDED.token_hash,
			expires_at = EXCLUDED.expires_at,
			created_at = NOW()
		RETURNING id, name, email, password_hash, token_hash, expires_at, created_at
	`
	var pending model.PendingUser
	err := db.Pool.QueryRow(ctx, query, uuid.New(), name, email, passwordHash, tokenHash, expiresAt).Scan(
		&pending.ID,
		&pending.Name,
		&pending.Email,
		&pending.PasswordHash,
		&pending.TokenHash,
		&pending.ExpiresAt,
		&pending.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

// GetPendingUserByTokenHash only returns unexpired registrations; expired
// rows are invisible here even before the reaper removes them.
func (db *Postgres) GetPendingUserByTokenHash(ctx context.Context, tokenHash string) (*model.PendingUser, error) {
	query := `
		SELECT id, name, email, password_hash, token_hash, expires_at, created_at
		FROM pending_users
		WHERE token_hash = $1 AND expires_at > NOW()
	`
	var pending model.PendingUser
	err := db.Pool.QueryRow(ctx, query, tokenHash).Scan(
		&pending.ID,
		&pending.Name,
		&pending.Email,
		&pending.PasswordHash,
		&pending.TokenHash,
		&pending.ExpiresAt,
		&pending.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

// UpdatePendingUserToken swaps in a fresh verification token for an email.
// Returns pgx.ErrNoRows when no pending registration exists.
func (db *Postgres) UpdatePendingUserToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) (*model.PendingUser, error) {
	query := `
		UPDATE pending_users
		SET token_hash = $2, expires_at = $3
		WHERE email = $1
		RETURNING id, name, email, password_hash, token_hash, expires_at, created_at
	`
	var pending model.PendingUser
	err := db.Pool.QueryRow(ctx, query, email, tokenHash, expiresAt).Scan(
		&pending.ID,
		&pending.Name,
		&pending.Email,
		&pending.PasswordHash,
		&pending.TokenHash,
		&pending.ExpiresAt,
		&pending.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

func (db *Postgres) DeletePendingUser(ctx context.Context, pendingID uuid.UUID) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM pending_users WHERE id = $1`, pendingID)
	return err
}

// PromotePendingUser creates the verified user and removes the pending row
// in one transaction, so a crash mid-promotion cannot orphan either side.
func (db *Postgres) PromotePendingUser(ctx context.Context, pending *model.PendingUser) (*model.User, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, name, email, password_hash, created_at, updated_at
	`
	var user model.User
	err = tx.QueryRow(ctx, query, uuid.New(), pending.Name, pending.Email, pending.PasswordHash).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM pending_users WHERE id = $1`, pending.ID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) DeleteExpiredPendingUsers(ctx context.Context) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM pending_users WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
