package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/task-tracker/backend/internal/model"
)

func (db *Postgres) InsertRefreshToken(ctx context.Context, userID uuid.UUID, family, tokenHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, family, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := db.Pool.Exec(ctx, query, uuid.New(), userID, family, tokenHash, expiresAt)
	return err
}

func (db *Postgres) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	query := `
		SELECT id, user_id, family, token_hash, is_used, expires_at, created_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`
	var token model.RefreshToken
	err := db.Pool.QueryRow(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.UserID,
		&token.Family,
		&token.TokenHash,
		&token.IsUsed,
		&token.ExpiresAt,
		&token.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// MarkTokenUsed claims the token for rotation. The WHERE clause makes the
// check-and-mark step atomic: of two concurrent refreshes presenting the
// same token, at most one gets true back.
func (db *Postgres) MarkTokenUsed(ctx context.Context, tokenID uuid.UUID) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET is_used = TRUE
		WHERE id = $1 AND is_used = FALSE
	`
	tag, err := db.Pool.Exec(ctx, query, tokenID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RevokeFamily deletes every token in the family in one statement, so a
// revocation can never be partial.
func (db *Postgres) RevokeFamily(ctx context.Context, family string) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE family = $1`, family)
	return err
}

func (db *Postgres) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}

func (db *Postgres) DeleteExpiredRefreshTokens(ctx context.Context) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
