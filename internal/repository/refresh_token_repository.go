package repository

import (
	"context"

	"github.com/spec-kit/inventory-service/internal/domain"
)

// RefreshTokenRepository persists refresh token records keyed by token hash.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error)
	// Revoke marks the token revoked and reports whether this call flipped it.
	Revoke(ctx context.Context, hash string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID string) error
}

type refreshTokenRepository struct {
	db DB
}

// NewRefreshTokenRepository returns a Postgres-backed implementation.
func NewRefreshTokenRepository(db DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	const query = `
        INSERT INTO refresh_tokens (token_hash, user_id, expires_at, is_revoked)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at`
	return r.db.QueryRow(ctx, query,
		token.TokenHash,
		token.UserID,
		token.ExpiresAt,
		token.IsRevoked,
	).Scan(&token.CreatedAt)
}

func (r *refreshTokenRepository) GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	const query = `
        SELECT token_hash, user_id, expires_at, is_revoked, created_at
        FROM refresh_tokens WHERE token_hash=$1`
	var token domain.RefreshToken
	if err := r.db.QueryRow(ctx, query, hash).Scan(
		&token.TokenHash,
		&token.UserID,
		&token.ExpiresAt,
		&token.IsRevoked,
		&token.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *refreshTokenRepository) Revoke(ctx context.Context, hash string) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE refresh_tokens SET is_revoked=TRUE WHERE token_hash=$1 AND is_revoked=FALSE`, hash)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *refreshTokenRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `UPDATE refresh_tokens SET is_revoked=TRUE WHERE user_id=$1 AND is_revoked=FALSE`, userID)
	return err
}
