package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/caretide/hospital-api/internal/repository"
)

type tokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) repository.TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) StoreVerificationToken(ctx context.Context, userID uuid.UUID, token string, expiry time.Time) error {
	query := `INSERT INTO user_tokens (token, user_id, kind, expires_at) VALUES ($1, $2, 'verification', $3)`
	_, err := r.db.ExecContext(ctx, query, token, userID, expiry)
	if err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}
	return nil
}

func (r *tokenRepository) ValidateVerificationToken(ctx context.Context, token string) (uuid.UUID, error) {
	return r.validate(ctx, token, "verification")
}

func (r *tokenRepository) InvalidateVerificationToken(ctx context.Context, token string) error {
	query := `DELETE FROM user_tokens WHERE token = $1 AND kind = 'verification'`
	_, err := r.db.ExecContext(ctx, query, token)
	return err
}

func (r *tokenRepository) StoreResetToken(ctx context.Context, userID uuid.UUID, token string, expiry time.Time) error {
	query := `INSERT INTO user_tokens (token, user_id, kind, expires_at) VALUES ($1, $2, 'reset', $3)`
	_, err := r.db.ExecContext(ctx, query, token, userID, expiry)
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

func (r *tokenRepository) ValidateResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	return r.validate(ctx, token, "reset")
}

func (r *tokenRepository) validate(ctx context.Context, token, kind string) (uuid.UUID, error) {
	query := `SELECT user_id FROM user_tokens WHERE token = $1 AND kind = $2 AND expires_at > $3`
	var userID uuid.UUID
	if err := r.db.GetContext(ctx, &userID, query, token, kind, time.Now()); err != nil {
		return uuid.Nil, fmt.Errorf("invalid or expired token: %w", err)
	}
	return userID, nil
}

func (r *tokenRepository) InvalidateToken(ctx context.Context, token string) error {
	query := `INSERT INTO revoked_tokens (token, revoked_at) VALUES ($1, $2) ON CONFLICT (token) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, token, time.Now())
	return err
}

func (r *tokenRepository) IsTokenInvalidated(ctx context.Context, token string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE token = $1)`
	var revoked bool
	if err := r.db.GetContext(ctx, &revoked, query, token); err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return revoked, nil
}
