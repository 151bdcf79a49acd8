package repository

import (
	"context"
	"errors"
	"fmt"

	"user_auth/internal/model"

	"github.com/jackc/pgx/v5"
)

// TokenRepository defines operations for stored token keys
type TokenRepository interface {
	Create(ctx context.Context, token *model.Token) error
	FindByKey(ctx context.Context, key string) (*model.Token, error)
	FindByUserID(ctx context.Context, userID int64) (*model.Token, error)
	DeleteByUserID(ctx context.Context, userID int64) (int64, error)
}

type tokenRepository struct {
	db DBTX
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db DBTX) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *model.Token) error {
	sql := `INSERT INTO auth_tokens (key, user_id) VALUES ($1, $2) RETURNING created`
	if err := r.db.QueryRow(ctx, sql, token.Key, token.UserID).Scan(&token.Created); err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

// FindByKey returns nil when the key is not stored
func (r *tokenRepository) FindByKey(ctx context.Context, key string) (*model.Token, error) {
	t := &model.Token{}
	sql := `SELECT key, user_id, created FROM auth_tokens WHERE key = $1`
	if err := r.db.QueryRow(ctx, sql, key).Scan(&t.Key, &t.UserID, &t.Created); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find token: %w", err)
	}
	return t, nil
}

// FindByUserID returns nil when the user holds no token
func (r *tokenRepository) FindByUserID(ctx context.Context, userID int64) (*model.Token, error) {
	t := &model.Token{}
	sql := `SELECT key, user_id, created FROM auth_tokens WHERE user_id = $1`
	if err := r.db.QueryRow(ctx, sql, userID).Scan(&t.Key, &t.UserID, &t.Created); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find token by user: %w", err)
	}
	return t, nil
}

// DeleteByUserID removes the user's token and reports how many rows went away
func (r *tokenRepository) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete token: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
