package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lifeflow/bloodlink/core/model"
	"github.com/lifeflow/bloodlink/core/store"
)

// TokenStore persists single-use response tokens.
type TokenStore struct {
	db *sql.DB
}

func NewTokenStore(db *sql.DB) *TokenStore { return &TokenStore{db: db} }

func (s *TokenStore) Create(ctx context.Context, tok model.ResponseToken) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tokens (token, request_id, donor_id, is_used, created_at)
		 VALUES (?, ?, ?, 0, ?)`,
		tok.Token, tok.RequestID, tok.DonorID, toNano(tok.CreatedAt))
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *TokenStore) Get(ctx context.Context, token string) (model.ResponseToken, error) {
	var tok model.ResponseToken
	var used int
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT token, request_id, donor_id, is_used, created_at FROM tokens
		 WHERE token = ? AND is_used = 0`, token).
		Scan(&tok.Token, &tok.RequestID, &tok.DonorID, &used, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ResponseToken{}, store.ErrTokenNotFound
	}
	if err != nil {
		return model.ResponseToken{}, unavailable(err)
	}
	tok.IsUsed = used != 0
	tok.CreatedAt = fromNano(created)
	return tok, nil
}

// Claim flips is_used in one conditional UPDATE. The affected-rows count
// decides the winner under concurrent submissions; there is no separate read
// step to race against.
func (s *TokenStore) Claim(ctx context.Context, token string) (model.ResponseToken, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tokens SET is_used = 1 WHERE token = ? AND is_used = 0`, token)
	if err != nil {
		return model.ResponseToken{}, unavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.ResponseToken{}, unavailable(err)
	}
	if n == 0 {
		return model.ResponseToken{}, store.ErrTokenNotFound
	}
	var tok model.ResponseToken
	var used int
	var created int64
	err = s.db.QueryRowContext(ctx,
		`SELECT token, request_id, donor_id, is_used, created_at FROM tokens WHERE token = ?`, token).
		Scan(&tok.Token, &tok.RequestID, &tok.DonorID, &used, &created)
	if err != nil {
		return model.ResponseToken{}, unavailable(err)
	}
	tok.IsUsed = used != 0
	tok.CreatedAt = fromNano(created)
	return tok, nil
}
