package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/lifeflow/bloodlink/core/model"
)

// ResponseStore persists structured location responses.
type ResponseStore struct {
	db *sql.DB
}

func NewResponseStore(db *sql.DB) *ResponseStore { return &ResponseStore{db: db} }

func (s *ResponseStore) Create(ctx context.Context, resp model.LocationResponse) error {
	available := 0
	if resp.IsAvailable {
		available = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO responses (id, donor_id, request_id, latitude, longitude, is_available, address, response_time, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		resp.ID, resp.DonorID, resp.RequestID, resp.Latitude, resp.Longitude,
		available, resp.Address, toNano(resp.ResponseTime), toNano(resp.CreatedAt))
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *ResponseStore) ListByRequest(ctx context.Context, requestID string, bound time.Time) ([]model.LocationResponse, error) {
	q := `SELECT id, donor_id, request_id, latitude, longitude, is_available, address, response_time, created_at
	      FROM responses WHERE request_id = ?`
	args := []any{requestID}
	if !bound.IsZero() {
		q += ` AND response_time >= ?`
		args = append(args, toNano(bound))
	}
	return s.list(ctx, q, args...)
}

func (s *ResponseStore) ListAll(ctx context.Context) ([]model.LocationResponse, error) {
	return s.list(ctx,
		`SELECT id, donor_id, request_id, latitude, longitude, is_available, address, response_time, created_at
		 FROM responses`)
}

func (s *ResponseStore) list(ctx context.Context, query string, args ...any) ([]model.LocationResponse, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()
	var out []model.LocationResponse
	for rows.Next() {
		var r model.LocationResponse
		var available int
		var respTime, created int64
		if err := rows.Scan(&r.ID, &r.DonorID, &r.RequestID, &r.Latitude, &r.Longitude,
			&available, &r.Address, &respTime, &created); err != nil {
			return nil, unavailable(err)
		}
		r.IsAvailable = available != 0
		r.ResponseTime = fromNano(respTime)
		r.CreatedAt = fromNano(created)
		out = append(out, r)
	}
	return out, rows.Err()
}
