package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lifeflow/bloodlink/core/model"
	"github.com/lifeflow/bloodlink/core/store"
)

// RequestStore persists blood requests.
type RequestStore struct {
	db *sql.DB
}

func NewRequestStore(db *sql.DB) *RequestStore { return &RequestStore{db: db} }

func (s *RequestStore) Create(ctx context.Context, req model.BloodRequest) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO requests (id, hospital_id, blood_group, quantity, urgency, status, required_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.HospitalID, string(req.BloodGroup), req.Quantity, req.Urgency,
		string(req.Status), toNano(req.RequiredBy), toNano(req.CreatedAt))
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *RequestStore) Get(ctx context.Context, id string) (model.BloodRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, hospital_id, blood_group, quantity, urgency, status, required_by, created_at
		 FROM requests WHERE id = ?`, id)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BloodRequest{}, store.ErrRequestNotFound
	}
	if err != nil {
		return model.BloodRequest{}, unavailable(err)
	}
	return req, nil
}

func (s *RequestStore) List(ctx context.Context) ([]model.BloodRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, hospital_id, blood_group, quantity, urgency, status, required_by, created_at
		 FROM requests ORDER BY created_at DESC`)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()
	var reqs []model.BloodRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, unavailable(err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (model.BloodRequest, error) {
	var req model.BloodRequest
	var group, status string
	var requiredBy, createdAt int64
	if err := row.Scan(&req.ID, &req.HospitalID, &group, &req.Quantity, &req.Urgency,
		&status, &requiredBy, &createdAt); err != nil {
		return model.BloodRequest{}, err
	}
	req.BloodGroup = model.BloodGroup(group)
	req.Status = model.RequestStatus(status)
	req.RequiredBy = fromNano(requiredBy)
	req.CreatedAt = fromNano(createdAt)
	return req, nil
}
