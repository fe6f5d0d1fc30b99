package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lifeflow/bloodlink/core/model"
	"github.com/lifeflow/bloodlink/core/store"
)

// DonorStore reads the donor registry table. The core treats the registry as
// read-only; Seed exists for provisioning and tests.
type DonorStore struct {
	db *sql.DB
}

func NewDonorStore(db *sql.DB) *DonorStore { return &DonorStore{db: db} }

func (s *DonorStore) List(ctx context.Context) ([]model.Donor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, phone, blood_group, roll_no, email FROM donors ORDER BY id`)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()
	var donors []model.Donor
	for rows.Next() {
		var d model.Donor
		var group string
		if err := rows.Scan(&d.ID, &d.Name, &d.Phone, &group, &d.RollNo, &d.Email); err != nil {
			return nil, unavailable(err)
		}
		d.BloodGroup = model.NormalizeGroup(group)
		donors = append(donors, d)
	}
	return donors, rows.Err()
}

func (s *DonorStore) Get(ctx context.Context, id string) (model.Donor, error) {
	var d model.Donor
	var group string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, phone, blood_group, roll_no, email FROM donors WHERE id = ?`, id).
		Scan(&d.ID, &d.Name, &d.Phone, &group, &d.RollNo, &d.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Donor{}, store.ErrDonorNotFound
	}
	if err != nil {
		return model.Donor{}, unavailable(err)
	}
	d.BloodGroup = model.NormalizeGroup(group)
	return d, nil
}

// Seed inserts or replaces registry entries.
func (s *DonorStore) Seed(ctx context.Context, donors []model.Donor) error {
	for _, d := range donors {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO donors (id, name, phone, blood_group, roll_no, email)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			d.ID, d.Name, d.Phone, string(d.BloodGroup), d.RollNo, d.Email)
		if err != nil {
			return unavailable(err)
		}
	}
	return nil
}

// unavailable wraps a driver failure as a retryable store outage.
func unavailable(err error) error {
	return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
}
