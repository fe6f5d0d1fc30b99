package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/lifeflow/bloodlink/core/model"
)

// LegacyStore reads the old key-free location submissions.
type LegacyStore struct {
	db *sql.DB
}

func NewLegacyStore(db *sql.DB) *LegacyStore { return &LegacyStore{db: db} }

func (s *LegacyStore) FindAll(ctx context.Context, bound time.Time) ([]model.LegacyLocation, error) {
	q := `SELECT address, latitude, longitude, user_name, roll_number, mobile_number, timestamp
	      FROM legacy_locations`
	var args []any
	if !bound.IsZero() {
		q += ` WHERE timestamp >= ?`
		args = append(args, toNano(bound))
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()
	var out []model.LegacyLocation
	for rows.Next() {
		var rec model.LegacyLocation
		var ts int64
		if err := rows.Scan(&rec.Address, &rec.Latitude, &rec.Longitude,
			&rec.UserName, &rec.RollNumber, &rec.MobileNumber, &ts); err != nil {
			return nil, unavailable(err)
		}
		rec.Timestamp = fromNano(ts)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Add inserts a legacy record. The live system no longer writes this table;
// the method exists for migrations and tests.
func (s *LegacyStore) Add(ctx context.Context, rec model.LegacyLocation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO legacy_locations (address, latitude, longitude, user_name, roll_number, mobile_number, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Address, rec.Latitude, rec.Longitude, rec.UserName, rec.RollNumber,
		rec.MobileNumber, toNano(rec.Timestamp))
	if err != nil {
		return unavailable(err)
	}
	return nil
}
