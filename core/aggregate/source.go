package aggregate

import (
	"context"
	"time"

	"github.com/lifeflow/bloodlink/core/identity"
	"github.com/lifeflow/bloodlink/core/model"
	"github.com/lifeflow/bloodlink/core/store"
)

// Names of the two response sources, reported in summaries.
const (
	SourceStructured = "structured"
	SourceLegacy     = "legacy"
)

// Entry is one merged response row. Annotations added by the aggregator
// (time since request, distance rank) start zero-valued.
type Entry struct {
	Source       string           `json:"source"`
	DonorID      string           `json:"donor_id,omitempty"`
	DonorName    string           `json:"donor_name,omitempty"`
	Key          string           `json:"key"`
	BloodGroup   model.BloodGroup `json:"blood_group"`
	Latitude     float64          `json:"latitude"`
	Longitude    float64          `json:"longitude"`
	Address      string           `json:"address"`
	IsAvailable  bool             `json:"is_available"`
	ResponseTime time.Time        `json:"response_time"`

	TimeSinceRequestMin float64 `json:"time_since_request_min"`
	DistanceKm          float64 `json:"distance_km"`
	Near                bool    `json:"near"`
}

// Source is the read-model capability both response stores are wrapped in,
// so the aggregator never depends on a concrete store. Responses scopes by
// request where the underlying records support it; legacy records only obey
// the time bound. All returns every known entry regardless of request or
// time.
type Source interface {
	Responses(ctx context.Context, requestID string, bound time.Time) ([]Entry, error)
	All(ctx context.Context) ([]Entry, error)
}

// StructuredSource adapts the token-based response store. Each entry is
// enriched with the donor's current registry blood group.
type StructuredSource struct {
	responses store.ResponseStore
	registry  store.DonorRegistry
}

func NewStructuredSource(responses store.ResponseStore, registry store.DonorRegistry) *StructuredSource {
	return &StructuredSource{responses: responses, registry: registry}
}

func (s *StructuredSource) Responses(ctx context.Context, requestID string, bound time.Time) ([]Entry, error) {
	resps, err := s.responses.ListByRequest(ctx, requestID, bound)
	if err != nil {
		return nil, err
	}
	return s.entries(ctx, resps), nil
}

func (s *StructuredSource) All(ctx context.Context) ([]Entry, error) {
	resps, err := s.responses.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.entries(ctx, resps), nil
}

func (s *StructuredSource) entries(ctx context.Context, resps []model.LocationResponse) []Entry {
	out := make([]Entry, 0, len(resps))
	for _, r := range resps {
		e := Entry{
			Source:       SourceStructured,
			DonorID:      r.DonorID,
			Key:          r.DonorID,
			BloodGroup:   model.GroupUnknown,
			Latitude:     r.Latitude,
			Longitude:    r.Longitude,
			Address:      r.Address,
			IsAvailable:  r.IsAvailable,
			ResponseTime: r.ResponseTime,
		}
		if donor, err := s.registry.Get(ctx, r.DonorID); err == nil {
			e.DonorName = donor.Name
			e.BloodGroup = donor.BloodGroup
		}
		out = append(out, e)
	}
	return out
}

// LegacySource adapts the key-free legacy records, resolving identity via
// the heuristic matcher against a registry snapshot taken per read.
type LegacySource struct {
	legacy   store.LegacyLocationStore
	registry store.DonorRegistry
}

func NewLegacySource(legacy store.LegacyLocationStore, registry store.DonorRegistry) *LegacySource {
	return &LegacySource{legacy: legacy, registry: registry}
}

func (s *LegacySource) Responses(ctx context.Context, _ string, bound time.Time) ([]Entry, error) {
	return s.find(ctx, bound)
}

func (s *LegacySource) All(ctx context.Context) ([]Entry, error) {
	return s.find(ctx, time.Time{})
}

func (s *LegacySource) find(ctx context.Context, bound time.Time) ([]Entry, error) {
	recs, err := s.legacy.FindAll(ctx, bound)
	if err != nil {
		return nil, err
	}
	donors, err := s.registry.List(ctx)
	if err != nil {
		return nil, err
	}
	matcher := identity.NewMatcher(donors)
	out := make([]Entry, 0, len(recs))
	for _, rec := range recs {
		m := matcher.Match(rec)
		e := Entry{
			Source:       SourceLegacy,
			Key:          m.Key,
			BloodGroup:   m.BloodGroup,
			Latitude:     rec.Latitude,
			Longitude:    rec.Longitude,
			Address:      rec.Address,
			IsAvailable:  true,
			ResponseTime: rec.Timestamp,
			DonorName:    rec.UserName,
		}
		if m.Matched {
			e.DonorID = m.Donor.ID
			e.DonorName = m.Donor.Name
		}
		out = append(out, e)
	}
	return out, nil
}
