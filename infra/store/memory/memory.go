// Package memory provides in-memory store implementations used by tests and
// the dispatch debug command.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lifeflow/bloodlink/core/model"
	"github.com/lifeflow/bloodlink/core/store"
)

// Registry is an in-memory read-only donor registry.
type Registry struct {
	mu     sync.RWMutex
	donors map[string]model.Donor
}

// NewRegistry creates a Registry seeded with the given donors. Blood groups
// are normalized once here, at the registry boundary.
func NewRegistry(donors []model.Donor) *Registry {
	m := make(map[string]model.Donor, len(donors))
	for _, d := range donors {
		d.BloodGroup = model.NormalizeGroup(string(d.BloodGroup))
		m[d.ID] = d
	}
	return &Registry{donors: m}
}

func (r *Registry) List(context.Context) ([]model.Donor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ds := make([]model.Donor, 0, len(r.donors))
	for _, d := range r.donors {
		ds = append(ds, d)
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i].ID < ds[j].ID })
	return ds, nil
}

func (r *Registry) Get(_ context.Context, id string) (model.Donor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.donors[id]
	if !ok {
		return model.Donor{}, store.ErrDonorNotFound
	}
	return d, nil
}

// RequestStore is an in-memory request store.
type RequestStore struct {
	mu   sync.RWMutex
	data map[string]model.BloodRequest
}

func NewRequestStore() *RequestStore {
	return &RequestStore{data: map[string]model.BloodRequest{}}
}

func (s *RequestStore) Create(_ context.Context, req model.BloodRequest) error {
	s.mu.Lock()
	s.data[req.ID] = req
	s.mu.Unlock()
	return nil
}

func (s *RequestStore) Get(_ context.Context, id string) (model.BloodRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.data[id]
	if !ok {
		return model.BloodRequest{}, store.ErrRequestNotFound
	}
	return req, nil
}

func (s *RequestStore) List(context.Context) ([]model.BloodRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reqs := make([]model.BloodRequest, 0, len(s.data))
	for _, r := range s.data {
		reqs = append(reqs, r)
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].CreatedAt.After(reqs[j].CreatedAt) })
	return reqs, nil
}

// TokenStore is an in-memory token store. Claim holds the write lock for the
// whole check-and-set, so at most one concurrent claim succeeds.
type TokenStore struct {
	mu   sync.Mutex
	data map[string]model.ResponseToken
}

func NewTokenStore() *TokenStore {
	return &TokenStore{data: map[string]model.ResponseToken{}}
}

func (s *TokenStore) Create(_ context.Context, tok model.ResponseToken) error {
	s.mu.Lock()
	s.data[tok.Token] = tok
	s.mu.Unlock()
	return nil
}

func (s *TokenStore) Get(_ context.Context, token string) (model.ResponseToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.data[token]
	if !ok || tok.IsUsed {
		return model.ResponseToken{}, store.ErrTokenNotFound
	}
	return tok, nil
}

func (s *TokenStore) Claim(_ context.Context, token string) (model.ResponseToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.data[token]
	if !ok || tok.IsUsed {
		return model.ResponseToken{}, store.ErrTokenNotFound
	}
	tok.IsUsed = true
	s.data[token] = tok
	return tok, nil
}

// ResponseStore is an in-memory structured response store.
type ResponseStore struct {
	mu   sync.RWMutex
	data []model.LocationResponse
}

func NewResponseStore() *ResponseStore { return &ResponseStore{} }

func (s *ResponseStore) Create(_ context.Context, resp model.LocationResponse) error {
	s.mu.Lock()
	s.data = append(s.data, resp)
	s.mu.Unlock()
	return nil
}

func (s *ResponseStore) ListByRequest(_ context.Context, requestID string, bound time.Time) ([]model.LocationResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.LocationResponse
	for _, r := range s.data {
		if r.RequestID != requestID {
			continue
		}
		if !bound.IsZero() && r.ResponseTime.Before(bound) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *ResponseStore) ListAll(context.Context) ([]model.LocationResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.LocationResponse, len(s.data))
	copy(out, s.data)
	return out, nil
}

// LegacyStore is an in-memory legacy location store.
type LegacyStore struct {
	mu   sync.RWMutex
	data []model.LegacyLocation
}

func NewLegacyStore(recs []model.LegacyLocation) *LegacyStore {
	return &LegacyStore{data: append([]model.LegacyLocation(nil), recs...)}
}

func (s *LegacyStore) Add(rec model.LegacyLocation) {
	s.mu.Lock()
	s.data = append(s.data, rec)
	s.mu.Unlock()
}

func (s *LegacyStore) FindAll(_ context.Context, bound time.Time) ([]model.LegacyLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.LegacyLocation
	for _, r := range s.data {
		if !bound.IsZero() && r.Timestamp.Before(bound) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
