// Package store defines the persistence interfaces the core depends on.
// Implementations live under infra/store.
package store

import (
	"context"
	"time"

	"github.com/lifeflow/bloodlink/core/model"
)

// DonorRegistry is the read-only donor pool. Listing returns donors in a
// stable order (sorted by ID) so heuristic matching is deterministic.
type DonorRegistry interface {
	List(ctx context.Context) ([]model.Donor, error)
	Get(ctx context.Context, id string) (model.Donor, error)
}

// RequestStore persists blood requests. The core only creates and reads
// requests; status transitions are driven externally.
type RequestStore interface {
	Create(ctx context.Context, req model.BloodRequest) error
	Get(ctx context.Context, id string) (model.BloodRequest, error)
	List(ctx context.Context) ([]model.BloodRequest, error)
}

// TokenStore persists single-use response tokens.
type TokenStore interface {
	Create(ctx context.Context, tok model.ResponseToken) error
	// Get returns the token only while it is still unused.
	Get(ctx context.Context, token string) (model.ResponseToken, error)
	// Claim atomically marks an unused token as used and returns it. The
	// check and the write are one operation, so at most one concurrent
	// submission can succeed. A missing or already-used token yields
	// ErrTokenNotFound.
	Claim(ctx context.Context, token string) (model.ResponseToken, error)
}

// ResponseStore persists structured location responses.
type ResponseStore interface {
	Create(ctx context.Context, resp model.LocationResponse) error
	// ListByRequest returns responses for the request with response time at
	// or after bound. A zero bound applies no lower bound.
	ListByRequest(ctx context.Context, requestID string, bound time.Time) ([]model.LocationResponse, error)
	ListAll(ctx context.Context) ([]model.LocationResponse, error)
}

// LegacyLocationStore reads the old key-free location submissions. Records
// are scoped only by the time bound since they carry no request ID.
type LegacyLocationStore interface {
	FindAll(ctx context.Context, bound time.Time) ([]model.LegacyLocation, error)
}
