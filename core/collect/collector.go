// Package collect turns a valid response token into a structured donor
// location response.
package collect

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lifeflow/bloodlink/core/logger"
	"github.com/lifeflow/bloodlink/core/model"
	"github.com/lifeflow/bloodlink/core/store"
)

// Collector resolves and consumes response tokens.
type Collector struct {
	tokens    store.TokenStore
	requests  store.RequestStore
	registry  store.DonorRegistry
	responses store.ResponseStore
	logger    logger.Logger
	now       func() time.Time
}

// New creates a Collector.
func New(tokens store.TokenStore, requests store.RequestStore, registry store.DonorRegistry, responses store.ResponseStore, log logger.Logger) (*Collector, error) {
	if tokens == nil || requests == nil || registry == nil || responses == nil {
		return nil, fmt.Errorf("collect: nil parameter provided to New")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Collector{
		tokens:    tokens,
		requests:  requests,
		registry:  registry,
		responses: responses,
		logger:    log,
		now:       time.Now,
	}, nil
}

// Resolution is what a donor sees before submitting: the request they were
// asked about and their own registry entry.
type Resolution struct {
	Request model.BloodRequest `json:"request"`
	Donor   model.Donor        `json:"donor"`
}

// Resolve looks up an unused token for display purposes. It does not consume
// the token. A missing or used token yields store.ErrTokenNotFound.
func (c *Collector) Resolve(ctx context.Context, token string) (Resolution, error) {
	tok, err := c.tokens.Get(ctx, token)
	if err != nil {
		return Resolution{}, err
	}
	req, err := c.requests.Get(ctx, tok.RequestID)
	if err != nil {
		return Resolution{}, err
	}
	donor, err := c.registry.Get(ctx, tok.DonorID)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Request: req, Donor: donor}, nil
}

// Submission is a donor-provided location/availability payload.
type Submission struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
	// IsAvailable defaults to true when the donor leaves it unspecified.
	IsAvailable *bool `json:"is_available"`
}

// Submit consumes the token and records the structured response. The token
// claim is a single atomic conditional update, so two concurrent
// submissions with the same token cannot both succeed.
func (c *Collector) Submit(ctx context.Context, token string, sub Submission) (model.LocationResponse, error) {
	tok, err := c.tokens.Claim(ctx, token)
	if err != nil {
		return model.LocationResponse{}, err
	}
	available := true
	if sub.IsAvailable != nil {
		available = *sub.IsAvailable
	}
	now := c.now()
	resp := model.LocationResponse{
		ID:           uuid.NewString(),
		DonorID:      tok.DonorID,
		RequestID:    tok.RequestID,
		Latitude:     sub.Latitude,
		Longitude:    sub.Longitude,
		IsAvailable:  available,
		Address:      sub.Address,
		ResponseTime: now,
		CreatedAt:    now,
	}
	if err := c.responses.Create(ctx, resp); err != nil {
		return model.LocationResponse{}, fmt.Errorf("persist response: %w", err)
	}
	c.logger.Infof("donor %s responded to request %s", tok.DonorID, tok.RequestID)
	return resp, nil
}
