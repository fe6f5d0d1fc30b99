// Package metrics defines the sink interfaces used to record dispatch
// outcomes. Concrete sinks live under infra/metrics.
package metrics

import (
	"time"

	"github.com/lifeflow/bloodlink/core/model"
)

// DeliveryResult represents one per-donor delivery outcome to be recorded.
type DeliveryResult struct {
	RequestID  string
	DonorID    string
	BloodGroup model.BloodGroup
	Delivered  bool
	Latency    time.Duration
	SentAt     time.Time
}

// Sink records delivery results for observability purposes.
type Sink interface {
	RecordDeliveryResults(results []DeliveryResult) error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordDeliveryResults([]DeliveryResult) error { return nil }
