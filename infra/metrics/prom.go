package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/lifeflow/bloodlink/core/metrics"
)

// PromSink records delivery events in Prometheus metrics.
type PromSink struct {
	events  *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewPromSink registers delivery metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusAddr.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_events_total",
		Help: "Total number of donor delivery events",
	}, []string{"blood_group", "delivered"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "delivery_latency_seconds",
		Help:    "Time spent per donor delivery including token persistence",
		Buckets: prometheus.DefBuckets,
	}, []string{"blood_group", "delivered"})

	if err := reg.Register(events); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			events = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	return &PromSink{events: events, latency: latency}, nil
}

// RecordDeliveryResults increments the counters for each result.
func (s *PromSink) RecordDeliveryResults(results []coremetrics.DeliveryResult) error {
	for _, r := range results {
		labels := []string{string(r.BloodGroup), strconv.FormatBool(r.Delivered)}
		s.events.WithLabelValues(labels...).Inc()
		s.latency.WithLabelValues(labels...).Observe(r.Latency.Seconds())
	}
	return nil
}
