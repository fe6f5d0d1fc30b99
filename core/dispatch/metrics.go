package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	sendLatency    *prometheus.HistogramVec
	messagesSent   *prometheus.CounterVec
	messagesFailed *prometheus.CounterVec
	deliveredRatio *prometheus.GaugeVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.HistogramVec, *prometheus.CounterVec, *prometheus.CounterVec, *prometheus.GaugeVec) {
	lat := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sms_send_latency_seconds",
			Help:    "Latency of one donor message from token persist to transport return",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"blood_group"},
	)
	sent := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_sent_total",
			Help: "Number of donor messages delivered",
		},
		[]string{"blood_group"},
	)
	failed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_failed_total",
			Help: "Number of donor messages that failed to deliver",
		},
		[]string{"blood_group"},
	)
	ratio := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sms_delivered_ratio",
			Help: "Delivered/total ratio of the most recent dispatch batch",
		},
		[]string{"blood_group"},
	)
	return lat, sent, failed, ratio
}

func init() {
	sendLatency, messagesSent, messagesFailed, deliveredRatio = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(sendLatency, messagesSent, messagesFailed, deliveredRatio)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	sendLatency, messagesSent, messagesFailed, deliveredRatio = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
