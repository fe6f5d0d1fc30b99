package metrics

import coremetrics "github.com/lifeflow/bloodlink/core/metrics"

// MultiSink fanouts delivery results to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDeliveryResults forwards the records to all sinks, returning the
// first error encountered.
func (m *MultiSink) RecordDeliveryResults(res []coremetrics.DeliveryResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordDeliveryResults(res); err != nil {
			return err
		}
	}
	return nil
}
