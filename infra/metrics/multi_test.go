package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	coremetrics "github.com/lifeflow/bloodlink/core/metrics"
)

type recordingSink struct {
	got []coremetrics.DeliveryResult
	err error
}

func (r *recordingSink) RecordDeliveryResults(res []coremetrics.DeliveryResult) error {
	r.got = append(r.got, res...)
	return r.err
}

func TestMultiSinkFansOut(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	m := NewMultiSink(a, b)
	res := []coremetrics.DeliveryResult{{RequestID: "r1", DonorID: "d1", Delivered: true, Latency: time.Millisecond}}
	assert.NoError(t, m.RecordDeliveryResults(res))
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
}

func TestMultiSinkReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	a := &recordingSink{err: boom}
	b := &recordingSink{}
	m := NewMultiSink(a, b)
	err := m.RecordDeliveryResults([]coremetrics.DeliveryResult{{RequestID: "r1"}})
	assert.ErrorIs(t, err, boom)
}

func TestPromSinkRecords(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, nil)
	assert.NoError(t, err)
	assert.NoError(t, sink.RecordDeliveryResults([]coremetrics.DeliveryResult{
		{RequestID: "r1", DonorID: "d1", BloodGroup: "O-", Delivered: true, Latency: 5 * time.Millisecond},
		{RequestID: "r1", DonorID: "d2", BloodGroup: "O-", Delivered: false},
	}))
}
