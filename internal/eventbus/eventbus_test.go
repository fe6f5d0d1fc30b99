package eventbus

import (
	"testing"
	"time"

	"github.com/lifeflow/bloodlink/core/events"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	defer b.Close()
	sub := b.Subscribe()
	b.Publish(events.MessageSentEvent{RequestID: "r1", DonorID: "d1"})
	select {
	case e := <-sub:
		ev, ok := e.(events.MessageSentEvent)
		if !ok || ev.RequestID != "r1" {
			t.Fatalf("unexpected event %#v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPublishNonBlocking(t *testing.T) {
	b := New()
	defer b.Close()
	_ = b.Subscribe()
	// Nobody drains; publishing must still return once the buffer fills.
	for i := 0; i < 100; i++ {
		b.Publish(events.DispatchSummaryEvent{RequestID: "r1", Total: i})
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	b.Unsubscribe(sub)
	if _, ok := <-sub; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}
	b.Close()
}

func TestPublishAfterClose(t *testing.T) {
	b := New()
	b.Close()
	b.Publish(events.RequestCreatedEvent{}) // must not panic
}
