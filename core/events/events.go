package events

import (
	"fmt"
	"time"

	"github.com/lifeflow/bloodlink/core/model"
)

// Event is any value published on the dispatch bus. Every event can render
// itself as a Notification for the external broadcast mechanism.
type Event interface {
	Notification() Notification
}

// Notification is the well-formed record handed to the broadcast
// collaborator. Delivery is the collaborator's problem, not this core's.
type Notification struct {
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	DonorID   string    `json:"donor_id,omitempty"`
	Time      time.Time `json:"time"`
}

// RequestCreatedEvent is published once a blood request is durably stored.
type RequestCreatedEvent struct {
	Request model.BloodRequest
}

func (e RequestCreatedEvent) Notification() Notification {
	return Notification{
		Type:      "request_created",
		Title:     "New blood request",
		Message:   fmt.Sprintf("Request for %s blood (qty %d)", e.Request.BloodGroup, e.Request.Quantity),
		RequestID: e.Request.ID,
		Time:      time.Now(),
	}
}

// MessageSentEvent is published for each donor message that was delivered.
type MessageSentEvent struct {
	RequestID string
	DonorID   string
	Phone     string
}

func (e MessageSentEvent) Notification() Notification {
	return Notification{
		Type:      "message_sent",
		Title:     "Donor notified",
		Message:   "Response link delivered",
		RequestID: e.RequestID,
		DonorID:   e.DonorID,
		Time:      time.Now(),
	}
}

// MessageFailedEvent is published when one donor message fails. The failure
// is isolated: the dispatch batch continues.
type MessageFailedEvent struct {
	RequestID string
	DonorID   string
	Err       error
}

func (e MessageFailedEvent) Notification() Notification {
	msg := "Message delivery failed"
	if e.Err != nil {
		msg = fmt.Sprintf("Message delivery failed: %v", e.Err)
	}
	return Notification{
		Type:      "message_failed",
		Title:     "Delivery failure",
		Message:   msg,
		RequestID: e.RequestID,
		DonorID:   e.DonorID,
		Time:      time.Now(),
	}
}

// DispatchSummaryEvent reports the aggregate outcome after the per-donor loop.
type DispatchSummaryEvent struct {
	RequestID  string
	BloodGroup model.BloodGroup
	Total      int
	Delivered  int
}

func (e DispatchSummaryEvent) Notification() Notification {
	return Notification{
		Type:      "dispatch_summary",
		Title:     "Dispatch complete",
		Message:   fmt.Sprintf("%d/%d donors notified for %s", e.Delivered, e.Total, e.BloodGroup),
		RequestID: e.RequestID,
		Time:      time.Now(),
	}
}
