// Package events defines the dispatch related events emitted on the event bus.
//
// Available event types:
//   - RequestCreatedEvent: a new blood request was accepted
//   - MessageSentEvent: one donor message was delivered
//   - MessageFailedEvent: one donor message failed, batch continues
//   - DispatchSummaryEvent: delivered/total counts after the batch
package events
