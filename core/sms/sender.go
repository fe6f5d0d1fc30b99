// Package sms declares the outbound messaging collaborator. Transport
// implementations live under infra/sms.
package sms

import "context"

// Sender delivers one text message to one phone number. Failures are caught
// and reported by the dispatch loop, never propagated as fatal errors.
type Sender interface {
	Send(ctx context.Context, phone, text string) error
}
