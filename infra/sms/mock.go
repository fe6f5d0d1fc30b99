package sms

import (
	"context"
	"fmt"
	"sync"
)

// MockSender is a simple sender used in tests.
type MockSender struct {
	Messages   map[string]string // phone -> last message text
	FailPhones map[string]bool
	mu         sync.Mutex
}

// NewMockSender creates a new MockSender.
func NewMockSender() *MockSender {
	return &MockSender{
		Messages:   make(map[string]string),
		FailPhones: make(map[string]bool),
	}
}

// Send records the message or returns an error if configured to fail.
func (m *MockSender) Send(_ context.Context, phone, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPhones[phone] {
		return fmt.Errorf("send failed")
	}
	m.Messages[phone] = text
	return nil
}
