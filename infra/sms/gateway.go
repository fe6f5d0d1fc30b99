// Package sms provides transport implementations of the outbound messaging
// collaborator.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	coresms "github.com/lifeflow/bloodlink/core/sms"
	"github.com/lifeflow/bloodlink/infra/logger"
)

// Sender mirrors the core sms.Sender interface.
type Sender = coresms.Sender

// Config defines the HTTP SMS gateway endpoint.
type Config struct {
	URL       string `json:"url"`
	APIKey    string `json:"api_key"`
	TimeoutMS int    `json:"timeout_ms"`
}

// GatewaySender posts messages to a JSON HTTP gateway. Any non-2xx status is
// a delivery failure for the dispatch loop to isolate.
type GatewaySender struct {
	cfg    Config
	client *http.Client
	log    logger.Logger
}

// NewGatewaySender creates a GatewaySender.
func NewGatewaySender(cfg Config) *GatewaySender {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GatewaySender{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		log:    logger.New("sms-gateway"),
	}
}

type gatewayPayload struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

func (s *GatewaySender) Send(ctx context.Context, phone, text string) error {
	body, err := json.Marshal(gatewayPayload{To: phone, Text: text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway: status %d", resp.StatusCode)
	}
	s.log.Debugf("message delivered to %s", phone)
	return nil
}
