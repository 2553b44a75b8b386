package sender

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"smswall/internal/config"
)

// GatewaySender delivers messages by POSTing them to an HTTP SMS gateway.
type GatewaySender struct {
	url       string
	authToken string
	client    *http.Client
}

type gatewayPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

// NewGatewaySender creates a GatewaySender from the gateway configuration
func NewGatewaySender(cfg *config.Config) (*GatewaySender, error) {
	if cfg.Gateway.SendURL == "" {
		return nil, fmt.Errorf("gateway.send_url is required for the gateway sender")
	}

	timeout := time.Duration(cfg.Gateway.SendTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &GatewaySender{
		url:       cfg.Gateway.SendURL,
		authToken: cfg.Gateway.AuthToken,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

func (s *GatewaySender) SendSMS(from, to, subject, body string) error {
	payload, err := json.Marshal(gatewayPayload{From: from, To: to, Subject: subject, Body: body})
	if err != nil {
		return fmt.Errorf("failed to encode SMS payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	return nil
}
