// Package sender provides the outbound SMS capability. The wall hands every
// outgoing message to a Sender and does not care how delivery happens.
package sender

import (
	"fmt"

	"smswall/internal/config"
)

// Sender queues one SMS for delivery.
type Sender interface {
	SendSMS(from, to, subject, body string) error
}

// New returns the Sender selected by wall.sender in the configuration:
// "log" writes outgoing messages to the log, "capture" records them in
// memory, and "gateway" POSTs them to an HTTP SMS gateway.
func New(cfg *config.Config) (Sender, error) {
	switch cfg.Wall.Sender {
	case "log":
		return &LogSender{}, nil
	case "capture":
		return NewCapturingSender(), nil
	case "gateway":
		return NewGatewaySender(cfg)
	default:
		return nil, fmt.Errorf("no sender of type %q exists", cfg.Wall.Sender)
	}
}
