package sender

import (
	"sync"

	"smswall/internal/logger"
)

// LogSender writes outgoing messages to the application log. Useful in
// development and as a null delivery backend.
type LogSender struct{}

func (s *LogSender) SendSMS(from, to, subject, body string) error {
	logger.Infof("Sent SMS. From: '%s' To: '%s' Subj: '%s' Message: '%s'", from, to, subject, body)
	return nil
}

// SentMessage is one message recorded by a CapturingSender.
type SentMessage struct {
	From    string
	To      string
	Subject string
	Body    string
}

// CapturingSender records outgoing messages in memory so tests and
// diagnostics can inspect exactly what was sent, in order.
type CapturingSender struct {
	mu       sync.Mutex
	messages []SentMessage
}

func NewCapturingSender() *CapturingSender {
	return &CapturingSender{}
}

func (s *CapturingSender) SendSMS(from, to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, SentMessage{From: from, To: to, Subject: subject, Body: body})
	return nil
}

// Messages returns a copy of everything sent so far.
func (s *CapturingSender) Messages() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SentMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Reset discards all recorded messages.
func (s *CapturingSender) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}
