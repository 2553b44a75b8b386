package sender

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smswall/internal/config"
)

func TestCapturingSenderRecordsInOrder(t *testing.T) {
	s := NewCapturingSender()

	require.NoError(t, s.SendSMS("1000", "12345", "", "first"))
	require.NoError(t, s.SendSMS("1500", "43210", "subj", "second"))

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, SentMessage{From: "1000", To: "12345", Body: "first"}, msgs[0])
	assert.Equal(t, SentMessage{From: "1500", To: "43210", Subject: "subj", Body: "second"}, msgs[1])

	s.Reset()
	assert.Empty(t, s.Messages())
}

func TestNewSelectsSenderType(t *testing.T) {
	cfg := &config.Config{}

	cfg.Wall.Sender = "log"
	s, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)

	cfg.Wall.Sender = "capture"
	s, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &CapturingSender{}, s)

	cfg.Wall.Sender = "smoke-signal"
	_, err = New(cfg)
	assert.ErrorContains(t, err, "smoke-signal")
}

func TestGatewaySenderPostsPayload(t *testing.T) {
	var got gatewayPayload
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Gateway.SendURL = srv.URL
	cfg.Gateway.SendTimeoutSeconds = 2
	cfg.Gateway.AuthToken = "sekrit"

	s, err := NewGatewaySender(cfg)
	require.NoError(t, err)

	require.NoError(t, s.SendSMS("1500", "43210", "subj", "hello"))
	assert.Equal(t, gatewayPayload{From: "1500", To: "43210", Subject: "subj", Body: "hello"}, got)
	assert.Equal(t, "Bearer sekrit", gotAuth)
}

func TestGatewaySenderRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "queue full", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Gateway.SendURL = srv.URL

	s, err := NewGatewaySender(cfg)
	require.NoError(t, err)

	err = s.SendSMS("1500", "43210", "", "hello")
	assert.ErrorContains(t, err, "status 503")
}

func TestGatewaySenderRequiresURL(t *testing.T) {
	_, err := NewGatewaySender(&config.Config{})
	assert.ErrorContains(t, err, "send_url")
}
