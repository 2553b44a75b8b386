package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smswall/internal/config"
	"smswall/internal/models"
)

type stubHandler struct {
	received []models.Message
	err      error
}

func (h *stubHandler) HandleIncoming(msg models.Message, confirmed bool) error {
	h.received = append(h.received, msg)
	return h.err
}

func testGatewayConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Wall.AppNumber = "1000"
	cfg.Gateway.ListenPort = "8080"
	cfg.Gateway.WebhookPath = "/webhook"
	cfg.Gateway.DebugPath = "/debug"
	return cfg
}

func post(t *testing.T, srv *Server, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestWebhookDeliversMessage(t *testing.T) {
	h := &stubHandler{}
	srv := NewServer(testGatewayConfig(), h)

	rec := post(t, srv, "/webhook", `{"from":"12345","to":"1500","subject":"hi","body":"hello list"}`, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, h.received, 1)
	assert.Equal(t, models.Message{Sender: "12345", Recipient: "1500", Subject: "hi", Body: "hello list"}, h.received[0])
}

func TestWebhookIgnoresEmptyMessage(t *testing.T) {
	h := &stubHandler{}
	srv := NewServer(testGatewayConfig(), h)

	rec := post(t, srv, "/webhook", `{}`, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, h.received)
}

func TestWebhookRejectsBadJSON(t *testing.T) {
	h := &stubHandler{}
	srv := NewServer(testGatewayConfig(), h)

	rec := post(t, srv, "/webhook", `{not json`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, h.received)
}

func TestWebhookRejectsWrongMethod(t *testing.T) {
	srv := NewServer(testGatewayConfig(), &stubHandler{})

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWebhookAuthToken(t *testing.T) {
	cfg := testGatewayConfig()
	cfg.Gateway.AuthToken = "sekrit"
	h := &stubHandler{}
	srv := NewServer(cfg, h)

	body := `{"from":"12345","to":"1500","body":"hello"}`

	rec := post(t, srv, "/webhook", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(t, srv, "/webhook", body, map[string]string{"X-Auth-Token": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(t, srv, "/webhook", body, map[string]string{"X-Auth-Token": "sekrit"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, h.received, 1)
}

func TestWebhookHandlerError(t *testing.T) {
	h := &stubHandler{err: assert.AnError}
	srv := NewServer(testGatewayConfig(), h)

	rec := post(t, srv, "/webhook", `{"from":"12345","to":"1500","body":"hello"}`, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDebugEndpoint(t *testing.T) {
	srv := NewServer(testGatewayConfig(), &stubHandler{})

	req := httptest.NewRequest(http.MethodGet, "/debug", nil)
	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Application number: 1000")
}
