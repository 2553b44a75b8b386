// Package gateway exposes the inbound HTTP surface: the SMS gateway POSTs
// received messages to the webhook endpoint, and the wall takes it from
// there.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"smswall/internal/config"
	"smswall/internal/logger"
	"smswall/internal/models"
)

// Handler consumes inbound messages. Satisfied by *wall.Wall.
type Handler interface {
	HandleIncoming(msg models.Message, confirmed bool) error
}

// Server is the webhook HTTP server
type Server struct {
	server   *http.Server
	certFile string
	keyFile  string
}

// inboundMessage is the wire format the gateway delivers
type inboundMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewServer builds the webhook server for the configured listen port and
// paths.
func NewServer(cfg *config.Config, handler Handler) *Server {
	mux := http.NewServeMux()

	startedAt := time.Now()

	mux.HandleFunc(cfg.Gateway.WebhookPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if cfg.Gateway.AuthToken != "" && r.Header.Get("X-Auth-Token") != cfg.Gateway.AuthToken {
			logger.Warningf("Rejected webhook request with bad auth token from %s", r.RemoteAddr)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var in inboundMessage
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			logger.Warningf("Error decoding webhook payload: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		msg := models.Message{Sender: in.From, Recipient: in.To, Subject: in.Subject, Body: in.Body}
		if msg.IsEmpty() {
			// Nothing to do, keep the logs clean.
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if err := handler.HandleIncoming(msg, false); err != nil {
			logger.Errorf("Error handling incoming message: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})

	if cfg.Gateway.DebugPath != "" {
		mux.HandleFunc(cfg.Gateway.DebugPath, func(w http.ResponseWriter, r *http.Request) {
			logger.Infof("Debug endpoint accessed: %s %s", r.Method, r.URL.Path)

			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)

			response := "SMS wall webhook server is running\n\n"
			response += fmt.Sprintf("Webhook path: %s\n", cfg.Gateway.WebhookPath)
			response += fmt.Sprintf("Application number: %s\n", cfg.Wall.AppNumber)
			response += fmt.Sprintf("Uptime: %s\n", time.Since(startedAt).Round(time.Second))

			w.Write([]byte(response))
		})
	}

	return &Server{
		server: &http.Server{
			Addr:    "0.0.0.0:" + cfg.Gateway.ListenPort,
			Handler: mux,
		},
		certFile: cfg.Gateway.CertFile,
		keyFile:  cfg.Gateway.KeyFile,
	}
}

// Start starts the webhook server
func (s *Server) Start() error {
	logger.Infof("Starting HTTP server on %s", s.server.Addr)

	if s.certFile != "" && s.keyFile != "" {
		logger.Infof("Using TLS with cert: %s, key: %s", s.certFile, s.keyFile)
		return s.server.ListenAndServeTLS(s.certFile, s.keyFile)
	}

	logger.Infof("WARNING: Running without TLS. Make sure you have a HTTPS proxy in front of this server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
