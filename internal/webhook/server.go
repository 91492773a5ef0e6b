// Package webhook exposes the HTTP surface of the agent: the signed
// webhook endpoint and the liveness endpoints.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/zavodil/pr-description-agent/internal/event"
	"github.com/zavodil/pr-description-agent/internal/logging"
)

const version = "0.1.0"

// Response statuses returned to the webhook caller
const (
	StatusCommentProcessed = "comment_processed"
	StatusAutoGenerated    = "pr_auto_generated"
	StatusIgnored          = "ignored"
)

// Processor runs the business workflow for an actionable event and reports
// success as a boolean; it never faults past this boundary.
type Processor interface {
	ProcessCommentCommand(ctx context.Context, ev *event.Event) bool
	ProcessOpenedPullRequest(ctx context.Context, ev *event.Event) bool
}

// Server handles inbound webhook requests
type Server struct {
	port      int
	secret    string
	processor Processor
	server    *http.Server
}

// NewServer creates a new webhook server
func NewServer(port int, secret string, processor Processor) *Server {
	return &Server{
		port:      port,
		secret:    secret,
		processor: processor,
	}
}

// Handler returns the HTTP handler serving the webhook and health routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.handleWebhook)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleRoot)
	return mux
}

// Start runs the server until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	errChan := make(chan error, 1)
	go func() {
		logging.Info("Starting webhook server", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	logging.Info("Shutting down webhook server")
	return s.server.Shutdown(ctx)
}

// handleWebhook authenticates, classifies and dispatches one delivery
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		logging.Error("Failed to read request body", "error", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get("X-Hub-Signature-256")
	if !VerifySignature(payload, signature, s.secret) {
		logging.Warn("Invalid webhook signature")
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	ev, err := event.Parse(payload)
	if err != nil {
		logging.Error("Failed to parse webhook payload", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	switch event.Classify(ev) {
	case event.IntentCommentCommand:
		if decision := event.AuthorizeCommand(ev); !decision.Allowed {
			logging.Info("Ignoring unauthorized command", "reason", decision.Reason)
			s.writeIgnored(w)
			return
		}
		success := s.processor.ProcessCommentCommand(ctx, ev)
		s.writeResult(w, StatusCommentProcessed, success)

	case event.IntentAutoGenerate:
		success := s.processor.ProcessOpenedPullRequest(ctx, ev)
		s.writeResult(w, StatusAutoGenerated, success)

	default:
		s.writeIgnored(w)
	}
}

// handleRoot serves the liveness banner
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "AI PR description agent is running",
		"version": version,
	})
}

// handleHealth serves the readiness check
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "pr-description-agent",
		"version": version,
	})
}

func (s *Server) writeResult(w http.ResponseWriter, status string, success bool) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"success": success,
	})
}

func (s *Server) writeIgnored(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": StatusIgnored,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("Failed to encode response", "error", err)
	}
}
