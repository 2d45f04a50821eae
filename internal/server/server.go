// Package server implements the HTTP front door: the hosting platform's
// health-check endpoints and, in webhook mode, the Telegram webhook route.
// Health endpoints are served independently of the bot and AI state so the
// platform can always observe process liveness.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/mraprguild/guildbot/internal/config"
	"github.com/mraprguild/guildbot/internal/health"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the net/http server and its routes.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	monitor    *health.Monitor
	env        string
}

// New creates the HTTP server. webhookHandler is mounted at /webhook when
// non-nil; in polling mode pass nil and the route is not registered.
func New(cfg *config.Config, logger *slog.Logger, monitor *health.Monitor, webhookHandler http.Handler) *Server {
	s := &Server{
		logger:  logger.With("component", "http_server"),
		monitor: monitor,
		env:     cfg.Environment,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ping", s.handlePing)
	mux.HandleFunc("/ready", s.handleReady)
	if webhookHandler != nil {
		mux.Handle("/webhook", webhookHandler)
	}

	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the route multiplexer, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		s.logger.Info("HTTP server stopped gracefully.")
		return nil
	}
}

// handleHealth always reports 200 while the process is alive, regardless of
// bot or AI state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	aiConnected, aiCheckedAt := s.monitor.AIStatus()

	body := map[string]any{
		"status":      "ok",
		"environment": s.env,
		"uptime":      s.monitor.Uptime().Round(time.Second).String(),
		"ai": map[string]any{
			"connected": aiConnected,
			"checked":   formatProbeTime(aiCheckedAt),
		},
	}
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		s.logger.Warn("Failed to write ping response", "error", err)
	}
}

// handleReady reports 503 until startup completes. The AI probe state is
// included as information only; a failing AI call never turns readiness off.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	aiConnected, aiCheckedAt := s.monitor.AIStatus()

	status := http.StatusOK
	state := "ready"
	if !s.monitor.Ready() {
		status = http.StatusServiceUnavailable
		state = "starting"
	}

	body := map[string]any{
		"status": state,
		"ai": map[string]any{
			"connected": aiConnected,
			"checked":   formatProbeTime(aiCheckedAt),
		},
	}
	s.writeJSON(w, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("Failed to encode response body", "error", err)
	}
}

func formatProbeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.UTC().Format(time.RFC3339)
}
