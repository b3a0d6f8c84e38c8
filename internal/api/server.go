// Package api exposes the HTTP interface for the submission service.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quaydigital/searchping/internal/indexing"
	"github.com/quaydigital/searchping/internal/pipeline"
	"github.com/quaydigital/searchping/internal/telemetry"
)

// Shopify webhook headers.
const (
	headerTopic = "X-Shopify-Topic"
	headerHMAC  = "X-Shopify-Hmac-Sha256"
)

// maxBodyBytes bounds the webhook body read. Shopify payloads are
// small; anything larger is hostile.
const maxBodyBytes = 1 << 20

// Server wires HTTP handlers to the submission pipeline.
type Server struct {
	router   chi.Router
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(pl *pipeline.Pipeline, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{pipeline: pl, logger: logger}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(telemetry.Middleware)
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", telemetry.Handler())
	r.Post("/webhooks/shopify", s.handleWebhook)

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// Provider calls are outbound-only; readiness equals liveness.
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleWebhook runs one inbound change event through the pipeline.
// The upstream source sees exactly three outcomes: 200, 401, or 500,
// as plain text.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeText(w, http.StatusInternalServerError, "error")
		return
	}

	event := indexing.ChangeEvent{
		Topic:     indexing.Topic(r.Header.Get(headerTopic)),
		RawBody:   body,
		Signature: r.Header.Get(headerHMAC),
	}
	result := s.pipeline.Handle(r.Context(), event)

	switch result.Outcome {
	case pipeline.OutcomeSuccess:
		s.writeText(w, http.StatusOK, "ok")
	case pipeline.OutcomeUnauthenticated:
		s.writeText(w, http.StatusUnauthorized, "unauthorized")
	default:
		s.writeText(w, http.StatusInternalServerError, "error")
	}
}

func (s *Server) writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(msg)); err != nil {
		s.logger.Error("write response failed", zap.Error(err))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("panic", rec))
				s.writeText(w, http.StatusInternalServerError, "error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
