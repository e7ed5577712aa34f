// Package server exposes the query pipeline over HTTP and websocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/raphaelgruber/recall-go/internal/chatbot"
	"github.com/raphaelgruber/recall-go/internal/models"
)

// genericFailure is what callers see when a pipeline stage fails.
// Internal error detail stays in the logs.
const genericFailure = "could not generate a response"

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	UserID string `json:"user_id"`
	Input  string `json:"input"`
}

// QueryResponse is the reply for a successful query.
type QueryResponse struct {
	NaturalResponse string             `json:"natural_response"`
	Results         []models.Reference `json:"results"`
}

// ErrorResponse carries a caller-safe error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server wraps the HTTP server with lifecycle management.
type Server struct {
	http    *http.Server
	manager *chatbot.Manager
	logger  *slog.Logger
}

// New creates a server listening on the given port.
func New(port string, manager *chatbot.Manager, logger *slog.Logger) *Server {
	s := &Server{manager: manager, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/query", s.handleQuery)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleChat)

	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           LoggingMiddleware(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the configured handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run starts serving and blocks until the context is cancelled or the
// listener fails.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down server")
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	pipeline, err := s.manager.GetOrCreate(strings.TrimSpace(req.UserID))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := pipeline.Query(r.Context(), req.Input)
	if err != nil {
		s.writeQueryError(w, req.UserID, err)
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{
		NaturalResponse: result.NaturalResponse,
		Results:         result.References,
	})
}

// writeQueryError maps pipeline failures to caller responses. Usage
// errors keep their message; remote failures collapse to the generic one.
func (s *Server) writeQueryError(w http.ResponseWriter, userID string, err error) {
	switch {
	case errors.Is(err, chatbot.ErrEmptyInput), errors.Is(err, chatbot.ErrInvalidUserID):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, chatbot.ErrUnknownUser):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	default:
		s.logger.Error("query failed", "user_id", userID, "error", err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: genericFailure})
	}
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.Metrics().Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
