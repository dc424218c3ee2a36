// Package web exposes the review session over a small JSON API so the
// workflow can be driven from a browser or any HTTP client.
package web

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/bkyoung/pr-guardian/internal/domain"
	"github.com/bkyoung/pr-guardian/internal/store"
)

// Manager is the slice of the session manager the web shell drives.
type Manager interface {
	Session() domain.ReviewSession
	Submit(ctx context.Context, rawURL string) (domain.ReviewSession, error)
	Approve(ctx context.Context) (domain.ReviewSession, error)
	Reject() (domain.ReviewSession, error)
}

// Server serves the session API.
type Server struct {
	log     zerolog.Logger
	manager Manager
	history store.Store
}

// NewServer creates a Server. The history store is optional; when nil the
// history endpoint reports persistence as disabled.
func NewServer(logger zerolog.Logger, manager Manager, history store.Store) *Server {
	return &Server{log: logger, manager: manager, history: history}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.healthHandler)
	mux.Handle("/api/session", s.loggingMiddleware(http.HandlerFunc(s.sessionHandler)))
	mux.Handle("/api/session/approve", s.loggingMiddleware(http.HandlerFunc(s.approveHandler)))
	mux.Handle("/api/session/reject", s.loggingMiddleware(http.HandlerFunc(s.rejectHandler)))
	mux.Handle("/api/history", s.loggingMiddleware(http.HandlerFunc(s.historyHandler)))
	return mux
}

// ListenAndServe starts the server on addr and blocks until it exits.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info().Str("addr", addr).Msg("starting web shell")
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("incoming request")
		next.ServeHTTP(w, r)
	})
}
