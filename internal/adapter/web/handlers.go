package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bkyoung/pr-guardian/internal/store"
	"github.com/bkyoung/pr-guardian/internal/usecase/session"
)

type submitRequest struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// sessionHandler serves the current session state on GET and starts a new
// review on POST.
func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.respondJSON(w, http.StatusOK, s.manager.Session())
	case http.MethodPost:
		s.submitHandler(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) submitHandler(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Error().Err(err).Msg("failed to decode submit payload")
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		s.respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	// Submit blocks through analysis; a malformed URL or a failed run still
	// returns 200 with the session in the Failed stage.
	state, err := s.manager.Submit(r.Context(), req.URL)
	if err != nil {
		s.respondManagerError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, state)
}

func (s *Server) approveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	state, err := s.manager.Approve(r.Context())
	if err != nil {
		s.respondManagerError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, state)
}

func (s *Server) rejectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	state, err := s.manager.Reject()
	if err != nil {
		s.respondManagerError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, state)
}

// historyHandler lists recorded sessions, newest first.
func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.history == nil {
		s.respondError(w, http.StatusNotFound, "session history is disabled")
		return
	}

	records, err := s.history.ListSessions(r.Context(), 50)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list sessions")
		s.respondError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if records == nil {
		records = []store.SessionRecord{}
	}
	s.respondJSON(w, http.StatusOK, records)
}

func (s *Server) respondManagerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionBusy):
		s.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrNoPendingDraft):
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.log.Error().Err(err).Msg("session operation failed")
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Error: message})
}
