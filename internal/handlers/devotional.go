package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// DevotionalHandler drives the daily devotional cycle
type DevotionalHandler struct {
	sessions Sessions
	logger   *zap.Logger
}

// NewDevotionalHandler creates a new devotional handler
func NewDevotionalHandler(sessions Sessions, logger *zap.Logger) *DevotionalHandler {
	return &DevotionalHandler{sessions: sessions, logger: logger}
}

// RegisterRoutes registers devotional routes
func (h *DevotionalHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/devotional", h.GetState).Methods("GET")
	r.HandleFunc("/devotional/open", h.Open).Methods("POST")
	r.HandleFunc("/devotional/complete", h.Complete).Methods("POST")
	r.HandleFunc("/devotional/close", h.Close).Methods("POST")
}

// DevotionalStateResponse reports where today's devotional stands
type DevotionalStateResponse struct {
	State string `json:"state"`
}

// GetState returns today's cycle state
func (h *DevotionalHandler) GetState(w http.ResponseWriter, r *http.Request) {
	s := deviceSession(w, r, h.sessions)
	if s == nil {
		return
	}
	st, err := s.DevotionalState(r.Context())
	if err != nil {
		respondDomainError(w, h.logger, "get_devotional_state", err)
		return
	}
	respondJSON(w, http.StatusOK, DevotionalStateResponse{State: string(st)})
}

// Open returns today's devotional, generating it if needed. Responds 409
// once today's devotional is done.
func (h *DevotionalHandler) Open(w http.ResponseWriter, r *http.Request) {
	s := deviceSession(w, r, h.sessions)
	if s == nil {
		return
	}
	d, err := s.OpenDevotional(r.Context())
	if err != nil {
		respondDomainError(w, h.logger, "open_devotional", err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

// Complete credits the devotional being viewed and returns the new stats
func (h *DevotionalHandler) Complete(w http.ResponseWriter, r *http.Request) {
	s := deviceSession(w, r, h.sessions)
	if s == nil {
		return
	}
	stats, err := s.CompleteDevotional(r.Context())
	if err != nil {
		respondDomainError(w, h.logger, "complete_devotional", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Close dismisses the devotional view
func (h *DevotionalHandler) Close(w http.ResponseWriter, r *http.Request) {
	s := deviceSession(w, r, h.sessions)
	if s == nil {
		return
	}
	if err := s.CloseDevotional(r.Context()); err != nil {
		respondDomainError(w, h.logger, "close_devotional", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
