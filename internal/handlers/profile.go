package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ProfileHandler serves the profile and the day's habits
type ProfileHandler struct {
	sessions Sessions
	logger   *zap.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(sessions Sessions, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{sessions: sessions, logger: logger}
}

// RegisterRoutes registers profile and habit routes
func (h *ProfileHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/profile", h.GetProfile).Methods("GET")
	r.HandleFunc("/habits", h.ListHabits).Methods("GET")
	r.HandleFunc("/habits/{id}/toggle", h.ToggleHabit).Methods("POST")
}

// GetProfile returns the profile with its level, percentages and plan summary
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	s := deviceSession(w, r, h.sessions)
	if s == nil {
		return
	}
	view, err := s.View(r.Context())
	if err != nil {
		respondDomainError(w, h.logger, "get_profile", err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// ListHabits returns today's habits
func (h *ProfileHandler) ListHabits(w http.ResponseWriter, r *http.Request) {
	s := deviceSession(w, r, h.sessions)
	if s == nil {
		return
	}
	list, err := s.Habits(r.Context())
	if err != nil {
		respondDomainError(w, h.logger, "list_habits", err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// ToggleHabit flips one habit; completing it credits intimacy
func (h *ProfileHandler) ToggleHabit(w http.ResponseWriter, r *http.Request) {
	s := deviceSession(w, r, h.sessions)
	if s == nil {
		return
	}
	id := mux.Vars(r)["id"]
	out, err := s.ToggleHabit(r.Context(), id)
	if err != nil {
		respondDomainError(w, h.logger, "toggle_habit", err)
		return
	}
	if !out.Transition.Found {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Habit not found")
		return
	}
	respondJSON(w, http.StatusOK, out)
}
