package handlers

import (
	"net/http"

	"github.com/benvon/devotional/internal/onboarding"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// OnboardingHandler serves the first-run questionnaire
type OnboardingHandler struct {
	sessions Sessions
	logger   *zap.Logger
}

// NewOnboardingHandler creates a new onboarding handler
func NewOnboardingHandler(sessions Sessions, logger *zap.Logger) *OnboardingHandler {
	return &OnboardingHandler{sessions: sessions, logger: logger}
}

// RegisterRoutes registers onboarding routes
func (h *OnboardingHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/onboarding/steps", h.ListSteps).Methods("GET")
	r.HandleFunc("/onboarding", h.Complete).Methods("POST")
}

// OnboardingRequest carries the answers to the questionnaire. Unanswered
// steps take their defaults.
type OnboardingRequest struct {
	Answers []onboarding.Answer `json:"answers" validate:"dive"`
}

// ListSteps returns the questionnaire in display order
func (h *OnboardingHandler) ListSteps(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, onboarding.Steps())
}

// Complete builds and stores the profile from the answers
func (h *OnboardingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	s := deviceSession(w, r, h.sessions)
	if s == nil {
		return
	}

	var req OnboardingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := s.Onboard(r.Context(), req.Answers)
	if err != nil {
		respondDomainError(w, h.logger, "complete_onboarding", err)
		return
	}
	respondJSON(w, http.StatusCreated, profile)
}
