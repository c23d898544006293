package handlers

import (
	"net/http"
	"strconv"

	"github.com/benvon/devotional/internal/restoration"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// PlanHandler serves the seven-day restoration plan
type PlanHandler struct {
	sessions Sessions
	logger   *zap.Logger
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(sessions Sessions, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{sessions: sessions, logger: logger}
}

// RegisterRoutes registers plan routes
func (h *PlanHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/plan/areas", h.ListAreas).Methods("GET")
	r.HandleFunc("/plan", h.GetPlan).Methods("GET")
	r.HandleFunc("/plan", h.StartPlan).Methods("POST")
	r.HandleFunc("/plan/days/{index:[0-9]+}/toggle", h.ToggleDay).Methods("POST")
}

// StartPlanRequest selects the areas the plan focuses on
type StartPlanRequest struct {
	Areas []string `json:"areas" validate:"required,min=1,dive,restoration_area"`
}

// ListAreas returns the selectable areas
func (h *PlanHandler) ListAreas(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, restoration.Areas)
}

// GetPlan returns the plan with locked days redacted
func (h *PlanHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	s := deviceSession(w, r, h.sessions)
	if s == nil {
		return
	}
	view, err := s.Plan(r.Context())
	if err != nil {
		respondDomainError(w, h.logger, "get_plan", err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// StartPlan generates and stores a plan for the selected areas
func (h *PlanHandler) StartPlan(w http.ResponseWriter, r *http.Request) {
	s := deviceSession(w, r, h.sessions)
	if s == nil {
		return
	}

	var req StartPlanRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	view, err := s.StartPlan(r.Context(), req.Areas)
	if err != nil {
		respondDomainError(w, h.logger, "start_plan", err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

// ToggleDay flips the completion of the day at the 0-based index. Locked
// days answer 403.
func (h *PlanHandler) ToggleDay(w http.ResponseWriter, r *http.Request) {
	s := deviceSession(w, r, h.sessions)
	if s == nil {
		return
	}
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid day index")
		return
	}
	out, err := s.TogglePlanDay(r.Context(), index)
	if err != nil {
		respondDomainError(w, h.logger, "toggle_plan_day", err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}
