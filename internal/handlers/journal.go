package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/benvon/devotional/internal/database"
	"github.com/benvon/devotional/internal/models"
	"github.com/benvon/devotional/internal/queue"
	"github.com/benvon/devotional/internal/request"
	"github.com/benvon/devotional/internal/services/ai"
	"github.com/benvon/devotional/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ContentService is the part of the gateway the content routes use
type ContentService interface {
	ExplainVerse(ctx context.Context, verse string) models.VerseExplanation
	JournalReflection(ctx context.Context, entry string) string
}

// JournalStore is the journal persistence the handler needs
type JournalStore interface {
	List(ctx context.Context, key string) ([]models.JournalEntry, error)
	Append(ctx context.Context, key string, entry models.JournalEntry) error
	SetReflection(ctx context.Context, key, id, reflection string) error
}

// JournalHandler handles journal entries and verse explanations
type JournalHandler struct {
	journal   JournalStore
	content   ContentService
	publisher queue.Publisher
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewJournalHandler creates a new journal handler. With a nil publisher
// reflections are generated inline.
func NewJournalHandler(journal JournalStore, content ContentService, publisher queue.Publisher, loc *time.Location, logger *zap.Logger) *JournalHandler {
	if loc == nil {
		loc = time.Local
	}
	return &JournalHandler{
		journal:   journal,
		content:   content,
		publisher: publisher,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

// RegisterRoutes registers journal and verse routes
func (h *JournalHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/journal", h.ListEntries).Methods("GET")
	r.HandleFunc("/journal", h.CreateEntry).Methods("POST")
	r.HandleFunc("/verses/explain", h.ExplainVerse).Methods("POST")
}

// CreateJournalEntryRequest represents a new journal entry
type CreateJournalEntryRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
	Type    string `json:"type,omitempty" validate:"omitempty,journal_type"`
}

// ExplainVerseRequest names the verse to explain
type ExplainVerseRequest struct {
	Verse string `json:"verse" validate:"required,max=500"`
}

// ListEntries returns the device's entries, newest first
func (h *JournalHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	key := database.ProfileKey(request.DeviceIDFromContext(r))
	entries, err := h.journal.List(r.Context(), key)
	if err != nil {
		h.logger.Error("list_journal_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to list journal entries")
		return
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

// CreateEntry stores an entry and arranges its reflection: queued when a
// publisher is configured, inline otherwise. Empty reflections are not stored.
func (h *JournalHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	deviceID := request.DeviceIDFromContext(r)

	var req CreateJournalEntryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	content := validation.SanitizeText(req.Content)
	if content == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Entry content is required")
		return
	}

	ctx := r.Context()
	key := database.ProfileKey(deviceID)
	entry := models.NewJournalEntry(content, models.JournalType(req.Type), h.now().In(h.loc))
	if err := h.journal.Append(ctx, key, entry); err != nil {
		h.logger.Error("create_journal_entry_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save journal entry")
		return
	}

	if h.publisher != nil {
		job := queue.NewJournalReflectionJob(deviceID, entry.ID)
		err := h.publisher.Enqueue(ctx, job)
		if err == nil {
			respondJSON(w, http.StatusCreated, entry)
			return
		}
		h.logger.Warn("reflection_enqueue_failed", zap.Error(err), zap.String("entry_id", entry.ID))
	}

	if reflection := h.content.JournalReflection(ctx, entry.Content); reflection != "" {
		if err := h.journal.SetReflection(ctx, key, entry.ID, reflection); err != nil {
			h.logger.Warn("store_reflection_failed",
				zap.Error(err),
				zap.String("entry_id", entry.ID),
				zap.String("device", ai.HashDeviceID(deviceID)),
			)
		} else {
			entry.Reflection = reflection
		}
	}
	respondJSON(w, http.StatusCreated, entry)
}

// ExplainVerse returns the four-part explanation of a verse
func (h *JournalHandler) ExplainVerse(w http.ResponseWriter, r *http.Request) {
	var req ExplainVerseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	verse := validation.SanitizeText(req.Verse)
	if verse == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Verse is required")
		return
	}
	respondJSON(w, http.StatusOK, h.content.ExplainVerse(r.Context(), verse))
}
