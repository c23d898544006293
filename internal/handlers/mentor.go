package handlers

import (
	"context"
	"net/http"

	"github.com/benvon/devotional/internal/models"
	"github.com/benvon/devotional/internal/request"
	"github.com/benvon/devotional/internal/validation"
	"github.com/gorilla/mux"
)

// MentorChat keeps the per-device mentor conversations
type MentorChat interface {
	History(deviceID string) []models.ChatMessage
	Send(ctx context.Context, deviceID, text string) models.ChatMessage
	CloseSession(deviceID string)
}

// MentorHandler handles mentor chat requests
type MentorHandler struct {
	chat MentorChat
}

// NewMentorHandler creates a new mentor handler
func NewMentorHandler(chat MentorChat) *MentorHandler {
	return &MentorHandler{chat: chat}
}

// RegisterRoutes registers mentor routes
func (h *MentorHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/mentor/messages", h.ListMessages).Methods("GET")
	r.HandleFunc("/mentor/messages", h.SendMessage).Methods("POST")
	r.HandleFunc("/mentor", h.EndConversation).Methods("DELETE")
}

// MentorMessageRequest represents a mentor chat message
type MentorMessageRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

// ListMessages returns the conversation, opening it with the greeting
func (h *MentorHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	deviceID := request.DeviceIDFromContext(r)
	respondJSON(w, http.StatusOK, h.chat.History(deviceID))
}

// SendMessage appends the user's message and returns the mentor's reply.
// The reply is always present; failures come back as in-character text.
func (h *MentorHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	deviceID := request.DeviceIDFromContext(r)

	var req MentorMessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	text := validation.SanitizeText(req.Text)
	if text == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Message text is required")
		return
	}

	respondJSON(w, http.StatusOK, h.chat.Send(r.Context(), deviceID, text))
}

// EndConversation discards the conversation
func (h *MentorHandler) EndConversation(w http.ResponseWriter, r *http.Request) {
	h.chat.CloseSession(request.DeviceIDFromContext(r))
	w.WriteHeader(http.StatusNoContent)
}
