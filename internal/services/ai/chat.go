package ai

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/benvon/devotional/internal/models"
)

// Mentor is the subset of the Gateway the mentor service needs
type Mentor interface {
	MentorReply(ctx context.Context, history []models.ChatMessage, newMessage string) string
}

// MentorService keeps one in-memory mentor conversation per device.
// Conversations are never persisted.
type MentorService struct {
	mentor   Mentor
	now      func() time.Time
	sessions map[string]*ChatSession
	mu       sync.RWMutex // Protects concurrent access to sessions map
}

// ChatSession is one device's conversation
type ChatSession struct {
	DeviceID     string
	Messages     []models.ChatMessage
	CreatedAt    time.Time
	LastActivity time.Time

	mu sync.Mutex // serializes sends within the session
}

// NewMentorService creates a mentor service
func NewMentorService(mentor Mentor) *MentorService {
	return &MentorService{
		mentor:   mentor,
		now:      time.Now,
		sessions: make(map[string]*ChatSession),
	}
}

// GetOrCreateSession returns the device's session, opening it with the greeting
func (s *MentorService) GetOrCreateSession(deviceID string) *ChatSession {
	s.mu.RLock()
	if session, exists := s.sessions[deviceID]; exists {
		s.mu.RUnlock()
		return session
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have created it between the locks
	if session, exists := s.sessions[deviceID]; exists {
		return session
	}

	now := s.now()
	session := &ChatSession{
		DeviceID:     deviceID,
		Messages:     []models.ChatMessage{models.NewChatMessage(models.ChatRoleModel, MentorGreeting, now)},
		CreatedAt:    now,
		LastActivity: now,
	}
	s.sessions[deviceID] = session
	return session
}

// History returns a copy of the device's conversation
func (s *MentorService) History(deviceID string) []models.ChatMessage {
	session := s.GetOrCreateSession(deviceID)
	session.mu.Lock()
	defer session.mu.Unlock()
	return slices.Clone(session.Messages)
}

// Send appends the user's message, asks the mentor for a reply and appends it.
// The reply is always present because the mentor never fails.
func (s *MentorService) Send(ctx context.Context, deviceID, text string) models.ChatMessage {
	session := s.GetOrCreateSession(deviceID)
	session.mu.Lock()
	defer session.mu.Unlock()

	history := slices.Clone(session.Messages)
	sent := models.NewChatMessage(models.ChatRoleUser, text, s.now())
	session.Messages = append(session.Messages, sent)
	session.LastActivity = sent.Timestamp

	reply := models.NewChatMessage(models.ChatRoleModel, s.mentor.MentorReply(ctx, history, text), s.now())
	session.Messages = append(session.Messages, reply)
	session.LastActivity = reply.Timestamp
	return reply
}

// CloseSession discards the device's conversation
func (s *MentorService) CloseSession(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, deviceID)
}

// PruneIdle drops sessions inactive for longer than maxIdle and returns how
// many were removed. A session with a send in flight is never idle.
func (s *MentorService) PruneIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.RLock()
	candidates := make(map[string]*ChatSession, len(s.sessions))
	for id, session := range s.sessions {
		candidates[id] = session
	}
	s.mu.RUnlock()

	for id, session := range candidates {
		if !session.idleBefore(cutoff) {
			delete(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, session := range candidates {
		// Replaced, or picked up again since the scan
		if s.sessions[id] != session || !session.idleBefore(cutoff) {
			continue
		}
		delete(s.sessions, id)
		removed++
	}
	return removed
}

// idleBefore never blocks: a held lock means a send is in progress.
func (c *ChatSession) idleBefore(cutoff time.Time) bool {
	if !c.mu.TryLock() {
		return false
	}
	defer c.mu.Unlock()
	return c.LastActivity.Before(cutoff)
}
