package models

import (
	"time"

	"github.com/google/uuid"
)

// JournalType classifies a journal entry
type JournalType string

const (
	JournalTypeVoice     JournalType = "voice"
	JournalTypePrayer    JournalType = "prayer"
	JournalTypeGratitude JournalType = "gratitude"
)

// journalDateLayout renders entry dates the way the app displays them (dd/mm/yyyy)
const journalDateLayout = "02/01/2006"

// JournalEntry is an append-only journal record
type JournalEntry struct {
	ID         string      `json:"id"`
	Date       string      `json:"date"`
	Content    string      `json:"content"`
	Type       JournalType `json:"type"`
	Reflection string      `json:"reflection,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewJournalEntry builds an entry stamped at now. The ID is time-ordered.
func NewJournalEntry(content string, entryType JournalType, now time.Time) JournalEntry {
	if entryType == "" {
		entryType = JournalTypePrayer
	}
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return JournalEntry{
		ID:        id.String(),
		Date:      now.Format(journalDateLayout),
		Content:   content,
		Type:      entryType,
		CreatedAt: now,
	}
}
