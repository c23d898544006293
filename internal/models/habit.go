package models

// HabitType classifies a daily habit
type HabitType string

const (
	HabitTypePrayer  HabitType = "prayer"
	HabitTypeReading HabitType = "reading"
	HabitTypeFasting HabitType = "fasting"
	HabitTypeOther   HabitType = "other"
)

// Habit is a session-local daily goal. Habits are never persisted.
type Habit struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	Type      HabitType `json:"type"`
}
