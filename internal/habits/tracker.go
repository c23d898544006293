// Package habits manages the session-local list of daily habits.
package habits

import (
	"slices"

	"github.com/benvon/devotional/internal/models"
)

// Defaults returns the seed list every new session starts with
func Defaults() []models.Habit {
	return []models.Habit{
		{ID: "1", Title: "Ler o Salmo 23 em voz alta", Type: models.HabitTypeReading},
		{ID: "2", Title: "Orar 2 min por sua família", Type: models.HabitTypePrayer},
		{ID: "3", Title: "Agradecer por 3 coisas simples", Type: models.HabitTypeOther},
	}
}

// Transition describes the outcome of a toggle
type Transition struct {
	Found     bool
	Completed bool
}

// Completing reports whether the toggle moved a habit from incomplete to complete
func (t Transition) Completing() bool {
	return t.Found && t.Completed
}

// Toggle flips the habit with id and returns a new list. An unknown id leaves
// the list unchanged.
func Toggle(list []models.Habit, id string) ([]models.Habit, Transition) {
	idx := slices.IndexFunc(list, func(h models.Habit) bool { return h.ID == id })
	if idx < 0 {
		return list, Transition{}
	}
	out := slices.Clone(list)
	out[idx].Completed = !out[idx].Completed
	return out, Transition{Found: true, Completed: out[idx].Completed}
}

// CompletedCount counts finished habits
func CompletedCount(list []models.Habit) int {
	n := 0
	for _, h := range list {
		if h.Completed {
			n++
		}
	}
	return n
}
