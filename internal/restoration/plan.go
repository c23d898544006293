// Package restoration implements the seven-day restoration plan: area
// selection, time-gated unlocking and day completion.
package restoration

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/benvon/devotional/internal/models"
)

var (
	ErrEmptySelection = errors.New("at least one area must be selected")
	ErrUnknownArea    = errors.New("unknown restoration area")
	ErrDayOutOfRange  = errors.New("plan day out of range")
	ErrDayLocked      = errors.New("plan day is still locked")
)

const day = 24 * time.Hour

// Areas is the fixed catalog of areas a plan can focus on
var Areas = []string{
	"Ansiedade",
	"Vício",
	"Vida de Oração",
	"Casamento",
	"Identidade",
	"Perdão",
	"Esperança",
}

// IsArea reports whether name belongs to the catalog
func IsArea(name string) bool {
	return slices.Contains(Areas, name)
}

// ValidateSelection checks a selection against the catalog and returns it
// without duplicates, preserving the order the user picked.
func ValidateSelection(selected []string) ([]string, error) {
	if len(selected) == 0 {
		return nil, ErrEmptySelection
	}
	out := make([]string, 0, len(selected))
	for _, a := range selected {
		if !IsArea(a) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownArea, a)
		}
		if !slices.Contains(out, a) {
			out = append(out, a)
		}
	}
	return out, nil
}

// NewPlan attaches generated content to a fresh, active plan starting at now.
// Day numbers follow position and every day starts incomplete.
func NewPlan(areas []string, content models.PlanContent, now time.Time) models.RestorationPlan {
	days := make([]models.PlanDay, len(content.Days))
	for i, d := range content.Days {
		d.Day = i + 1
		d.Completed = false
		days[i] = d
	}
	return models.RestorationPlan{
		Active:    true,
		StartDate: now,
		Areas:     slices.Clone(areas),
		Days:      days,
	}
}

// DaysPassed is the number of started 24h periods since start, at least 1.
// It uses absolute elapsed time so a skewed clock never locks day 1.
func DaysPassed(start, now time.Time) int {
	elapsed := now.Sub(start)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	n := int(math.Ceil(float64(elapsed) / float64(day)))
	return max(1, n)
}

// IsUnlocked reports whether 1-based day n is available at now
func IsUnlocked(plan models.RestorationPlan, n int, now time.Time) bool {
	return n >= 1 && n <= DaysPassed(plan.StartDate, now)
}

// ToggleResult reports the effect of a toggle
type ToggleResult struct {
	Completed    bool `json:"completed"`
	PlanFinished bool `json:"plan_finished"`
}

// ToggleDay flips the completion of the day at 0-based index. Locked days
// are rejected. PlanFinished is set when this toggle completed the last
// remaining day.
func ToggleDay(plan models.RestorationPlan, index int, now time.Time) (models.RestorationPlan, ToggleResult, error) {
	if index < 0 || index >= len(plan.Days) {
		return plan, ToggleResult{}, fmt.Errorf("%w: %d", ErrDayOutOfRange, index)
	}
	if !IsUnlocked(plan, plan.Days[index].Day, now) {
		return plan, ToggleResult{}, fmt.Errorf("%w: day %d", ErrDayLocked, plan.Days[index].Day)
	}

	out := plan.Clone()
	out.Days[index].Completed = !out.Days[index].Completed
	completing := out.Days[index].Completed
	return out, ToggleResult{
		Completed:    completing,
		PlanFinished: completing && IsComplete(out),
	}, nil
}

// CompletedDays counts finished days
func CompletedDays(plan models.RestorationPlan) int {
	n := 0
	for _, d := range plan.Days {
		if d.Completed {
			n++
		}
	}
	return n
}

// Progress is round(100 * completed / 7)
func Progress(plan models.RestorationPlan) int {
	if len(plan.Days) == 0 {
		return 0
	}
	return int(math.Round(100 * float64(CompletedDays(plan)) / float64(len(plan.Days))))
}

// IsComplete reports whether every day is done
func IsComplete(plan models.RestorationPlan) bool {
	return len(plan.Days) > 0 && CompletedDays(plan) == len(plan.Days)
}

// DayView is a plan day as shown to the user. Locked days keep their title
// but hide content and task.
type DayView struct {
	Day       int    `json:"day"`
	Title     string `json:"title"`
	Content   string `json:"content,omitempty"`
	Task      string `json:"task,omitempty"`
	Completed bool   `json:"completed"`
	Locked    bool   `json:"locked"`
}

// View is the presentation of a plan at a point in time
type View struct {
	Active     bool      `json:"active"`
	StartDate  time.Time `json:"start_date"`
	Areas      []string  `json:"areas"`
	DaysPassed int       `json:"days_passed"`
	Progress   int       `json:"progress"`
	Complete   bool      `json:"complete"`
	Days       []DayView `json:"days"`
}

// NewView renders plan at now
func NewView(plan models.RestorationPlan, now time.Time) View {
	passed := DaysPassed(plan.StartDate, now)
	days := make([]DayView, len(plan.Days))
	for i, d := range plan.Days {
		v := DayView{Day: d.Day, Title: d.Title, Completed: d.Completed, Locked: d.Day > passed}
		if !v.Locked {
			v.Content = d.Content
			v.Task = d.Task
		}
		days[i] = v
	}
	return View{
		Active:     plan.Active,
		StartDate:  plan.StartDate,
		Areas:      slices.Clone(plan.Areas),
		DaysPassed: passed,
		Progress:   Progress(plan),
		Complete:   IsComplete(plan),
		Days:       days,
	}
}
