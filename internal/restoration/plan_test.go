package restoration

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/benvon/devotional/internal/models"
)

var start = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func sevenDays() models.PlanContent {
	days := make([]models.PlanDay, models.PlanLength)
	for i := range days {
		days[i] = models.PlanDay{
			Day:       99,
			Title:     fmt.Sprintf("Dia %d", i+1),
			Content:   "conteúdo",
			Task:      "tarefa",
			Completed: true,
		}
	}
	return models.PlanContent{Days: days}
}

func TestValidateSelection(t *testing.T) {
	t.Parallel()

	if _, err := ValidateSelection(nil); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("empty selection err = %v", err)
	}
	if _, err := ValidateSelection([]string{"Ansiedade", "Finanças"}); !errors.Is(err, ErrUnknownArea) {
		t.Errorf("unknown area err = %v", err)
	}

	got, err := ValidateSelection([]string{"Perdão", "Ansiedade", "Perdão"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "Perdão" || got[1] != "Ansiedade" {
		t.Errorf("ValidateSelection = %v", got)
	}
}

func TestNewPlan_Normalizes(t *testing.T) {
	t.Parallel()

	plan := NewPlan([]string{"Esperança"}, sevenDays(), start)

	if !plan.Active {
		t.Error("plan should be active")
	}
	if !plan.StartDate.Equal(start) {
		t.Errorf("StartDate = %v", plan.StartDate)
	}
	for i, d := range plan.Days {
		if d.Day != i+1 {
			t.Errorf("day %d numbered %d", i, d.Day)
		}
		if d.Completed {
			t.Errorf("day %d should start incomplete", d.Day)
		}
	}
}

func TestDaysPassed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{"at creation", 0, 1},
		{"thirty minutes", 30 * time.Minute, 1},
		{"exactly one day", 24 * time.Hour, 1},
		{"twenty five hours", 25 * time.Hour, 2},
		{"six and a half days", 156 * time.Hour, 7},
		{"clock skew", -2 * time.Hour, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DaysPassed(start, start.Add(tt.elapsed)); got != tt.want {
				t.Errorf("DaysPassed = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsUnlocked_Boundaries(t *testing.T) {
	t.Parallel()

	plan := NewPlan([]string{"Identidade"}, sevenDays(), start)

	after25h := start.Add(25 * time.Hour)
	for n := 1; n <= 7; n++ {
		want := n <= 2
		if got := IsUnlocked(plan, n, after25h); got != want {
			t.Errorf("25h: IsUnlocked(%d) = %v, want %v", n, got, want)
		}
	}

	after30m := start.Add(30 * time.Minute)
	for n := 1; n <= 7; n++ {
		want := n == 1
		if got := IsUnlocked(plan, n, after30m); got != want {
			t.Errorf("30m: IsUnlocked(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestToggleDay(t *testing.T) {
	t.Parallel()

	plan := NewPlan([]string{"Perdão"}, sevenDays(), start)
	now := start.Add(time.Hour)

	if _, _, err := ToggleDay(plan, 1, now); !errors.Is(err, ErrDayLocked) {
		t.Errorf("locked day err = %v", err)
	}
	if _, _, err := ToggleDay(plan, 7, now); !errors.Is(err, ErrDayOutOfRange) {
		t.Errorf("out of range err = %v", err)
	}

	toggled, res, err := ToggleDay(plan, 0, now)
	if err != nil {
		t.Fatalf("ToggleDay: %v", err)
	}
	if !res.Completed || res.PlanFinished {
		t.Errorf("result = %+v", res)
	}
	if plan.Days[0].Completed {
		t.Error("input plan was mutated")
	}
	if toggled.StartDate != plan.StartDate || len(toggled.Areas) != 1 {
		t.Error("immutable fields changed")
	}

	back, res, err := ToggleDay(toggled, 0, now)
	if err != nil {
		t.Fatal(err)
	}
	if res.Completed || back.Days[0].Completed {
		t.Error("second toggle should un-complete the day")
	}
}

func TestToggleDay_FinishesPlan(t *testing.T) {
	t.Parallel()

	plan := NewPlan([]string{"Esperança"}, sevenDays(), start)
	now := start.Add(8 * 24 * time.Hour)

	var res ToggleResult
	var err error
	for i := range plan.Days {
		plan, res, err = ToggleDay(plan, i, now)
		if err != nil {
			t.Fatalf("day %d: %v", i+1, err)
		}
		if i < 6 && res.PlanFinished {
			t.Fatalf("plan reported finished at day %d", i+1)
		}
	}
	if !res.PlanFinished {
		t.Error("last toggle should report plan finished")
	}
	if !IsComplete(plan) || !plan.Active {
		t.Error("plan should be complete and still active")
	}
}

func TestProgress(t *testing.T) {
	t.Parallel()

	plan := NewPlan([]string{"Vício"}, sevenDays(), start)
	if got := Progress(plan); got != 0 {
		t.Errorf("Progress(0/7) = %d", got)
	}

	for i := 0; i < 3; i++ {
		plan.Days[i].Completed = true
	}
	if got := Progress(plan); got != 43 {
		t.Errorf("Progress(3/7) = %d, want 43", got)
	}

	for i := range plan.Days {
		plan.Days[i].Completed = true
	}
	if got := Progress(plan); got != 100 {
		t.Errorf("Progress(7/7) = %d, want 100", got)
	}
	if Progress(models.RestorationPlan{}) != 0 {
		t.Error("empty plan progress should be 0")
	}
}

func TestNewView_RedactsLockedDays(t *testing.T) {
	t.Parallel()

	plan := NewPlan([]string{"Casamento"}, sevenDays(), start)
	view := NewView(plan, start.Add(25*time.Hour))

	if view.DaysPassed != 2 {
		t.Errorf("DaysPassed = %d", view.DaysPassed)
	}
	for _, d := range view.Days {
		if d.Title == "" {
			t.Errorf("day %d title should stay visible", d.Day)
		}
		if d.Locked != (d.Day > 2) {
			t.Errorf("day %d locked = %v", d.Day, d.Locked)
		}
		if d.Locked && (d.Content != "" || d.Task != "") {
			t.Errorf("day %d leaks content while locked", d.Day)
		}
		if !d.Locked && d.Content == "" {
			t.Errorf("day %d should show content", d.Day)
		}
	}
}
