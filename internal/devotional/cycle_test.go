package devotional

import (
	"errors"
	"testing"

	"github.com/benvon/devotional/internal/models"
)

const today = models.Date("2024-05-01")

func TestCycle_HappyPath(t *testing.T) {
	t.Parallel()

	var c Cycle
	if got := c.State(today); got != StateNotStarted {
		t.Fatalf("initial state = %s", got)
	}

	ticket := c.Open(today)
	if got := c.State(today); got != StateViewing {
		t.Fatalf("state after Open = %s", got)
	}
	if _, ok := c.Content(); ok {
		t.Error("content should be pending after Open")
	}

	if !c.Deliver(ticket, models.Devotional{Title: "Paz"}) {
		t.Fatal("Deliver rejected current ticket")
	}
	if d, ok := c.Content(); !ok || d.Title != "Paz" {
		t.Errorf("Content = %+v, %v", d, ok)
	}

	if err := c.Acknowledge(today); err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if got := c.State(today); got != StateCompleted {
		t.Errorf("state after Acknowledge = %s", got)
	}

	c.Close()
	if got := c.State(today); got != StateCompleted {
		t.Errorf("Close should keep Completed, got %s", got)
	}
}

func TestCycle_AcknowledgeRequiresViewing(t *testing.T) {
	t.Parallel()

	var c Cycle
	if err := c.Acknowledge(today); !errors.Is(err, ErrNotViewing) {
		t.Errorf("Acknowledge from NotStarted err = %v", err)
	}

	c.Open(today)
	c.Close()
	if got := c.State(today); got != StateNotStarted {
		t.Errorf("Close from Viewing = %s, want not_started", got)
	}
	if err := c.Acknowledge(today); !errors.Is(err, ErrNotViewing) {
		t.Errorf("Acknowledge after Close err = %v", err)
	}
}

func TestCycle_StaleDeliveryDiscarded(t *testing.T) {
	t.Parallel()

	var c Cycle
	first := c.Open(today)
	c.Close()
	second := c.Open(today)

	if c.Deliver(first, models.Devotional{Title: "velho"}) {
		t.Error("stale ticket should be rejected")
	}
	if !c.Deliver(second, models.Devotional{Title: "novo"}) {
		t.Error("current ticket should be accepted")
	}
	if d, _ := c.Content(); d.Title != "novo" {
		t.Errorf("Content = %s, want novo", d.Title)
	}

	c.Close()
	if c.Deliver(second, models.Devotional{Title: "tarde"}) {
		t.Error("delivery after Close should be rejected")
	}
}

func TestCycle_NewDayResets(t *testing.T) {
	t.Parallel()

	var c Cycle
	c.Open(today)
	if err := c.Acknowledge(today); err != nil {
		t.Fatal(err)
	}

	if got := c.State("2024-05-02"); got != StateNotStarted {
		t.Errorf("state on next day = %s", got)
	}
}
