// Package devotional tracks the per-day state of the daily devotional:
// NotStarted, Viewing, Completed.
package devotional

import (
	"errors"

	"github.com/benvon/devotional/internal/models"
)

// State is the position in the daily cycle
type State string

const (
	StateNotStarted State = "not_started"
	StateViewing    State = "viewing"
	StateCompleted  State = "completed"
)

// ErrNotViewing is returned when completion is requested outside Viewing
var ErrNotViewing = errors.New("devotional is not being viewed")

// Cycle is the devotional state of one session. It is not safe for
// concurrent use; the owning session serializes access.
type Cycle struct {
	state   State
	day     models.Date
	seq     uint64
	content *models.Devotional
}

// State returns the state for today. A new day resets the cycle.
func (c *Cycle) State(today models.Date) State {
	c.rollover(today)
	return c.state
}

// Open enters Viewing and returns a ticket identifying this viewing.
// Content requested for an older ticket is discarded by Deliver.
func (c *Cycle) Open(today models.Date) uint64 {
	c.rollover(today)
	c.seq++
	c.state = StateViewing
	c.content = nil
	return c.seq
}

// Deliver attaches generated content to the viewing identified by ticket.
// It reports false when that viewing is no longer current.
func (c *Cycle) Deliver(ticket uint64, d models.Devotional) bool {
	if c.state != StateViewing || ticket != c.seq {
		return false
	}
	c.content = &d
	return true
}

// Content returns the content of the current viewing, if it has arrived
func (c *Cycle) Content() (models.Devotional, bool) {
	if c.content == nil {
		return models.Devotional{}, false
	}
	return *c.content, true
}

// Acknowledge moves Viewing to Completed
func (c *Cycle) Acknowledge(today models.Date) error {
	c.rollover(today)
	if c.state != StateViewing {
		return ErrNotViewing
	}
	c.state = StateCompleted
	return nil
}

// Close dismisses the devotional. An unacknowledged viewing returns to
// NotStarted; a completed cycle stays completed.
func (c *Cycle) Close() {
	if c.state == StateViewing {
		c.state = StateNotStarted
		c.content = nil
	}
}

func (c *Cycle) rollover(today models.Date) {
	if c.day == today {
		return
	}
	c.day = today
	c.state = StateNotStarted
	c.content = nil
}
