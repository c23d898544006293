package session

import (
	"context"
	"slices"

	"github.com/benvon/devotional/internal/devotional"
	"github.com/benvon/devotional/internal/habits"
	"github.com/benvon/devotional/internal/models"
	"github.com/benvon/devotional/internal/progression"
	"github.com/benvon/devotional/internal/restoration"
	"go.uber.org/zap"
)

// Habits returns the day's habits
func (s *Session) Habits(ctx context.Context) ([]models.Habit, error) {
	var out []models.Habit
	err := s.do(ctx, func(_ context.Context, st *state) error {
		out = slices.Clone(st.habits)
		return nil
	})
	return out, err
}

// HabitToggle is the outcome of ToggleHabit
type HabitToggle struct {
	Habits     []models.Habit      `json:"habits"`
	Transition habits.Transition   `json:"-"`
	Stats      models.Stats        `json:"stats"`
	Summary    progression.Summary `json:"summary"`
}

// ToggleHabit flips a habit. Completing one credits intimacy; an unknown id
// changes nothing.
func (s *Session) ToggleHabit(ctx context.Context, id string) (HabitToggle, error) {
	var out HabitToggle
	err := s.do(ctx, func(ctx context.Context, st *state) error {
		p, err := s.requireProfile(ctx, st)
		if err != nil {
			return err
		}
		list, tr := habits.Toggle(st.habits, id)
		if tr.Completing() {
			p = progression.ApplyHabitCompletion(p)
			if err := s.commit(ctx, st, p, "habit_completed"); err != nil {
				return err
			}
		}
		st.habits = list
		out = HabitToggle{
			Habits:     slices.Clone(list),
			Transition: tr,
			Stats:      p.Stats,
			Summary:    progression.Summarize(p.Stats),
		}
		return nil
	})
	return out, err
}

// DevotionalState returns today's position in the devotional cycle
func (s *Session) DevotionalState(ctx context.Context) (devotional.State, error) {
	var out devotional.State
	err := s.do(ctx, func(_ context.Context, st *state) error {
		out = st.cycle.State(s.today())
		return nil
	})
	return out, err
}

// OpenDevotional enters the viewing state and returns today's devotional.
// Content is generated outside the session goroutine and is not cut short
// when the caller goes away; if another viewing started meanwhile, the
// result is discarded and ErrSuperseded returned.
func (s *Session) OpenDevotional(ctx context.Context) (models.Devotional, error) {
	var (
		ticket uint64
		themes []string
		cached *models.Devotional
	)
	err := s.do(ctx, func(ctx context.Context, st *state) error {
		p, err := s.requireProfile(ctx, st)
		if err != nil {
			return err
		}
		today := s.today()
		if p.DevotionalDoneOn(today) || st.cycle.State(today) == devotional.StateCompleted {
			return ErrDevotionalDone
		}
		if st.cycle.State(today) == devotional.StateViewing {
			if d, ok := st.cycle.Content(); ok {
				cached = &d
				return nil
			}
		}
		ticket = st.cycle.Open(today)
		themes = slices.Clone(p.SpiritualChallenge)
		return nil
	})
	if err != nil {
		return models.Devotional{}, err
	}
	if cached != nil {
		return *cached, nil
	}

	genCtx, cancel := detached(ctx)
	d := s.content.DailyDevotional(genCtx, themes)
	cancel()

	var delivered bool
	err = s.do(context.WithoutCancel(ctx), func(_ context.Context, st *state) error {
		delivered = st.cycle.Deliver(ticket, d)
		return nil
	})
	if err != nil {
		return models.Devotional{}, err
	}
	if !delivered {
		s.logger.Debug("devotional_discarded", zap.Uint64("ticket", ticket))
		return models.Devotional{}, ErrSuperseded
	}
	return d, nil
}

// CompleteDevotional acknowledges the devotional being viewed and credits
// it once for today
func (s *Session) CompleteDevotional(ctx context.Context) (models.Stats, error) {
	var out models.Stats
	err := s.do(ctx, func(ctx context.Context, st *state) error {
		p, err := s.requireProfile(ctx, st)
		if err != nil {
			return err
		}
		today := s.today()
		if p.DevotionalDoneOn(today) {
			return ErrDevotionalDone
		}
		if st.cycle.State(today) != devotional.StateViewing {
			return devotional.ErrNotViewing
		}
		next, applied := progression.ApplyDevotionalCompletion(p, today)
		if !applied {
			return ErrDevotionalDone
		}
		if err := s.commit(ctx, st, next, "devotional_completed"); err != nil {
			return err
		}
		out = next.Stats
		return st.cycle.Acknowledge(today)
	})
	return out, err
}

// CloseDevotional dismisses the devotional view
func (s *Session) CloseDevotional(ctx context.Context) error {
	return s.do(ctx, func(_ context.Context, st *state) error {
		st.cycle.Close()
		return nil
	})
}

// StartPlan creates the restoration plan for the selected areas. It fails
// when a plan already exists or is being generated. Generation outlives the
// caller's context so a dropped request still stores the tailored plan.
func (s *Session) StartPlan(ctx context.Context, selected []string) (restoration.View, error) {
	areas, err := restoration.ValidateSelection(selected)
	if err != nil {
		return restoration.View{}, err
	}

	err = s.do(ctx, func(ctx context.Context, st *state) error {
		p, err := s.requireProfile(ctx, st)
		if err != nil {
			return err
		}
		if p.RestorationPlan != nil {
			return ErrPlanExists
		}
		if st.planPending {
			return ErrPlanPending
		}
		st.planPending = true
		return nil
	})
	if err != nil {
		return restoration.View{}, err
	}

	genCtx, cancel := detached(ctx)
	content := s.content.RestorationPlan(genCtx, areas)
	cancel()

	var out restoration.View
	err = s.do(context.WithoutCancel(ctx), func(ctx context.Context, st *state) error {
		st.planPending = false
		p, err := s.requireProfile(ctx, st)
		if err != nil {
			return err
		}
		if p.RestorationPlan != nil {
			return ErrPlanExists
		}
		now := s.now()
		plan := restoration.NewPlan(areas, content, now)
		p.RestorationPlan = &plan
		if err := s.commit(ctx, st, p, "plan_started"); err != nil {
			return err
		}
		out = restoration.NewView(plan, now)
		return nil
	})
	return out, err
}

// Plan returns the plan as shown at the current time
func (s *Session) Plan(ctx context.Context) (restoration.View, error) {
	var out restoration.View
	err := s.do(ctx, func(ctx context.Context, st *state) error {
		p, err := s.requireProfile(ctx, st)
		if err != nil {
			return err
		}
		if p.RestorationPlan == nil {
			return ErrNoPlan
		}
		out = restoration.NewView(*p.RestorationPlan, s.now())
		return nil
	})
	return out, err
}

// PlanToggle is the outcome of TogglePlanDay
type PlanToggle struct {
	Plan   restoration.View         `json:"plan"`
	Result restoration.ToggleResult `json:"result"`
}

// TogglePlanDay flips the completion of the plan day at 0-based index
func (s *Session) TogglePlanDay(ctx context.Context, index int) (PlanToggle, error) {
	var out PlanToggle
	err := s.do(ctx, func(ctx context.Context, st *state) error {
		p, err := s.requireProfile(ctx, st)
		if err != nil {
			return err
		}
		if p.RestorationPlan == nil {
			return ErrNoPlan
		}
		now := s.now()
		plan, res, err := restoration.ToggleDay(*p.RestorationPlan, index, now)
		if err != nil {
			return err
		}
		p.RestorationPlan = &plan
		if err := s.commit(ctx, st, p, "plan_day_toggled"); err != nil {
			return err
		}
		if res.PlanFinished {
			s.logger.Info("plan_finished", zap.Strings("areas", plan.Areas))
		}
		out = PlanToggle{Plan: restoration.NewView(plan, now), Result: res}
		return nil
	})
	return out, err
}
