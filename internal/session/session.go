// Package session owns the mutable state of one device: its profile, the
// day's habits, the devotional cycle and plan creation. Every mutation runs on
// a single goroutine per device, and the profile is persisted before a change
// becomes visible.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benvon/devotional/internal/database"
	"github.com/benvon/devotional/internal/devotional"
	"github.com/benvon/devotional/internal/habits"
	"github.com/benvon/devotional/internal/models"
	"github.com/benvon/devotional/internal/onboarding"
	"github.com/benvon/devotional/internal/progression"
	"github.com/benvon/devotional/internal/restoration"
	"go.uber.org/zap"
)

var (
	ErrNoProfile        = errors.New("profile not found")
	ErrAlreadyOnboarded = errors.New("profile already onboarded")
	ErrDevotionalDone   = errors.New("devotional already completed today")
	ErrSuperseded       = errors.New("devotional viewing was superseded")
	ErrNoPlan           = errors.New("no restoration plan")
	ErrPlanExists       = errors.New("restoration plan already exists")
	ErrPlanPending      = errors.New("restoration plan is being generated")
	ErrClosed           = errors.New("session closed")
)

// generationTimeout bounds a content request that no longer follows the
// caller's context. The provider client times out well before it.
const generationTimeout = 2 * time.Minute

// ProfileStore persists profiles by key
type ProfileStore interface {
	Load(ctx context.Context, key string) (*models.UserProfile, error)
	Save(ctx context.Context, key string, profile models.UserProfile) error
}

// ContentGateway produces the generated content a session needs. Both calls
// always return usable content.
type ContentGateway interface {
	DailyDevotional(ctx context.Context, themes []string) models.Devotional
	RestorationPlan(ctx context.Context, areas []string) models.PlanContent
}

type state struct {
	loaded      bool
	profile     *models.UserProfile
	habits      []models.Habit
	cycle       devotional.Cycle
	planPending bool
}

type command struct {
	ctx   context.Context
	fn    func(ctx context.Context, st *state) error
	reply chan error
}

// Session serializes all work for one device
type Session struct {
	deviceID string
	key      string
	store    ProfileStore
	content  ContentGateway
	now      func() time.Time
	loc      *time.Location
	logger   *zap.Logger

	cmds      chan command
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	lastUsed  time.Time
	usedMu    sync.Mutex
}

func newSession(deviceID string, cfg managerConfig) *Session {
	s := &Session{
		deviceID: deviceID,
		key:      database.ProfileKey(deviceID),
		store:    cfg.store,
		content:  cfg.content,
		now:      cfg.now,
		loc:      cfg.loc,
		logger:   cfg.logger.With(zap.String("session", deviceID)),
		cmds:     make(chan command),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		lastUsed: cfg.now(),
	}
	go s.run()
	return s
}

func (s *Session) run() {
	defer close(s.done)
	st := &state{habits: habits.Defaults()}
	for {
		select {
		case <-s.quit:
			return
		case cmd := <-s.cmds:
			cmd.reply <- cmd.fn(cmd.ctx, st)
		}
	}
}

// Close stops the session goroutine and waits for it to exit
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
	<-s.done
}

// do runs fn on the session goroutine. ctx bounds only the wait for the
// goroutine to accept the command.
func (s *Session) do(ctx context.Context, fn func(ctx context.Context, st *state) error) error {
	s.touch()
	cmd := command{ctx: ctx, fn: fn, reply: make(chan error, 1)}
	select {
	case s.cmds <- cmd:
	case <-s.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	// Once accepted the command runs to completion; its state changes
	// must be reported back to the caller.
	return <-cmd.reply
}

// detached derives a context for content generation that ignores the
// caller's cancellation but keeps its values and is bounded on its own.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), generationTimeout)
}

func (s *Session) touch() {
	s.usedMu.Lock()
	s.lastUsed = s.now()
	s.usedMu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.usedMu.Lock()
	defer s.usedMu.Unlock()
	return s.lastUsed
}

func (s *Session) today() models.Date {
	return models.DateOf(s.now().In(s.loc))
}

func (s *Session) load(ctx context.Context, st *state) error {
	if st.loaded {
		return nil
	}
	p, err := s.store.Load(ctx, s.key)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	st.profile = p
	st.loaded = true
	return nil
}

func (s *Session) requireProfile(ctx context.Context, st *state) (models.UserProfile, error) {
	if err := s.load(ctx, st); err != nil {
		return models.UserProfile{}, err
	}
	if st.profile == nil || !st.profile.OnboardingComplete {
		return models.UserProfile{}, ErrNoProfile
	}
	return st.profile.Clone(), nil
}

// commit persists next and only then makes it the session's profile
func (s *Session) commit(ctx context.Context, st *state, next models.UserProfile, event string) error {
	if err := s.store.Save(ctx, s.key, next); err != nil {
		s.logger.Error("profile_save_failed", zap.String("event", event), zap.Error(err))
		return fmt.Errorf("failed to save profile: %w", err)
	}
	st.profile = &next
	s.logger.Debug("profile_saved", zap.String("event", event), zap.Int("intimacy", next.Stats.Intimacy))
	return nil
}

// Onboard stores the profile built from the questionnaire answers
func (s *Session) Onboard(ctx context.Context, answers []onboarding.Answer) (models.UserProfile, error) {
	profile, err := onboarding.Run(answers)
	if err != nil {
		return models.UserProfile{}, err
	}
	err = s.do(ctx, func(ctx context.Context, st *state) error {
		if err := s.load(ctx, st); err != nil {
			return err
		}
		if st.profile != nil && st.profile.OnboardingComplete {
			return ErrAlreadyOnboarded
		}
		return s.commit(ctx, st, profile.Clone(), "onboarding")
	})
	if err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}

// Profile returns a copy of the current profile
func (s *Session) Profile(ctx context.Context) (models.UserProfile, error) {
	var out models.UserProfile
	err := s.do(ctx, func(ctx context.Context, st *state) error {
		p, err := s.requireProfile(ctx, st)
		out = p
		return err
	})
	return out, err
}

// PlanSummary is the compact plan figure shown on the profile
type PlanSummary struct {
	Areas         []string `json:"areas"`
	CompletedDays int      `json:"completed_days"`
	Progress      int      `json:"progress"`
	Complete      bool     `json:"complete"`
	DaysPassed    int      `json:"days_passed"`
}

// ProfileView is the profile together with every figure derived from it
type ProfileView struct {
	Profile             models.UserProfile  `json:"profile"`
	Summary             progression.Summary `json:"summary"`
	DevotionalDoneToday bool                `json:"devotional_done_today"`
	DevotionalState     devotional.State    `json:"devotional_state"`
	Plan                *PlanSummary        `json:"plan,omitempty"`
}

// View returns the profile and its derived figures
func (s *Session) View(ctx context.Context) (ProfileView, error) {
	var out ProfileView
	err := s.do(ctx, func(ctx context.Context, st *state) error {
		p, err := s.requireProfile(ctx, st)
		if err != nil {
			return err
		}
		today := s.today()
		out = ProfileView{
			Profile:             p,
			Summary:             progression.Summarize(p.Stats),
			DevotionalDoneToday: p.DevotionalDoneOn(today),
			DevotionalState:     st.cycle.State(today),
		}
		if p.RestorationPlan != nil {
			plan := *p.RestorationPlan
			out.Plan = &PlanSummary{
				Areas:         plan.Areas,
				CompletedDays: restoration.CompletedDays(plan),
				Progress:      restoration.Progress(plan),
				Complete:      restoration.IsComplete(plan),
				DaysPassed:    restoration.DaysPassed(plan.StartDate, s.now()),
			}
		}
		return nil
	})
	return out, err
}
