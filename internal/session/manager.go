package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type managerConfig struct {
	store   ProfileStore
	content ContentGateway
	now     func() time.Time
	loc     *time.Location
	logger  *zap.Logger
}

// Option configures a Manager
type Option func(*managerConfig)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *managerConfig) { c.now = now }
}

// WithLocation sets the zone that decides the calendar day
func WithLocation(loc *time.Location) Option {
	return func(c *managerConfig) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *managerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Manager hands out one Session per device, creating them on first use
type Manager struct {
	cfg      managerConfig
	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewManager creates a session manager
func NewManager(store ProfileStore, content ContentGateway, opts ...Option) *Manager {
	cfg := managerConfig{
		store:   store,
		content: content,
		now:     time.Now,
		loc:     time.Local,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Manager{cfg: cfg, sessions: make(map[string]*Session)}
}

// Get returns the session of deviceID
func (m *Manager) Get(deviceID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if s, ok := m.sessions[deviceID]; ok {
		return s, nil
	}
	s := newSession(deviceID, m.cfg)
	m.sessions[deviceID] = s
	return s, nil
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// PruneIdle closes sessions unused for longer than maxIdle and returns how
// many were closed. Habits and devotional state of a pruned session are lost.
func (m *Manager) PruneIdle(maxIdle time.Duration) int {
	cutoff := m.cfg.now().Add(-maxIdle)

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		m.cfg.logger.Debug("sessions_pruned", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// StartPruner prunes idle sessions every interval until ctx is cancelled
func (m *Manager) StartPruner(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.PruneIdle(maxIdle)
		}
	}
}

// Close stops every session. Later calls to Get fail with ErrClosed.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
