// Package sessions manages the lifecycle of concurrently active reactive
// sessions: creation, lookup, idle-TTL eviction and bounded capacity.
// Sessions own their state exclusively; the manager only ever tears one
// down through its shutdown hook, never by reaching into its maps.
package sessions

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	reactive "github.com/goliatone/go-reactive"
)

// ErrNotFound is returned when the session id is unknown or evicted.
var ErrNotFound = errors.New("sessions: session not found")

// Option configures a Manager.
type Option func(*config)

type config struct {
	ttl            time.Duration
	maxSessions    int
	clock          func() time.Time
	logger         Logger
	sessionOptions []reactive.SessionOption
}

// WithTTL sets how long an idle session survives before eviction. Zero
// disables TTL eviction.
func WithTTL(ttl time.Duration) Option {
	return func(cfg *config) {
		cfg.ttl = ttl
	}
}

// WithMaxSessions bounds the number of live sessions; when full, the least
// recently used session is evicted to make room. Zero means unbounded.
func WithMaxSessions(max int) Option {
	return func(cfg *config) {
		cfg.maxSessions = max
	}
}

// WithClock substitutes the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(cfg *config) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

// WithLogger attaches an eviction logger.
func WithLogger(logger Logger) Option {
	return func(cfg *config) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithSessionOptions forwards options to every session the manager
// creates.
func WithSessionOptions(opts ...reactive.SessionOption) Option {
	return func(cfg *config) {
		cfg.sessionOptions = append(cfg.sessionOptions, opts...)
	}
}

// LogEvent describes one manager decision.
type LogEvent struct {
	SessionID string
	Reason    string
	Err       error
}

// Logger records manager events.
type Logger interface {
	LogSession(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// LogSession implements Logger.
func (f LoggerFunc) LogSession(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogSession(LogEvent) {}

type entry struct {
	session  *reactive.Session
	lastSeen time.Time
}

// Manager is a thread-safe registry of live sessions.
type Manager struct {
	mu       sync.Mutex
	cfg      config
	sessions map[string]*entry
}

// NewManager constructs an empty manager.
func NewManager(opts ...Option) *Manager {
	cfg := config{
		clock:  time.Now,
		logger: noopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Manager{
		cfg:      cfg,
		sessions: map[string]*entry{},
	}
}

// Create registers a new session and returns it. When the manager is at
// capacity the least recently used session is shut down first.
func (m *Manager) Create(opts ...reactive.SessionOption) *reactive.Session {
	combined := append([]reactive.SessionOption(nil), m.cfg.sessionOptions...)
	combined = append(combined, opts...)
	session := reactive.NewSession(combined...)

	m.mu.Lock()
	var evicted *reactive.Session
	if m.cfg.maxSessions > 0 && len(m.sessions) >= m.cfg.maxSessions {
		if id := m.leastRecentLocked(); id != "" {
			evicted = m.sessions[id].session
			delete(m.sessions, id)
			m.cfg.logger.LogSession(LogEvent{SessionID: id, Reason: "evicted: capacity"})
		}
	}
	m.sessions[session.ID()] = &entry{session: session, lastSeen: m.cfg.clock()}
	m.mu.Unlock()

	if evicted != nil {
		m.shutdown(evicted)
	}
	return session
}

// Get returns the session for id and refreshes its idle clock.
func (m *Manager) Get(id string) (*reactive.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ent, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	ent.lastSeen = m.cfg.clock()
	return ent.session, true
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close removes and shuts down one session.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	ent, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	m.shutdown(ent.session)
	return nil
}

// CloseAll shuts down every live session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	drained := make([]*reactive.Session, 0, len(m.sessions))
	for id, ent := range m.sessions {
		drained = append(drained, ent.session)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, session := range drained {
		m.shutdown(session)
	}
}

// EvictIdle shuts down every session idle longer than the TTL and returns
// the evicted ids. A zero TTL makes it a no-op.
func (m *Manager) EvictIdle() []string {
	if m.cfg.ttl <= 0 {
		return nil
	}
	cutoff := m.cfg.clock().Add(-m.cfg.ttl)

	m.mu.Lock()
	var stale []*entry
	var ids []string
	for id, ent := range m.sessions {
		if ent.lastSeen.Before(cutoff) {
			stale = append(stale, ent)
			ids = append(ids, id)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	sort.Strings(ids)
	for _, ent := range stale {
		m.cfg.logger.LogSession(LogEvent{SessionID: ent.session.ID(), Reason: "evicted: idle"})
		m.shutdown(ent.session)
	}
	return ids
}

// Run evicts idle sessions on the given interval until ctx is cancelled,
// then shuts everything down.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.CloseAll()
			return
		case <-ticker.C:
			m.EvictIdle()
		}
	}
}

// shutdown runs outside the manager lock: Shutdown acquires the session's
// own lock, which an active rerun may hold.
func (m *Manager) shutdown(session *reactive.Session) {
	if err := session.Shutdown(); err != nil && !errors.Is(err, reactive.ErrSessionClosed) {
		m.cfg.logger.LogSession(LogEvent{SessionID: session.ID(), Reason: "shutdown failed", Err: err})
	}
}

func (m *Manager) leastRecentLocked() string {
	var oldest string
	var oldestSeen time.Time
	for id, ent := range m.sessions {
		if oldest == "" || ent.lastSeen.Before(oldestSeen) {
			oldest = id
			oldestSeen = ent.lastSeen
		}
	}
	return oldest
}
