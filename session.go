package reactive

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-reactive/pkg/activity"
	"github.com/google/uuid"
)

// SessionOption configures a session at construction time.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	id             string
	internalPrefix string
	dispatchLogger DispatchLogger
	presentLogger  PresentLogger
	emitter        *activity.Emitter
	shutdownHooks  []func()
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.id = id
	}
}

// WithInternalPrefix overrides the reserved prefix that marks runtime
// bookkeeping ids. The replacement must remain a string no user-chosen
// widget key would start with.
func WithInternalPrefix(prefix string) SessionOption {
	return func(cfg *sessionConfig) {
		if prefix != "" {
			cfg.internalPrefix = prefix
		}
	}
}

// WithDispatchLogger attaches a logger for dispatch bookkeeping events.
func WithDispatchLogger(logger DispatchLogger) SessionOption {
	return func(cfg *sessionConfig) {
		if logger == nil {
			cfg.dispatchLogger = noopDispatchLogger{}
			return
		}
		cfg.dispatchLogger = logger
	}
}

// WithPresentLogger attaches a logger for presenter invocations.
func WithPresentLogger(logger PresentLogger) SessionOption {
	return func(cfg *sessionConfig) {
		if logger == nil {
			cfg.presentLogger = noopPresentLogger{}
			return
		}
		cfg.presentLogger = logger
	}
}

// WithActivityEmitter wires widget lifecycle events to activity hooks.
func WithActivityEmitter(emitter *activity.Emitter) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.emitter = emitter
	}
}

// WithShutdownHook registers fn to run once when the session shuts down.
func WithShutdownHook(fn func()) SessionOption {
	return func(cfg *sessionConfig) {
		if fn != nil {
			cfg.shutdownHooks = append(cfg.shutdownHooks, fn)
		}
	}
}

// Session owns the widget state for one connected script: the dual-state
// store, the metadata registry and the user-key alias table. A session's
// reruns are strictly sequential; independent sessions never share state.
type Session struct {
	mu       sync.Mutex
	id       string
	cfg      sessionConfig
	store    *stateStore
	registry *registry

	active *Rerun
	closed bool
}

// NewSession constructs an empty session.
func NewSession(opts ...SessionOption) *Session {
	cfg := sessionConfig{
		internalPrefix: DefaultInternalPrefix,
		dispatchLogger: noopDispatchLogger{},
		presentLogger:  noopPresentLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}
	return &Session{
		id:       cfg.id,
		cfg:      cfg,
		store:    newStateStore(),
		registry: newRegistry(),
	}
}

// ID returns the session identity.
func (s *Session) ID() string {
	return s.id
}

// WidgetUpdate is one entry of a client round-trip batch.
type WidgetUpdate struct {
	ID    string
	Value any
}

// ApplyClientUpdate ingests the values the user changed since the last
// commit. Absence of a widget id means "unchanged", never "reset".
func (s *Session) ApplyClientUpdate(updates []WidgetUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	for _, update := range updates {
		if update.ID == "" {
			continue
		}
		s.store.writeNew(update.ID, update.Value)
	}
	return nil
}

// RerunOption configures one rerun.
type RerunOption func(*Rerun)

// WithFragment scopes the rerun to one fragment subtree.
func WithFragment(fragmentID string) RerunOption {
	return func(r *Rerun) {
		r.fragmentID = fragmentID
	}
}

// BeginRerun starts a script rerun. Only one rerun may be in flight per
// session; the previous one must Finish or Abort first.
func (s *Session) BeginRerun(ctx context.Context, opts ...RerunOption) (*Rerun, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.active != nil {
		return nil, ErrRerunActive
	}
	rerun := &Rerun{
		session: s,
		ctx:     ctx,
		labels:  map[string]string{},
		staged:  map[string]Envelope{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(rerun)
		}
	}
	s.active = rerun
	return rerun, nil
}

// Shutdown tears the session down: state maps, registry and aliases are
// released and shutdown hooks run. Only the first call does anything.
func (s *Session) Shutdown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.closed = true
	s.active = nil
	s.store.clear()
	s.registry = newRegistry()
	hooks := s.cfg.shutdownHooks
	s.cfg.shutdownHooks = nil
	emitter := s.cfg.emitter
	s.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
	if emitter.Enabled() {
		_ = emitter.Emit(context.Background(), activity.Event{
			Verb:      "session.shutdown",
			SessionID: s.id,
		})
	}
	return nil
}

// Closed reports whether Shutdown already ran.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// State returns the user-facing view over committed state.
func (s *Session) State() *View {
	return &View{session: s}
}

// Rerun is one in-flight execution of the user script. It records the
// declaration order that dispatch will follow and stages programmatic
// writes so an aborted rerun leaves no trace in the store.
type Rerun struct {
	session    *Session
	ctx        context.Context
	fragmentID string

	declared []string
	labels   map[string]string
	staged   map[string]Envelope
	done     bool
}

// Context returns the rerun's context. Script drivers should check it
// between widget declarations and Abort when superseded.
func (r *Rerun) Context() context.Context {
	return r.ctx
}

// Fragment returns the fragment id this rerun is scoped to, if any.
func (r *Rerun) Fragment() string {
	return r.fragmentID
}

// RegisterWidget declares a widget for this rerun and returns its current
// in-script value, resolved staged/incoming → committed → default. The
// returned Trace records which source produced the value.
func (r *Rerun) RegisterWidget(meta Metadata) (any, Trace, error) {
	s := r.session
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.done {
		return nil, Trace{}, ErrRerunFinished
	}
	if s.closed {
		return nil, Trace{}, ErrSessionClosed
	}
	if first, seen := r.labels[meta.ID]; seen {
		return nil, Trace{}, &DuplicateIDError{ID: meta.ID, First: first, Second: meta.displayName()}
	}
	if err := s.registry.register(meta); err != nil {
		return nil, Trace{}, err
	}
	r.declared = append(r.declared, meta.ID)
	r.labels[meta.ID] = meta.displayName()
	if meta.Key != "" {
		s.store.alias(meta.Key, meta.ID)
	}

	trace := Trace{ID: meta.ID, Key: meta.Key}
	wire, source := r.lookupWire(meta)
	trace.Source = source
	trace.Found = source != SourceDefault || meta.Default != nil

	value, err := meta.decode(wire)
	if err != nil {
		return nil, trace, &SerializationError{ID: meta.ID, Err: err}
	}
	trace.Value = value
	return value, trace, nil
}

// lookupWire is the fixed-priority ordered lookup: staged writes from this
// rerun, then the incoming client value, then committed state, then the
// declared default.
func (r *Rerun) lookupWire(meta Metadata) (any, Source) {
	if env, ok := r.staged[meta.ID]; ok {
		value, _ := env.Get()
		return value, SourceNew
	}
	if env, ok := r.session.store.new[meta.ID]; ok {
		value, _ := env.Get()
		if r.session.store.querySeeded(meta.ID) {
			return value, SourceQuery
		}
		return value, SourceNew
	}
	if env, ok := r.session.store.old[meta.ID]; ok {
		value, _ := env.Get()
		return value, SourceCommitted
	}
	return meta.Default, SourceDefault
}

// Set assigns a widget value programmatically. The write is staged and
// only reaches the store when the rerun finishes uncancelled. Values pass
// through the widget's serializer when metadata is already registered.
func (r *Rerun) Set(idOrKey string, value any) error {
	s := r.session
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.done {
		return ErrRerunFinished
	}
	if s.closed {
		r.staged = nil
		return ErrSessionClosed
	}
	id := idOrKey
	if resolved, ok := s.store.resolve(idOrKey); ok {
		id = resolved
	}
	wire := value
	if meta, ok := s.registry.get(id); ok {
		encoded, err := meta.encode(value)
		if err != nil {
			return &SerializationError{ID: id, Err: err}
		}
		wire = encoded
	}
	r.staged[id] = Present(wire)
	return nil
}

// Finish completes the rerun: staged writes merge into the incoming map,
// dispatch fires callbacks, triggers reset, and the store commits — as one
// atomic step under the session lock. A cancelled context aborts instead:
// nothing is merged, dispatched, or committed.
func (r *Rerun) Finish() error {
	s := r.session
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.done {
		return ErrRerunFinished
	}
	r.done = true
	s.active = nil

	// A shutdown that raced this rerun already released the store; the
	// eviction path must never see a late merge or dispatch.
	if s.closed {
		r.staged = nil
		return ErrSessionClosed
	}

	if err := r.ctx.Err(); err != nil {
		r.staged = nil
		return fmt.Errorf("reactive: rerun superseded: %w", err)
	}

	for id, env := range r.staged {
		s.store.new[id] = env
		delete(s.store.fromQuery, id)
	}
	r.staged = nil

	dispatchErr := s.dispatch(r.declared)
	s.resetTriggers(r.declared)
	s.store.commit()

	keep := make(map[string]struct{}, len(r.declared))
	for _, id := range r.declared {
		keep[id] = struct{}{}
	}
	s.registry.prune(keep)

	return dispatchErr
}

// Abort discards the rerun without touching session state.
func (r *Rerun) Abort() {
	s := r.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.done {
		return
	}
	r.done = true
	r.staged = nil
	s.active = nil
}
