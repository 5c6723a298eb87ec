package sessions

import (
	"errors"
	"testing"
	"time"

	reactive "github.com/goliatone/go-reactive"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func TestManagerCreateAndGet(t *testing.T) {
	manager := NewManager()
	session := manager.Create()
	if session == nil {
		t.Fatalf("create returned nil")
	}
	got, ok := manager.Get(session.ID())
	if !ok || got != session {
		t.Fatalf("get must return the created session")
	}
	if _, ok := manager.Get("unknown"); ok {
		t.Fatalf("unknown id must not resolve")
	}
	if manager.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", manager.Len())
	}
}

func TestManagerTTLEviction(t *testing.T) {
	clock := newFakeClock()
	var events []LogEvent
	manager := NewManager(
		WithTTL(30*time.Minute),
		WithClock(clock.Now),
		WithLogger(LoggerFunc(func(event LogEvent) {
			events = append(events, event)
		})),
	)

	stale := manager.Create()
	clock.Advance(20 * time.Minute)
	fresh := manager.Create()

	// Touching a session resets its idle clock.
	clock.Advance(15 * time.Minute)
	if _, ok := manager.Get(fresh.ID()); !ok {
		t.Fatalf("fresh session disappeared")
	}

	evicted := manager.EvictIdle()
	if len(evicted) != 1 || evicted[0] != stale.ID() {
		t.Fatalf("expected only the stale session evicted, got %v", evicted)
	}
	if !stale.Closed() {
		t.Fatalf("evicted session must be shut down")
	}
	if fresh.Closed() {
		t.Fatalf("touched session must survive")
	}
	if _, ok := manager.Get(stale.ID()); ok {
		t.Fatalf("evicted session must not resolve")
	}
	if len(events) != 1 || events[0].Reason != "evicted: idle" {
		t.Fatalf("eviction must be logged, got %v", events)
	}
}

func TestManagerTTLDisabled(t *testing.T) {
	clock := newFakeClock()
	manager := NewManager(WithClock(clock.Now))
	manager.Create()
	clock.Advance(1000 * time.Hour)
	if evicted := manager.EvictIdle(); evicted != nil {
		t.Fatalf("zero TTL must never evict, got %v", evicted)
	}
}

func TestManagerCapacityEvictsLRU(t *testing.T) {
	clock := newFakeClock()
	manager := NewManager(WithMaxSessions(2), WithClock(clock.Now))

	first := manager.Create()
	clock.Advance(time.Minute)
	second := manager.Create()
	clock.Advance(time.Minute)

	// Touch first so second becomes least recently used.
	if _, ok := manager.Get(first.ID()); !ok {
		t.Fatalf("first session disappeared")
	}
	clock.Advance(time.Minute)

	third := manager.Create()
	if manager.Len() != 2 {
		t.Fatalf("capacity must hold at 2, got %d", manager.Len())
	}
	if !second.Closed() {
		t.Fatalf("least recently used session must be evicted")
	}
	if first.Closed() || third.Closed() {
		t.Fatalf("recently used sessions must survive")
	}
}

func TestManagerClose(t *testing.T) {
	manager := NewManager()
	session := manager.Create()
	if err := manager.Close(session.ID()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !session.Closed() {
		t.Fatalf("closed session must be shut down")
	}
	if err := manager.Close(session.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second close must report not found, got %v", err)
	}
}

func TestManagerCloseAll(t *testing.T) {
	manager := NewManager()
	a := manager.Create()
	b := manager.Create()
	manager.CloseAll()
	if manager.Len() != 0 {
		t.Fatalf("close all must drain the registry, got %d", manager.Len())
	}
	if !a.Closed() || !b.Closed() {
		t.Fatalf("all sessions must be shut down")
	}
}

func TestManagerForwardsSessionOptions(t *testing.T) {
	manager := NewManager(WithSessionOptions(reactive.WithSessionID("fixed-id")))
	session := manager.Create()
	if session.ID() != "fixed-id" {
		t.Fatalf("session options must reach created sessions, got %q", session.ID())
	}
}
