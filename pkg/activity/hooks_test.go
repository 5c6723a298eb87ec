package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHooksNotifyFansOut(t *testing.T) {
	first := &CaptureHook{}
	second := &CaptureHook{}
	hooks := Hooks{first, nil, second}

	err := hooks.Notify(context.Background(), Event{
		Verb:      " widget.changed ",
		SessionID: "sess-1",
		WidgetID:  "w1",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	for _, hook := range []*CaptureHook{first, second} {
		events := hook.Snapshot()
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		if events[0].Verb != "widget.changed" {
			t.Fatalf("verb must be trimmed, got %q", events[0].Verb)
		}
		if events[0].OccurredAt.IsZero() {
			t.Fatalf("timestamp must be filled in")
		}
	}
}

func TestHooksNotifyJoinsErrors(t *testing.T) {
	boom := errors.New("sink offline")
	failing := &CaptureHook{Err: boom}
	healthy := &CaptureHook{}
	hooks := Hooks{failing, healthy}

	err := hooks.Notify(context.Background(), Event{Verb: "trigger.fired", SessionID: "sess-1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined hook error, got %v", err)
	}
	if len(healthy.Snapshot()) != 1 {
		t.Fatalf("one hook failing must not starve the others")
	}
}

func TestHooksNotifySkipsIncompleteEvents(t *testing.T) {
	hook := &CaptureHook{}
	hooks := Hooks{hook}

	if err := hooks.Notify(context.Background(), Event{Verb: "widget.changed"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := hooks.Notify(context.Background(), Event{SessionID: "sess-1"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got := len(hook.Snapshot()); got != 0 {
		t.Fatalf("events missing verb or session must be dropped, got %d", got)
	}
}

func TestNormalizeEventClonesMetadata(t *testing.T) {
	metadata := map[string]any{"actor": "u-1"}
	normalized := NormalizeEvent(Event{Verb: "v", SessionID: "s", Metadata: metadata})
	metadata["actor"] = "mutated"
	if normalized.Metadata["actor"] != "u-1" {
		t.Fatalf("metadata must be cloned, got %v", normalized.Metadata["actor"])
	}
}

func TestEmitterDefaults(t *testing.T) {
	hook := &CaptureHook{}
	emitter := NewEmitter(Hooks{hook}, Config{Enabled: true})

	if !emitter.Enabled() {
		t.Fatalf("emitter with hooks and enabled config must be enabled")
	}
	err := emitter.Emit(context.Background(), Event{Verb: "widget.changed", SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	events := hook.Snapshot()
	if len(events) != 1 || events[0].Channel != "reactive" {
		t.Fatalf("default channel must apply, got %+v", events)
	}

	explicit := NewEmitter(Hooks{hook}, Config{Enabled: true, Channel: "audit"})
	if err := explicit.Emit(context.Background(), Event{Verb: "v", SessionID: "s"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	events = hook.Snapshot()
	if events[len(events)-1].Channel != "audit" {
		t.Fatalf("configured channel must apply, got %q", events[len(events)-1].Channel)
	}
}

func TestEmitterDisabled(t *testing.T) {
	hook := &CaptureHook{}
	cases := map[string]*Emitter{
		"disabled config": NewEmitter(Hooks{hook}, Config{Enabled: false}),
		"no hooks":        NewEmitter(nil, Config{Enabled: true}),
		"nil emitter":     nil,
	}
	for name, emitter := range cases {
		if emitter.Enabled() {
			t.Fatalf("%s: emitter must be disabled", name)
		}
		if err := emitter.Emit(context.Background(), Event{Verb: "v", SessionID: "s"}); err != nil {
			t.Fatalf("%s: disabled emit must be a no-op, got %v", name, err)
		}
	}
	if len(hook.Snapshot()) != 0 {
		t.Fatalf("disabled emitters must never notify")
	}
}

func TestNormalizeEventKeepsTimestamp(t *testing.T) {
	at := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	normalized := NormalizeEvent(Event{Verb: "v", SessionID: "s", OccurredAt: at})
	if !normalized.OccurredAt.Equal(at) {
		t.Fatalf("existing timestamp must be preserved, got %v", normalized.OccurredAt)
	}
}
