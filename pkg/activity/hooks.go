// Package activity fans widget lifecycle events out to registered hooks:
// value changes, trigger firings, session shutdowns. Hooks are observers;
// their failures never affect the state engine.
package activity

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Event describes one occurrence in a session's widget lifecycle.
type Event struct {
	// Verb is the event name: "widget.changed", "trigger.fired",
	// "session.shutdown".
	Verb      string
	SessionID string
	WidgetID  string
	// Key is the user-facing alias, when the widget has one.
	Key string
	// Category is the widget's value category name.
	Category string
	// SubKey is the changed sub-key or fired event name for aggregate
	// categories.
	SubKey     string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Hook receives normalized lifecycle events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy Hook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans out events to zero or more hooks.
type Hooks []Hook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify forwards the event to all hooks, returning a joined error if any
// fail. It normalizes the event and short-circuits when required fields
// are missing.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}

	normalized := NormalizeEvent(event)
	if normalized.Verb == "" || normalized.SessionID == "" {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// NormalizeEvent trims whitespace, clones metadata, and ensures a
// timestamp is present.
func NormalizeEvent(event Event) Event {
	normalized := event
	normalized.Verb = strings.TrimSpace(event.Verb)
	normalized.SessionID = strings.TrimSpace(event.SessionID)
	normalized.WidgetID = strings.TrimSpace(event.WidgetID)
	normalized.Key = strings.TrimSpace(event.Key)
	normalized.Category = strings.TrimSpace(event.Category)
	normalized.SubKey = strings.TrimSpace(event.SubKey)
	normalized.Channel = strings.TrimSpace(event.Channel)
	normalized.Metadata = cloneMap(event.Metadata)
	if normalized.OccurredAt.IsZero() {
		normalized.OccurredAt = time.Now()
	}
	return normalized
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
