// Package snapshot persists per-session widget state so a session can be
// rebuilt after a reconnect or process restart. Stores hold serialized
// wire values only; metadata is re-registered by the script on its next
// rerun.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	reactive "github.com/goliatone/go-reactive"
)

// ErrNotImplemented marks store capabilities an implementation lacks.
var ErrNotImplemented = errors.New("snapshot: not implemented")

// Snapshot is one persisted copy of a session's committed state.
type Snapshot struct {
	SessionID string                     `json:"session_id"`
	Values    map[string]json.RawMessage `json:"values"`
	Aliases   map[string]string          `json:"aliases,omitempty"`
	SavedAt   time.Time                  `json:"saved_at"`
}

// Store loads and saves snapshots keyed by session id.
type Store interface {
	Load(ctx context.Context, sessionID string) (Snapshot, bool, error)
	Save(ctx context.Context, snap Snapshot) error
	Delete(ctx context.Context, sessionID string) error
}

// Capture serializes a session's committed state into a snapshot. Widgets
// whose wire value fails to marshal are skipped and reported; the rest of
// the snapshot is still usable.
func Capture(session *reactive.Session) (Snapshot, error) {
	values := session.ExportState()
	snap := Snapshot{
		SessionID: session.ID(),
		Values:    make(map[string]json.RawMessage, len(values)),
		Aliases:   session.ExportAliases(),
		SavedAt:   time.Now(),
	}
	var errs []error
	for id, value := range values {
		encoded, err := json.Marshal(value)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		snap.Values[id] = encoded
	}
	return snap, errors.Join(errs...)
}

// Restore seeds a session from a snapshot. Values land in incoming state
// and are promoted by the session's next commit.
func Restore(session *reactive.Session, snap Snapshot) error {
	values := make(map[string]any, len(snap.Values))
	var errs []error
	for id, raw := range snap.Values {
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			errs = append(errs, err)
			continue
		}
		values[id] = value
	}
	if err := session.ImportState(values, snap.Aliases); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
