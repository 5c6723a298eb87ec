package snapshot

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is a minimal in-memory Store intended for tests and
// examples.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Snapshot
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]Snapshot{}}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, sessionID string) (Snapshot, bool, error) {
	s.mu.RLock()
	snap, ok := s.records[sessionID]
	s.mu.RUnlock()
	if !ok {
		return Snapshot{}, false, nil
	}
	return cloneSnapshot(snap), true, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	s.records[snap.SessionID] = cloneSnapshot(snap)
	s.mu.Unlock()
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.records, sessionID)
	s.mu.Unlock()
	return nil
}

func cloneSnapshot(snap Snapshot) Snapshot {
	out := snap
	if snap.Values != nil {
		out.Values = make(map[string]json.RawMessage, len(snap.Values))
		for id, raw := range snap.Values {
			out.Values[id] = append(json.RawMessage(nil), raw...)
		}
	}
	if snap.Aliases != nil {
		out.Aliases = make(map[string]string, len(snap.Aliases))
		for key, id := range snap.Aliases {
			out.Aliases[key] = id
		}
	}
	return out
}
