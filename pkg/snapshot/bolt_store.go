package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

const bucketSnapshots = "snapshots"

// BoltStore persists snapshots in a bbolt file, one key per session id.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the snapshot database at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %q: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSnapshots))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshot: init bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close releases the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Load implements Store.
func (s *BoltStore) Load(_ context.Context, sessionID string) (Snapshot, bool, error) {
	var snap Snapshot
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSnapshots))
		raw := b.Get([]byte(sessionID))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &snap)
	})
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("snapshot: load %q: %w", sessionID, err)
	}
	return snap, found, nil
}

// Save implements Store.
func (s *BoltStore) Save(_ context.Context, snap Snapshot) error {
	encoded, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("snapshot: encode %q: %w", snap.SessionID, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSnapshots))
		return b.Put([]byte(snap.SessionID), encoded)
	})
	if err != nil {
		return fmt.Errorf("snapshot: save %q: %w", snap.SessionID, err)
	}
	return nil
}

// Delete implements Store.
func (s *BoltStore) Delete(_ context.Context, sessionID string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSnapshots))
		return b.Delete([]byte(sessionID))
	})
	if err != nil {
		return fmt.Errorf("snapshot: delete %q: %w", sessionID, err)
	}
	return nil
}
