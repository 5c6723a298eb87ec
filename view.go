package reactive

import (
	"fmt"
	"sort"
	"time"
)

// View is the user-facing window onto a session's committed state. It
// surfaces user keys only: ids carrying the reserved internal prefix, or
// composed with the trigger delimiter, never appear — even when a user key
// happens to alias them. Presenters run at read time and can never break a
// read; on error or panic the raw stored value is returned.
type View struct {
	session *Session
}

// Get returns the presented value for a user key (or a non-internal raw
// widget id). The second result is false when the key is unknown, hidden,
// or has no committed value.
func (v *View) Get(key string) (any, bool) {
	s := v.session
	s.mu.Lock()
	defer s.mu.Unlock()
	return v.getLocked(key)
}

func (v *View) getLocked(key string) (any, bool) {
	s := v.session
	id, ok := s.store.resolve(key)
	if !ok {
		id = key
	}
	if isInternalID(id, s.cfg.internalPrefix) {
		return nil, false
	}
	env := s.store.readCommitted(id)
	raw, present := env.Get()
	if !present {
		return nil, false
	}
	meta, hasMeta := s.registry.get(id)
	if hasMeta {
		if decoded, err := meta.decode(raw); err == nil {
			raw = decoded
		} else {
			s.logDispatch(meta, "", "view decode failed", err)
		}
	}
	if !hasMeta || meta.Presenter == nil {
		return raw, true
	}
	return v.presentLocked(meta, raw), true
}

// Contains reports whether key resolves to a visible committed value.
func (v *View) Contains(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Keys returns the visible user keys, sorted. Internal ids are excluded
// unconditionally.
func (v *View) Keys() []string {
	s := v.session
	s.mu.Lock()
	defer s.mu.Unlock()
	return v.keysLocked()
}

func (v *View) keysLocked() []string {
	s := v.session
	var keys []string
	for _, key := range s.store.aliasKeys() {
		id, _ := s.store.resolve(key)
		if isInternalID(id, s.cfg.internalPrefix) || isInternalID(key, s.cfg.internalPrefix) {
			continue
		}
		if !s.store.readCommitted(id).IsPresent() {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of visible keys.
func (v *View) Len() int {
	return len(v.Keys())
}

// Range calls fn for each visible key/value pair in sorted key order until
// fn returns false.
func (v *View) Range(fn func(key string, value any) bool) {
	if fn == nil {
		return
	}
	for _, key := range v.Keys() {
		value, ok := v.Get(key)
		if !ok {
			continue
		}
		if !fn(key, value) {
			return
		}
	}
}

// presentLocked runs the widget's presenter with full fault isolation:
// errors and panics degrade to the raw stored value.
func (v *View) presentLocked(meta Metadata, raw any) (result any) {
	s := v.session
	result = raw

	ctx := PresentContext{
		Value:    raw,
		State:    v.stateSnapshotLocked(meta.ID),
		Lookup:   v.lookupLocked,
		WidgetID: meta.ID,
	}

	engine := presenterEngineName(meta.Presenter)
	start := time.Now()
	var presentErr error
	defer func() {
		if recovered := recover(); recovered != nil {
			presentErr = wrapPresentationError(engine, "", meta.ID, recoveredError(recovered))
			result = raw
		}
		s.cfg.presentLogger.LogPresentation(PresentLogEvent{
			Engine:   engine,
			WidgetID: meta.ID,
			Duration: time.Since(start),
			Err:      presentErr,
		})
	}()

	presented, err := meta.Presenter.Present(ctx)
	if err != nil {
		presentErr = wrapPresentationError(engine, "", meta.ID, err)
		return raw
	}
	return presented
}

// stateSnapshotLocked builds the read-only state map handed to presenters:
// visible user keys mapped to their raw (unpresented) committed values.
// Presenting them here would recurse.
func (v *View) stateSnapshotLocked(excludeID string) map[string]any {
	s := v.session
	snapshot := map[string]any{}
	for _, key := range s.store.aliasKeys() {
		id, _ := s.store.resolve(key)
		if id == excludeID || isInternalID(id, s.cfg.internalPrefix) {
			continue
		}
		raw, present := s.store.readCommitted(id).Get()
		if !present {
			continue
		}
		if meta, ok := s.registry.get(id); ok {
			if decoded, err := meta.decode(raw); err == nil {
				raw = decoded
			}
		}
		snapshot[key] = raw
	}
	return snapshot
}

// lookupLocked resolves any widget id's committed value, internal ids
// included; presenters use it to reach aggregator payloads.
func (v *View) lookupLocked(id string) (any, bool) {
	return v.session.store.readCommitted(id).Get()
}

func recoveredError(recovered any) error {
	if err, ok := recovered.(error); ok {
		return err
	}
	return fmt.Errorf("presenter panicked: %v", recovered)
}
