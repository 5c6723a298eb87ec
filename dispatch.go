package reactive

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sort"

	"github.com/goliatone/go-reactive/internal/hydrate"
	"github.com/goliatone/go-reactive/pkg/activity"
)

// eventRecord is the wire shape of one JSON-trigger payload entry.
type eventRecord struct {
	Event string `json:"event"`
	Value any    `json:"value"`
}

var eventRecordDecoder = hydrate.NewDecoder[eventRecord]()

// dispatch diffs incoming values against committed state and invokes the
// matching callbacks, exactly once per changed (widget, sub-key) pair.
// Widgets fire in the declaration order of the current rerun. Callback
// errors are collected and surfaced to the caller; bookkeeping failures
// only reach the dispatch logger.
//
// The caller holds the session mutex.
func (s *Session) dispatch(order []string) error {
	var errs []error
	for _, id := range order {
		meta, ok := s.registry.get(id)
		if !ok {
			continue
		}
		newEnv, ok := s.store.new[id]
		if !ok {
			continue
		}
		newValue, _ := newEnv.Get()
		oldValue, _ := s.store.readCommitted(id).Get()

		switch meta.Category {
		case CategoryPlain, CategoryTrigger:
			if wireEqual(oldValue, newValue) {
				continue
			}
			if cb, ok := meta.Callbacks[WholeValueKey]; ok {
				if err := cb.invoke(); err != nil {
					errs = append(errs, err)
				}
			}
			s.emit(meta, "", verbForCategory(meta.Category))
		case CategoryJSONValue:
			s.dispatchJSONValue(meta, oldValue, newValue, &errs)
		case CategoryJSONTrigger:
			s.dispatchJSONTrigger(meta, newValue, &errs)
		}
	}
	return errors.Join(errs...)
}

// dispatchJSONValue diffs the payloads key by key, treating a missing side
// as the empty object, and fires each changed key's callback once.
func (s *Session) dispatchJSONValue(meta Metadata, oldValue, newValue any, errs *[]error) {
	oldMap, ok := wireObject(oldValue)
	if !ok && oldValue != nil {
		s.logDispatch(meta, "", "old payload is not a JSON object", nil)
		oldMap = map[string]any{}
	}
	newMap, ok := wireObject(newValue)
	if !ok {
		s.logDispatch(meta, "", "new payload is not a JSON object", nil)
		return
	}

	for _, key := range changedKeys(oldMap, newMap) {
		if cb, ok := meta.Callbacks[key]; ok {
			if err := cb.invoke(); err != nil {
				*errs = append(*errs, err)
			}
		}
		s.emit(meta, key, "widget.changed")
	}
}

// dispatchJSONTrigger fires the callback registered under each event in
// the payload. Payloads that are neither a record nor a list of records
// are a deliberate no-op: trigger producers vary in shape and dispatch
// must never raise on their account.
func (s *Session) dispatchJSONTrigger(meta Metadata, newValue any, errs *[]error) {
	records, ok := triggerRecords(meta, newValue, s)
	if !ok {
		return
	}
	for _, record := range records {
		if record.Event == "" {
			s.logDispatch(meta, "", "trigger record missing event name", nil)
			continue
		}
		if cb, ok := meta.Callbacks[record.Event]; ok {
			if err := cb.invoke(); err != nil {
				*errs = append(*errs, err)
			}
		}
		s.emit(meta, record.Event, "trigger.fired")
	}
}

// resetTriggers forces trigger-bearing widgets declared this run back to
// their neutral value in both maps, so the one rerun a press caused is
// also the only rerun that observes it. Undeclared trigger ids keep
// whatever they hold until re-declared.
func (s *Session) resetTriggers(order []string) {
	for _, id := range order {
		meta, ok := s.registry.get(id)
		if !ok || !meta.Category.isTrigger() {
			continue
		}
		s.store.setBoth(id, meta.Category.neutralValue())
	}
}

// triggerRecords normalises a JSON-trigger payload into records. nil means
// "nothing pending" and is not logged.
func triggerRecords(meta Metadata, payload any, s *Session) ([]eventRecord, bool) {
	switch typed := payload.(type) {
	case nil:
		return nil, false
	case map[string]any:
		record, err := eventRecordDecoder.Decode(hydrate.Context{WidgetID: meta.ID}, typed)
		if err != nil {
			s.logDispatch(meta, "", "undecodable trigger record", err)
			return nil, false
		}
		return []eventRecord{record}, true
	case []any:
		records := make([]eventRecord, 0, len(typed))
		for _, entry := range typed {
			entryMap, ok := entry.(map[string]any)
			if !ok {
				s.logDispatch(meta, "", "trigger batch entry is not an object", nil)
				continue
			}
			record, err := eventRecordDecoder.Decode(hydrate.Context{WidgetID: meta.ID}, entryMap)
			if err != nil {
				s.logDispatch(meta, "", "undecodable trigger record", err)
				continue
			}
			records = append(records, record)
		}
		return records, true
	default:
		s.logDispatch(meta, "", "trigger payload is neither record nor batch", nil)
		return nil, false
	}
}

// wireObject coerces a wire value into a JSON object. JSON text is
// accepted because some clients post aggregate values pre-encoded.
func wireObject(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case string:
		var out map[string]any
		if err := json.Unmarshal([]byte(typed), &out); err != nil {
			return nil, false
		}
		return out, true
	case []byte:
		var out map[string]any
		if err := json.Unmarshal(typed, &out); err != nil {
			return nil, false
		}
		return out, true
	default:
		return nil, false
	}
}

// changedKeys returns the keys whose values differ between the payloads,
// new-side keys first, both halves sorted for deterministic firing order.
func changedKeys(oldMap, newMap map[string]any) []string {
	var keys []string
	for key, newValue := range newMap {
		oldValue, ok := oldMap[key]
		if !ok || !wireEqual(oldValue, newValue) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	var removed []string
	for key := range oldMap {
		if _, ok := newMap[key]; !ok {
			removed = append(removed, key)
		}
	}
	sort.Strings(removed)
	return append(keys, removed...)
}

func wireEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

func verbForCategory(category ValueCategory) string {
	if category.isTrigger() {
		return "trigger.fired"
	}
	return "widget.changed"
}

func (s *Session) logDispatch(meta Metadata, subKey, reason string, err error) {
	s.cfg.dispatchLogger.LogDispatch(DispatchLogEvent{
		WidgetID: meta.ID,
		Category: meta.Category,
		SubKey:   subKey,
		Reason:   reason,
		Err:      err,
	})
}

// emit forwards a lifecycle event to the configured activity emitter.
// Hook failures are bookkeeping, not rerun errors.
func (s *Session) emit(meta Metadata, subKey, verb string) {
	if !s.cfg.emitter.Enabled() {
		return
	}
	err := s.cfg.emitter.Emit(context.Background(), activity.Event{
		Verb:      verb,
		SessionID: s.id,
		WidgetID:  meta.ID,
		Key:       meta.Key,
		Category:  meta.Category.String(),
		SubKey:    subKey,
	})
	if err != nil {
		s.logDispatch(meta, subKey, "activity hook failed", err)
	}
}
