package reactive

import (
	"errors"
	"sort"
	"strings"

	"github.com/goliatone/go-reactive/pkg/query"
)

// HydrateFromQuery seeds widget state from a URL query string. Only
// widgets whose user key carries the query sigil participate; each param
// is decoded against the kind of the widget's declared default (string
// when no default exists) and written into incoming state, so the next
// rerun observes it. Per-widget decode failures are reported but do not
// stop the remaining params.
func (s *Session) HydrateFromQuery(qs string) error {
	params := query.ParseQueryString(qs)
	if len(params) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	var errs []error
	for _, key := range s.store.aliasKeys() {
		if !query.IsAutoBindKey(key) {
			continue
		}
		raw, ok := params[query.ParamName(key)]
		if !ok {
			continue
		}
		id, _ := s.store.resolve(key)
		kind := query.KindString
		if meta, ok := s.registry.get(id); ok {
			if k, ok := query.KindOf(meta.Default); ok {
				kind = k
			}
		}
		value, err := query.Deserialize(raw, kind)
		if err != nil {
			errs = append(errs, &SerializationError{ID: id, Err: err})
			continue
		}
		s.store.writeQuery(id, value)
	}
	return errors.Join(errs...)
}

// QueryString reflects the current values of sigil-keyed widgets into a
// query-string form ("a=1&b=two", names sorted). Widgets whose value fails
// to serialize are omitted and reported alongside the partial result.
func (s *Session) QueryString() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	var pairs []string
	for _, key := range s.store.aliasKeys() {
		if !query.IsAutoBindKey(key) {
			continue
		}
		id, _ := s.store.resolve(key)
		value, present := s.store.read(id).Get()
		if !present {
			continue
		}
		if meta, ok := s.registry.get(id); ok {
			decoded, err := meta.decode(value)
			if err != nil {
				errs = append(errs, &SerializationError{ID: id, Err: err})
				continue
			}
			value = decoded
		}
		encoded, err := query.Serialize(value)
		if err != nil {
			errs = append(errs, &SerializationError{ID: id, Err: err})
			continue
		}
		pairs = append(pairs, query.ParamName(key)+"="+encoded)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "&"), errors.Join(errs...)
}
