package reactive

import "encoding/json"

// Source names the cache a value lookup resolved from. Lookups follow a
// fixed priority: incoming/staged state, then committed state, then the
// declared default; query hydration writes report SourceQuery.
type Source string

const (
	SourceNew       Source = "new"
	SourceCommitted Source = "committed"
	SourceDefault   Source = "default"
	SourceQuery     Source = "query"
)

// Trace captures provenance for one widget value lookup.
type Trace struct {
	ID     string `json:"id"`
	Key    string `json:"key,omitempty"`
	Source Source `json:"source"`
	Found  bool   `json:"found"`
	Value  any    `json:"value,omitempty"`
}

// ToJSON serialises the trace for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a payload previously produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

// ReadWithTrace resolves idOrKey against committed-then-incoming state and
// reports where the value came from. Unlike the filtered view it accepts
// internal ids, so runtime code can trace aggregator lookups too.
func (s *Session) ReadWithTrace(idOrKey string) (any, Trace) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := idOrKey
	if resolved, ok := s.store.resolve(idOrKey); ok {
		id = resolved
	}
	trace := Trace{ID: id, Key: idOrKey}
	if env, ok := s.store.new[id]; ok {
		value, _ := env.Get()
		trace.Source = SourceNew
		if s.store.querySeeded(id) {
			trace.Source = SourceQuery
		}
		trace.Found = true
		trace.Value = value
		return value, trace
	}
	if env, ok := s.store.old[id]; ok {
		value, _ := env.Get()
		trace.Source = SourceCommitted
		trace.Found = true
		trace.Value = value
		return value, trace
	}
	if meta, ok := s.registry.get(id); ok {
		trace.Source = SourceDefault
		trace.Found = meta.Default != nil
		trace.Value = meta.Default
		return meta.Default, trace
	}
	trace.Source = SourceDefault
	return nil, trace
}
