package reactive

// stateStore holds the dual state maps for one session: old is the value
// committed by the previous rerun, new is whatever the latest client round
// trip (or the script itself) wrote since. commit is the only bulk mutator
// of old, so anything reading old mid-run sees the prior rerun's snapshot.
type stateStore struct {
	old     map[string]Envelope
	new     map[string]Envelope
	aliases map[string]string

	// ids in new that were seeded from the URL rather than a client
	// round trip or a programmatic write. Trace lookups report these
	// separately; commit clears the marks along with the incoming map.
	fromQuery map[string]struct{}
}

func newStateStore() *stateStore {
	return &stateStore{
		old:       map[string]Envelope{},
		new:       map[string]Envelope{},
		aliases:   map[string]string{},
		fromQuery: map[string]struct{}{},
	}
}

// read prefers the incoming value over the committed one.
func (s *stateStore) read(id string) Envelope {
	if env, ok := s.new[id]; ok {
		return env
	}
	if env, ok := s.old[id]; ok {
		return env
	}
	return Missing()
}

// readCommitted ignores the incoming map entirely.
func (s *stateStore) readCommitted(id string) Envelope {
	if env, ok := s.old[id]; ok {
		return env
	}
	return Missing()
}

// writeNew records an incoming or programmatic value for id. It
// supersedes any earlier query seed for the same id.
func (s *stateStore) writeNew(id string, wire any) {
	s.new[id] = Present(wire)
	delete(s.fromQuery, id)
}

// writeQuery records a URL-hydrated value for id.
func (s *stateStore) writeQuery(id string, wire any) {
	s.new[id] = Present(wire)
	s.fromQuery[id] = struct{}{}
}

// querySeeded reports whether id's incoming value came from the URL.
func (s *stateStore) querySeeded(id string) bool {
	_, ok := s.fromQuery[id]
	return ok
}

// commit promotes every incoming value into the committed map and clears
// the incoming map. Absence of an id in new means "unchanged".
func (s *stateStore) commit() {
	for id, env := range s.new {
		s.old[id] = env
	}
	s.new = map[string]Envelope{}
	s.fromQuery = map[string]struct{}{}
}

// setBoth forces one id to a value in both maps, bypassing commit. Only
// the trigger reset protocol uses it.
func (s *stateStore) setBoth(id string, wire any) {
	env := Present(wire)
	s.old[id] = env
	s.new[id] = env
	delete(s.fromQuery, id)
}

func (s *stateStore) alias(userKey, id string) {
	s.aliases[userKey] = id
}

func (s *stateStore) resolve(userKey string) (string, bool) {
	id, ok := s.aliases[userKey]
	return id, ok
}

// aliasKeys returns every user key currently aliased, in map order; the
// view sorts before exposing them.
func (s *stateStore) aliasKeys() []string {
	keys := make([]string, 0, len(s.aliases))
	for key := range s.aliases {
		keys = append(keys, key)
	}
	return keys
}

// clear drops all state. Shutdown calls it so an evicted session cannot
// leak large payloads through lingering references.
func (s *stateStore) clear() {
	s.old = map[string]Envelope{}
	s.new = map[string]Envelope{}
	s.aliases = map[string]string{}
	s.fromQuery = map[string]struct{}{}
}
