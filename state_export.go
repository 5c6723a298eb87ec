package reactive

// ExportState copies the committed wire values, keyed by widget id. The
// snapshot package persists these; internal ids are included so restored
// components keep their aggregator payloads.
func (s *Session) ExportState() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]any, len(s.store.old))
	for id, env := range s.store.old {
		if value, ok := env.Get(); ok {
			out[id] = cloneWire(value)
		}
	}
	return out
}

// ExportAliases copies the user-key alias table alongside the state so a
// restored session resolves keys the same way.
func (s *Session) ExportAliases() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.store.aliases))
	for key, id := range s.store.aliases {
		out[key] = id
	}
	return out
}

// ImportState seeds wire values into incoming state. They are promoted to
// committed state by the next rerun's commit, keeping commit the sole bulk
// mutator of the committed map.
func (s *Session) ImportState(values map[string]any, aliases map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	for id, value := range values {
		if id == "" {
			continue
		}
		s.store.writeNew(id, cloneWire(value))
	}
	for key, id := range aliases {
		if key == "" || id == "" {
			continue
		}
		s.store.alias(key, id)
	}
	return nil
}
