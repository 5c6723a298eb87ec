package reactive

// registry stores widget metadata for a single session. It is owned by the
// session and guarded by the session mutex; it carries no locking itself.
type registry struct {
	entries map[string]Metadata
}

func newRegistry() *registry {
	return &registry{entries: map[string]Metadata{}}
}

// register stores or overwrites metadata for its id. Re-registering the
// same id within a run is idempotent; collision detection happens at the
// rerun layer, which knows declaration order.
func (r *registry) register(meta Metadata) error {
	if err := meta.validate(); err != nil {
		return err
	}
	r.entries[meta.ID] = meta
	return nil
}

func (r *registry) get(id string) (Metadata, bool) {
	meta, ok := r.entries[id]
	return meta, ok
}

// prune drops metadata for ids missing from keep. Stored values survive a
// prune; only the metadata goes, which is what makes dispatch skip widgets
// that fell out of the script until they are declared again.
func (r *registry) prune(keep map[string]struct{}) {
	for id := range r.entries {
		if _, ok := keep[id]; !ok {
			delete(r.entries, id)
		}
	}
}

func (r *registry) len() int {
	return len(r.entries)
}
