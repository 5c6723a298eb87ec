package reactive

import "sort"

// CatalogFormat identifies the representation of a widget catalog.
type CatalogFormat string

// CatalogFormatDescriptors is the flattened per-widget descriptor list.
const CatalogFormatDescriptors CatalogFormat = "descriptors"

// WidgetDescriptor summarises one registered widget for devtools and
// debug surfaces.
type WidgetDescriptor struct {
	ID           string   `json:"id"`
	Key          string   `json:"key,omitempty"`
	Label        string   `json:"label,omitempty"`
	Category     string   `json:"category"`
	Internal     bool     `json:"internal,omitempty"`
	Callbacks    []string `json:"callbacks,omitempty"`
	HasPresenter bool     `json:"has_presenter,omitempty"`
	FragmentID   string   `json:"fragment_id,omitempty"`
}

// CatalogDocument is a point-in-time description of a session's registered
// widgets. It carries no values, only shape.
type CatalogDocument struct {
	Format  CatalogFormat      `json:"format"`
	Widgets []WidgetDescriptor `json:"widgets"`
}

// Catalog describes every widget currently registered with the session,
// sorted by id.
func (s *Session) Catalog() CatalogDocument {
	s.mu.Lock()
	defer s.mu.Unlock()

	widgets := make([]WidgetDescriptor, 0, s.registry.len())
	for id, meta := range s.registry.entries {
		callbacks := make([]string, 0, len(meta.Callbacks))
		for name := range meta.Callbacks {
			callbacks = append(callbacks, name)
		}
		sort.Strings(callbacks)
		widgets = append(widgets, WidgetDescriptor{
			ID:           id,
			Key:          meta.Key,
			Label:        meta.Label,
			Category:     meta.Category.String(),
			Internal:     isInternalID(id, s.cfg.internalPrefix),
			Callbacks:    callbacks,
			HasPresenter: meta.Presenter != nil,
			FragmentID:   meta.FragmentID,
		})
	}
	sort.Slice(widgets, func(i, j int) bool {
		return widgets[i].ID < widgets[j].ID
	})
	return CatalogDocument{
		Format:  CatalogFormatDescriptors,
		Widgets: widgets,
	}
}
