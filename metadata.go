package reactive

import (
	"errors"
	"fmt"
	"strings"
)

// ValueCategory selects the diff/reset semantics applied to a widget value.
type ValueCategory int

const (
	// CategoryPlain is an ordinary persistent value.
	CategoryPlain ValueCategory = iota
	// CategoryTrigger is a boolean one-shot value that resets to false
	// once the rerun it caused has observed it.
	CategoryTrigger
	// CategoryJSONTrigger carries one {event, value} record, or a batched
	// list of them, and resets to nil after dispatch.
	CategoryJSONTrigger
	// CategoryJSONValue is a JSON object whose sub-keys are diffed and
	// dispatched individually.
	CategoryJSONValue
)

// String returns the category name used in logs and error messages.
func (c ValueCategory) String() string {
	switch c {
	case CategoryPlain:
		return "plain"
	case CategoryTrigger:
		return "trigger"
	case CategoryJSONTrigger:
		return "json_trigger"
	case CategoryJSONValue:
		return "json_value"
	default:
		return "unknown"
	}
}

// isTrigger reports whether values of this category reset after dispatch.
func (c ValueCategory) isTrigger() bool {
	return c == CategoryTrigger || c == CategoryJSONTrigger
}

// neutralValue is what trigger-bearing categories reset to.
func (c ValueCategory) neutralValue() any {
	if c == CategoryTrigger {
		return false
	}
	return nil
}

// WholeValueKey registers a callback against the widget's entire value
// rather than one of its sub-keys. It is reserved: JSON sub-keys and event
// names may not use it.
const WholeValueKey = "*"

// Deserializer converts a wire value into the in-script value type.
type Deserializer func(wire any) (any, error)

// Serializer converts an in-script value back into its wire form.
type Serializer func(value any) (any, error)

// CallbackFunc is user code invoked when a watched value changes. Errors
// returned here surface as the rerun's error; they are never swallowed.
type CallbackFunc func(args []any, kwargs map[string]any) error

// Callback pairs user code with the arguments bound at registration time.
type Callback struct {
	Fn     CallbackFunc
	Args   []any
	Kwargs map[string]any
}

func (c Callback) invoke() error {
	if c.Fn == nil {
		return nil
	}
	return c.Fn(c.Args, c.Kwargs)
}

// Metadata describes one widget for the lifetime of its declaration.
type Metadata struct {
	// ID is the stable widget identity, usually from ComputeWidgetID.
	ID string
	// Key is the optional user-facing alias exposed through the view.
	Key string
	// Label names the widget in identity error messages.
	Label string

	Category    ValueCategory
	Deserialize Deserializer
	Serialize   Serializer
	// Default is the wire-form value used when neither state map holds
	// an entry for the widget.
	Default any

	// Callbacks maps a sub-key or event name (or WholeValueKey) to the
	// user callback dispatched when that key changes.
	Callbacks map[string]Callback

	// Presenter post-processes the stored value on user-facing reads.
	Presenter Presenter

	// FragmentID scopes the widget to a fragment rerun when non-empty.
	FragmentID string
}

var errMetadataID = errors.New("reactive: metadata requires an id")

// validate rejects callback shapes that dispatch could not route.
func (m Metadata) validate() error {
	if m.ID == "" {
		return errMetadataID
	}
	for name := range m.Callbacks {
		if name == WholeValueKey {
			if m.Category == CategoryJSONValue || m.Category == CategoryJSONTrigger {
				return fmt.Errorf("reactive: widget %q: %q callback not allowed for %s category", m.ID, WholeValueKey, m.Category)
			}
			continue
		}
		if m.Category == CategoryPlain || m.Category == CategoryTrigger {
			return fmt.Errorf("reactive: widget %q: sub-key callback %q requires an aggregate category", m.ID, name)
		}
		if strings.Contains(name, TriggerDelimiter) {
			return fmt.Errorf("reactive: widget %q: callback key %q contains reserved delimiter %q", m.ID, name, TriggerDelimiter)
		}
	}
	return nil
}

// displayName prefers the human label when reporting identity errors.
func (m Metadata) displayName() string {
	if m.Label != "" {
		return m.Label
	}
	return m.ID
}

// decode applies the widget's deserializer, defaulting to identity.
func (m Metadata) decode(wire any) (any, error) {
	if m.Deserialize == nil {
		return wire, nil
	}
	return m.Deserialize(wire)
}

// encode applies the widget's serializer, defaulting to identity.
func (m Metadata) encode(value any) (any, error) {
	if m.Serialize == nil {
		return value, nil
	}
	return m.Serialize(value)
}
