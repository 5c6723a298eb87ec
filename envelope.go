package reactive

import "errors"

// ErrMissing is returned when unwrapping an envelope that holds no value.
var ErrMissing = errors.New("reactive: envelope holds no value")

// Envelope records whether a widget value has been observed at all,
// keeping "never set" distinct from "set to nil". Both state maps store
// envelopes rather than raw wire values for exactly this reason.
type Envelope struct {
	value   any
	present bool
}

// Present wraps a wire value in an envelope.
func Present(value any) Envelope {
	return Envelope{value: value, present: true}
}

// Missing returns the empty envelope.
func Missing() Envelope {
	return Envelope{}
}

// IsPresent reports whether the envelope carries a value.
func (e Envelope) IsPresent() bool {
	return e.present
}

// Unwrap returns the carried value, or ErrMissing for the empty envelope.
func (e Envelope) Unwrap() (any, error) {
	if !e.present {
		return nil, ErrMissing
	}
	return e.value, nil
}

// Get returns the carried value together with a presence flag.
func (e Envelope) Get() (any, bool) {
	return e.value, e.present
}

// OrElse returns the carried value when present, fallback otherwise.
func (e Envelope) OrElse(fallback any) any {
	if e.present {
		return e.value
	}
	return fallback
}
