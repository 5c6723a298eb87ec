package reactive

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// TriggerDelimiter joins a base widget id with an event name when composing
// trigger/aggregator ids. Ids containing it are always treated as internal.
const TriggerDelimiter = "__"

// DefaultInternalPrefix marks runtime-generated ids. It is deliberately not
// a string a user would pick as a widget key; sessions may override it via
// WithInternalPrefix as long as the replacement keeps that property.
const DefaultInternalPrefix = "$$reactive-"

// ErrAmbiguousTriggerID indicates a trigger id composition whose parts
// contain the delimiter, making the composed id impossible to decompose.
var ErrAmbiguousTriggerID = errors.New("reactive: trigger id part contains delimiter")

// MakeTriggerID composes base and event into a deterministic internal id.
// Neither part may contain TriggerDelimiter.
func MakeTriggerID(base, event string) (string, error) {
	if strings.Contains(base, TriggerDelimiter) {
		return "", fmt.Errorf("%w: base %q", ErrAmbiguousTriggerID, base)
	}
	if strings.Contains(event, TriggerDelimiter) {
		return "", fmt.Errorf("%w: event %q", ErrAmbiguousTriggerID, event)
	}
	return base + TriggerDelimiter + event, nil
}

// SplitTriggerID decomposes an id produced by MakeTriggerID.
func SplitTriggerID(id string) (base, event string, ok bool) {
	index := strings.Index(id, TriggerDelimiter)
	if index < 0 {
		return "", "", false
	}
	return id[:index], id[index+len(TriggerDelimiter):], true
}

// ComputeWidgetID derives a stable widget id from the widget type, the
// user-supplied key (may be empty), and every argument that affects the
// widget's rendering identity. The same inputs always produce the same id;
// any differing input produces a different id.
func ComputeWidgetID(widgetType, userKey string, parts ...any) string {
	hasher := sha256.New()
	hasher.Write([]byte(widgetType))
	hasher.Write([]byte{0})
	hasher.Write([]byte(userKey))
	for _, part := range parts {
		hasher.Write([]byte{0})
		encoded, err := json.Marshal(part)
		if err != nil {
			// Unencodable identity parts still need to participate
			// deterministically; fall back to the fmt rendering.
			encoded = fmt.Appendf(nil, "%#v", part)
		}
		hasher.Write(encoded)
	}
	return widgetType + "-" + hex.EncodeToString(hasher.Sum(nil)[:16])
}

// isInternalID reports whether id belongs to runtime bookkeeping given the
// session's reserved prefix. Trigger-composed ids are internal regardless
// of prefix.
func isInternalID(id, internalPrefix string) bool {
	if strings.HasPrefix(id, internalPrefix) {
		return true
	}
	return strings.Contains(id, TriggerDelimiter)
}
