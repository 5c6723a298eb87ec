// Package query implements the pure serialize/deserialize/parse layer that
// translates primitive widget values to and from their URL query-string
// representation. It is stateless and independent of the state engine;
// the session-level auto-binding facade consumes it.
package query

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// KeySigil is the prefix on a widget key that opts it into URL
// synchronization. Keys without it never touch the query string.
const KeySigil = "?"

// Limits on parsed parameters. Crafted URLs with oversized names or values
// are dropped silently rather than erroring, bounding memory exposure.
const (
	maxNameLength  = 256
	maxValueLength = 65536
)

// Kind names the primitive types the codec supports.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "unknown"
	}
}

var (
	// ErrUnsupportedType rejects values outside the primitive set.
	ErrUnsupportedType = errors.New("query: unsupported value type")
	// ErrNaN rejects NaN on both directions of the codec.
	ErrNaN = errors.New("query: NaN is not representable")
)

// KindOf maps a Go value onto its codec kind.
func KindOf(value any) (Kind, bool) {
	switch value.(type) {
	case string:
		return KindString, true
	case bool:
		return KindBool, true
	case int, int8, int16, int32, int64:
		return KindInt, true
	case float32, float64:
		return KindFloat, true
	default:
		return KindString, false
	}
}

// Serialize renders a primitive value into its query-string form. Strings
// are percent-encoded, booleans render as literal true/false, numbers use
// their canonical decimal form. NaN and non-primitive types are rejected.
func Serialize(value any) (string, error) {
	switch typed := value.(type) {
	case nil:
		return "", nil
	case string:
		return url.QueryEscape(typed), nil
	case bool:
		return strconv.FormatBool(typed), nil
	case int:
		return strconv.Itoa(typed), nil
	case int8:
		return strconv.FormatInt(int64(typed), 10), nil
	case int16:
		return strconv.FormatInt(int64(typed), 10), nil
	case int32:
		return strconv.FormatInt(int64(typed), 10), nil
	case int64:
		return strconv.FormatInt(typed, 10), nil
	case float32:
		return serializeFloat(float64(typed))
	case float64:
		return serializeFloat(typed)
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedType, value)
	}
}

func serializeFloat(f float64) (string, error) {
	if math.IsNaN(f) {
		return "", ErrNaN
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}

// Deserialize parses a query-string form back into the requested kind.
// The empty string deserializes to nil for every kind.
func Deserialize(raw string, kind Kind) (any, error) {
	if raw == "" {
		return nil, nil
	}
	switch kind {
	case KindString:
		decoded, err := url.QueryUnescape(raw)
		if err != nil {
			return nil, fmt.Errorf("query: invalid percent-encoding %q: %w", raw, err)
		}
		return decoded, nil
	case KindBool:
		switch raw {
		case "true":
			return true, nil
		case "false":
			return false, nil
		default:
			return nil, fmt.Errorf("query: %q is not a valid bool (want true or false)", raw)
		}
	case KindInt:
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("query: %q is not a valid int: %w", raw, err)
		}
		return int(parsed), nil
	case KindFloat:
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("query: %q is not a valid float: %w", raw, err)
		}
		if math.IsNaN(parsed) {
			return nil, ErrNaN
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("query: unknown kind %d", kind)
	}
}

// ParseQueryString splits a raw query string into name/value pairs. A
// leading "?" is stripped. When a name repeats, the last value wins, per
// common web-server convention. Over-length names and values are dropped.
func ParseQueryString(qs string) map[string]string {
	qs = strings.TrimPrefix(qs, KeySigil)
	params := map[string]string{}
	for _, pair := range strings.Split(qs, "&") {
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		if name == "" || len(name) > maxNameLength || len(value) > maxValueLength {
			continue
		}
		params[name] = value
	}
	return params
}

// IsAutoBindKey reports whether a widget key opts into URL binding.
func IsAutoBindKey(key string) bool {
	return strings.HasPrefix(key, KeySigil) && len(key) > len(KeySigil)
}

// ParamName strips the sigil from an auto-binding widget key.
func ParamName(key string) string {
	return strings.TrimPrefix(key, KeySigil)
}
