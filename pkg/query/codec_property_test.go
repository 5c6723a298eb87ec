package query

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestSerializeRoundTrip verifies deserialize(serialize(v)) == v for every
// supported primitive kind.
func TestSerializeRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("strings survive the round trip", prop.ForAll(
		func(s string) bool {
			if s == "" {
				return true // empty deserializes to nil by contract
			}
			encoded, err := Serialize(s)
			if err != nil {
				return false
			}
			decoded, err := Deserialize(encoded, KindString)
			if err != nil {
				return false
			}
			return decoded == s
		},
		gen.AnyString(),
	))

	properties.Property("ints survive the round trip", prop.ForAll(
		func(n int) bool {
			encoded, err := Serialize(n)
			if err != nil {
				return false
			}
			decoded, err := Deserialize(encoded, KindInt)
			if err != nil {
				return false
			}
			return decoded == n
		},
		gen.Int(),
	))

	properties.Property("floats survive the round trip", prop.ForAll(
		func(f float64) bool {
			if math.IsNaN(f) {
				return true // rejected by contract, covered elsewhere
			}
			encoded, err := Serialize(f)
			if err != nil {
				return false
			}
			decoded, err := Deserialize(encoded, KindFloat)
			if err != nil {
				return false
			}
			return decoded == f
		},
		gen.Float64(),
	))

	properties.Property("bools survive the round trip", prop.ForAll(
		func(b bool) bool {
			encoded, err := Serialize(b)
			if err != nil {
				return false
			}
			decoded, err := Deserialize(encoded, KindBool)
			if err != nil {
				return false
			}
			return decoded == b
		},
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// TestParseQueryStringLastWins verifies the repeated-name rule holds for
// arbitrary name/value shapes.
func TestParseQueryStringLastWins(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("the last occurrence of a name wins", prop.ForAll(
		func(name, first, last string) bool {
			if name == "" || len(name) > maxNameLength {
				return true
			}
			if len(first) > maxValueLength || len(last) > maxValueLength {
				return true
			}
			params := ParseQueryString(name + "=" + first + "&" + name + "=" + last)
			return params[name] == last
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
