package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrConversion is returned when a numeric task field holds a value that
// cannot be coerced to an integer.
var ErrConversion = errors.New("cannot convert to integer")

type numberKind uint8

const (
	kindAbsent numberKind = iota
	kindNumber
	kindString
	kindBool
	kindInvalid // list, object or anything else a decoder handed us
)

// Number is an integer task field kept exactly as it was supplied.
// Hand-written task files mix 3, 3.0, "3" and null for the same field, so
// coercion is deferred to IntOr: a garbage value then fails the analysis
// call that uses it instead of the file load.
type Number struct {
	kind numberKind
	num  float64
	str  string // string value, or raw text for kindInvalid
	b    bool
}

// Int returns a Number holding n.
func Int(n int) Number {
	return Number{kind: kindNumber, num: float64(n)}
}

// Float returns a Number holding f.
func Float(f float64) Number {
	return Number{kind: kindNumber, num: f}
}

// Text returns a Number holding the unparsed string s.
func Text(s string) Number {
	return Number{kind: kindString, str: s}
}

// Bool returns a Number holding b.
func Bool(b bool) Number {
	return Number{kind: kindBool, b: b}
}

// NumberOf converts a generically decoded value (as produced by TOML or
// map-based decoders) into a Number.
func NumberOf(v any) Number {
	switch x := v.(type) {
	case nil:
		return Number{}
	case Number:
		return x
	case int:
		return Int(x)
	case int64:
		return Number{kind: kindNumber, num: float64(x)}
	case uint64:
		return Number{kind: kindNumber, num: float64(x)}
	case float64:
		return Float(x)
	case float32:
		return Float(float64(x))
	case string:
		return Text(x)
	case bool:
		return Bool(x)
	default:
		return Number{kind: kindInvalid, str: fmt.Sprint(v)}
	}
}

// IsZero reports whether the field was absent. It lets encoders drop
// absent fields via omitzero/omitempty.
func (n Number) IsZero() bool {
	return n.kind == kindAbsent
}

// Falsy reports whether the value should be replaced by the field default:
// absent, numeric zero, empty string or false.
func (n Number) Falsy() bool {
	switch n.kind {
	case kindAbsent:
		return true
	case kindNumber:
		return n.num == 0
	case kindString:
		return n.str == ""
	case kindBool:
		return !n.b
	default:
		return false
	}
}

// IntOr coerces the value to an int, returning def when the value is falsy.
// Numbers truncate toward zero, strings must hold a base-10 integer and
// true is 1. Anything else wraps ErrConversion.
func (n Number) IntOr(def int) (int, error) {
	if n.Falsy() {
		return def, nil
	}
	switch n.kind {
	case kindNumber:
		if math.IsNaN(n.num) || math.IsInf(n.num, 0) || math.Abs(n.num) > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %v", ErrConversion, n.num)
		}
		return int(n.num), nil
	case kindBool:
		return 1, nil
	case kindString:
		v, err := strconv.Atoi(strings.TrimSpace(n.str))
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrConversion, n.str)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrConversion, n.str)
	}
}

// Equal reports whether n and o hold the same supplied value.
func (n Number) Equal(o Number) bool {
	return n == o
}

// String renders the value the way it was supplied.
func (n Number) String() string {
	switch n.kind {
	case kindAbsent:
		return ""
	case kindNumber:
		return strconv.FormatFloat(n.num, 'f', -1, 64)
	case kindBool:
		return strconv.FormatBool(n.b)
	default:
		return n.str
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*n = Number{}
	case raw == "true" || raw == "false":
		*n = Bool(raw == "true")
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Text(s)
	case strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{"):
		*n = Number{kind: kindInvalid, str: raw}
	default:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("parse number %s: %w", raw, err)
		}
		*n = Float(f)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	switch n.kind {
	case kindAbsent:
		return []byte("null"), nil
	case kindNumber:
		return []byte(strconv.FormatFloat(n.num, 'f', -1, 64)), nil
	case kindBool:
		return []byte(strconv.FormatBool(n.b)), nil
	case kindString:
		return json.Marshal(n.str)
	default:
		if json.Valid([]byte(n.str)) {
			return []byte(n.str), nil
		}
		return json.Marshal(n.str)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *Number) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		out, err := yaml.Marshal(value)
		if err != nil {
			return err
		}
		*n = Number{kind: kindInvalid, str: strings.TrimSpace(string(out))}
		return nil
	}
	switch value.Tag {
	case "!!null":
		*n = Number{}
	case "!!bool":
		var b bool
		if err := value.Decode(&b); err != nil {
			return err
		}
		*n = Bool(b)
	case "!!int", "!!float":
		var f float64
		if err := value.Decode(&f); err != nil {
			return err
		}
		*n = Float(f)
	default:
		*n = Text(value.Value)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (n Number) MarshalYAML() (any, error) {
	switch n.kind {
	case kindAbsent:
		return nil, nil
	case kindNumber:
		if n.num == math.Trunc(n.num) && math.Abs(n.num) < 1<<53 {
			return int64(n.num), nil
		}
		return n.num, nil
	case kindBool:
		return n.b, nil
	default:
		return n.str, nil
	}
}
