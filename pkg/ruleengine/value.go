package ruleengine

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cast"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	// KindText is a string value.
	KindText Kind = iota
	// KindNumber is a float64 value.
	KindNumber
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Value is a context scalar: either a Number or a Text. The zero Value is
// the empty Text.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Number returns a numeric Value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Text returns a string Value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind {
	return v.kind
}

// Float returns the number held by v and whether v is a Number.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// String returns the textual form used for string comparison. Numbers are
// formatted in the shortest form that round-trips (35, 3.5, 1e+21).
func (v Value) String() string {
	if v.kind == KindNumber {
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return v.text
}

// Any returns v as a float64 or string.
func (v Value) Any() any {
	if v.kind == KindNumber {
		return v.num
	}
	return v.text
}

// Context maps field names to values. Lookups are exact-match; a missing
// field is not an error.
type Context map[string]Value

// ValueOf converts a Go scalar into a Value. Strings become Text, every
// numeric kind (and json.Number) becomes Number, and booleans become the
// Text "true" or "false". Anything else fails with ErrUnsupportedValue.
func ValueOf(v any) (Value, error) {
	switch val := v.(type) {
	case Value:
		return val, nil
	case string:
		return Text(val), nil
	case bool:
		return Text(strconv.FormatBool(val)), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q", ErrUnsupportedValue, val.String())
		}
		return Number(f), nil
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		f, err := cast.ToFloat64E(val)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		return Number(f), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// ContextFrom converts a generic map, such as one decoded from YAML or JSON,
// into a Context.
func ContextFrom(data map[string]any) (Context, error) {
	ctx := make(Context, len(data))
	for k, raw := range data {
		v, err := ValueOf(raw)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		ctx[k] = v
	}
	return ctx, nil
}

// Map returns the context as plain Go values, for logging and auditing.
func (c Context) Map() map[string]any {
	m := make(map[string]any, len(c))
	for k, v := range c {
		m[k] = v.Any()
	}
	return m
}
