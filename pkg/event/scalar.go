package event

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Kind identifies the concrete shape held by a Scalar.
type Kind int

const (
	// KindAbsent is a null / missing value.
	KindAbsent Kind = iota
	// KindBool is a boolean value.
	KindBool
	// KindInt is a signed integer value.
	KindInt
	// KindFloat is a floating-point value.
	KindFloat
	// KindText is a text value.
	KindText
	// KindTime is a point-in-time value.
	KindTime
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindTime:
		return "time"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Scalar is a tagged variant over the legal leaf values of property
// expansion: boolean, integer, float, text, point-in-time or absent.
// The zero value is the absent scalar.
type Scalar struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	t    time.Time
}

// Absent returns the null scalar.
func Absent() Scalar {
	return Scalar{kind: KindAbsent}
}

// Bool returns a boolean scalar.
func Bool(v bool) Scalar {
	return Scalar{kind: KindBool, b: v}
}

// Int returns an integer scalar.
func Int(v int64) Scalar {
	return Scalar{kind: KindInt, i: v}
}

// Float returns a floating-point scalar.
func Float(v float64) Scalar {
	return Scalar{kind: KindFloat, f: v}
}

// Text returns a text scalar.
func Text(v string) Scalar {
	return Scalar{kind: KindText, s: v}
}

// Timestamp returns a point-in-time scalar.
func Timestamp(v time.Time) Scalar {
	return Scalar{kind: KindTime, t: v}
}

// Kind returns the shape of the scalar.
func (s Scalar) Kind() Kind {
	return s.kind
}

// IsAbsent reports whether the scalar is the null value.
func (s Scalar) IsAbsent() bool {
	return s.kind == KindAbsent
}

// Interface returns the underlying Go value: nil, bool, int64, float64,
// string or time.Time depending on the kind.
func (s Scalar) Interface() any {
	switch s.kind {
	case KindBool:
		return s.b
	case KindInt:
		return s.i
	case KindFloat:
		return s.f
	case KindText:
		return s.s
	case KindTime:
		return s.t
	default:
		return nil
	}
}

// String renders the scalar for display and logging.
func (s Scalar) String() string {
	switch s.kind {
	case KindBool:
		return strconv.FormatBool(s.b)
	case KindInt:
		return strconv.FormatInt(s.i, 10)
	case KindFloat:
		return strconv.FormatFloat(s.f, 'g', -1, 64)
	case KindText:
		return s.s
	case KindTime:
		return s.t.Format(time.RFC3339)
	default:
		return "<absent>"
	}
}

// Equal reports whether two scalars hold the same kind and value.
func (s Scalar) Equal(o Scalar) bool {
	if s.kind != o.kind {
		return false
	}
	switch s.kind {
	case KindBool:
		return s.b == o.b
	case KindInt:
		return s.i == o.i
	case KindFloat:
		return s.f == o.f
	case KindText:
		return s.s == o.s
	case KindTime:
		return s.t.Equal(o.t)
	default:
		return true
	}
}

// MarshalJSON encodes the scalar as its natural JSON value. Points in time
// encode as RFC 3339 strings, absent values as null.
func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Interface())
}

// Properties is a flat map of scalar-typed event properties, the only
// payload shape ever handed to a sink.
type Properties map[string]Scalar

// Interface returns the properties as a plain map of Go values, for JSON
// encoding and interop with libraries that expect map[string]any.
func (p Properties) Interface() map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v.Interface()
	}
	return out
}

// Equal reports whether two property maps hold the same keys and values.
func (p Properties) Equal(o Properties) bool {
	if len(p) != len(o) {
		return false
	}
	for k, v := range p {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
