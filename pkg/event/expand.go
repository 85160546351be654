package event

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/mlieberg/eventledger/pkg/errors"
)

// Expand merges implicit and explicit properties and flattens the result
// into a single-level map of scalars.
//
// The overlay happens only at the top level: an explicit key fully replaces
// an implicit key of the same name, including any nested structure. Nested
// maps are never deep-merged.
//
// Nested maps and PropertyExporter values are flattened recursively; each
// level of nesting prefixes its key with the parent key and an underscore,
// outermost first, so {"a": {"b": {"c": 1}}} becomes {"a_b_c": 1}.
//
// Traversal is in lexicographic key order at every level, so when two input
// paths produce the same flattened key the lexicographically later path
// wins. Expansion never mutates its inputs and either returns the complete
// flattened map or fails as a whole.
func Expand(implicit, explicit map[string]any) (Properties, error) {
	merged := make(map[string]any, len(implicit)+len(explicit))
	for k, v := range implicit {
		merged[k] = v
	}
	for k, v := range explicit {
		merged[k] = v
	}

	out := make(Properties, len(merged))
	for _, k := range sortedKeys(merged) {
		if err := expandValue(k, merged[k], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func expandValue(key string, v any, out Properties) error {
	if s, ok := coerceScalar(v); ok {
		out[key] = s
		return nil
	}

	if exporter, ok := v.(PropertyExporter); ok {
		exported, err := exporter.ToEventProperties()
		if err != nil {
			return &errors.PropertyExportError{Key: key, Err: err}
		}
		return expandNested(key, exported, out)
	}

	if nested, ok := asStringKeyedMap(v); ok {
		return expandNested(key, nested, out)
	}

	if s, ok := coerceNamedScalar(v); ok {
		out[key] = s
		return nil
	}

	return &errors.UnsupportedPropertyTypeError{Key: key, Type: fmt.Sprintf("%T", v)}
}

func expandNested(prefix string, nested map[string]any, out Properties) error {
	for _, k := range sortedKeys(nested) {
		if err := expandValue(prefix+"_"+k, nested[k], out); err != nil {
			return err
		}
	}
	return nil
}

// coerceScalar converts the directly supported concrete types.
func coerceScalar(v any) (Scalar, bool) {
	switch t := v.(type) {
	case nil:
		return Absent(), true
	case Scalar:
		return t, true
	case bool:
		return Bool(t), true
	case string:
		return Text(t), true
	case int:
		return Int(int64(t)), true
	case int8:
		return Int(int64(t)), true
	case int16:
		return Int(int64(t)), true
	case int32:
		return Int(int64(t)), true
	case int64:
		return Int(t), true
	case uint:
		return Int(int64(t)), true
	case uint8:
		return Int(int64(t)), true
	case uint16:
		return Int(int64(t)), true
	case uint32:
		return Int(int64(t)), true
	case uint64:
		return Int(int64(t)), true
	case float32:
		return Float(float64(t)), true
	case float64:
		return Float(t), true
	case time.Time:
		return Timestamp(t), true
	case *time.Time:
		if t == nil {
			return Absent(), true
		}
		return Timestamp(*t), true
	}
	return Scalar{}, false
}

// coerceNamedScalar normalizes values whose named type has a scalar
// underlying kind, e.g. symbolic identifier types declared as strings.
func coerceNamedScalar(v any) (Scalar, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), true
	case reflect.String:
		return Text(rv.String()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int(int64(rv.Uint())), true
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), true
	}
	return Scalar{}, false
}

// asStringKeyedMap converts any map with string-kinded keys to a
// map[string]any without mutating the original.
func asStringKeyedMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
