package event

import (
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "github.com/mlieberg/eventledger/pkg/errors"
)

type exporter struct {
	props map[string]any
	err   error
}

func (e exporter) ToEventProperties() (map[string]any, error) {
	return e.props, e.err
}

func TestExpandFlatIdentity(t *testing.T) {
	now := time.Date(2014, 2, 4, 0, 0, 0, 0, time.UTC)
	input := map[string]any{
		"age":       27,
		"gender":    "female",
		"active":    true,
		"score":     1.5,
		"joined_at": now,
		"deleted":   nil,
	}

	got, err := Expand(nil, input)
	if err != nil {
		t.Fatalf("Expand() error = %v, want nil", err)
	}

	want := Properties{
		"age":       Int(27),
		"gender":    Text("female"),
		"active":    Bool(true),
		"score":     Float(1.5),
		"joined_at": Timestamp(now),
		"deleted":   Absent(),
	}
	if !got.Equal(want) {
		t.Errorf("Expand() = %v, want %v", got, want)
	}
}

func TestExpandNesting(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]any
		want  Properties
	}{
		{
			name:  "deep single chain",
			input: map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}}},
			want:  Properties{"a_b_c": Int(1)},
		},
		{
			name:  "sibling keys share prefix",
			input: map[string]any{"a": map[string]any{"b": 1, "c": 2}},
			want:  Properties{"a_b": Int(1), "a_c": Int(2)},
		},
		{
			name: "nested beside flat",
			input: map[string]any{
				"plan": "pro",
				"user": map[string]any{"age": 30},
			},
			want: Properties{"plan": Text("pro"), "user_age": Int(30)},
		},
		{
			name:  "typed nested map",
			input: map[string]any{"counts": map[string]int{"a": 1}},
			want:  Properties{"counts_a": Int(1)},
		},
		{
			name:  "empty nested map contributes nothing",
			input: map[string]any{"empty": map[string]any{}},
			want:  Properties{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(nil, tt.input)
			if err != nil {
				t.Fatalf("Expand() error = %v, want nil", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Expand() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpandExplicitOverridesImplicit(t *testing.T) {
	implicit := map[string]any{"x": 1, "keep": "yes"}
	explicit := map[string]any{"x": 2}

	got, err := Expand(implicit, explicit)
	if err != nil {
		t.Fatalf("Expand() error = %v, want nil", err)
	}
	want := Properties{"x": Int(2), "keep": Text("yes")}
	if !got.Equal(want) {
		t.Errorf("Expand() = %v, want %v", got, want)
	}
}

func TestExpandOverlayIsTopLevelOnly(t *testing.T) {
	// The explicit value replaces the implicit one wholesale; nested maps
	// are never deep-merged.
	implicit := map[string]any{"user": map[string]any{"age": 30, "name": "ada"}}
	explicit := map[string]any{"user": map[string]any{"age": 31}}

	got, err := Expand(implicit, explicit)
	if err != nil {
		t.Fatalf("Expand() error = %v, want nil", err)
	}
	want := Properties{"user_age": Int(31)}
	if !got.Equal(want) {
		t.Errorf("Expand() = %v, want %v", got, want)
	}
}

func TestExpandExporterTransparent(t *testing.T) {
	got, err := Expand(nil, map[string]any{
		"u": exporter{props: map[string]any{"age": 30}},
	})
	if err != nil {
		t.Fatalf("Expand() error = %v, want nil", err)
	}
	want := Properties{"u_age": Int(30)}
	if !got.Equal(want) {
		t.Errorf("Expand() = %v, want %v", got, want)
	}
}

func TestExpandExporterNested(t *testing.T) {
	inner := exporter{props: map[string]any{"city": "berlin"}}
	outer := exporter{props: map[string]any{"name": "ada", "origin": inner}}

	got, err := Expand(nil, map[string]any{"user": outer})
	if err != nil {
		t.Fatalf("Expand() error = %v, want nil", err)
	}
	want := Properties{
		"user_name":        Text("ada"),
		"user_origin_city": Text("berlin"),
	}
	if !got.Equal(want) {
		t.Errorf("Expand() = %v, want %v", got, want)
	}
}

func TestExpandExporterFailure(t *testing.T) {
	boom := fmt.Errorf("boom")
	_, err := Expand(nil, map[string]any{
		"u": exporter{err: boom},
	})

	var exportErr *apperrors.PropertyExportError
	if !errors.As(err, &exportErr) {
		t.Fatalf("Expand() error = %v, want PropertyExportError", err)
	}
	if exportErr.Key != "u" {
		t.Errorf("PropertyExportError.Key = %q, want %q", exportErr.Key, "u")
	}
	if !errors.Is(err, boom) {
		t.Errorf("PropertyExportError should wrap the underlying error")
	}
}

func TestExpandUnsupportedShapes(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		wantKey string
	}{
		{
			name:    "slice value",
			input:   map[string]any{"tags": []int{1, 2, 3}},
			wantKey: "tags",
		},
		{
			name:    "plain struct without exporter",
			input:   map[string]any{"user": struct{ Age int }{Age: 30}},
			wantKey: "user",
		},
		{
			name:    "non-string map keys",
			input:   map[string]any{"lookup": map[int]string{1: "a"}},
			wantKey: "lookup",
		},
		{
			name:    "nested unsupported names full path",
			input:   map[string]any{"user": map[string]any{"tags": []string{"a"}}},
			wantKey: "user_tags",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Expand(nil, tt.input)
			var unsupported *apperrors.UnsupportedPropertyTypeError
			if !errors.As(err, &unsupported) {
				t.Fatalf("Expand() error = %v, want UnsupportedPropertyTypeError", err)
			}
			if unsupported.Key != tt.wantKey {
				t.Errorf("UnsupportedPropertyTypeError.Key = %q, want %q",
					unsupported.Key, tt.wantKey)
			}
		})
	}
}

func TestExpandNamedScalarTypes(t *testing.T) {
	type gender string
	type level int

	got, err := Expand(nil, map[string]any{
		"gender": gender("female"),
		"level":  level(3),
	})
	if err != nil {
		t.Fatalf("Expand() error = %v, want nil", err)
	}
	want := Properties{"gender": Text("female"), "level": Int(3)}
	if !got.Equal(want) {
		t.Errorf("Expand() = %v, want %v", got, want)
	}
}

func TestExpandCollisionLastWriteWins(t *testing.T) {
	// Two paths produce the flattened key "a_b"; traversal is in
	// lexicographic key order, so the "a_b" top-level entry (sorting after
	// "a") wins over the nested path.
	got, err := Expand(nil, map[string]any{
		"a":   map[string]any{"b": 1},
		"a_b": 2,
	})
	if err != nil {
		t.Fatalf("Expand() error = %v, want nil", err)
	}
	if !got.Equal(Properties{"a_b": Int(2)}) {
		t.Errorf("Expand() = %v, want last write to win", got)
	}
}

func TestExpandDoesNotMutateInputs(t *testing.T) {
	implicit := map[string]any{"x": 1}
	explicit := map[string]any{"x": 2, "nested": map[string]any{"y": 3}}

	if _, err := Expand(implicit, explicit); err != nil {
		t.Fatalf("Expand() error = %v, want nil", err)
	}

	if implicit["x"] != 1 {
		t.Errorf("implicit map was mutated: %v", implicit)
	}
	if explicit["x"] != 2 || len(explicit) != 2 {
		t.Errorf("explicit map was mutated: %v", explicit)
	}
}

func TestExpandNilInputs(t *testing.T) {
	got, err := Expand(nil, nil)
	if err != nil {
		t.Fatalf("Expand() error = %v, want nil", err)
	}
	if len(got) != 0 {
		t.Errorf("Expand(nil, nil) = %v, want empty", got)
	}
}
