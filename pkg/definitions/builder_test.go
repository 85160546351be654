package definitions

import (
	goerrors "errors"
	"testing"
	"time"

	"github.com/mlieberg/eventledger/pkg/errors"
)

func mustDeclare(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("declaration failed: %v", err)
	}
}

func buildSample(t *testing.T) *Registry {
	t.Helper()
	b := NewBuilder().Prefix("ab")
	mustDeclare(t, b.Version(1, "2024-01-01"))
	mustDeclare(t, b.Category("user"))
	mustDeclare(t, b.Event("signed_up", "2024-01-01", "A user created an account."))
	mustDeclare(t, b.Note("2024-02-01", "ada", "Added age property."))
	mustDeclare(t, b.Event("signed_in", "2024-01-05", "A user authenticated."))
	mustDeclare(t, b.Category("billing"))
	mustDeclare(t, b.Event("invoice_paid", "2024-03-01", "An invoice was settled."))

	r, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return r
}

func TestBuilderDuplicates(t *testing.T) {
	t.Run("duplicate version", func(t *testing.T) {
		b := NewBuilder()
		mustDeclare(t, b.Version(1, "2024-01-01"))
		err := b.Version(1, "2024-02-01")
		var dup *errors.DuplicateVersionError
		if !goerrors.As(err, &dup) {
			t.Fatalf("Version() error = %v, want DuplicateVersionError", err)
		}
		if dup.Version != 1 {
			t.Errorf("DuplicateVersionError.Version = %d, want 1", dup.Version)
		}
	})

	t.Run("duplicate category", func(t *testing.T) {
		b := NewBuilder()
		mustDeclare(t, b.Version(1, "2024-01-01"))
		mustDeclare(t, b.Category("user"))
		err := b.Category("user")
		var dup *errors.DuplicateCategoryError
		if !goerrors.As(err, &dup) {
			t.Fatalf("Category() error = %v, want DuplicateCategoryError", err)
		}
	})

	t.Run("duplicate event", func(t *testing.T) {
		b := NewBuilder()
		mustDeclare(t, b.Version(1, "2024-01-01"))
		mustDeclare(t, b.Category("user"))
		mustDeclare(t, b.Event("signed_up", "2024-01-01", "A user created an account."))
		err := b.Event("signed_up", "2024-01-02", "Shadowing declaration.")
		var dup *errors.DuplicateEventError
		if !goerrors.As(err, &dup) {
			t.Fatalf("Event() error = %v, want DuplicateEventError", err)
		}
	})

	t.Run("same event name in another category is fine", func(t *testing.T) {
		b := NewBuilder()
		mustDeclare(t, b.Version(1, "2024-01-01"))
		mustDeclare(t, b.Category("user"))
		mustDeclare(t, b.Event("created", "2024-01-01", "A user was created."))
		mustDeclare(t, b.Category("project"))
		mustDeclare(t, b.Event("created", "2024-01-01", "A project was created."))
		if _, err := b.Build(); err != nil {
			t.Fatalf("Build() error = %v, want nil", err)
		}
	})
}

func TestBuilderMissingDescription(t *testing.T) {
	for _, desc := range []string{"", "   ", "\t\n"} {
		b := NewBuilder()
		mustDeclare(t, b.Version(1, "2024-01-01"))
		mustDeclare(t, b.Category("user"))
		err := b.Event("signed_up", "2024-01-01", desc)
		var missing *errors.MissingDescriptionError
		if !goerrors.As(err, &missing) {
			t.Fatalf("Event(description=%q) error = %v, want MissingDescriptionError", desc, err)
		}
		if missing.Event != "signed_up" {
			t.Errorf("MissingDescriptionError.Event = %q, want %q", missing.Event, "signed_up")
		}
	}
}

func TestBuilderInvalidTimestamp(t *testing.T) {
	b := NewBuilder()
	err := b.Version(1, "not a date")
	var invalid *errors.InvalidTimestampError
	if !goerrors.As(err, &invalid) {
		t.Fatalf("Version() error = %v, want InvalidTimestampError", err)
	}
	if invalid.Field != "introduced_at" {
		t.Errorf("InvalidTimestampError.Field = %q, want %q", invalid.Field, "introduced_at")
	}
}

func TestBuilderNoteOutsideEvent(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(b *Builder)
	}{
		{"no scope at all", func(b *Builder) {}},
		{"version scope only", func(b *Builder) {
			mustDeclare(t, b.Version(1, "2024-01-01"))
		}},
		{"category scope only", func(b *Builder) {
			mustDeclare(t, b.Version(1, "2024-01-01"))
			mustDeclare(t, b.Category("user"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			tt.prepare(b)
			err := b.Note("2024-02-01", "ada", "Orphan note.")
			var invalid *errors.InvalidNoteContextError
			if !goerrors.As(err, &invalid) {
				t.Fatalf("Note() error = %v, want InvalidNoteContextError", err)
			}
		})
	}
}

func TestBuilderErrorLatches(t *testing.T) {
	b := NewBuilder()
	mustDeclare(t, b.Version(1, "2024-01-01"))
	first := b.Version(1, "2024-02-01")
	if first == nil {
		t.Fatal("duplicate version should fail")
	}

	if err := b.Category("user"); !goerrors.Is(err, first) {
		t.Errorf("Category() after failure = %v, want latched %v", err, first)
	}
	if _, err := b.Build(); !goerrors.Is(err, first) {
		t.Errorf("Build() after failure = %v, want latched %v", err, first)
	}
}

func TestBuilderClosedAfterBuild(t *testing.T) {
	b := NewBuilder()
	mustDeclare(t, b.Version(1, "2024-01-01"))
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if err := b.Version(2, "2024-02-01"); err == nil {
		t.Error("Version() after Build should fail")
	}
}

func TestBuilderRetireScopes(t *testing.T) {
	b := NewBuilder().Prefix("ab")
	mustDeclare(t, b.Version(1, "2024-01-01"))
	mustDeclare(t, b.Category("user"))
	mustDeclare(t, b.Event("signed_up", "2024-01-01", "A user created an account."))
	mustDeclare(t, b.Retire("2025-06-01"))

	r, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	v, _ := r.Version(1)
	c, _ := v.Category("user")
	e, _ := c.Event("signed_up")

	if !e.Retired() {
		t.Error("event should be retired")
	}
	at, ok := e.RetiredAt()
	if !ok || !at.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("RetiredAt() = %v, %v", at, ok)
	}
	if c.Retired() || v.Retired() {
		t.Error("retirement should apply to the innermost scope only")
	}
}

func TestBuilderRetireOutsideScope(t *testing.T) {
	if err := NewBuilder().Retire("2025-06-01"); err == nil {
		t.Error("Retire() outside any scope should fail")
	}
}

func TestBuilderVersionNumberMustBePositive(t *testing.T) {
	for _, n := range []int{0, -1} {
		if err := NewBuilder().Version(n, "2024-01-01"); err == nil {
			t.Errorf("Version(%d) should fail", n)
		}
	}
}

func TestParseTimestampLayouts(t *testing.T) {
	tests := []struct {
		value string
		want  time.Time
	}{
		{"2024-01-02T15:04:05Z", time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"2024-01-02T15:04:05", time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"2024-01-02 15:04:05", time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"2024/01/02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"  2024-01-02  ", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := ParseTimestamp("introduced_at", tt.value)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) error = %v", tt.value, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}

	for _, bad := range []string{"", "   ", "01-02-2024", "yesterday"} {
		_, err := ParseTimestamp("introduced_at", bad)
		var invalid *errors.InvalidTimestampError
		if !goerrors.As(err, &invalid) {
			t.Errorf("ParseTimestamp(%q) error = %v, want InvalidTimestampError", bad, err)
		}
	}
}
