package definitions

import (
	"fmt"
	"strings"
	"time"

	"github.com/mlieberg/eventledger/pkg/errors"
)

// Builder materializes a Registry from a sequence of declarative
// instructions in a single pass. Scopes nest strictly: a category opens
// inside the most recently opened version, an event inside the most
// recently opened category, and opening a sibling scope closes the previous
// one. Closed scopes cannot be reopened.
//
// The first failing instruction latches: every later call returns the same
// error and Build produces no registry. A registry is either fully valid or
// not produced at all.
type Builder struct {
	registry *Registry
	version  *Version
	category *Category
	event    *Event
	built    bool
	err      error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		registry: &Registry{versions: make(map[int]*Version)},
	}
}

// Prefix records the global identity prefix. This is build-time
// configuration, not a per-event setting; when called more than once the
// last write wins.
func (b *Builder) Prefix(prefix string) *Builder {
	if b.err != nil || b.built {
		return b
	}
	b.registry.prefix = prefix
	for _, v := range b.registry.versions {
		v.prefix = prefix
	}
	return b
}

// Version opens a new version scope.
func (b *Builder) Version(number int, introducedAt string) error {
	if err := b.usable(); err != nil {
		return err
	}
	if number < 1 {
		return b.fail(fmt.Errorf("version number must be positive, got %d", number))
	}
	if _, ok := b.registry.versions[number]; ok {
		return b.fail(&errors.DuplicateVersionError{Version: number})
	}
	at, err := b.timestamp("introduced_at", introducedAt)
	if err != nil {
		return err
	}

	v := &Version{
		prefix:       b.registry.prefix,
		number:       number,
		introducedAt: at,
		categories:   make(map[string]*Category),
	}
	b.registry.versions[number] = v
	b.registry.order = append(b.registry.order, number)
	b.version = v
	b.category = nil
	b.event = nil
	return nil
}

// Category opens a new category scope inside the current version.
func (b *Builder) Category(name string) error {
	if err := b.usable(); err != nil {
		return err
	}
	if b.version == nil {
		return b.fail(fmt.Errorf("category %q declared outside a version scope", name))
	}
	if strings.TrimSpace(name) == "" {
		return b.fail(fmt.Errorf("category name must not be empty"))
	}
	if _, ok := b.version.categories[name]; ok {
		return b.fail(&errors.DuplicateCategoryError{
			Version:  b.version.number,
			Category: name,
		})
	}

	c := &Category{
		name:   name,
		events: make(map[string]*Event),
	}
	b.version.categories[name] = c
	b.version.order = append(b.version.order, name)
	b.category = c
	b.event = nil
	return nil
}

// Event declares an event inside the current category. The description is
// required; an event without one is a build failure.
func (b *Builder) Event(name, introducedAt, description string) error {
	if err := b.usable(); err != nil {
		return err
	}
	if b.version == nil || b.category == nil {
		return b.fail(fmt.Errorf("event %q declared outside a category scope", name))
	}
	if strings.TrimSpace(name) == "" {
		return b.fail(fmt.Errorf("event name must not be empty"))
	}
	if _, ok := b.category.events[name]; ok {
		return b.fail(&errors.DuplicateEventError{
			Version:  b.version.number,
			Category: b.category.name,
			Event:    name,
		})
	}
	if strings.TrimSpace(description) == "" {
		return b.fail(&errors.MissingDescriptionError{
			Version:  b.version.number,
			Category: b.category.name,
			Event:    name,
		})
	}
	at, err := b.timestamp("introduced_at", introducedAt)
	if err != nil {
		return err
	}

	e := &Event{
		name:         name,
		introducedAt: at,
		description:  description,
	}
	b.category.events[name] = e
	b.category.order = append(b.category.order, name)
	b.event = e
	return nil
}

// Note appends a change-log entry to the current event. Notes are only
// valid inside an event scope.
func (b *Builder) Note(at, author, body string) error {
	if err := b.usable(); err != nil {
		return err
	}
	if b.event == nil {
		return b.fail(&errors.InvalidNoteContextError{Author: author})
	}
	ts, err := b.timestamp("note_at", at)
	if err != nil {
		return err
	}
	b.event.notes = append(b.event.notes, Note{At: ts, Author: author, Body: body})
	return nil
}

// Retire marks the innermost open scope as retired at the given timestamp.
// Retirement is terminal: a retired version, category or event can never
// fire again, regardless of how the timestamp compares to the current time.
func (b *Builder) Retire(at string) error {
	if err := b.usable(); err != nil {
		return err
	}
	ts, err := b.timestamp("retired_at", at)
	if err != nil {
		return err
	}
	switch {
	case b.event != nil:
		b.event.retiredAt = &ts
	case b.category != nil:
		b.category.retiredAt = &ts
	case b.version != nil:
		b.version.retiredAt = &ts
	default:
		return b.fail(fmt.Errorf("retire declared outside any scope"))
	}
	return nil
}

// Build closes the builder and returns the finished registry, or the first
// error encountered during the pass. The builder cannot be reused.
func (b *Builder) Build() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.built = true
	b.version = nil
	b.category = nil
	b.event = nil
	return b.registry, nil
}

func (b *Builder) usable() error {
	if b.err != nil {
		return b.err
	}
	if b.built {
		b.err = fmt.Errorf("builder already closed by Build")
		return b.err
	}
	return nil
}

func (b *Builder) fail(err error) error {
	b.err = err
	return err
}

func (b *Builder) timestamp(field, value string) (time.Time, error) {
	ts, err := ParseTimestamp(field, value)
	if err != nil {
		b.err = err
	}
	return ts, err
}

// timestampLayouts are tried in order by ParseTimestamp.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// ParseTimestamp parses a timestamp using a permissive set of layouts.
// Values that cannot be parsed fail with an InvalidTimestampError naming
// the offending field.
func ParseTimestamp(field, value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, &errors.InvalidTimestampError{
			Field: field,
			Value: value,
			Err:   fmt.Errorf("value is empty"),
		}
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, trimmed)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, &errors.InvalidTimestampError{Field: field, Value: value, Err: lastErr}
}
