// Package definitions holds the versioned, documented, immutable schema of
// trackable events.
//
// A Registry is a tree of Versions, Categories and Events, each carrying an
// introduction timestamp, a description and an optional retirement flag.
// Registries are materialized once by a Builder and are read-only
// afterwards, so concurrent lookups from any number of trackers need no
// locking.
package definitions

import (
	"fmt"
	"time"

	"github.com/mlieberg/eventledger/pkg/errors"
)

// Registry is the root of the event definition tree: a global name prefix
// plus a set of versions keyed by number.
type Registry struct {
	prefix   string
	versions map[int]*Version
	order    []int
}

// Prefix returns the global identity prefix applied to every qualified
// event name.
func (r *Registry) Prefix() string {
	return r.prefix
}

// Version returns the version with the given number, if declared.
func (r *Registry) Version(number int) (*Version, bool) {
	v, ok := r.versions[number]
	return v, ok
}

// Versions returns all versions in declaration order.
func (r *Registry) Versions() []*Version {
	out := make([]*Version, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.versions[n])
	}
	return out
}

// Resolve looks up an event by version number, category name and event
// name, enforcing the not-retired invariant. On success it returns the
// event node and its fully qualified external name. The check is pure; it
// never logs and never mutates.
func (r *Registry) Resolve(version int, category, name string) (*Event, string, error) {
	v, ok := r.versions[version]
	if !ok {
		return nil, "", &errors.UnknownVersionError{Version: version}
	}
	return v.Resolve(category, name)
}

// Version is a namespace of categories introduced under a single version
// number. Once retired, every event reachable through it is unreachable.
type Version struct {
	prefix       string
	number       int
	introducedAt time.Time
	retiredAt    *time.Time
	categories   map[string]*Category
	order        []string
}

// Number returns the version number.
func (v *Version) Number() int {
	return v.number
}

// IntroducedAt returns the timestamp the version was introduced. The value
// is documentation only; it is never compared to the current time.
func (v *Version) IntroducedAt() time.Time {
	return v.introducedAt
}

// RetiredAt returns the retirement timestamp and whether the version is
// retired. Retirement is a terminal flag, not a date comparison.
func (v *Version) RetiredAt() (time.Time, bool) {
	if v.retiredAt == nil {
		return time.Time{}, false
	}
	return *v.retiredAt, true
}

// Retired reports whether the version carries a retirement flag.
func (v *Version) Retired() bool {
	return v.retiredAt != nil
}

// Category returns the named category, if declared in this version.
func (v *Version) Category(name string) (*Category, bool) {
	c, ok := v.categories[name]
	return c, ok
}

// Categories returns all categories in declaration order.
func (v *Version) Categories() []*Category {
	out := make([]*Category, 0, len(v.order))
	for _, n := range v.order {
		out = append(out, v.categories[n])
	}
	return out
}

// QualifiedName derives the external event name for a category and event
// name within this version. The format is stable for the lifetime of the
// version: {prefix}{version}_{category}_{event}.
func (v *Version) QualifiedName(category, name string) string {
	return fmt.Sprintf("%s%d_%s_%s", v.prefix, v.number, category, name)
}

// Resolve looks up an event by category and name within this version,
// enforcing the not-retired invariant at event, category and version level
// in that order. On success it returns the event node and its fully
// qualified external name.
func (v *Version) Resolve(category, name string) (*Event, string, error) {
	c, ok := v.categories[category]
	if !ok {
		return nil, "", &errors.UnknownCategoryError{Version: v.number, Category: category}
	}
	e, ok := c.events[name]
	if !ok {
		return nil, "", &errors.UnknownEventError{Version: v.number, Category: category, Event: name}
	}

	qualified := v.QualifiedName(category, name)
	switch {
	case e.retiredAt != nil:
		return nil, "", &errors.RetiredEventError{Name: qualified, Scope: "event"}
	case c.retiredAt != nil:
		return nil, "", &errors.RetiredEventError{Name: qualified, Scope: "category"}
	case v.retiredAt != nil:
		return nil, "", &errors.RetiredEventError{Name: qualified, Scope: "version"}
	}
	return e, qualified, nil
}

// Category groups related events under a name unique within its version.
type Category struct {
	name      string
	retiredAt *time.Time
	events    map[string]*Event
	order     []string
}

// Name returns the category name.
func (c *Category) Name() string {
	return c.name
}

// RetiredAt returns the retirement timestamp and whether the category is
// retired.
func (c *Category) RetiredAt() (time.Time, bool) {
	if c.retiredAt == nil {
		return time.Time{}, false
	}
	return *c.retiredAt, true
}

// Retired reports whether the category carries a retirement flag.
func (c *Category) Retired() bool {
	return c.retiredAt != nil
}

// Event returns the named event, if declared in this category.
func (c *Category) Event(name string) (*Event, bool) {
	e, ok := c.events[name]
	return e, ok
}

// Events returns all events in declaration order.
func (c *Category) Events() []*Event {
	out := make([]*Event, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.events[n])
	}
	return out
}

// Event is a single trackable event definition with its audit history.
type Event struct {
	name         string
	introducedAt time.Time
	description  string
	retiredAt    *time.Time
	notes        []Note
}

// Name returns the event name.
func (e *Event) Name() string {
	return e.name
}

// IntroducedAt returns the timestamp the event was introduced.
func (e *Event) IntroducedAt() time.Time {
	return e.introducedAt
}

// Description returns the human description of what the event means.
func (e *Event) Description() string {
	return e.description
}

// RetiredAt returns the retirement timestamp and whether the event is
// retired.
func (e *Event) RetiredAt() (time.Time, bool) {
	if e.retiredAt == nil {
		return time.Time{}, false
	}
	return *e.retiredAt, true
}

// Retired reports whether the event carries a retirement flag.
func (e *Event) Retired() bool {
	return e.retiredAt != nil
}

// Notes returns the event's change log in append order.
func (e *Event) Notes() []Note {
	out := make([]Note, len(e.notes))
	copy(out, e.notes)
	return out
}

// Note is one timestamped, attributed entry in an event's change log.
// Notes are append-only; they never mutate or disappear.
type Note struct {
	At     time.Time
	Author string
	Body   string
}
