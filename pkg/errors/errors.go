// Package errors defines application-specific error types and sentinel errors.
//
// Every failure mode of the definition registry, the property expander and
// the tracker has its own type so that host applications can branch on the
// kind of failure with errors.As rather than matching message text.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	ErrNoDefaultRegistry = errors.New("no default registry configured")
	ErrNilRegistry       = errors.New("registry is nil")
	ErrSinkClosed        = errors.New("sink is closed")
)

// DuplicateVersionError indicates a version number declared twice.
type DuplicateVersionError struct {
	Version int
}

func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("duplicate version: %d already declared", e.Version)
}

// DuplicateCategoryError indicates a category name declared twice within a version.
type DuplicateCategoryError struct {
	Version  int
	Category string
}

func (e *DuplicateCategoryError) Error() string {
	return fmt.Sprintf("duplicate category: %q already declared in version %d",
		e.Category, e.Version)
}

// DuplicateEventError indicates an event name declared twice within a category.
type DuplicateEventError struct {
	Version  int
	Category string
	Event    string
}

func (e *DuplicateEventError) Error() string {
	return fmt.Sprintf("duplicate event: %q already declared in version %d category %q",
		e.Event, e.Version, e.Category)
}

// MissingDescriptionError indicates an event declared without a description.
type MissingDescriptionError struct {
	Version  int
	Category string
	Event    string
}

func (e *MissingDescriptionError) Error() string {
	return fmt.Sprintf("missing description: event %q in version %d category %q requires a description",
		e.Event, e.Version, e.Category)
}

// InvalidTimestampError indicates a timestamp value that could not be parsed.
type InvalidTimestampError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidTimestampError) Error() string {
	return fmt.Sprintf("invalid timestamp: field=%s value=%q: %v", e.Field, e.Value, e.Err)
}

func (e *InvalidTimestampError) Unwrap() error {
	return e.Err
}

// InvalidNoteContextError indicates a note declared outside an event scope.
type InvalidNoteContextError struct {
	Author string
}

func (e *InvalidNoteContextError) Error() string {
	return fmt.Sprintf("invalid note context: note by %q declared outside an event scope", e.Author)
}

// UnknownVersionError indicates a lookup against a version that was never declared.
type UnknownVersionError struct {
	Version int
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("unknown version: %d", e.Version)
}

// UnknownCategoryError indicates a lookup for a category absent from a version.
type UnknownCategoryError struct {
	Version  int
	Category string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category: %q in version %d", e.Category, e.Version)
}

// UnknownEventError indicates a lookup for an event absent from a category.
type UnknownEventError struct {
	Version  int
	Category string
	Event    string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown event: %q in version %d category %q",
		e.Event, e.Version, e.Category)
}

// RetiredEventError indicates an attempt to fire an event that is retired,
// either directly or through its category or version. Scope names the level
// that carries the retirement flag: "event", "category" or "version".
type RetiredEventError struct {
	Name  string
	Scope string
}

func (e *RetiredEventError) Error() string {
	return fmt.Sprintf("retired event: %s is retired at %s level", e.Name, e.Scope)
}

// PropertyExportError indicates a property exporter that failed while
// producing its nested property map.
type PropertyExportError struct {
	Key string
	Err error
}

func (e *PropertyExportError) Error() string {
	return fmt.Sprintf("property export error: key=%s: %v", e.Key, e.Err)
}

func (e *PropertyExportError) Unwrap() error {
	return e.Err
}

// UnsupportedPropertyTypeError indicates a property value of a shape the
// expander cannot flatten to scalars.
type UnsupportedPropertyTypeError struct {
	Key  string
	Type string
}

func (e *UnsupportedPropertyTypeError) Error() string {
	return fmt.Sprintf("unsupported property type: key=%s type=%s", e.Key, e.Type)
}

// IsRetired reports whether an error is a RetiredEventError. Hitting a
// retired event is expected during normal development, so hosts commonly
// log-and-continue on this kind while failing loudly on the rest.
func IsRetired(err error) bool {
	var retired *RetiredEventError
	return errors.As(err, &retired)
}

// IsBuildError reports whether an error belongs to the definitions build
// taxonomy. A build error means no registry was produced at all.
func IsBuildError(err error) bool {
	var (
		dupVersion  *DuplicateVersionError
		dupCategory *DuplicateCategoryError
		dupEvent    *DuplicateEventError
		missingDesc *MissingDescriptionError
		badTime     *InvalidTimestampError
		badNote     *InvalidNoteContextError
	)
	return errors.As(err, &dupVersion) ||
		errors.As(err, &dupCategory) ||
		errors.As(err, &dupEvent) ||
		errors.As(err, &missingDesc) ||
		errors.As(err, &badTime) ||
		errors.As(err, &badNote)
}

// IsLookupError reports whether an error rejected a single event lookup,
// leaving the registry itself intact and usable.
func IsLookupError(err error) bool {
	var (
		unknownVersion  *UnknownVersionError
		unknownCategory *UnknownCategoryError
		unknownEvent    *UnknownEventError
		retired         *RetiredEventError
	)
	return errors.As(err, &unknownVersion) ||
		errors.As(err, &unknownCategory) ||
		errors.As(err, &unknownEvent) ||
		errors.As(err, &retired)
}
