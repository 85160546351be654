// Package track provides the runtime facade for firing events: a Tracker
// binds a registry version, a set of implicit properties and a list of
// sinks, and turns a (category, event, properties) call into a qualified
// name plus a flattened property map dispatched to every sink.
package track

import (
	"context"
	goerrors "errors"

	"github.com/mlieberg/eventledger/pkg/definitions"
	"github.com/mlieberg/eventledger/pkg/errors"
	"github.com/mlieberg/eventledger/pkg/event"
)

// Config describes a Tracker. Registry and Version are required; Implicit
// and Sinks may be empty.
type Config struct {
	// Registry is the definition model events are resolved against.
	Registry *definitions.Registry

	// Version is the registry version this tracker is bound to. Lookups
	// against an undeclared version fail at call time, not here.
	Version int

	// Implicit properties are applied to every event fired through this
	// tracker, overridden key-by-key at the top level by explicit
	// properties.
	Implicit map[string]any

	// Sinks receive every successfully resolved and expanded event, in
	// registration order.
	Sinks []event.Sink
}

// Tracker is safe for concurrent use: all of its state is fixed at
// construction and the registry it reads is immutable. Hosts typically
// create one tracker per logical scope, e.g. one per request.
type Tracker struct {
	registry *definitions.Registry
	version  int
	implicit map[string]any
	sinks    []event.Sink
}

// New creates a tracker from the given configuration. The implicit map and
// sink list are copied; later mutation of the config by the caller has no
// effect on the tracker.
func New(cfg Config) (*Tracker, error) {
	if cfg.Registry == nil {
		return nil, errors.ErrNilRegistry
	}
	implicit := make(map[string]any, len(cfg.Implicit))
	for k, v := range cfg.Implicit {
		implicit[k] = v
	}
	sinks := make([]event.Sink, len(cfg.Sinks))
	copy(sinks, cfg.Sinks)

	return &Tracker{
		registry: cfg.Registry,
		version:  cfg.Version,
		implicit: implicit,
		sinks:    sinks,
	}, nil
}

// Version returns the registry version this tracker is bound to.
func (t *Tracker) Version() int {
	return t.version
}

// Event resolves the (category, name) pair against the tracker's bound
// version, expands implicit and explicit properties into a flat scalar map
// and dispatches the result to every sink.
//
// Lookup, retirement and expansion failures reject this call before any
// sink is invoked. Sink failures propagate verbatim: every sink is
// attempted in registration order even when an earlier one fails, and the
// individual failures are joined into the returned error.
func (t *Tracker) Event(ctx context.Context, category, name string, explicit map[string]any) error {
	_, qualified, err := t.registry.Resolve(t.version, category, name)
	if err != nil {
		return err
	}

	props, err := event.Expand(t.implicit, explicit)
	if err != nil {
		return err
	}

	var errs []error
	for _, s := range t.sinks {
		if err := s.Track(ctx, qualified, props); err != nil {
			errs = append(errs, err)
		}
	}
	return goerrors.Join(errs...)
}

// EffectiveProperties expands the tracker's implicit properties overlaid
// with the given explicit properties, without resolving or dispatching any
// event. Integrations use it when they need the flattened property set a
// call would produce.
func (t *Tracker) EffectiveProperties(explicit map[string]any) (event.Properties, error) {
	return event.Expand(t.implicit, explicit)
}
