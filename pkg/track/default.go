package track

import (
	"sync"

	"github.com/mlieberg/eventledger/pkg/definitions"
	"github.com/mlieberg/eventledger/pkg/errors"
	"github.com/mlieberg/eventledger/pkg/event"
)

// Process-wide defaults for hosts that want one shared registry and sink
// list. The intended lifecycle is init-once-then-read: establish both
// before the first event fires and leave them alone afterwards. The mutex
// only makes that contract safe to get wrong, not pleasant.
var (
	defaultMu       sync.RWMutex
	defaultRegistry *definitions.Registry
	defaultSinks    []event.Sink
)

// SetDefaultRegistry installs the process-wide default registry.
func SetDefaultRegistry(r *definitions.Registry) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRegistry = r
}

// DefaultRegistry returns the process-wide default registry, or nil if none
// has been set.
func DefaultRegistry() *definitions.Registry {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultRegistry
}

// AddDefaultSink appends a sink to the process-wide default sink list.
func AddDefaultSink(s event.Sink) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultSinks = append(defaultSinks, s)
}

// DefaultSinks returns a copy of the process-wide default sink list.
func DefaultSinks() []event.Sink {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	out := make([]event.Sink, len(defaultSinks))
	copy(out, defaultSinks)
	return out
}

// Reset clears the default registry and sink list. It exists for test
// isolation; production code has no reason to call it.
func Reset() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRegistry = nil
	defaultSinks = nil
}

// NewFromDefaults creates a tracker bound to the process-wide default
// registry and sink list. It fails with ErrNoDefaultRegistry if no default
// registry has been installed.
func NewFromDefaults(version int, implicit map[string]any) (*Tracker, error) {
	defaultMu.RLock()
	registry := defaultRegistry
	sinks := make([]event.Sink, len(defaultSinks))
	copy(sinks, defaultSinks)
	defaultMu.RUnlock()

	if registry == nil {
		return nil, errors.ErrNoDefaultRegistry
	}
	return New(Config{
		Registry: registry,
		Version:  version,
		Implicit: implicit,
		Sinks:    sinks,
	})
}
