package event

import "context"

// Sink records a named event with its flattened, scalar-typed properties.
// Implementations must be safe for concurrent use; the tracker dispatches
// synchronously from whatever goroutine fired the event and provides no
// retry, batching or timeout of its own.
type Sink interface {
	Track(ctx context.Context, name string, props Properties) error
}

// SinkFunc adapts an ordinary function to the Sink interface.
type SinkFunc func(ctx context.Context, name string, props Properties) error

// Track calls f.
func (f SinkFunc) Track(ctx context.Context, name string, props Properties) error {
	return f(ctx, name, props)
}

// PropertyExporter is implemented by values that know how to represent
// themselves as event properties. The returned map may contain nested maps
// or further exporters; Expand flattens it under the exporting value's key.
// ToEventProperties must not have observable side effects.
type PropertyExporter interface {
	ToEventProperties() (map[string]any, error)
}
