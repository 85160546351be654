// Package event defines the core value types and capability interfaces for
// event tracking.
//
// # Scalars
//
// Scalar is the only value shape sinks ever see. It is a tagged variant over
// boolean, integer, float, text, point-in-time and absent values:
//
//	props := event.Properties{
//	    "user_age":    event.Int(27),
//	    "user_gender": event.Text("female"),
//	    "signed_up":   event.Timestamp(time.Now()),
//	}
//
// # Expansion
//
// Expand merges an implicit and an explicit property map and flattens any
// nested structure into a single-level Properties map, joining nested keys
// with underscores:
//
//	flat, err := event.Expand(nil, map[string]any{
//	    "user": map[string]any{"age": 30},
//	})
//	// flat == event.Properties{"user_age": event.Int(30)}
//
// Values implementing PropertyExporter participate transparently: their
// exported map is flattened under the value's own key.
//
// # Sinks
//
// A Sink is any collaborator that records a named event with already
// flattened, already scalar-typed properties:
//
//	type Sink interface {
//	    Track(ctx context.Context, name string, props Properties) error
//	}
//
// Sinks must be safe for concurrent invocation; the tracker calls them
// synchronously and concurrently from many goroutines.
package event
