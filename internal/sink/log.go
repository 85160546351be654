package sink

import (
	"context"
	"log/slog"

	"github.com/mlieberg/eventledger/pkg/event"
)

// Ensure implementation satisfies interface at compile time.
var _ event.Sink = (*LogSink)(nil)

// LogSink mirrors every tracked event to a structured logger. Useful in
// development and as a cheap audit trail next to real sinks.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a log mirror sink.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Track logs the event name with each flattened property as an attribute.
func (s *LogSink) Track(ctx context.Context, name string, props event.Properties) error {
	attrs := make([]any, 0, 2+2*len(props))
	attrs = append(attrs, "event", name)
	for k, v := range props {
		attrs = append(attrs, k, v.Interface())
	}
	s.logger.InfoContext(ctx, "event tracked", attrs...)
	return nil
}
