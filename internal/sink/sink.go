// Package sink implements event.Sink collaborators: a structured-log
// mirror, an append-only JSONL file, a Kafka producer and S3/GCS/Azure
// object stores, plus a metrics-recording wrapper.
//
// Every sink receives an already qualified event name and an already
// flattened, scalar-typed property map, and must be safe for concurrent
// invocation.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mlieberg/eventledger/pkg/event"
)

// MetricsCollector defines the metrics operations sinks report through.
type MetricsCollector interface {
	IncSinkDispatches(sink, status string)
	ObserveSinkDispatchDuration(sink string, seconds float64)
	IncSinkErrors(sink string)
}

// envelope is the JSON document storage-backed sinks persist per event.
type envelope struct {
	ID         string           `json:"id"`
	Event      string           `json:"event"`
	Time       time.Time        `json:"time"`
	Properties event.Properties `json:"properties"`
}

func newEnvelope(name string, props event.Properties) envelope {
	return envelope{
		ID:         uuid.New().String(),
		Event:      name,
		Time:       time.Now().UTC(),
		Properties: props,
	}
}

func (e envelope) encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event envelope: %w", err)
	}
	return data, nil
}

// objectKey builds the storage object key for an event envelope:
// {basePath}/{event}/{yyyy}/{mm}/{dd}/{id}.json, hierarchical by day so
// downstream batch jobs can partition on the path.
func objectKey(basePath string, env envelope) string {
	day := env.Time.Format("2006/01/02")
	key := fmt.Sprintf("%s/%s/%s.json", env.Event, day, env.ID)
	if basePath != "" {
		key = basePath + "/" + key
	}
	return key
}

// Instrumented wraps a sink with dispatch metrics. The wrapped sink's
// errors pass through unmodified.
type Instrumented struct {
	name    string
	next    event.Sink
	metrics MetricsCollector
}

// NewInstrumented wraps next with metrics recorded under the given sink name.
func NewInstrumented(name string, next event.Sink, metrics MetricsCollector) *Instrumented {
	return &Instrumented{name: name, next: next, metrics: metrics}
}

// Track dispatches to the wrapped sink, recording duration and outcome.
func (s *Instrumented) Track(ctx context.Context, name string, props event.Properties) error {
	start := time.Now()
	err := s.next.Track(ctx, name, props)
	s.metrics.ObserveSinkDispatchDuration(s.name, time.Since(start).Seconds())

	if err != nil {
		s.metrics.IncSinkDispatches(s.name, "error")
		s.metrics.IncSinkErrors(s.name)
		return err
	}
	s.metrics.IncSinkDispatches(s.name, "success")
	return nil
}
