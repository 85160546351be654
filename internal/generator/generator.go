// Package generator fires randomized demo events through a tracker, for
// smoke-testing sink configurations without real traffic.
package generator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jaswdr/faker"

	apperrors "github.com/mlieberg/eventledger/pkg/errors"
	"github.com/mlieberg/eventledger/pkg/track"
)

// EventSpec names one registry event the generator fires.
type EventSpec struct {
	Category string
	Event    string
}

// Config contains generator settings.
type Config struct {
	Interval time.Duration
	Events   []EventSpec
}

// MetricsCollector defines the metrics operations the generator reports through.
type MetricsCollector interface {
	IncGeneratedEvents(category, event, status string)
}

// Generator fires one configured event per interval, round-robin, with
// randomized nested properties so the full expansion path gets exercised.
type Generator struct {
	tracker *track.Tracker
	config  Config
	faker   faker.Faker
	logger  *slog.Logger
	metrics MetricsCollector
}

// New creates a generator.
func New(tracker *track.Tracker, config Config, metrics MetricsCollector, logger *slog.Logger) *Generator {
	return &Generator{
		tracker: tracker,
		config:  config,
		faker:   faker.New(),
		logger:  logger,
		metrics: metrics,
	}
}

// Run fires events until the context is cancelled. Track failures are
// logged and counted but never stop the loop; a retired event in the
// rotation is expected to fail loudly on every attempt.
func (g *Generator) Run(ctx context.Context) {
	if len(g.config.Events) == 0 {
		return
	}

	ticker := time.NewTicker(g.config.Interval)
	defer ticker.Stop()

	g.logger.Info("demo generator started",
		"interval", g.config.Interval,
		"events", len(g.config.Events),
	)

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			g.logger.Info("demo generator stopped")
			return
		case <-ticker.C:
			spec := g.config.Events[i%len(g.config.Events)]
			g.fire(ctx, spec)
		}
	}
}

func (g *Generator) fire(ctx context.Context, spec EventSpec) {
	err := g.tracker.Event(ctx, spec.Category, spec.Event, g.randomProperties())
	if err != nil {
		g.metrics.IncGeneratedEvents(spec.Category, spec.Event, "error")
		if apperrors.IsRetired(err) {
			g.logger.Debug("generated event is retired",
				"category", spec.Category, "event", spec.Event)
			return
		}
		g.logger.Warn("failed to fire generated event",
			"category", spec.Category, "event", spec.Event, "error", err)
		return
	}
	g.metrics.IncGeneratedEvents(spec.Category, spec.Event, "success")
}

func (g *Generator) randomProperties() map[string]any {
	return map[string]any{
		"demo":       true,
		"session_id": uuid.New().String(),
		"user": map[string]any{
			"name":  g.faker.Person().Name(),
			"email": g.faker.Internet().Email(),
			"age":   g.faker.IntBetween(18, 80),
		},
		"origin": map[string]any{
			"city":    g.faker.Address().City(),
			"country": g.faker.Address().Country(),
		},
		"occurred_at": time.Now().UTC(),
	}
}
