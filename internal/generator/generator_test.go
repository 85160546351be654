package generator

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/mlieberg/eventledger/pkg/definitions"
	"github.com/mlieberg/eventledger/pkg/event"
	"github.com/mlieberg/eventledger/pkg/track"
)

type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *countingMetrics) IncGeneratedEvents(category, event, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[category+"/"+event+"/"+status]++
}

type countingSink struct {
	mu    sync.Mutex
	calls []event.Properties
}

func (s *countingSink) Track(_ context.Context, _ string, props event.Properties) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, props)
	return nil
}

func generatorFixture(t *testing.T) (*track.Tracker, *countingSink) {
	t.Helper()
	b := definitions.NewBuilder().Prefix("ab")
	for _, err := range []error{
		b.Version(1, "2024-01-01"),
		b.Category("user"),
		b.Event("signed_up", "2024-01-01", "A user created an account."),
		b.Event("deleted", "2024-02-01", "A user deleted their account."),
		b.Retire("2025-01-01"),
	} {
		if err != nil {
			t.Fatalf("declaration failed: %v", err)
		}
	}
	registry, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	sink := &countingSink{}
	tracker, err := track.New(track.Config{
		Registry: registry,
		Version:  1,
		Sinks:    []event.Sink{sink},
	})
	if err != nil {
		t.Fatalf("track.New() error = %v", err)
	}
	return tracker, sink
}

func TestGeneratorFire(t *testing.T) {
	tracker, sink := generatorFixture(t)
	metrics := &countingMetrics{counts: make(map[string]int)}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	g := New(tracker, Config{
		Interval: time.Millisecond,
		Events:   []EventSpec{{Category: "user", Event: "signed_up"}},
	}, metrics, logger)

	g.fire(context.Background(), EventSpec{Category: "user", Event: "signed_up"})

	if len(sink.calls) != 1 {
		t.Fatalf("sink calls = %d, want 1", len(sink.calls))
	}
	props := sink.calls[0]
	for _, key := range []string{"demo", "session_id", "user_name", "user_email", "user_age", "origin_city", "origin_country", "occurred_at"} {
		if _, ok := props[key]; !ok {
			t.Errorf("generated properties missing %q: %v", key, props)
		}
	}
	if metrics.counts["user/signed_up/success"] != 1 {
		t.Errorf("metrics = %v", metrics.counts)
	}
}

func TestGeneratorFireRetired(t *testing.T) {
	tracker, sink := generatorFixture(t)
	metrics := &countingMetrics{counts: make(map[string]int)}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	g := New(tracker, Config{Interval: time.Millisecond}, metrics, logger)
	g.fire(context.Background(), EventSpec{Category: "user", Event: "deleted"})

	if len(sink.calls) != 0 {
		t.Errorf("sink calls = %d, want 0", len(sink.calls))
	}
	if metrics.counts["user/deleted/error"] != 1 {
		t.Errorf("metrics = %v", metrics.counts)
	}
}

func TestGeneratorRunStopsOnCancel(t *testing.T) {
	tracker, sink := generatorFixture(t)
	metrics := &countingMetrics{counts: make(map[string]int)}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	g := New(tracker, Config{
		Interval: time.Millisecond,
		Events:   []EventSpec{{Category: "user", Event: "signed_up"}},
	}, metrics, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		g.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not stop after cancel")
	}

	sink.mu.Lock()
	fired := len(sink.calls)
	sink.mu.Unlock()
	if fired == 0 {
		t.Error("Run() fired no events before cancel")
	}
}

func TestGeneratorRunWithoutEvents(t *testing.T) {
	tracker, _ := generatorFixture(t)
	metrics := &countingMetrics{counts: make(map[string]int)}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	g := New(tracker, Config{Interval: time.Millisecond}, metrics, logger)

	done := make(chan struct{})
	go func() {
		g.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() with no events should return immediately")
	}
}
