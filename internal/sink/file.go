package sink

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/mlieberg/eventledger/pkg/errors"
	"github.com/mlieberg/eventledger/pkg/event"
)

// Ensure implementation satisfies interface at compile time.
var _ event.Sink = (*FileSink)(nil)

// FileConfig contains local filesystem sink configuration.
type FileConfig struct {
	Path string
}

// FileSink appends one JSON line per event to a local file. Writes are
// serialized by a mutex; the file stays open for the lifetime of the sink.
type FileSink struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	file   *os.File
	closed bool
}

// NewFileSink creates a JSONL file sink, creating parent directories as
// needed and appending to an existing file.
func NewFileSink(config FileConfig, logger *slog.Logger) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create sink directory: %w", err)
	}
	file, err := os.OpenFile(config.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open sink file: %w", err)
	}

	logger.Info("file sink created", "path", config.Path)

	return &FileSink{
		path:   config.Path,
		logger: logger,
		file:   file,
	}, nil
}

// Track appends the event envelope as one JSON line.
func (s *FileSink) Track(ctx context.Context, name string, props event.Properties) error {
	data, err := newEnvelope(name, props).encode()
	if err != nil {
		return err
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.ErrSinkClosed
	}
	if _, err := s.file.Write(data); err != nil {
		return fmt.Errorf("failed to write event to %s: %w", s.path, err)
	}
	return nil
}

// Close flushes and closes the underlying file. Track calls after Close
// fail with ErrSinkClosed.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}
