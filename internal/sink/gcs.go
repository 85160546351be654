package sink

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/mlieberg/eventledger/pkg/event"
)

// Ensure implementation satisfies interface at compile time.
var _ event.Sink = (*GCSSink)(nil)

// GCSConfig contains Google Cloud Storage sink configuration.
type GCSConfig struct {
	Bucket               string
	BasePath             string
	Endpoint             string
	CredentialsFile      string
	CredentialsJSON      string
	UseDefaultCredential bool
}

// GCSSink writes each tracked event as one JSON object under a
// date-partitioned name.
type GCSSink struct {
	client   *storage.Client
	bucket   string
	basePath string
	logger   *slog.Logger
}

// NewGCSSink creates a Google Cloud Storage sink. Credentials come from a
// service account file, an inline JSON string or application default
// credentials, in that order of precedence.
func NewGCSSink(ctx context.Context, cfg GCSConfig, logger *slog.Logger) (*GCSSink, error) {
	var clientOpts []option.ClientOption
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}
	switch {
	case cfg.UseDefaultCredential:
		logger.Info("using default GCP credentials")
	case cfg.CredentialsFile != "":
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
		logger.Info("using GCP credentials from file", "file", cfg.CredentialsFile)
	case cfg.CredentialsJSON != "":
		clientOpts = append(clientOpts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
		logger.Info("using GCP credentials from JSON string")
	default:
		logger.Info("no explicit credentials provided, using default GCP credentials")
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	logger.Info("gcs sink created", "bucket", cfg.Bucket)

	return &GCSSink{
		client:   client,
		bucket:   cfg.Bucket,
		basePath: cfg.BasePath,
		logger:   logger,
	}, nil
}

// Track uploads the event envelope to the bucket.
func (s *GCSSink) Track(ctx context.Context, name string, props event.Properties) error {
	env := newEnvelope(name, props)
	data, err := env.encode()
	if err != nil {
		return err
	}
	key := objectKey(s.basePath, env)

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write event to gs://%s/%s: %w", s.bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize event gs://%s/%s: %w", s.bucket, key, err)
	}

	s.logger.Debug("event uploaded", "bucket", s.bucket, "object", key, "event", name)
	return nil
}

// Close closes the underlying client.
func (s *GCSSink) Close() error {
	return s.client.Close()
}
