package sink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/mlieberg/eventledger/pkg/event"
)

// Ensure implementation satisfies interface at compile time.
var _ event.Sink = (*AzureSink)(nil)

// AzureConfig contains Azure Blob Storage sink configuration.
type AzureConfig struct {
	AccountName string
	AccountKey  string
	Container   string
	BasePath    string
	Endpoint    string
}

// AzureSink writes each tracked event as one JSON block blob under a
// date-partitioned name.
type AzureSink struct {
	client    *azblob.Client
	container string
	basePath  string
	logger    *slog.Logger
}

// NewAzureSink creates an Azure Blob Storage sink using access key
// authentication.
func NewAzureSink(cfg AzureConfig, logger *slog.Logger) (*AzureSink, error) {
	var connectionString string
	if cfg.Endpoint != "" {
		connectionString = fmt.Sprintf("DefaultEndpointsProtocol=https;AccountName=%s;AccountKey=%s;BlobEndpoint=%s",
			cfg.AccountName, cfg.AccountKey, cfg.Endpoint)
	} else {
		connectionString = fmt.Sprintf("DefaultEndpointsProtocol=https;AccountName=%s;AccountKey=%s;EndpointSuffix=core.windows.net",
			cfg.AccountName, cfg.AccountKey)
	}

	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure client: %w", err)
	}

	logger.Info("azure sink created",
		"container", cfg.Container,
		"account", cfg.AccountName,
	)

	return &AzureSink{
		client:    client,
		container: cfg.Container,
		basePath:  cfg.BasePath,
		logger:    logger,
	}, nil
}

// Track uploads the event envelope to the container.
func (s *AzureSink) Track(ctx context.Context, name string, props event.Properties) error {
	env := newEnvelope(name, props)
	data, err := env.encode()
	if err != nil {
		return err
	}
	key := objectKey(s.basePath, env)

	if _, err := s.client.UploadBuffer(ctx, s.container, key, data, nil); err != nil {
		return fmt.Errorf("failed to upload event to container %s blob %s: %w",
			s.container, key, err)
	}

	s.logger.Debug("event uploaded", "container", s.container, "blob", key, "event", name)
	return nil
}
