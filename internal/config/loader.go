// Package config handles configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/mlieberg/eventledger/internal/config/dto"
)

// Loader handles configuration loading and validation
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("EVENTLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// Load loads configuration from file and environment variables
func (l *Loader) Load(path string) (*dto.ApplicationConfig, error) {
	l.setDefaults()

	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Expand ${VAR} references so secrets can come from the environment
	for _, key := range l.v.AllKeys() {
		value := l.v.GetString(key)
		if strings.Contains(value, "${") {
			l.v.Set(key, os.ExpandEnv(value))
		}
	}

	var config dto.ApplicationConfig
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.Validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func (l *Loader) setDefaults() {
	// Application defaults
	l.v.SetDefault("application.name", "eventledger")
	l.v.SetDefault("application.version", "1.0.0")
	l.v.SetDefault("application.environment", "development")

	// Definitions defaults
	l.v.SetDefault("definitions.path", "config/definitions.yaml")
	l.v.SetDefault("definitions.version", 1)

	// Sink defaults
	l.v.SetDefault("sinks.log.enabled", true)
	l.v.SetDefault("sinks.file.enabled", false)
	l.v.SetDefault("sinks.kafka.enabled", false)
	l.v.SetDefault("sinks.kafka.security_protocol", "PLAINTEXT")
	l.v.SetDefault("sinks.kafka.sasl_mechanism", "PLAIN")
	l.v.SetDefault("sinks.kafka.source", "eventledger")
	l.v.SetDefault("sinks.kafka.required_acks", 1)
	l.v.SetDefault("sinks.kafka.compression_type", "snappy")
	l.v.SetDefault("sinks.kafka.max_message_bytes", 1000000)
	l.v.SetDefault("sinks.kafka.retry_max", 3)
	l.v.SetDefault("sinks.kafka.retry_backoff_ms", 100)
	l.v.SetDefault("sinks.s3.enabled", false)
	l.v.SetDefault("sinks.s3.use_path_style", false)
	l.v.SetDefault("sinks.s3.sse_enabled", true)
	l.v.SetDefault("sinks.gcs.enabled", false)
	l.v.SetDefault("sinks.azure.enabled", false)

	// Observability defaults
	l.v.SetDefault("observability.logging.level", "info")
	l.v.SetDefault("observability.logging.format", "json")
	l.v.SetDefault("observability.logging.output", "stdout")
	l.v.SetDefault("observability.metrics.enabled", true)
	l.v.SetDefault("observability.metrics.port", 9090)
	l.v.SetDefault("observability.metrics.path", "/metrics")
	l.v.SetDefault("observability.health.port", 8080)
	l.v.SetDefault("observability.health.liveness_path", "/health/live")
	l.v.SetDefault("observability.health.readiness_path", "/health/ready")
	l.v.SetDefault("observability.ingest.enabled", true)
	l.v.SetDefault("observability.ingest.port", 8081)

	// Generator defaults
	l.v.SetDefault("generator.enabled", false)
	l.v.SetDefault("generator.interval_ms", 1000)

	// Shutdown defaults
	l.v.SetDefault("shutdown.grace_period_seconds", 30)
	l.v.SetDefault("shutdown.force_timeout_seconds", 60)
}

// Validate validates the configuration
func (l *Loader) Validate(config *dto.ApplicationConfig) error {
	if config.Definitions.Path == "" {
		return errors.New("definitions.path is required")
	}
	if config.Definitions.Version < 1 {
		return fmt.Errorf("definitions.version must be positive, got %d", config.Definitions.Version)
	}

	if config.Sinks.File.Enabled && config.Sinks.File.Path == "" {
		return errors.New("sinks.file.path is required when the file sink is enabled")
	}
	if config.Sinks.Kafka.Enabled {
		if len(config.Sinks.Kafka.Brokers) == 0 {
			return errors.New("sinks.kafka.brokers is required when the Kafka sink is enabled")
		}
		if config.Sinks.Kafka.Topic == "" {
			return errors.New("sinks.kafka.topic is required when the Kafka sink is enabled")
		}
	}
	if config.Sinks.S3.Enabled {
		if config.Sinks.S3.Bucket == "" {
			return errors.New("sinks.s3.bucket is required when the S3 sink is enabled")
		}
		if config.Sinks.S3.Region == "" {
			return errors.New("sinks.s3.region is required when the S3 sink is enabled")
		}
	}
	if config.Sinks.GCS.Enabled && config.Sinks.GCS.Bucket == "" {
		return errors.New("sinks.gcs.bucket is required when the GCS sink is enabled")
	}
	if config.Sinks.Azure.Enabled {
		if config.Sinks.Azure.AccountName == "" {
			return errors.New("sinks.azure.account_name is required when the Azure sink is enabled")
		}
		if config.Sinks.Azure.Container == "" {
			return errors.New("sinks.azure.container is required when the Azure sink is enabled")
		}
	}

	if config.Generator.Enabled && len(config.Generator.Events) == 0 {
		return errors.New("generator.events is required when the generator is enabled")
	}

	if config.Observability.Metrics.Port < 1 || config.Observability.Metrics.Port > 65535 {
		return fmt.Errorf("invalid metrics port: %d", config.Observability.Metrics.Port)
	}
	if config.Observability.Health.Port < 1 || config.Observability.Health.Port > 65535 {
		return fmt.Errorf("invalid health port: %d", config.Observability.Health.Port)
	}
	if config.Observability.Ingest.Enabled &&
		(config.Observability.Ingest.Port < 1 || config.Observability.Ingest.Port > 65535) {
		return fmt.Errorf("invalid ingest port: %d", config.Observability.Ingest.Port)
	}

	return nil
}
