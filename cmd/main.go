package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mlieberg/eventledger/internal/config"
	"github.com/mlieberg/eventledger/internal/config/dto"
	"github.com/mlieberg/eventledger/internal/generator"
	"github.com/mlieberg/eventledger/internal/observability"
	"github.com/mlieberg/eventledger/internal/server"
	"github.com/mlieberg/eventledger/internal/sink"
	"github.com/mlieberg/eventledger/pkg/definitions"
	"github.com/mlieberg/eventledger/pkg/event"
	"github.com/mlieberg/eventledger/pkg/track"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	// Priority: CLI flag > CONFIG_PATH env var > default path
	var cfgPath string
	if *configPath != "" {
		cfgPath = *configPath
	} else if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		cfgPath = envPath
	} else {
		cfgPath = "config/application.yaml"
	}

	loader := config.NewLoader()
	cfg, err := loader.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
		Output: cfg.Observability.Logging.Output,
	})
	logger.Info("starting eventledger",
		"version", cfg.Application.Version,
		"environment", cfg.Application.Environment,
	)

	promRegistry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(promRegistry)

	// Track cleanup functions
	var cleanupFuncs []func() error
	addCleanup := func(name string, fn func() error) {
		cleanupFuncs = append(cleanupFuncs, fn)
		logger.Debug("registered cleanup", "component", name)
	}

	// Load the event definitions registry
	registry, err := config.LoadRegistry(cfg.Definitions.Path)
	if err != nil {
		return fmt.Errorf("failed to load definitions: %w", err)
	}
	publishRegistryStats(registry, metrics)
	logger.Info("definitions loaded",
		"path", cfg.Definitions.Path,
		"prefix", registry.Prefix(),
		"versions", len(registry.Versions()),
	)

	// Construct sinks
	ctx := context.Background()
	sinks, err := buildSinks(ctx, cfg, metrics, logger, addCleanup)
	if err != nil {
		return err
	}
	if len(sinks) == 0 {
		logger.Warn("no sinks enabled, events will resolve and expand but go nowhere")
	}

	// Install process-wide defaults and bind the daemon tracker
	track.SetDefaultRegistry(registry)
	for _, s := range sinks {
		track.AddDefaultSink(s)
	}
	tracker, err := track.NewFromDefaults(cfg.Definitions.Version, map[string]any{
		"source":      cfg.Application.Name,
		"environment": cfg.Application.Environment,
	})
	if err != nil {
		return fmt.Errorf("failed to create tracker: %w", err)
	}

	// HTTP servers
	checker := server.NewChecker(map[string]string{
		"definitions": "loaded",
		"sinks":       fmt.Sprintf("%d enabled", len(sinks)),
	})
	ingestPort := 0
	if cfg.Observability.Ingest.Enabled {
		ingestPort = cfg.Observability.Ingest.Port
	}
	srv := server.NewServer(server.Config{
		HealthPort:  cfg.Observability.Health.Port,
		MetricsPort: cfg.Observability.Metrics.Port,
		IngestPort:  ingestPort,
	}, checker, promRegistry, tracker, metrics, logger)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP servers: %w", err)
	}

	// Optional demo traffic
	genCtx, genCancel := context.WithCancel(ctx)
	defer genCancel()
	if cfg.Generator.Enabled {
		specs := make([]generator.EventSpec, 0, len(cfg.Generator.Events))
		for _, e := range cfg.Generator.Events {
			specs = append(specs, generator.EventSpec{Category: e.Category, Event: e.Event})
		}
		gen := generator.New(tracker, generator.Config{
			Interval: time.Duration(cfg.Generator.IntervalMS) * time.Millisecond,
			Events:   specs,
		}, metrics, logger)
		go gen.Run(genCtx)
	}

	checker.SetReady(true)
	logger.Info("eventledger started")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("shutdown signal received", "signal", sig.String())

	checker.SetReady(false)
	genCancel()

	shutdownCtx, cancel := context.WithTimeout(ctx,
		time.Duration(cfg.Shutdown.GracePeriodSeconds)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err)
	}

	for i := len(cleanupFuncs) - 1; i >= 0; i-- {
		if err := cleanupFuncs[i](); err != nil {
			logger.Error("cleanup failed", "error", err)
		}
	}

	logger.Info("eventledger stopped")
	return nil
}

// buildSinks constructs every enabled sink, each wrapped with dispatch
// metrics under a stable name.
func buildSinks(
	ctx context.Context,
	cfg *dto.ApplicationConfig,
	metrics *observability.Metrics,
	logger *slog.Logger,
	addCleanup func(string, func() error),
) ([]event.Sink, error) {
	var sinks []event.Sink
	add := func(name string, s event.Sink) {
		sinks = append(sinks, sink.NewInstrumented(name, s, metrics))
	}

	if cfg.Sinks.Log.Enabled {
		add("log", sink.NewLogSink(logger))
	}

	if cfg.Sinks.File.Enabled {
		fileSink, err := sink.NewFileSink(sink.FileConfig{Path: cfg.Sinks.File.Path}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create file sink: %w", err)
		}
		addCleanup("file sink", fileSink.Close)
		add("file", fileSink)
	}

	if cfg.Sinks.Kafka.Enabled {
		kafkaSink, err := sink.NewKafkaSink(sink.KafkaConfig{
			Brokers:          cfg.Sinks.Kafka.Brokers,
			Topic:            cfg.Sinks.Kafka.Topic,
			Source:           cfg.Sinks.Kafka.Source,
			SecurityProtocol: cfg.Sinks.Kafka.SecurityProtocol,
			SASLMechanism:    cfg.Sinks.Kafka.SASLMechanism,
			SASLUsername:     cfg.Sinks.Kafka.SASLUsername,
			SASLPassword:     cfg.Sinks.Kafka.SASLPassword,
			AWSRegion:        cfg.Sinks.Kafka.AWSRegion,
			RequiredAcks:     cfg.Sinks.Kafka.RequiredAcks,
			CompressionType:  cfg.Sinks.Kafka.CompressionType,
			MaxMessageBytes:  cfg.Sinks.Kafka.MaxMessageBytes,
			RetryMax:         cfg.Sinks.Kafka.RetryMax,
			RetryBackoffMS:   cfg.Sinks.Kafka.RetryBackoffMS,
			IdempotentWrites: cfg.Sinks.Kafka.IdempotentWrites,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka sink: %w", err)
		}
		addCleanup("kafka sink", kafkaSink.Close)
		add("kafka", kafkaSink)
	}

	if cfg.Sinks.S3.Enabled {
		s3Sink, err := sink.NewS3Sink(ctx, sink.S3Config{
			Bucket:       cfg.Sinks.S3.Bucket,
			Region:       cfg.Sinks.S3.Region,
			BasePath:     cfg.Sinks.S3.BasePath,
			Endpoint:     cfg.Sinks.S3.Endpoint,
			UsePathStyle: cfg.Sinks.S3.UsePathStyle,
			SSEEnabled:   cfg.Sinks.S3.SSEEnabled,
			SSEKMSKeyID:  cfg.Sinks.S3.SSEKMSKeyID,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 sink: %w", err)
		}
		add("s3", s3Sink)
	}

	if cfg.Sinks.GCS.Enabled {
		gcsSink, err := sink.NewGCSSink(ctx, sink.GCSConfig{
			Bucket:               cfg.Sinks.GCS.Bucket,
			BasePath:             cfg.Sinks.GCS.BasePath,
			Endpoint:             cfg.Sinks.GCS.Endpoint,
			CredentialsFile:      cfg.Sinks.GCS.CredentialsFile,
			CredentialsJSON:      cfg.Sinks.GCS.CredentialsJSON,
			UseDefaultCredential: cfg.Sinks.GCS.UseDefaultCredential,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gcs sink: %w", err)
		}
		addCleanup("gcs sink", gcsSink.Close)
		add("gcs", gcsSink)
	}

	if cfg.Sinks.Azure.Enabled {
		azureSink, err := sink.NewAzureSink(sink.AzureConfig{
			AccountName: cfg.Sinks.Azure.AccountName,
			AccountKey:  os.Getenv("AZURE_STORAGE_ACCOUNT_KEY"),
			Container:   cfg.Sinks.Azure.Container,
			BasePath:    cfg.Sinks.Azure.BasePath,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create azure sink: %w", err)
		}
		add("azure", azureSink)
	}

	return sinks, nil
}

// publishRegistryStats exports gauge metrics describing the loaded registry.
func publishRegistryStats(registry *definitions.Registry, metrics *observability.Metrics) {
	versions := registry.Versions()
	metrics.SetRegistryVersions(float64(len(versions)))
	for _, v := range versions {
		for _, c := range v.Categories() {
			var active, retired int
			for _, e := range c.Events() {
				if e.Retired() || c.Retired() || v.Retired() {
					retired++
				} else {
					active++
				}
			}
			metrics.SetRegistryEvents(v.Number(), c.Name(), "active", float64(active))
			metrics.SetRegistryEvents(v.Number(), c.Name(), "retired", float64(retired))
		}
	}
}
