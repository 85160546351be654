package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"

	"github.com/mlieberg/eventledger/pkg/event"
)

// Ensure implementation satisfies interface at compile time.
var _ event.Sink = (*KafkaSink)(nil)

// KafkaConfig contains Kafka sink configuration.
type KafkaConfig struct {
	Brokers          []string
	Topic            string
	Source           string
	SecurityProtocol string
	SASLMechanism    string
	SASLUsername     string
	SASLPassword     string
	AWSRegion        string
	RequiredAcks     int
	CompressionType  string
	MaxMessageBytes  int
	RetryMax         int
	RetryBackoffMS   int
	IdempotentWrites bool
}

// KafkaSink publishes each tracked event to a Kafka topic as a CloudEvents
// 1.0 JSON envelope. The event's qualified name becomes the CloudEvents
// type and the message key, so a topic partition carries a single event
// name in order.
type KafkaSink struct {
	producer sarama.SyncProducer
	topic    string
	source   string
	logger   *slog.Logger
}

// NewKafkaSink creates a Kafka sink backed by a synchronous producer.
func NewKafkaSink(cfg KafkaConfig, logger *slog.Logger) (*KafkaSink, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.RequiredAcks(cfg.RequiredAcks)
	saramaConfig.Producer.Compression = parseCompression(cfg.CompressionType)
	saramaConfig.Producer.MaxMessageBytes = cfg.MaxMessageBytes
	saramaConfig.Producer.Idempotent = cfg.IdempotentWrites
	saramaConfig.Producer.Retry.Max = cfg.RetryMax
	saramaConfig.Producer.Retry.Backoff = time.Duration(cfg.RetryBackoffMS) * time.Millisecond

	// Idempotent producer requires a single in-flight request
	if cfg.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	if err := configureSecurity(saramaConfig, cfg); err != nil {
		return nil, fmt.Errorf("failed to configure security: %w", err)
	}

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Info("kafka sink created",
		"brokers", cfg.Brokers,
		"topic", cfg.Topic,
		"security_protocol", cfg.SecurityProtocol,
	)

	source := cfg.Source
	if source == "" {
		source = "eventledger"
	}

	return &KafkaSink{
		producer: producer,
		topic:    cfg.Topic,
		source:   source,
		logger:   logger,
	}, nil
}

// Track publishes the event to the configured topic.
func (s *KafkaSink) Track(ctx context.Context, name string, props event.Properties) error {
	ce := cloudevents.NewEvent()
	ce.SetSpecVersion(cloudevents.VersionV1)
	ce.SetID(uuid.New().String())
	ce.SetType(name)
	ce.SetSource(s.source)
	ce.SetTime(time.Now().UTC())
	if err := ce.SetData(cloudevents.ApplicationJSON, props); err != nil {
		return fmt.Errorf("failed to set event data: %w", err)
	}

	payload, err := json.Marshal(ce)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(name),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("ce_specversion"), Value: []byte(ce.SpecVersion())},
			{Key: []byte("ce_type"), Value: []byte(ce.Type())},
			{Key: []byte("ce_source"), Value: []byte(ce.Source())},
			{Key: []byte("ce_id"), Value: []byte(ce.ID())},
		},
	}

	partition, offset, err := s.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send event to Kafka: %w", err)
	}

	s.logger.Debug("event published",
		"topic", s.topic,
		"partition", partition,
		"offset", offset,
		"event", name,
	)
	return nil
}

// Close closes the underlying producer.
func (s *KafkaSink) Close() error {
	return s.producer.Close()
}

// configureSecurity configures SASL and TLS settings.
func configureSecurity(saramaConfig *sarama.Config, cfg KafkaConfig) error {
	switch cfg.SecurityProtocol {
	case "", "PLAINTEXT":
		// No security

	case "SASL_SSL":
		saramaConfig.Net.SASL.Enable = true
		saramaConfig.Net.TLS.Enable = true
		if err := configureSASL(saramaConfig, cfg); err != nil {
			return err
		}

	case "SASL_PLAINTEXT":
		saramaConfig.Net.SASL.Enable = true
		if err := configureSASL(saramaConfig, cfg); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unsupported security protocol: %s", cfg.SecurityProtocol)
	}
	return nil
}

// configureSASL configures the SASL authentication mechanism.
func configureSASL(saramaConfig *sarama.Config, cfg KafkaConfig) error {
	switch cfg.SASLMechanism {
	case "PLAIN":
		saramaConfig.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		saramaConfig.Net.SASL.User = cfg.SASLUsername
		saramaConfig.Net.SASL.Password = cfg.SASLPassword

	case "SCRAM-SHA-256":
		saramaConfig.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		saramaConfig.Net.SASL.User = cfg.SASLUsername
		saramaConfig.Net.SASL.Password = cfg.SASLPassword
		saramaConfig.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
			return &XDGSCRAMClient{HashGeneratorFcn: SHA256()}
		}

	case "SCRAM-SHA-512":
		saramaConfig.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA512
		saramaConfig.Net.SASL.User = cfg.SASLUsername
		saramaConfig.Net.SASL.Password = cfg.SASLPassword
		saramaConfig.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
			return &XDGSCRAMClient{HashGeneratorFcn: SHA512()}
		}

	case "AWS_MSK_IAM":
		if cfg.AWSRegion == "" {
			return fmt.Errorf("AWS MSK IAM authentication requires aws_region")
		}
		saramaConfig.Net.SASL.Mechanism = sarama.SASLTypeOAuth
		saramaConfig.Net.SASL.TokenProvider = &mskAccessTokenProvider{region: cfg.AWSRegion}

	default:
		return fmt.Errorf("unsupported SASL mechanism: %s", cfg.SASLMechanism)
	}
	return nil
}

// parseCompression parses a compression codec name.
func parseCompression(compression string) sarama.CompressionCodec {
	switch compression {
	case "gzip":
		return sarama.CompressionGZIP
	case "snappy":
		return sarama.CompressionSnappy
	case "lz4":
		return sarama.CompressionLZ4
	case "zstd":
		return sarama.CompressionZSTD
	default:
		return sarama.CompressionNone
	}
}
