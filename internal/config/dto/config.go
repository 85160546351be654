// Package dto defines configuration data transfer objects.
package dto

// ApplicationConfig is the root configuration structure
type ApplicationConfig struct {
	Application   ApplicationInfo     `mapstructure:"application"`
	Definitions   DefinitionsConfig   `mapstructure:"definitions"`
	Sinks         SinksConfig         `mapstructure:"sinks"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Generator     GeneratorConfig     `mapstructure:"generator"`
	Shutdown      ShutdownConfig      `mapstructure:"shutdown"`
}

// ApplicationInfo contains application metadata
type ApplicationInfo struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// DefinitionsConfig locates the event definitions document and selects the
// registry version the daemon's tracker binds to.
type DefinitionsConfig struct {
	Path    string `mapstructure:"path"`
	Version int    `mapstructure:"version"`
}

// SinksConfig contains one block per sink implementation
type SinksConfig struct {
	Log   LogSinkConfig   `mapstructure:"log"`
	File  FileSinkConfig  `mapstructure:"file"`
	Kafka KafkaSinkConfig `mapstructure:"kafka"`
	S3    S3SinkConfig    `mapstructure:"s3"`
	GCS   GCSSinkConfig   `mapstructure:"gcs"`
	Azure AzureSinkConfig `mapstructure:"azure"`
}

// LogSinkConfig configures the structured-log mirror sink
type LogSinkConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// FileSinkConfig configures the local JSONL sink
type FileSinkConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// KafkaSinkConfig configures the Kafka sink
type KafkaSinkConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	Brokers          []string `mapstructure:"brokers"`
	Topic            string   `mapstructure:"topic"`
	Source           string   `mapstructure:"source"`
	SecurityProtocol string   `mapstructure:"security_protocol"`
	SASLMechanism    string   `mapstructure:"sasl_mechanism"`
	SASLUsername     string   `mapstructure:"sasl_username"`
	SASLPassword     string   `mapstructure:"sasl_password"`
	AWSRegion        string   `mapstructure:"aws_region"`
	RequiredAcks     int      `mapstructure:"required_acks"`
	CompressionType  string   `mapstructure:"compression_type"`
	MaxMessageBytes  int      `mapstructure:"max_message_bytes"`
	RetryMax         int      `mapstructure:"retry_max"`
	RetryBackoffMS   int      `mapstructure:"retry_backoff_ms"`
	IdempotentWrites bool     `mapstructure:"idempotent_writes"`
}

// S3SinkConfig configures the AWS S3 sink
type S3SinkConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Bucket       string `mapstructure:"bucket"`
	Region       string `mapstructure:"region"`
	BasePath     string `mapstructure:"base_path"`
	Endpoint     string `mapstructure:"endpoint"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
	SSEEnabled   bool   `mapstructure:"sse_enabled"`
	SSEKMSKeyID  string `mapstructure:"sse_kms_key_id"`
}

// GCSSinkConfig configures the Google Cloud Storage sink
type GCSSinkConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Bucket               string `mapstructure:"bucket"`
	BasePath             string `mapstructure:"base_path"`
	Endpoint             string `mapstructure:"endpoint"`
	CredentialsFile      string `mapstructure:"credentials_file"`
	CredentialsJSON      string `mapstructure:"credentials_json"`
	UseDefaultCredential bool   `mapstructure:"use_default_credential"`
}

// AzureSinkConfig configures the Azure Blob Storage sink
type AzureSinkConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	AccountName        string `mapstructure:"account_name"`
	Container          string `mapstructure:"container"`
	BasePath           string `mapstructure:"base_path"`
	UseManagedIdentity bool   `mapstructure:"use_managed_identity"`
}

// ObservabilityConfig contains logging, metrics, health and ingest settings
type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Health  HealthConfig  `mapstructure:"health"`
	Ingest  IngestConfig  `mapstructure:"ingest"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig contains Prometheus metrics settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// HealthConfig contains health probe settings
type HealthConfig struct {
	Port          int    `mapstructure:"port"`
	LivenessPath  string `mapstructure:"liveness_path"`
	ReadinessPath string `mapstructure:"readiness_path"`
}

// IngestConfig contains the event ingest HTTP endpoint settings
type IngestConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// GeneratorConfig contains demo traffic generator settings
type GeneratorConfig struct {
	Enabled    bool             `mapstructure:"enabled"`
	IntervalMS int              `mapstructure:"interval_ms"`
	Events     []GeneratorEvent `mapstructure:"events"`
}

// GeneratorEvent names one registry event the generator fires
type GeneratorEvent struct {
	Category string `mapstructure:"category"`
	Event    string `mapstructure:"event"`
}

// ShutdownConfig contains graceful shutdown settings
type ShutdownConfig struct {
	GracePeriodSeconds  int `mapstructure:"grace_period_seconds"`
	ForceTimeoutSeconds int `mapstructure:"force_timeout_seconds"`
}
