package telemetry

import (
	"fmt"
	"time"
)

// Exporter names accepted by TracingConfig.Exporter.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Config groups the settings for every telemetry pillar.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	Logging LoggingConfig
	Tracing TracingConfig
	Metrics MetricsConfig
	Events  EventsConfig
}

// LoggingConfig selects level, encoding and destination of the root logger.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string
	// Format is "console" or "json".
	Format string
	// Output is stdout, stderr or a file path opened for append.
	Output string
	Caller bool
}

// TracingConfig selects the span exporter. A disabled tracer still hands out
// no-op spans so instrumented code never checks.
type TracingConfig struct {
	Enabled  bool
	Exporter string
	// Endpoint is the OTLP collector address, host:port.
	Endpoint string
	// SampleRatio is applied to root spans only; children follow the parent.
	SampleRatio   float64
	ExportTimeout time.Duration
	Insecure      bool
}

// MetricsConfig controls the Prometheus registry and its HTTP endpoint.
type MetricsConfig struct {
	Enabled       bool
	ListenAddress string
	Path          string
	Namespace     string
	// CommitBuckets are the commit latency histogram buckets, in seconds.
	CommitBuckets []float64
}

// EventsConfig controls lifecycle event delivery.
type EventsConfig struct {
	Enabled    bool
	BufferSize int
	// EnableAsync hands events to a delivery goroutine. When false, every
	// subscriber has seen an event before Publish returns, in publish order.
	EnableAsync bool
}

// DefaultConfig is the configuration used by long-running processes.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "deckfiber",
		ServiceVersion: "dev",
		Environment:    "development",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
			Caller: true,
		},
		Tracing: TracingConfig{
			Enabled:       true,
			Exporter:      ExporterNone,
			SampleRatio:   1.0,
			ExportTimeout: 30 * time.Second,
			Insecure:      true,
		},
		Metrics: MetricsConfig{
			Enabled:       true,
			ListenAddress: ":9464",
			Path:          "/metrics",
			Namespace:     "deckfiber",
			// commits are sub-millisecond for small scenes
			CommitBuckets: []float64{
				0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1,
			},
		},
		Events: EventsConfig{
			Enabled:     true,
			BufferSize:  1000,
			EnableAsync: true,
		},
	}
}

// ProductionConfig logs JSON and exports a tenth of the traces over OTLP.
func ProductionConfig() *Config {
	cfg := DefaultConfig()
	cfg.Environment = "production"
	cfg.Logging.Format = "json"
	cfg.Tracing.Exporter = ExporterOTLP
	cfg.Tracing.Endpoint = "localhost:4317"
	cfg.Tracing.SampleRatio = 0.1
	cfg.Tracing.Insecure = false
	return cfg
}

// DevelopmentConfig logs at debug and pretty-prints spans to stdout.
func DevelopmentConfig() *Config {
	cfg := DefaultConfig()
	cfg.Logging.Level = "debug"
	cfg.Tracing.Exporter = ExporterStdout
	return cfg
}

// TestingConfig is quiet and deterministic: errors only, no spans exported,
// an ephemeral metrics port and synchronous events.
func TestingConfig() *Config {
	cfg := DefaultConfig()
	cfg.Environment = "test"
	cfg.Logging.Level = "error"
	cfg.Logging.Format = "json"
	cfg.Logging.Caller = false
	cfg.Tracing.Enabled = false
	cfg.Metrics.ListenAddress = "127.0.0.1:0"
	cfg.Events.EnableAsync = false
	return cfg
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.ServiceName == "" || c.ServiceVersion == "" {
		return fmt.Errorf("service name and version are required")
	}
	if _, ok := logLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}

	if c.Tracing.Enabled {
		switch c.Tracing.Exporter {
		case ExporterNone, ExporterStdout:
		case ExporterOTLP:
			if c.Tracing.Endpoint == "" {
				return fmt.Errorf("otlp exporter requires an endpoint")
			}
		default:
			return fmt.Errorf("invalid trace exporter: %q", c.Tracing.Exporter)
		}
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("trace sample ratio %v outside [0, 1]", c.Tracing.SampleRatio)
	}

	if c.Metrics.Enabled && c.Metrics.ListenAddress == "" {
		return fmt.Errorf("metrics listen address is required when metrics are enabled")
	}
	if c.Events.Enabled && c.Events.BufferSize <= 0 {
		return fmt.Errorf("event buffer size must be positive, got %d", c.Events.BufferSize)
	}
	return nil
}
