package postal

import (
	"context"
	"time"

	"github.com/postalkit/postalkit/internal/data"
	"github.com/postalkit/postalkit/internal/ffi"
	"github.com/postalkit/postalkit/internal/metrics"
	"github.com/postalkit/postalkit/pkg/logging"
	"github.com/postalkit/postalkit/pkg/profiling"
)

// Config configures a Client. Zero-value fields fall back to defaults.
type Config struct {
	// Data configures data-directory resolution and acquisition.
	Data *data.Config `yaml:"data"`

	// Metrics configures the Prometheus collector. Nil disables metrics.
	Metrics *metrics.Config `yaml:"metrics"`

	// EnableProfiling turns on in-process operation counters and timers.
	EnableProfiling bool `yaml:"enable_profiling"`

	// LogLevel is one of debug, info, warn, error. Empty means info.
	LogLevel string `yaml:"log_level"`
}

// Client is the managed entry point: it ensures model data is installed,
// runs native initialization, and instruments parse and normalize calls.
// A Client is safe for concurrent use.
type Client struct {
	parser     Parser
	normalizer Normalizer
	manager    *data.Manager
	collector  *metrics.Collector
	profiler   *profiling.Profiler
	log        *logging.Logger
}

// New creates a fully initialized client with default configuration. Data
// is acquired if missing, so the first call on a fresh machine can take a
// while.
func New(ctx context.Context) (*Client, error) {
	return NewWithConfig(ctx, nil)
}

// NewWithConfig creates a client for the given configuration. Acquisition,
// verification, and native setup all happen here; a returned Client is
// ready for parse and normalize calls.
func NewWithConfig(ctx context.Context, config *Config) (*Client, error) {
	if config == nil {
		config = &Config{}
	}

	log := logging.Default().WithPrefix("postal")
	if config.LogLevel != "" {
		level, err := logging.ParseLevel(config.LogLevel)
		if err != nil {
			return nil, err
		}
		log.SetLevel(level)
	}

	client := &Client{
		parser:     NewParser(),
		normalizer: NewNormalizer(),
		manager:    data.NewManagerWithConfig(config.Data).WithLogger(log),
		log:        log,
	}

	if config.Metrics != nil {
		collector, err := metrics.NewCollector(config.Metrics)
		if err != nil {
			return nil, err
		}
		client.collector = collector
		client.manager.WithRecorder(collector)
	}
	if config.EnableProfiling {
		client.profiler = profiling.NewProfiler()
	}

	if err := client.manager.EnsureData(ctx); err != nil {
		return nil, err
	}
	if err := ffi.Initialize(client.manager); err != nil {
		return nil, err
	}
	return client, nil
}

// Parser returns a copy of the client's parser configuration.
func (c *Client) Parser() Parser {
	return c.parser
}

// Normalizer returns a copy of the client's normalizer configuration.
func (c *Client) Normalizer() Normalizer {
	return c.normalizer
}

// WithParser replaces the client's parser configuration.
func (c *Client) WithParser(parser Parser) *Client {
	c.parser = parser
	return c
}

// WithNormalizer replaces the client's normalizer configuration.
func (c *Client) WithNormalizer(normalizer Normalizer) *Client {
	c.normalizer = normalizer
	return c
}

// Parse parses one address through the client's parser, recording
// telemetry when metrics or profiling are enabled.
func (c *Client) Parse(address string) (*ParsedAddress, error) {
	start := time.Now()
	parsed, err := c.parser.Parse(address)
	elapsed := time.Since(start)

	if c.collector != nil {
		c.collector.RecordParse(elapsed, err == nil)
	}
	if c.profiler != nil {
		c.profiler.RecordParse(elapsed)
	}
	return parsed, err
}

// ParseWithHints parses with one-off hints without reconfiguring the
// client's parser.
func (c *Client) ParseWithHints(address string, language Language, country Country) (*ParsedAddress, error) {
	start := time.Now()
	parsed, err := c.parser.WithHints(language, country).Parse(address)
	elapsed := time.Since(start)

	if c.collector != nil {
		c.collector.RecordParse(elapsed, err == nil)
	}
	if c.profiler != nil {
		c.profiler.RecordParse(elapsed)
	}
	return parsed, err
}

// Normalize normalizes one address through the client's normalizer,
// recording telemetry when metrics or profiling are enabled.
func (c *Client) Normalize(input string) (*NormalizedAddress, error) {
	start := time.Now()
	normalized, err := c.normalizer.Normalize(input)
	elapsed := time.Since(start)

	if c.collector != nil {
		c.collector.RecordNormalize(elapsed, err == nil)
	}
	if c.profiler != nil {
		c.profiler.RecordNormalize(elapsed)
	}
	return normalized, err
}

// StartMetrics serves the Prometheus endpoint in the background. No-op
// when metrics are disabled.
func (c *Client) StartMetrics(ctx context.Context) error {
	if c.collector == nil {
		return nil
	}
	return c.collector.Start(ctx)
}

// ProfileSummary returns accumulated profiling data, or a zero summary
// when profiling is disabled.
func (c *Client) ProfileSummary() profiling.Summary {
	if c.profiler == nil {
		return profiling.Summary{}
	}
	return c.profiler.Summary()
}

// DataSize returns the total on-disk size of the installed model data.
func (c *Client) DataSize() (int64, error) {
	return c.manager.DataSize()
}

// CleanupData removes the installed model data. The native library keeps
// its in-memory state, so parsing keeps working until process exit, but
// the next process start will re-acquire.
func (c *Client) CleanupData() error {
	return c.manager.Cleanup()
}

// Close stops the metrics server and tears down the native library. Use
// only at process exit; parse and normalize calls after Close are
// undefined.
func (c *Client) Close(ctx context.Context) error {
	var err error
	if c.collector != nil {
		err = c.collector.Stop(ctx)
	}
	ffi.Teardown()
	return err
}
