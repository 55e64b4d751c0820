package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers parse, normalization, and data-acquisition metrics and
// optionally serves them over HTTP. It implements the data package's
// Recorder interface. A disabled collector is a cheap no-op on every
// recording path.
type Collector struct {
	config   *Config
	registry *prometheus.Registry

	parseCounter      *prometheus.CounterVec
	parseDuration     prometheus.Histogram
	normalizeCounter  *prometheus.CounterVec
	normalizeDuration prometheus.Histogram
	downloadBytes     *prometheus.CounterVec
	downloadDuration  *prometheus.HistogramVec
	chunkCounter      *prometheus.CounterVec
	retryCounter      *prometheus.CounterVec

	server *http.Server
}

// Config represents metrics configuration.
type Config struct {
	Enabled   bool   `yaml:"enabled"`
	Port      int    `yaml:"port"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// DefaultConfig returns the metrics configuration used when nothing is
// supplied.
func DefaultConfig() *Config {
	return &Config{
		Enabled:   true,
		Port:      9090,
		Path:      "/metrics",
		Namespace: "postalkit",
	}
}

// NewCollector creates a collector with its own registry.
func NewCollector(config *Config) (*Collector, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if !config.Enabled {
		return &Collector{config: config}, nil
	}

	c := &Collector{
		config:   config,
		registry: prometheus.NewRegistry(),
	}
	if err := c.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	return c, nil
}

func (c *Collector) initMetrics() error {
	ns := c.config.Namespace

	c.parseCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "parse_operations_total",
		Help:      "Total number of address parse operations",
	}, []string{"status"})

	c.parseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "parse_duration_seconds",
		Help:      "Address parse latency in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	c.normalizeCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "normalize_operations_total",
		Help:      "Total number of address normalization operations",
	}, []string{"status"})

	c.normalizeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "normalize_duration_seconds",
		Help:      "Address normalization latency in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	c.downloadBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "data_download_bytes_total",
		Help:      "Total bytes downloaded per data component",
	}, []string{"component"})

	c.downloadDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "data_download_duration_seconds",
		Help:      "Component download duration in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
	}, []string{"component"})

	c.chunkCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "data_download_chunks_total",
		Help:      "Total archive chunks downloaded per data component",
	}, []string{"component"})

	c.retryCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "data_download_retries_total",
		Help:      "Total chunk download retries per data component",
	}, []string{"component"})

	collectors := []prometheus.Collector{
		c.parseCounter, c.parseDuration,
		c.normalizeCounter, c.normalizeDuration,
		c.downloadBytes, c.downloadDuration,
		c.chunkCounter, c.retryCounter,
	}
	for _, col := range collectors {
		if err := c.registry.Register(col); err != nil {
			return fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return nil
}

// Start serves the metrics endpoint in the background. No-op when the
// collector is disabled.
func (c *Collector) Start(ctx context.Context) error {
	if !c.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(c.config.Path, promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	c.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", c.config.Port),
		Handler:           mux,
		ReadHeaderTimeout: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Metrics server error: %v\n", err)
		}
	}()

	return nil
}

// Stop shuts the metrics server down.
func (c *Collector) Stop(ctx context.Context) error {
	if c.server == nil {
		return nil
	}
	return c.server.Shutdown(ctx)
}

// RecordParse records one parse operation.
func (c *Collector) RecordParse(duration time.Duration, success bool) {
	if !c.config.Enabled {
		return
	}
	c.parseCounter.WithLabelValues(statusLabel(success)).Inc()
	c.parseDuration.Observe(duration.Seconds())
}

// RecordNormalize records one normalization operation.
func (c *Collector) RecordNormalize(duration time.Duration, success bool) {
	if !c.config.Enabled {
		return
	}
	c.normalizeCounter.WithLabelValues(statusLabel(success)).Inc()
	c.normalizeDuration.Observe(duration.Seconds())
}

// RecordDownload records a completed component download.
func (c *Collector) RecordDownload(component string, bytes int64, elapsed time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.downloadBytes.WithLabelValues(component).Add(float64(bytes))
	c.downloadDuration.WithLabelValues(component).Observe(elapsed.Seconds())
}

// RecordChunk records one successfully downloaded archive chunk.
func (c *Collector) RecordChunk(component string) {
	if !c.config.Enabled {
		return
	}
	c.chunkCounter.WithLabelValues(component).Inc()
}

// RecordRetry records one chunk download retry.
func (c *Collector) RecordRetry(component string) {
	if !c.config.Enabled {
		return
	}
	c.retryCounter.WithLabelValues(component).Inc()
}

// Registry exposes the collector's registry for embedding the metrics
// handler into an existing server.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
