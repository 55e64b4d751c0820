package data

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the immutable configuration snapshot for data management. It is
// constructed once at startup and shared by reference; nothing mutates it
// afterwards.
type Config struct {
	// DataDir is the filesystem root for all model data. Empty means
	// "resolve automatically" (see ResolveDataDirectory).
	DataDir string `yaml:"data_dir"`

	// AutoDownload enables acquisition when data is missing.
	AutoDownload bool `yaml:"auto_download"`

	// VerifyIntegrity runs the file existence/size checks after acquisition.
	VerifyIntegrity bool `yaml:"verify_integrity"`

	// BaseURL is the release download root; component version and archive
	// filename are appended.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds a whole single-request download.
	Timeout time.Duration `yaml:"timeout"`

	// DownloadWorkers bounds concurrent chunk downloads per component.
	DownloadWorkers int `yaml:"download_workers"`

	// ChunkSize is the byte length of each ranged chunk request.
	ChunkSize int64 `yaml:"chunk_size"`

	// MaxRetries caps attempts per chunk, including the first.
	MaxRetries int `yaml:"max_retries"`

	// ChunkTimeout bounds a single chunk request.
	ChunkTimeout time.Duration `yaml:"chunk_timeout"`
}

// DefaultConfig returns the configuration used when nothing is supplied.
func DefaultConfig() *Config {
	return &Config{
		AutoDownload:    true,
		VerifyIntegrity: true,
		BaseURL:         "https://github.com/openvenues/libpostal/releases/download",
		Timeout:         5 * time.Minute,
		DownloadWorkers: 4,
		ChunkSize:       64 * 1024 * 1024,
		MaxRetries:      3,
		ChunkTimeout:    2 * time.Minute,
	}
}

// LoadFromFile overlays settings from a YAML file.
func (c *Config) LoadFromFile(filename string) error {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return nil
}

// LoadFromEnv overlays settings from POSTALKIT_* environment variables.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("POSTALKIT_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("POSTALKIT_AUTO_DOWNLOAD"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid POSTALKIT_AUTO_DOWNLOAD: %q", v)
		}
		c.AutoDownload = b
	}
	if v := os.Getenv("POSTALKIT_VERIFY_INTEGRITY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid POSTALKIT_VERIFY_INTEGRITY: %q", v)
		}
		c.VerifyIntegrity = b
	}
	if v := os.Getenv("POSTALKIT_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("POSTALKIT_DOWNLOAD_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid POSTALKIT_DOWNLOAD_WORKERS: %q", v)
		}
		c.DownloadWorkers = n
	}
	if v := os.Getenv("POSTALKIT_CHUNK_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid POSTALKIT_CHUNK_SIZE: %q", v)
		}
		c.ChunkSize = n
	}
	if v := os.Getenv("POSTALKIT_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid POSTALKIT_MAX_RETRIES: %q", v)
		}
		c.MaxRetries = n
	}
	if v := os.Getenv("POSTALKIT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid POSTALKIT_TIMEOUT: %q", v)
		}
		c.Timeout = d
	}
	if v := os.Getenv("POSTALKIT_CHUNK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid POSTALKIT_CHUNK_TIMEOUT: %q", v)
		}
		c.ChunkTimeout = d
	}
	return nil
}

// applyDefaults fills zero-valued fields from DefaultConfig so a partially
// populated Config is always usable. Boolean fields are left alone since
// false is meaningful for them.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.DownloadWorkers < 1 {
		c.DownloadWorkers = def.DownloadWorkers
	}
	if c.ChunkSize < 1 {
		c.ChunkSize = def.ChunkSize
	}
	if c.MaxRetries < 1 {
		c.MaxRetries = def.MaxRetries
	}
	if c.ChunkTimeout <= 0 {
		c.ChunkTimeout = def.ChunkTimeout
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if c.DownloadWorkers < 1 {
		return fmt.Errorf("download_workers must be at least 1, got %d", c.DownloadWorkers)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.ChunkTimeout <= 0 {
		return fmt.Errorf("chunk_timeout must be positive, got %v", c.ChunkTimeout)
	}
	return nil
}
