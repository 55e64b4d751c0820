package data

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/postalkit/postalkit/pkg/errors"
	"github.com/postalkit/postalkit/pkg/logging"
)

// BuiltDataDir may be set at link time to point at a data directory baked
// into the deployment image:
//
//	go build -ldflags "-X github.com/postalkit/postalkit/internal/data.BuiltDataDir=/srv/libpostal"
var BuiltDataDir string

// Recorder receives download telemetry. Implemented by internal/metrics;
// a nil Recorder disables recording.
type Recorder interface {
	RecordDownload(component string, bytes int64, elapsed time.Duration)
	RecordChunk(component string)
	RecordRetry(component string)
}

// Manager decides, fetches, verifies, and installs the on-disk model data
// required before native setup can run.
type Manager struct {
	config  *Config
	dataDir string
	log     *logging.Logger
	metrics Recorder
	client  *http.Client
}

// NewManager creates a manager with default configuration and automatic
// data-directory resolution.
func NewManager() *Manager {
	return NewManagerWithConfig(DefaultConfig())
}

// NewManagerWithConfig creates a manager for the given configuration. Zero
// fields are filled from DefaultConfig, so callers may set only what they
// need. An empty DataDir triggers automatic resolution.
func NewManagerWithConfig(config *Config) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	config.applyDefaults()
	dir := config.DataDir
	if dir == "" {
		dir = ResolveDataDirectory()
	}
	return &Manager{
		config:  config,
		dataDir: dir,
		log:     logging.Default().WithPrefix("data"),
		client:  &http.Client{Timeout: config.Timeout},
	}
}

// WithLogger replaces the manager's logger.
func (m *Manager) WithLogger(log *logging.Logger) *Manager {
	m.log = log.WithPrefix("data")
	return m
}

// WithRecorder attaches a telemetry recorder.
func (m *Manager) WithRecorder(rec Recorder) *Manager {
	m.metrics = rec
	return m
}

// DataDir returns the resolved data directory.
func (m *Manager) DataDir() string {
	return m.dataDir
}

// Config returns the manager's configuration.
func (m *Manager) Config() *Config {
	return m.config
}

// ResolveDataDirectory picks the data directory by fixed priority: explicit
// environment override, link-time directory, project-local directory, user
// cache directory, then a working-directory fallback. The first existing
// candidate wins; when none exist the final fallback is returned without an
// existence requirement.
func ResolveDataDirectory() string {
	for _, env := range []string{"POSTALKIT_DATA_DIR", "LIBPOSTAL_DATA_DIR"} {
		if dir := os.Getenv(env); dir != "" {
			if _, err := os.Stat(dir); err == nil {
				return dir
			}
		}
	}

	if BuiltDataDir != "" {
		if _, err := os.Stat(BuiltDataDir); err == nil {
			return BuiltDataDir
		}
	}

	projectDir := filepath.Join("data", "libpostal")
	if _, err := os.Stat(projectDir); err == nil {
		return projectDir
	}

	if cacheDir, err := os.UserCacheDir(); err == nil {
		dir := filepath.Join(cacheDir, "postalkit")
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
	}

	return ".postalkit"
}

// IsDataAvailable reports whether the data directory holds every required
// file with non-zero size. Pure check, no side effects.
func (m *Manager) IsDataAvailable() bool {
	if _, err := os.Stat(m.dataDir); err != nil {
		return false
	}
	for _, rel := range requiredFiles {
		fi, err := os.Stat(filepath.Join(m.dataDir, rel))
		if err != nil || fi.Size() == 0 {
			return false
		}
	}
	return true
}

// VerifyData runs the same checks as IsDataAvailable but names the first
// missing or empty file. Checksum verification is not performed; this is
// advisory integrity checking only.
func (m *Manager) VerifyData() error {
	if _, err := os.Stat(m.dataDir); err != nil {
		return errors.Newf(errors.ErrCodeDataMissing,
			"data directory does not exist: %s", m.dataDir).WithComponent("data")
	}
	for _, rel := range requiredFiles {
		path := filepath.Join(m.dataDir, rel)
		fi, err := os.Stat(path)
		if err != nil {
			return errors.Newf(errors.ErrCodeDataMissing,
				"missing data file: %s", rel).WithComponent("data")
		}
		if fi.Size() == 0 {
			return errors.Newf(errors.ErrCodeDataCorrupt,
				"empty data file: %s", rel).WithComponent("data")
		}
	}
	return nil
}

// InstalledVersion returns the version recorded for a component, or "" when
// no version file exists. The version file is the only source of truth for
// installation state.
func (m *Manager) InstalledVersion(c Component) string {
	info, ok := c.Info()
	if !ok {
		return ""
	}
	return m.installedVersion(info)
}

// writeVersionFile records a successful install. This write happens last,
// after extraction, so a crash mid-install leaves the component detected as
// needing re-acquisition.
func (m *Manager) writeVersionFile(info ComponentInfo) error {
	path := filepath.Join(m.dataDir, info.VersionFile)
	if err := os.WriteFile(path, []byte(info.Version), 0o644); err != nil {
		return errors.Newf(errors.ErrCodeIOError,
			"failed to write version file %s", info.VersionFile).WithCause(err).WithComponent("data")
	}
	return nil
}

// DataSize returns the total byte count of everything under the data
// directory. A missing directory counts as zero.
func (m *Manager) DataSize() (int64, error) {
	if _, err := os.Stat(m.dataDir); err != nil {
		return 0, nil
	}
	var total int64
	err := filepath.WalkDir(m.dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		total += fi.Size()
		return nil
	})
	if err != nil {
		return 0, errors.New(errors.ErrCodeIOError,
			"failed to calculate data size").WithCause(err).WithComponent("data")
	}
	return total, nil
}

// Cleanup removes the data directory and everything under it.
func (m *Manager) Cleanup() error {
	if _, err := os.Stat(m.dataDir); err != nil {
		return nil
	}
	if err := os.RemoveAll(m.dataDir); err != nil {
		return errors.New(errors.ErrCodeIOError,
			"failed to remove data directory").WithCause(err).WithComponent("data")
	}
	return nil
}
