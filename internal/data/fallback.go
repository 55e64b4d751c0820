package data

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/postalkit/postalkit/pkg/errors"
)

// systemInstallDirs are locations where a package-manager or source install
// of the model data may already exist.
var systemInstallDirs = []string{
	"/usr/share/libpostal",
	"/usr/local/share/libpostal",
	"/opt/libpostal",
	"/opt/local/share/libpostal",
}

// projectDataDirs are repo-relative locations checked during development.
var projectDataDirs = []string{
	"data/libpostal",
	filepath.Join("..", "data", "libpostal"),
	filepath.Join("..", "..", "data", "libpostal"),
}

// mirrorBaseURLs are alternate release hosts tried after the primary.
var mirrorBaseURLs = []string{
	"https://objects.githubusercontent.com/openvenues/libpostal/releases/download",
}

// acquire tries each data source in order and stops at the first one that
// yields a complete data directory. The order is fixed: the configured
// release host, existing system installs, project-local data directories,
// then mirrors. Failures from every source are aggregated into the final
// error.
func (m *Manager) acquire(ctx context.Context) error {
	var failures []string

	record := func(source string, err error) {
		m.log.Warn("data source %s failed: %v", source, err)
		failures = append(failures, fmt.Sprintf("%s: %v", source, err))
	}

	if err := m.downloadComponents(ctx, m.config.BaseURL); err != nil {
		record("primary download", err)
	} else if m.IsDataAvailable() {
		return nil
	} else {
		record("primary download", fmt.Errorf("completed but data directory is incomplete"))
	}

	for _, dir := range systemInstallDirs {
		if err := m.copyFromDir(dir); err != nil {
			record("system install "+dir, err)
			continue
		}
		return nil
	}

	for _, dir := range projectDataDirs {
		if err := m.copyFromDir(dir); err != nil {
			record("project data "+dir, err)
			continue
		}
		return nil
	}

	for _, base := range mirrorBaseURLs {
		if err := m.downloadComponents(ctx, base); err != nil {
			record("mirror "+base, err)
			continue
		}
		if m.IsDataAvailable() {
			return nil
		}
		record("mirror "+base, fmt.Errorf("completed but data directory is incomplete"))
	}

	return errors.Newf(errors.ErrCodeDataSourceExhausted,
		"all data sources failed: %s", strings.Join(failures, "; ")).WithComponent("data")
}

// copyFromDir installs the data directory from an existing local candidate.
// The candidate must already contain every required file.
func (m *Manager) copyFromDir(src string) error {
	if err := validateDataDir(src); err != nil {
		return err
	}
	m.log.Info("copying model data from %s", src)
	if err := copyTree(src, m.dataDir); err != nil {
		return err
	}
	// Local copies carry no release metadata, so stamp the target versions
	// to keep later acquisitions idempotent.
	for _, c := range acquisitionOrder {
		info, ok := c.Info()
		if !ok {
			continue
		}
		if err := m.writeVersionFile(info); err != nil {
			return err
		}
	}
	return nil
}

// validateDataDir reports whether dir holds every required data file.
func validateDataDir(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return fmt.Errorf("not a directory")
	}
	for _, rel := range requiredFiles {
		fi, err := os.Stat(filepath.Join(dir, rel))
		if err != nil || fi.Size() == 0 {
			return fmt.Errorf("missing or empty %s", rel)
		}
	}
	return nil
}

// copyTree recursively copies the contents of src into dst.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
