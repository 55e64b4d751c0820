package data

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/postalkit/postalkit/pkg/errors"
	"github.com/postalkit/postalkit/pkg/retry"
)

// EnsureData makes the data directory usable: acquire when missing (if
// auto-download is enabled), then verify when integrity checking is on.
func (m *Manager) EnsureData(ctx context.Context) error {
	if !m.IsDataAvailable() {
		if !m.config.AutoDownload {
			return errors.New(errors.ErrCodeDataDownloadDisabled,
				"data files not available and auto_download is disabled").WithComponent("data")
		}
		m.log.Info("model data missing, starting acquisition into %s", m.dataDir)
		if err := m.acquire(ctx); err != nil {
			return err
		}
	}
	if m.config.VerifyIntegrity {
		return m.VerifyData()
	}
	return nil
}

// downloadComponents acquires all components in fixed order from baseURL.
// Components are fetched one at a time; only chunks within a multipart
// archive run concurrently. A failed component aborts the sequence but does
// not roll back components already installed.
func (m *Manager) downloadComponents(ctx context.Context, baseURL string) error {
	for _, c := range acquisitionOrder {
		info, ok := c.Info()
		if !ok {
			continue
		}
		if err := m.acquireComponent(ctx, baseURL, info); err != nil {
			return err
		}
	}
	return nil
}

// acquireComponent fetches, extracts, and marks one component. A version
// file already matching the target makes this a no-op, so re-running after
// a partial failure is safe.
func (m *Manager) acquireComponent(ctx context.Context, baseURL string, info ComponentInfo) error {
	if m.installedVersion(info) == info.Version {
		m.log.Debug("%s already at %s, skipping", info.DisplayName, info.Version)
		return nil
	}

	if err := os.MkdirAll(m.dataDir, 0o755); err != nil {
		return errors.New(errors.ErrCodeIOError,
			"failed to create data directory").WithCause(err).WithComponent("data")
	}

	url := fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(baseURL, "/"), info.Version, info.ArchiveFilename)
	archivePath := filepath.Join(m.dataDir, info.ArchiveFilename)

	m.log.Info("downloading %s %s", info.DisplayName, info.Version)
	start := time.Now()

	var written int64
	var err error
	if info.ChunkCount <= 1 {
		written, err = m.downloadSingle(ctx, url, archivePath)
	} else {
		written, err = m.downloadMultipart(ctx, url, archivePath, info)
	}
	if err != nil {
		return err
	}
	if m.metrics != nil {
		m.metrics.RecordDownload(info.Name, written, time.Since(start))
	}
	m.log.Info("downloaded %s (%d bytes), extracting", info.DisplayName, written)

	// Remove the previous version's directories so a version change cannot
	// leave stale files behind.
	for _, sub := range info.Subdirs {
		if err := os.RemoveAll(filepath.Join(m.dataDir, sub)); err != nil {
			return errors.Newf(errors.ErrCodeIOError,
				"failed to remove stale directory %s", sub).WithCause(err).WithComponent("data")
		}
	}

	if err := extractTarGz(archivePath, m.dataDir); err != nil {
		return err
	}
	if err := os.Remove(archivePath); err != nil {
		return errors.Newf(errors.ErrCodeIOError,
			"failed to remove archive %s", info.ArchiveFilename).WithCause(err).WithComponent("data")
	}

	// The version file is the durable install marker and must be written
	// last: a crash before this point leaves the component detected as
	// needing re-acquisition.
	return m.writeVersionFile(info)
}

func (m *Manager) installedVersion(info ComponentInfo) string {
	raw, err := os.ReadFile(filepath.Join(m.dataDir, info.VersionFile))
	if err != nil {
		return ""
	}
	return string(raw)
}

// downloadSingle performs one plain GET and writes the body to path.
func (m *Manager) downloadSingle(ctx context.Context, url, path string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, errors.New(errors.ErrCodeNetworkError,
			"failed to build download request").WithCause(err).WithContext("url", url)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return 0, errors.New(errors.ErrCodeNetworkError,
			"download request failed").WithCause(err).WithContext("url", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, errors.Newf(errors.ErrCodeNetworkStatus,
			"unexpected status %d", resp.StatusCode).WithContext("url", url)
	}

	return writeBodyToFile(resp.Body, path)
}

// downloadMultipart retrieves the archive as ranged chunks fetched
// concurrently, then reassembles them in ascending index order. Each chunk
// retries independently; a chunk exhausting its retries fails the whole
// component and no partial archive is ever produced.
func (m *Manager) downloadMultipart(ctx context.Context, url, archivePath string, info ComponentInfo) (int64, error) {
	chunkPaths := make([]string, info.ChunkCount)
	for i := range chunkPaths {
		chunkPaths[i] = fmt.Sprintf("%s.part%d", archivePath, i)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.config.DownloadWorkers)

	for i := 0; i < info.ChunkCount; i++ {
		idx := i
		g.Go(func() error {
			retryer := retry.New(retry.Config{
				MaxAttempts: m.config.MaxRetries,
			}).WithOnRetry(func(attempt int, err error, delay time.Duration) {
				if m.metrics != nil {
					m.metrics.RecordRetry(info.Name)
				}
				m.log.Warn("%s chunk %d attempt %d failed (%v), retrying in %v",
					info.DisplayName, idx, attempt, err, delay)
			})
			err := retryer.DoWithContext(gctx, func(ctx context.Context) error {
				return m.downloadChunk(ctx, url, chunkPaths[idx], idx)
			})
			if err == nil && m.metrics != nil {
				m.metrics.RecordChunk(info.Name)
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		m.cleanupChunks(chunkPaths)
		return 0, err
	}

	return m.reassembleChunks(archivePath, chunkPaths)
}

// downloadChunk issues a ranged GET for chunk index idx and writes the body
// to chunkPath.
func (m *Manager) downloadChunk(ctx context.Context, url, chunkPath string, idx int) error {
	ctx, cancel := context.WithTimeout(ctx, m.config.ChunkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.New(errors.ErrCodeNetworkError,
			"failed to build chunk request").WithCause(err).WithContext("url", url)
	}
	start := int64(idx) * m.config.ChunkSize
	end := start + m.config.ChunkSize - 1
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))

	resp, err := m.client.Do(req)
	if err != nil {
		return errors.Newf(errors.ErrCodeNetworkError,
			"chunk %d request failed", idx).WithCause(err).WithContext("url", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return errors.Newf(errors.ErrCodeNetworkStatus,
			"chunk %d: unexpected status %d", idx, resp.StatusCode).WithContext("url", url)
	}

	_, err = writeBodyToFile(resp.Body, chunkPath)
	return err
}

// reassembleChunks concatenates chunk files in ascending index order into
// the final archive, then removes the chunk files.
func (m *Manager) reassembleChunks(archivePath string, chunkPaths []string) (int64, error) {
	out, err := os.Create(archivePath)
	if err != nil {
		return 0, errors.New(errors.ErrCodeIOError,
			"failed to create archive file").WithCause(err).WithContext("path", archivePath)
	}

	var total int64
	success := false
	defer func() {
		out.Close()
		if !success {
			os.Remove(archivePath)
		}
	}()

	for _, chunkPath := range chunkPaths {
		in, err := os.Open(chunkPath)
		if err != nil {
			return 0, errors.New(errors.ErrCodeIOError,
				"failed to open chunk file").WithCause(err).WithContext("path", chunkPath)
		}
		n, err := io.Copy(out, in)
		in.Close()
		if err != nil {
			return 0, errors.New(errors.ErrCodeIOError,
				"failed to append chunk").WithCause(err).WithContext("path", chunkPath)
		}
		total += n
	}

	if err := out.Close(); err != nil {
		return 0, errors.New(errors.ErrCodeIOError,
			"failed to flush archive file").WithCause(err).WithContext("path", archivePath)
	}
	success = true

	m.cleanupChunks(chunkPaths)
	return total, nil
}

// cleanupChunks removes chunk files, best effort.
func (m *Manager) cleanupChunks(chunkPaths []string) {
	for _, p := range chunkPaths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			m.log.Debug("could not remove chunk file %s: %v", p, err)
		}
	}
}

// writeBodyToFile streams r into path, removing the partial file on error.
func writeBodyToFile(r io.Reader, path string) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, errors.New(errors.ErrCodeIOError,
			"failed to create file").WithCause(err).WithContext("path", path)
	}

	success := false
	defer func() {
		out.Close()
		if !success {
			os.Remove(path)
		}
	}()

	n, err := io.Copy(out, r)
	if err != nil {
		return 0, errors.New(errors.ErrCodeNetworkError,
			"failed to read response body").WithCause(err).WithContext("path", path)
	}
	if err := out.Close(); err != nil {
		return 0, errors.New(errors.ErrCodeIOError,
			"failed to flush file").WithCause(err).WithContext("path", path)
	}
	success = true
	return n, nil
}
