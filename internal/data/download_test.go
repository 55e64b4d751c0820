package data

import (
	"archive/tar"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	stderr "errors"

	"github.com/klauspost/compress/gzip"

	"github.com/postalkit/postalkit/pkg/errors"
	"github.com/postalkit/postalkit/pkg/logging"
)

// makeTarGz builds a gzip-compressed tar archive holding the given files.
func makeTarGz(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		hdr := &tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// parserArchive returns a valid archive for the parser component.
func parserArchive(t *testing.T) []byte {
	t.Helper()
	return makeTarGz(t, map[string][]byte{
		"address_parser/address_parser_crf.dat":          []byte("crf weights"),
		"address_parser/address_parser_phrases.dat":      []byte("phrases"),
		"address_parser/address_parser_postal_codes.dat": []byte("postal codes"),
		"address_parser/address_parser_vocab.trie":       []byte("vocab"),
	})
}

// serveArchive serves archive bytes at /{version}/{filename} with Range
// support, counting requests.
func serveArchive(t *testing.T, info ComponentInfo, archive []byte, requests *atomic.Int64) *httptest.Server {
	t.Helper()
	path := "/" + info.Version + "/" + info.ArchiveFilename
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		http.ServeContent(w, r, info.ArchiveFilename, time.Time{}, bytes.NewReader(archive))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newDownloadManager(t *testing.T) *Manager {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.ChunkTimeout = 10 * time.Second
	return NewManagerWithConfig(cfg).WithLogger(logging.Nop())
}

func TestAcquireComponentSingleRequest(t *testing.T) {
	m := newDownloadManager(t)
	info, _ := ComponentParser.Info()
	info.ChunkCount = 1
	archive := parserArchive(t)

	var requests atomic.Int64
	srv := serveArchive(t, info, archive, &requests)

	if err := m.acquireComponent(context.Background(), srv.URL, info); err != nil {
		t.Fatalf("acquireComponent: %v", err)
	}

	if requests.Load() != 1 {
		t.Errorf("request count = %d, want 1", requests.Load())
	}
	for _, rel := range requiredFiles[3:7] {
		fi, err := os.Stat(filepath.Join(m.DataDir(), rel))
		if err != nil || fi.Size() == 0 {
			t.Errorf("extracted file %s missing or empty", rel)
		}
	}
	if v := m.InstalledVersion(ComponentParser); v != info.Version {
		t.Errorf("installed version = %q, want %q", v, info.Version)
	}
	// The archive itself is removed after extraction.
	if _, err := os.Stat(filepath.Join(m.DataDir(), info.ArchiveFilename)); !os.IsNotExist(err) {
		t.Error("archive file should be removed after extraction")
	}
}

func TestAcquireComponentMultipart(t *testing.T) {
	m := newDownloadManager(t)
	archive := parserArchive(t)

	info, _ := ComponentParser.Info()
	info.ChunkCount = 4
	m.config.ChunkSize = int64(len(archive)+3) / 4
	m.config.DownloadWorkers = 2

	var requests atomic.Int64
	srv := serveArchive(t, info, archive, &requests)

	if err := m.acquireComponent(context.Background(), srv.URL, info); err != nil {
		t.Fatalf("acquireComponent: %v", err)
	}

	if requests.Load() != 4 {
		t.Errorf("request count = %d, want 4", requests.Load())
	}
	for _, rel := range requiredFiles[3:7] {
		if _, err := os.Stat(filepath.Join(m.DataDir(), rel)); err != nil {
			t.Errorf("extracted file %s missing", rel)
		}
	}
	// No chunk files left behind.
	entries, err := os.ReadDir(m.DataDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if matched, _ := filepath.Match("*.part*", e.Name()); matched {
			t.Errorf("leftover chunk file %s", e.Name())
		}
	}
}

func TestAcquireComponentSparseConfig(t *testing.T) {
	archive := parserArchive(t)
	info, _ := ComponentParser.Info()
	info.ChunkCount = 4

	// Workers, retries, and timeouts are left unset and must come from
	// defaults; a zero worker limit would stall the chunk pool.
	cfg := &Config{
		DataDir:   t.TempDir(),
		ChunkSize: int64(len(archive)+3) / 4,
	}
	m := NewManagerWithConfig(cfg).WithLogger(logging.Nop())

	if m.config.DownloadWorkers < 1 {
		t.Fatalf("DownloadWorkers = %d after construction", m.config.DownloadWorkers)
	}

	var requests atomic.Int64
	srv := serveArchive(t, info, archive, &requests)

	if err := m.acquireComponent(context.Background(), srv.URL, info); err != nil {
		t.Fatalf("acquireComponent with sparse config: %v", err)
	}
	if v := m.InstalledVersion(ComponentParser); v != info.Version {
		t.Errorf("installed version = %q, want %q", v, info.Version)
	}
}

func TestAcquireComponentIdempotent(t *testing.T) {
	m := newDownloadManager(t)
	info, _ := ComponentParser.Info()
	info.ChunkCount = 1
	archive := parserArchive(t)

	var requests atomic.Int64
	srv := serveArchive(t, info, archive, &requests)

	if err := m.acquireComponent(context.Background(), srv.URL, info); err != nil {
		t.Fatal(err)
	}
	first := requests.Load()

	// Matching version file makes re-acquisition a no-op.
	if err := m.acquireComponent(context.Background(), srv.URL, info); err != nil {
		t.Fatal(err)
	}
	if requests.Load() != first {
		t.Errorf("second acquisition issued %d extra requests", requests.Load()-first)
	}
}

func TestAcquireComponentVersionChange(t *testing.T) {
	m := newDownloadManager(t)
	info, _ := ComponentParser.Info()
	info.ChunkCount = 1
	archive := parserArchive(t)

	var requests atomic.Int64
	srv := serveArchive(t, info, archive, &requests)

	if err := m.acquireComponent(context.Background(), srv.URL, info); err != nil {
		t.Fatal(err)
	}

	// Plant a stale file, bump the version, and serve the new release.
	stale := filepath.Join(m.DataDir(), "address_parser", "stale.dat")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	info.Version = "v1.1.0"
	srv2 := serveArchive(t, info, archive, &requests)

	if err := m.acquireComponent(context.Background(), srv2.URL, info); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale file should be removed on version change")
	}
	if v := m.InstalledVersion(ComponentParser); v != "v1.1.0" {
		t.Errorf("installed version = %q, want v1.1.0", v)
	}
}

func TestMultipartChunkFailure(t *testing.T) {
	m := newDownloadManager(t)
	m.config.MaxRetries = 2

	info, _ := ComponentParser.Info()
	info.ChunkCount = 4
	archive := parserArchive(t)
	m.config.ChunkSize = int64(len(archive)+3) / 4

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream failure", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := m.acquireComponent(context.Background(), srv.URL, info)
	if err == nil {
		t.Fatal("expected failure when every chunk returns 500")
	}
	var pe *errors.PostalError
	if !stderr.As(err, &pe) || pe.Code != errors.ErrCodeRetryExhausted {
		t.Errorf("error code = %v, want %s", err, errors.ErrCodeRetryExhausted)
	}

	// No partial archive and no chunk files survive a failure.
	entries, readErr := os.ReadDir(m.DataDir())
	if readErr != nil {
		t.Fatal(readErr)
	}
	for _, e := range entries {
		t.Errorf("leftover file after failed acquisition: %s", e.Name())
	}
	if v := m.InstalledVersion(ComponentParser); v != "" {
		t.Errorf("version file written despite failure: %q", v)
	}
}

func TestDownloadSingleStatusError(t *testing.T) {
	m := newDownloadManager(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := m.downloadSingle(context.Background(), srv.URL+"/missing", filepath.Join(m.DataDir(), "out"))
	var pe *errors.PostalError
	if !stderr.As(err, &pe) || pe.Code != errors.ErrCodeNetworkStatus {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeNetworkStatus)
	}
	if _, statErr := os.Stat(filepath.Join(m.DataDir(), "out")); !os.IsNotExist(statErr) {
		t.Error("partial file should be removed on failure")
	}
}

func TestEnsureDataDownloadDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.AutoDownload = false
	m := NewManagerWithConfig(cfg).WithLogger(logging.Nop())

	err := m.EnsureData(context.Background())
	var pe *errors.PostalError
	if !stderr.As(err, &pe) || pe.Code != errors.ErrCodeDataDownloadDisabled {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeDataDownloadDisabled)
	}
}

func TestEnsureDataAlreadyAvailable(t *testing.T) {
	m := newDownloadManager(t)
	populateDataDir(t, m.DataDir())

	if err := m.EnsureData(context.Background()); err != nil {
		t.Errorf("EnsureData with populated directory: %v", err)
	}
}

type countingRecorder struct {
	downloads atomic.Int64
	bytes     atomic.Int64
	chunks    atomic.Int64
	retries   atomic.Int64
}

func (r *countingRecorder) RecordDownload(component string, n int64, elapsed time.Duration) {
	r.downloads.Add(1)
	r.bytes.Add(n)
}
func (r *countingRecorder) RecordChunk(component string) { r.chunks.Add(1) }
func (r *countingRecorder) RecordRetry(component string) { r.retries.Add(1) }

func TestRecorderReceivesTelemetry(t *testing.T) {
	m := newDownloadManager(t)
	rec := &countingRecorder{}
	m.WithRecorder(rec)

	archive := parserArchive(t)
	info, _ := ComponentParser.Info()
	info.ChunkCount = 2
	m.config.ChunkSize = int64(len(archive)+1) / 2

	var requests atomic.Int64
	srv := serveArchive(t, info, archive, &requests)

	if err := m.acquireComponent(context.Background(), srv.URL, info); err != nil {
		t.Fatal(err)
	}

	if rec.downloads.Load() != 1 {
		t.Errorf("downloads recorded = %d, want 1", rec.downloads.Load())
	}
	if rec.bytes.Load() != int64(len(archive)) {
		t.Errorf("bytes recorded = %d, want %d", rec.bytes.Load(), len(archive))
	}
	if rec.chunks.Load() != 2 {
		t.Errorf("chunks recorded = %d, want 2", rec.chunks.Load())
	}
	if rec.retries.Load() != 0 {
		t.Errorf("retries recorded = %d, want 0", rec.retries.Load())
	}
}
