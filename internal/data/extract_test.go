package data

import (
	"os"
	"path/filepath"
	"testing"

	stderr "errors"

	"github.com/postalkit/postalkit/pkg/errors"
)

func TestExtractTarGz(t *testing.T) {
	archive := makeTarGz(t, map[string][]byte{
		"numex/numex.dat":                     []byte("numeric expressions"),
		"transliteration/transliteration.dat": []byte("tables"),
	})
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "data.tar.gz")
	if err := os.WriteFile(archivePath, archive, 0o644); err != nil {
		t.Fatal(err)
	}

	dest := t.TempDir()
	if err := extractTarGz(archivePath, dest); err != nil {
		t.Fatalf("extractTarGz: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dest, "numex", "numex.dat"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "numeric expressions" {
		t.Errorf("extracted content = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dest, "transliteration", "transliteration.dat")); err != nil {
		t.Error("second entry not extracted")
	}
}

func TestExtractTarGzRejectsTraversal(t *testing.T) {
	archive := makeTarGz(t, map[string][]byte{
		"../escape.dat": []byte("outside"),
	})
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.tar.gz")
	if err := os.WriteFile(archivePath, archive, 0o644); err != nil {
		t.Fatal(err)
	}

	dest := t.TempDir()
	err := extractTarGz(archivePath, dest)
	var pe *errors.PostalError
	if !stderr.As(err, &pe) || pe.Code != errors.ErrCodeDataCorrupt {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeDataCorrupt)
	}
	if _, statErr := os.Stat(filepath.Join(filepath.Dir(dest), "escape.dat")); !os.IsNotExist(statErr) {
		t.Error("traversal entry was written outside the destination")
	}
}

func TestExtractTarGzInvalidArchive(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "broken.tar.gz")
	if err := os.WriteFile(archivePath, []byte("not gzip at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := extractTarGz(archivePath, t.TempDir())
	var pe *errors.PostalError
	if !stderr.As(err, &pe) || pe.Code != errors.ErrCodeDataCorrupt {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeDataCorrupt)
	}
}

func TestExtractTarGzMissingArchive(t *testing.T) {
	err := extractTarGz(filepath.Join(t.TempDir(), "absent.tar.gz"), t.TempDir())
	var pe *errors.PostalError
	if !stderr.As(err, &pe) || pe.Code != errors.ErrCodeIOError {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeIOError)
	}
}
