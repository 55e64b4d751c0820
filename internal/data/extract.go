package data

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/postalkit/postalkit/pkg/errors"
)

// extractTarGz unpacks a gzip-compressed tar archive into destDir. Entry
// names are constrained to destDir; an entry escaping it fails extraction.
func extractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return errors.New(errors.ErrCodeIOError,
			"failed to open archive").WithCause(err).WithContext("path", archivePath)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.New(errors.ErrCodeDataCorrupt,
			"archive is not valid gzip").WithCause(err).WithContext("path", archivePath)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.New(errors.ErrCodeDataCorrupt,
				"failed to read archive entry").WithCause(err).WithContext("path", archivePath)
		}

		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.New(errors.ErrCodeIOError,
					"failed to create directory").WithCause(err).WithContext("path", target)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return errors.New(errors.ErrCodeIOError,
					"failed to create directory").WithCause(err).WithContext("path", target)
			}
			if err := writeExtractedFile(tr, target, hdr.FileInfo().Mode()); err != nil {
				return err
			}
		default:
			// Symlinks and other entry types do not occur in model
			// archives; skip rather than fail.
		}
	}
}

// safeJoin joins name under destDir and rejects entries that would resolve
// outside of it.
func safeJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.Clean(name))
	if target != destDir && !strings.HasPrefix(target, destDir+string(os.PathSeparator)) {
		return "", errors.Newf(errors.ErrCodeDataCorrupt,
			"archive entry %q escapes destination directory", name)
	}
	return target, nil
}

func writeExtractedFile(r io.Reader, target string, mode os.FileMode) error {
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return errors.New(errors.ErrCodeIOError,
			"failed to create extracted file").WithCause(err).WithContext("path", target)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(target)
		return errors.New(errors.ErrCodeIOError,
			"failed to write extracted file").WithCause(err).WithContext("path", target)
	}
	return out.Close()
}
