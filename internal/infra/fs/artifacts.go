package fs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultChartsDir is where rendered chart artifacts land unless configured otherwise.
const DefaultChartsDir = "etc/charts"

var ErrEmptyArtifact = errors.New("artifact is empty")

// WriteFileAtomic writes data to path through a temp file in the same directory and renames it.
// Readers see either the previous file or the complete new one.
func WriteFileAtomic(path string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%s: %w", path, ErrEmptyArtifact)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// WriteArtifact renders through fn into memory and stores the result atomically under dir/name.
// It returns the full path and the number of bytes written.
func WriteArtifact(dir, name string, fn func(io.Writer) error) (string, int64, error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return "", 0, err
	}
	path := filepath.Join(dir, name)
	if err := WriteFileAtomic(path, buf.Bytes()); err != nil {
		return "", 0, err
	}
	if err := CheckNonEmpty(path); err != nil {
		return "", 0, err
	}
	return path, int64(buf.Len()), nil
}

// CheckNonEmpty verifies that path exists and has content.
func CheckNonEmpty(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s: %w", path, ErrEmptyArtifact)
	}
	return nil
}
