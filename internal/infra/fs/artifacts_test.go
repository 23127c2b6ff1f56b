package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomicReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chart.svg")
	if err := WriteFileAtomic(path, []byte("first")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("second")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "second" {
		t.Fatalf("unexpected content %q err=%v", got, err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestWriteFileAtomicRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	if err := WriteFileAtomic(path, nil); !errors.Is(err, ErrEmptyArtifact) {
		t.Fatalf("expected ErrEmptyArtifact, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("empty artifact must not be created")
	}
}

func TestWriteArtifact(t *testing.T) {
	dir := t.TempDir()
	path, n, err := WriteArtifact(dir, "chart.html", func(w io.Writer) error {
		_, err := io.WriteString(w, "<html></html>")
		return err
	})
	if err != nil {
		t.Fatalf("WriteArtifact: %v", err)
	}
	if path != filepath.Join(dir, "chart.html") || n != 13 {
		t.Fatalf("unexpected result %s %d", path, n)
	}

	boom := errors.New("boom")
	if _, _, err := WriteArtifact(dir, "x.svg", func(io.Writer) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected render error, got %v", err)
	}
}

func TestCheckNonEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := CheckNonEmpty(filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if err := CheckNonEmpty(dir); err == nil {
		t.Fatalf("expected error for directory")
	}
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := CheckNonEmpty(empty); !errors.Is(err, ErrEmptyArtifact) {
		t.Fatalf("expected ErrEmptyArtifact, got %v", err)
	}
}
