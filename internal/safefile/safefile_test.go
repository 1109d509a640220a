package safefile_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kvisli/go-luamap/internal/safefile"
)

func TestWrite(t *testing.T) {
	t.Parallel()

	filePath := filepath.Join(t.TempDir(), "out.txt")
	err := safefile.Write(filePath, func(f *os.File) error {
		_, err := f.WriteString("hello")
		return err
	})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "hello"; got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestWriteKeepsPreviousOnError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	filePath := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(filePath, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}

	failure := errors.New("boom")
	err := safefile.Write(filePath, func(f *os.File) error {
		_, _ = f.WriteString("partial")
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("Write = %v, want %v", err, failure)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "previous"; got != want {
		t.Errorf("destination = %q, want untouched %q", got, want)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(entries), 1; got != want {
		t.Errorf("dir has %d entries, want %d (no temp leftovers)", got, want)
	}
}
