package blobstore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testRoundTrip(t *testing.T, s BlobStore) {
	t.Helper()
	ctx := context.Background()

	locator, err := s.Put(ctx, "photo.png", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if locator == "" {
		t.Fatal("Put returned empty locator")
	}

	var buf bytes.Buffer
	if err := s.Get(ctx, locator, &buf); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if buf.String() != "payload" {
		t.Errorf("Get = %q, want %q", buf.String(), "payload")
	}

	if err := s.Delete(ctx, locator); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Get(ctx, locator, &buf); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, locator); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	testRoundTrip(t, NewMemoryStore())
}

func TestFilesystemStoreRoundTrip(t *testing.T) {
	fs, err := NewFilesystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystemStore: %v", err)
	}
	testRoundTrip(t, fs)
}

func TestFilesystemStoreStripsPathComponents(t *testing.T) {
	root := t.TempDir()
	fs, err := NewFilesystemStore(root)
	if err != nil {
		t.Fatalf("NewFilesystemStore: %v", err)
	}

	locator, err := fs.Put(context.Background(), "../../etc/evil.png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	// Whatever the locator, the file must land inside the root.
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 file under root, got %d", len(entries))
	}
	if filepath.Base(locator) != locator {
		t.Errorf("locator %q should be a bare name", locator)
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	m := NewMemoryStore()
	var buf bytes.Buffer
	if err := m.Get(context.Background(), "nope", &buf); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
}
