package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FilesystemStore keeps blobs as files under a single upload directory. The
// locator is the file name inside that directory.
type FilesystemStore struct {
	root string
}

// NewFilesystemStore creates the upload directory if needed and returns a
// store rooted there.
func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &FilesystemStore{root: root}, nil
}

var _ BlobStore = (*FilesystemStore)(nil)

// path maps a locator to a file path, stripping any directory components so
// a crafted locator cannot escape the root.
func (s *FilesystemStore) path(locator string) string {
	return filepath.Join(s.root, filepath.Base(locator))
}

func (s *FilesystemStore) Put(_ context.Context, name string, r io.Reader) (string, error) {
	locator := filepath.Base(name)
	f, err := os.Create(s.path(locator))
	if err != nil {
		return "", fmt.Errorf("failed to create blob file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write blob file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close blob file: %w", err)
	}
	return locator, nil
}

func (s *FilesystemStore) Get(_ context.Context, locator string, w io.Writer) error {
	f, err := os.Open(s.path(locator))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to open blob file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read blob file: %w", err)
	}
	return nil
}

func (s *FilesystemStore) Delete(_ context.Context, locator string) error {
	if err := os.Remove(s.path(locator)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to remove blob file: %w", err)
	}
	return nil
}
