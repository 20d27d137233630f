package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore is an in-memory BlobStore used by tests. Safe for concurrent
// use.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

var _ BlobStore = (*MemoryStore)(nil)

func (s *MemoryStore) Put(_ context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[name] = data
	return name, nil
}

func (s *MemoryStore) Get(_ context.Context, locator string, w io.Writer) error {
	s.mu.RLock()
	data, ok := s.blobs[locator]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	_, err := io.Copy(w, bytes.NewReader(data))
	return err
}

func (s *MemoryStore) Delete(_ context.Context, locator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[locator]; !ok {
		return ErrNotFound
	}
	delete(s.blobs, locator)
	return nil
}

// Len reports how many blobs are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
