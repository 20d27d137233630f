// Package blobstore abstracts physical storage for uploaded photo files
// behind put/get/delete-by-locator semantics. Backends: local filesystem,
// in-memory (tests) and S3. The locator returned by Put is an opaque key; the
// database only ever stores locators, never file contents.
package blobstore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get and Delete when no blob exists for the
// locator.
var ErrNotFound = errors.New("blob not found")

// BlobStore stores photo file contents outside the relational store.
type BlobStore interface {
	// Put stores the content of r under a key derived from name and returns
	// the locator for later retrieval.
	Put(ctx context.Context, name string, r io.Reader) (string, error)

	// Get writes the blob identified by locator to w.
	Get(ctx context.Context, locator string, w io.Writer) error

	// Delete removes the blob identified by locator.
	Delete(ctx context.Context, locator string) error
}
