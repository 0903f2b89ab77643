// Package storage holds the original knowledge-base documents (handbooks,
// syllabi, FAQ exports) before and after ingestion. It abstracts the
// backend so deployments can keep documents on local disk or in an
// S3-compatible bucket without changing application code.
package storage

import (
	"context"
	"io"
)

// DocumentStore is a minimal file-oriented store.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type DocumentStore interface {
	// Read opens the named document for reading. The caller must close
	// the returned ReadCloser. A missing document reads as an error
	// wrapping os.ErrNotExist.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named document for writing, truncating any
	// existing content and creating parents as needed. The caller must
	// close the returned WriteCloser to flush.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named document. Deleting an absent document is
	// not an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named document exists.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the paths under prefix, in lexicographic order.
	List(ctx context.Context, prefix string) ([]string, error)
}
