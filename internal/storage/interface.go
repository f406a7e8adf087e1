package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Download when the key does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStorage stores filtered image artifacts.
//
// Writes to an existing key replace the object; there is no locking, the last
// writer wins.
type ObjectStorage interface {
	// Upload writes an object, replacing any existing one under key
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download opens an object for reading
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the public URL for an object
	GetURL(key string) string
}
