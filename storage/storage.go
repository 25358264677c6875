package storage

import (
	"context"
	"io"
)

// Storage is where transcripts and run reports end up. Paths are relative
// to the backend's base (a directory, or a bucket prefix).
type Storage interface {
	// Upload replaces the object at path.
	Upload(ctx context.Context, path string, r io.Reader) error
	// Download opens the object at path; the caller closes it.
	Download(ctx context.Context, path string) (io.ReadCloser, error)
	Exists(ctx context.Context, path string) (bool, error)
	// URL is the object location reported back to the user.
	URL(ctx context.Context, path string) (string, error)
}
