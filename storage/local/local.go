// Package local stores transcripts in a directory on disk.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderLocal, func(cfg storage.Config, _ *logger.Logger) (storage.Storage, error) {
		return NewStorage(cfg.BasePath)
	})
}

// Storage keeps objects as files under an absolute base directory.
// Object paths cannot escape it.
type Storage struct {
	base string
}

var _ storage.Storage = (*Storage)(nil)

// NewStorage creates base, with parents, when missing.
func NewStorage(base string) (*Storage, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create base directory: %w", err)
	}
	return &Storage{base: abs}, nil
}

func (s *Storage) BasePath() string { return s.base }

func (s *Storage) file(path string) string {
	return filepath.Join(s.base, filepath.Clean("/"+path))
}

// Upload writes to a temporary sibling and renames it into place, so an
// interrupted run never leaves a truncated transcript behind.
func (s *Storage) Upload(_ context.Context, path string, r io.Reader) error {
	dst := s.file(path)
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("storage: create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("storage: create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("storage: write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("storage: chmod file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("storage: rename file: %w", err)
	}
	return nil
}

func (s *Storage) Download(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(s.file(path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("storage: file not found: %s", path)
	case err != nil:
		return nil, fmt.Errorf("storage: open file: %w", err)
	}
	return f, nil
}

func (s *Storage) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(s.file(path))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	}
	return false, fmt.Errorf("storage: stat file: %w", err)
}

// URL is the absolute path of the file.
func (s *Storage) URL(_ context.Context, path string) (string, error) {
	return s.file(path), nil
}
