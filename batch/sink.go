package batch

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/kbukum/audioscribe/storage"
	"github.com/kbukum/audioscribe/storage/local"
)

// Sink receives finished transcripts.
type Sink interface {
	// Exists reports whether the output for src is already present.
	Exists(ctx context.Context, src AudioSource) (bool, error)
	// Write stores text as the output for src and returns its location.
	Write(ctx context.Context, src AudioSource, text string) (string, error)
}

// OutputName is the file name a transcript of src is stored under.
func OutputName(src AudioSource) string {
	base := filepath.Base(src.Path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".txt"
}

// StorageSink writes every transcript flat into one storage backend.
// Sources sharing a stem overwrite each other.
type StorageSink struct {
	storage storage.Storage
}

// NewStorageSink creates a sink over s.
func NewStorageSink(s storage.Storage) *StorageSink {
	return &StorageSink{storage: s}
}

func (s *StorageSink) Exists(ctx context.Context, src AudioSource) (bool, error) {
	return s.storage.Exists(ctx, OutputName(src))
}

func (s *StorageSink) Write(ctx context.Context, src AudioSource, text string) (string, error) {
	name := OutputName(src)
	if err := storage.WriteText(ctx, s.storage, name, text); err != nil {
		return "", err
	}
	return s.storage.URL(ctx, name)
}

// SiblingSink writes each transcript next to its audio file.
type SiblingSink struct{}

func (SiblingSink) Exists(ctx context.Context, src AudioSource) (bool, error) {
	dir, err := local.NewStorage(filepath.Dir(src.Path))
	if err != nil {
		return false, err
	}
	return dir.Exists(ctx, OutputName(src))
}

func (SiblingSink) Write(ctx context.Context, src AudioSource, text string) (string, error) {
	dir, err := local.NewStorage(filepath.Dir(src.Path))
	if err != nil {
		return "", err
	}
	return NewStorageSink(dir).Write(ctx, src, text)
}
