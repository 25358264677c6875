package storage

import (
	"context"
	"strings"

	"github.com/kbukum/audioscribe/errors"
)

// WriteText stores text verbatim at path.
func WriteText(ctx context.Context, s Storage, path, text string) error {
	if err := s.Upload(ctx, path, strings.NewReader(text)); err != nil {
		return errors.OutputFailed(path, err)
	}
	return nil
}
