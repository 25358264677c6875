package batch

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/util"
)

// AudioExtensions is the allow-list used when walking a directory.
// Matching is case-insensitive.
var AudioExtensions = []string{".mp3", ".aac", ".wav", ".m4a", ".flac"}

// AudioSource is one file to transcribe.
type AudioSource struct {
	Path     string `yaml:"path"`
	Format   string `yaml:"format"`
	Language string `yaml:"language"`
}

// IsAudio reports whether path carries an allow-listed extension.
func IsAudio(path string) bool {
	return util.Contains(AudioExtensions, strings.ToLower(filepath.Ext(path)))
}

// Resolve expands path into audio sources. A regular file is returned as
// the single source whatever its extension. A directory is walked
// recursively in lexical order and only allow-listed files are kept.
// Symlinks to regular files count as files; symlinked directories are
// not followed. Entries below path that cannot be read are logged and
// skipped.
func Resolve(path, language string, log *logger.Logger) ([]AudioSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.AudioNotFound(path, err)
	}

	switch {
	case info.Mode().IsRegular():
		return []AudioSource{newSource(path, language)}, nil
	case info.IsDir():
		log = logger.OrGet(log, "batch")
		var sources []AudioSource
		err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if p == path {
					return err
				}
				log.Warn("skipping unreadable entry", logger.MergeWithError(logger.Fields(logger.FieldFile, p), err))
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !IsAudio(p) {
				return nil
			}
			ok, err := isRegularFile(p, d)
			if err != nil {
				log.Warn("skipping unreadable entry", logger.MergeWithError(logger.Fields(logger.FieldFile, p), err))
				return nil
			}
			if ok {
				sources = append(sources, newSource(p, language))
			}
			return nil
		})
		if err != nil {
			return nil, errors.AudioNotFound(path, err)
		}
		return sources, nil
	default:
		return nil, errors.UnsupportedPath(path)
	}
}

// isRegularFile follows a symlink one level to its target.
func isRegularFile(p string, d fs.DirEntry) (bool, error) {
	if d.Type()&fs.ModeSymlink == 0 {
		return d.Type().IsRegular(), nil
	}
	info, err := os.Stat(p)
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

func newSource(path, language string) AudioSource {
	return AudioSource{
		Path:     path,
		Format:   strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		Language: language,
	}
}
