// Package importer turns audio files on disk into playable descriptors the
// storage facade can import. It reads tags, measures durations and picks up
// cover art, but never touches the database itself.
package importer

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/llehouerou/wavestore/internal/library"
	"github.com/llehouerou/wavestore/internal/storage"
)

// DefaultExtensions are the audio file extensions Discover accepts when none
// are configured.
var DefaultExtensions = []string{".mp3", ".flac", ".m4a", ".ogg", ".opus", ".wav"}

// IsMusicFile reports whether path has one of exts (case-insensitive).
func IsMusicFile(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	return slices.ContainsFunc(exts, func(e string) bool {
		return normalizeExt(e) == ext
	})
}

func normalizeExt(e string) string {
	e = strings.ToLower(strings.TrimSpace(e))
	if e != "" && !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	return e
}

// Discover walks roots and returns every music file below them, sorted.
// A root may also be a single file. Unreadable entries are skipped, but a
// root that does not exist is an error.
func Discover(roots []string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if IsMusicFile(root, exts) {
				add(root)
			}
			continue
		}

		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return nil //nolint:nilerr // keep scanning other entries
			}
			if d.IsDir() || !IsMusicFile(path, exts) {
				return nil
			}
			add(path)
			return nil
		})
	}

	slices.Sort(files)
	return files, nil
}

// Read builds a descriptor for the audio file at path. Files without
// readable tags still import, titled after their file name. An unreadable
// duration is left at zero.
func Read(path string) (storage.Descriptor, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return storage.Descriptor{}, err
	}
	if _, err := os.Stat(abs); err != nil {
		return storage.Descriptor{}, err
	}

	meta, err := readMetadata(abs)
	if err != nil && !errors.Is(err, errNoTags) {
		return storage.Descriptor{}, err
	}

	d := storage.Descriptor{
		Title:     meta.title,
		Artist:    meta.artist,
		Album:     meta.album,
		Genre:     meta.genre,
		SourceURL: abs,
		Kind:      library.LocalFile,
		Artwork:   meta.artwork,
	}
	if d.Title == "" {
		base := filepath.Base(abs)
		d.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if d.Artwork == nil {
		d.Artwork = folderArt(filepath.Dir(abs))
	}
	if dur, err := readDuration(abs); err == nil {
		d.Duration = int64(dur.Round(time.Second).Seconds())
	}
	return d, nil
}
