package importer

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Common cover art filenames (case-insensitive)
var coverArtNames = []string{
	"cover",
	"folder",
	"front",
	"album",
	"albumart",
	"artwork",
}

// Supported image extensions
var imageExtensions = []string{".jpg", ".jpeg", ".png"}

// findCoverArt looks for a cover art image file in the given directory.
// Returns the full path to the cover art file, or empty string if not found.
func findCoverArt(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		baseName := strings.ToLower(strings.TrimSuffix(name, ext))

		if !slices.Contains(imageExtensions, ext) {
			continue
		}
		if slices.Contains(coverArtNames, baseName) {
			return filepath.Join(dir, name)
		}
	}

	return ""
}

// folderArt returns the bytes of the directory's cover image, or nil.
func folderArt(dir string) []byte {
	path := findCoverArt(dir)
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return nil
	}
	return data
}
