// Package paths locates test assets relative to the repository root and
// enumerates image datasets.
package paths

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Resolve searches for relPath starting at the current working directory and
// walking up through parent directories. It returns the first existing match
// as an absolute path, or an empty string if nothing matched. Tests run from
// package directories at varying depths, so assets are addressed relative to
// the repository root.
func Resolve(relPath string) string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, relPath)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ListImages returns the image files directly inside dir, sorted by name.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png", ".bmp":
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(images)
	return images, nil
}
