package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"imagededup/imageprocessor"
	"imagededup/logging"
)

// DiscoverImages walks root and returns every regular file on the extension
// allow-list, in lexical walk order. Unreadable subdirectories are logged and
// skipped; an unreadable or missing root is an error.
func DiscoverImages(root string) ([]string, FileStats, error) {
	var (
		paths []string
		stats FileStats
	)

	info, err := os.Stat(root)
	if err != nil {
		return nil, stats, fmt.Errorf("cannot access folder %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, stats, fmt.Errorf("%s is not a directory", root)
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logging.LogWarning("Error accessing path %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !imageprocessor.IsImageFile(path) {
			return nil
		}

		paths = append(paths, path)
		stats.totalFiles++
		switch GetFileFormat(path) {
		case "heic":
			stats.heicFiles++
		case "bmp":
			stats.bmpFiles++
		}
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("cannot walk folder %s: %w", root, err)
	}
	return paths, stats, nil
}

// GetFileFormat returns the lowercase file extension without the dot
func GetFileFormat(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
