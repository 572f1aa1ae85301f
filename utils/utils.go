package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// DefaultStoreName is the hash store file name used when none is configured
const DefaultStoreName = "image_hashes.txt"

// DefaultDatabaseName is the SQLite mirror file name
const DefaultDatabaseName = "images.db"

// GetDefaultStorePath returns the default hash store path in the working directory
func GetDefaultStorePath() string {
	return DefaultStoreName
}

// GetDefaultDatabasePath returns the default path for the database file
func GetDefaultDatabasePath() string {
	exePath, err := os.Executable()
	if err != nil {
		// Fallback to current directory if executable path can't be determined
		return DefaultDatabaseName
	}
	return filepath.Join(filepath.Dir(exePath), DefaultDatabaseName)
}

// ShortenPath keeps the tail of path so it fits in max runes
func ShortenPath(path string, max int) string {
	if max <= 3 || utf8.RuneCountInString(path) <= max {
		return path
	}
	runes := []rune(path)
	return "..." + string(runes[len(runes)-(max-3):])
}

// FormatPercent renders a progress percentage with one decimal
func FormatPercent(percent float64) string {
	return fmt.Sprintf("%5.1f%%", percent)
}

// Plural returns "1 image" or "n images"
func Plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	if strings.HasSuffix(noun, "s") {
		return fmt.Sprintf("%d %ses", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
