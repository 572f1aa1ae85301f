package imageprocessor

import (
	"path/filepath"
	"strings"
)

// FormatType represents an image container detected from its leading bytes
type FormatType string

// Known format constants
const (
	FormatUnknown FormatType = "unknown"
	FormatHEIF    FormatType = "heif"
	FormatJPEG    FormatType = "jpeg"
	FormatPNG     FormatType = "png"
	FormatGIF     FormatType = "gif"
)

// Extensions picked up by discovery. Matching is case-insensitive.
var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".bmp":  {},
	".heic": {},
}

// IsImageFile checks if a file is a candidate image based on extension
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, supported := imageExtensions[ext]
	return supported
}

// GetSupportedExtensions returns the discovery allow-list in a stable order
func GetSupportedExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".bmp", ".heic"}
}
