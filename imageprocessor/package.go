// Package imageprocessor detects image formats from their signatures, decodes
// them and computes the four perceptual hashes stored for every image.
package imageprocessor

import "gocv.io/x/gocv"

// ImageLoader is the interface that all image loaders must implement
type ImageLoader interface {
	// CanLoad checks if the loader handles the detected format
	CanLoad(format FormatType) bool

	// LoadImage loads the image as a grayscale Mat
	LoadImage(path string) (gocv.Mat, error)
}
