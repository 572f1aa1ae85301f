package imageprocessor

import (
	"fmt"
	"image"
	"image/gif"
	"os"

	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
)

// BaseImageLoader provides common functionality for all image loaders
type BaseImageLoader struct {
	// Formats this loader can handle
	SupportedFormats []FormatType
}

// CanLoad checks if this loader supports the format
func (l *BaseImageLoader) CanLoad(format FormatType) bool {
	for _, supported := range l.SupportedFormats {
		if format == supported {
			return true
		}
	}
	return false
}

// DefaultLoadImage reads the file with OpenCV as grayscale
func (l *BaseImageLoader) DefaultLoadImage(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadGrayScale)
	if img.Empty() {
		img.Close()
		return gocv.NewMat(), newImageLoadError("failed to load image", path)
	}
	return img, nil
}

// StandardImageLoader handles formats OpenCV decodes natively
type StandardImageLoader struct {
	BaseImageLoader
}

// NewStandardImageLoader creates a loader for JPEG and PNG
func NewStandardImageLoader() *StandardImageLoader {
	return &StandardImageLoader{
		BaseImageLoader: BaseImageLoader{
			SupportedFormats: []FormatType{FormatJPEG, FormatPNG},
		},
	}
}

// LoadImage loads a standard image format
func (l *StandardImageLoader) LoadImage(path string) (gocv.Mat, error) {
	return l.DefaultLoadImage(path)
}

// GIFImageLoader decodes GIF through Go's decoder since OpenCV has none
type GIFImageLoader struct {
	BaseImageLoader
}

// NewGIFImageLoader creates a GIF loader
func NewGIFImageLoader() *GIFImageLoader {
	return &GIFImageLoader{
		BaseImageLoader: BaseImageLoader{
			SupportedFormats: []FormatType{FormatGIF},
		},
	}
}

// LoadImage decodes the first frame and converts it to a gray Mat
func (l *GIFImageLoader) LoadImage(path string) (gocv.Mat, error) {
	f, err := os.Open(path)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer f.Close()

	img, err := gif.Decode(f)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to decode GIF %s: %w", path, err)
	}
	return grayMatFromImage(img)
}

// HEIFImageLoader loads the embedded preview of HEIF/HEIC containers
type HEIFImageLoader struct {
	BaseImageLoader
}

// NewHEIFImageLoader creates a HEIF loader backed by exiftool
func NewHEIFImageLoader() *HEIFImageLoader {
	return &HEIFImageLoader{
		BaseImageLoader: BaseImageLoader{
			SupportedFormats: []FormatType{FormatHEIF},
		},
	}
}

// LoadImage extracts the preview JPEG and decodes it with OpenCV
func (l *HEIFImageLoader) LoadImage(path string) (gocv.Mat, error) {
	data, err := ExtractHEIFPreview(path)
	if err != nil {
		return gocv.NewMat(), err
	}
	img, err := gocv.IMDecode(data, gocv.IMReadGrayScale)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to decode HEIF preview of %s: %w", path, err)
	}
	if img.Empty() {
		img.Close()
		return gocv.NewMat(), newImageLoadError("empty HEIF preview", path)
	}
	return img, nil
}

// grayMatFromImage converts a Go image to a single channel Mat
func grayMatFromImage(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Bounds(), img, bounds.Min, draw.Src)
	return gocv.ImageGrayToMatGray(gray)
}

// newImageLoadError creates a standardized error for image loading failures
func newImageLoadError(message, path string) error {
	return fmt.Errorf("%s: %s", message, path)
}
