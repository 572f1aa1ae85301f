package imageprocessor

import (
	"fmt"
	"strings"

	"imagededup/types"

	"gocv.io/x/gocv"
)

// Hash backend names
const (
	BackendOpenCV = "opencv"
	BackendNative = "native"
)

// Result holds the hashes and decoded dimensions of one image
type Result struct {
	Hashes types.HashSet
	Width  int
	Height int
}

// Hasher decodes an image of a detected format and computes its hash set
type Hasher interface {
	Name() string
	Compute(path string, format FormatType) (Result, error)
}

// NewHasher returns the hasher for a backend name
func NewHasher(backend string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendOpenCV:
		return NewOpenCVHasher(), nil
	case BackendNative:
		return NewNativeHasher(), nil
	default:
		return nil, fmt.Errorf("unknown hash backend %q", backend)
	}
}

// OpenCVHasher decodes and hashes images with OpenCV
type OpenCVHasher struct {
	registry *ImageLoaderRegistry
}

// NewOpenCVHasher creates an OpenCV hasher with the default loaders
func NewOpenCVHasher() *OpenCVHasher {
	return &OpenCVHasher{registry: NewImageLoaderRegistry()}
}

// Name identifies the backend
func (h *OpenCVHasher) Name() string { return BackendOpenCV }

var matHashers = map[types.HashKind]func(gocv.Mat) (string, error){
	types.PHash: ComputePerceptualHash,
	types.DHash: ComputeDifferenceHash,
	types.WHash: ComputeWaveletHash,
	types.AHash: ComputeAverageHash,
}

// Compute loads path and computes every hash kind
func (h *OpenCVHasher) Compute(path string, format FormatType) (Result, error) {
	img, err := h.registry.LoadImage(path, format)
	if err != nil {
		return Result{}, err
	}
	defer img.Close()

	result := Result{Width: img.Cols(), Height: img.Rows()}
	for _, kind := range types.HashKinds {
		value, err := matHashers[kind](img)
		if err != nil {
			return Result{}, fmt.Errorf("cannot compute %s for %s: %w", kind, path, err)
		}
		result.Hashes = append(result.Hashes, types.HashValue{Kind: kind, Value: value})
	}
	return result, nil
}
