package imageprocessor

import (
	"bytes"
	"fmt"
	"image"

	"imagededup/types"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"
)

// NativeHasher decodes and hashes images in pure Go. It does not need OpenCV.
type NativeHasher struct{}

// NewNativeHasher creates a pure Go hasher
func NewNativeHasher() *NativeHasher {
	return &NativeHasher{}
}

// Name identifies the backend
func (h *NativeHasher) Name() string { return BackendNative }

// Compute decodes path and computes every hash kind
func (h *NativeHasher) Compute(path string, format FormatType) (Result, error) {
	img, err := decodeNative(path, format)
	if err != nil {
		return Result{}, err
	}

	bounds := img.Bounds()
	result := Result{Width: bounds.Dx(), Height: bounds.Dy()}
	for _, kind := range types.HashKinds {
		value, err := nativeHash(kind, img)
		if err != nil {
			return Result{}, fmt.Errorf("cannot compute %s for %s: %w", kind, path, err)
		}
		result.Hashes = append(result.Hashes, types.HashValue{Kind: kind, Value: value})
	}
	return result, nil
}

func decodeNative(path string, format FormatType) (image.Image, error) {
	switch format {
	case FormatHEIF:
		data, err := ExtractHEIFPreview(path)
		if err != nil {
			return nil, err
		}
		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode HEIF preview of %s: %w", path, err)
		}
		return img, nil
	case FormatJPEG, FormatPNG, FormatGIF:
		img, err := imaging.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		return img, nil
	default:
		return nil, fmt.Errorf("no decoder for %s (%s)", path, format)
	}
}

func nativeHash(kind types.HashKind, img image.Image) (string, error) {
	var (
		hash *goimagehash.ImageHash
		err  error
	)
	switch kind {
	case types.PHash:
		hash, err = goimagehash.PerceptionHash(img)
	case types.DHash:
		hash, err = goimagehash.DifferenceHash(img)
	case types.AHash:
		hash, err = goimagehash.AverageHash(img)
	case types.WHash:
		return nativeWaveletHash(img)
	default:
		return "", fmt.Errorf("unknown hash kind %q", kind)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", hash.GetHash()), nil
}

// nativeWaveletHash mirrors ComputeWaveletHash on an imaging box resize
func nativeWaveletHash(img image.Image) (string, error) {
	bounds := img.Bounds()
	scale := waveletScale(bounds.Dx(), bounds.Dy())
	if scale < hashSize {
		return "", fmt.Errorf("image %dx%d is smaller than the %dx%d hash grid", bounds.Dx(), bounds.Dy(), hashSize, hashSize)
	}

	gray := imaging.Resize(imaging.Grayscale(img), scale, scale, imaging.Box)
	pixels := make([]float64, scale*scale)
	for y := 0; y < scale; y++ {
		for x := 0; x < scale; x++ {
			pixels[y*scale+x] = float64(gray.Pix[y*gray.Stride+x*4]) / 255.0
		}
	}

	band := haarApproximation(pixels, scale, hashSize)
	return thresholdMedian(band), nil
}
