package imageprocessor

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// hashSize is the side of the bit grid of every hash, giving 64-bit signatures
const hashSize = 8

// maxWaveletScale caps the power-of-two working size of the wavelet hash
const maxWaveletScale = 512

// toGray returns a single channel copy of img, resized to size when size is non-zero
func toGray(img gocv.Mat, size image.Point, interp gocv.InterpolationFlags) gocv.Mat {
	resized := gocv.NewMat()
	if size.X > 0 && size.Y > 0 {
		gocv.Resize(img, &resized, size, 0, 0, interp)
	} else {
		img.CopyTo(&resized)
	}

	if resized.Channels() == 1 {
		return resized
	}
	defer resized.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(resized, &gray, gocv.ColorBGRToGray)
	return gray
}

// ComputeAverageHash calculates the average hash: an 8x8 grayscale thumbnail
// thresholded against its mean
func ComputeAverageHash(img gocv.Mat) (string, error) {
	if img.Empty() {
		return "", fmt.Errorf("cannot compute hash for empty image")
	}

	gray := toGray(img, image.Point{X: hashSize, Y: hashSize}, gocv.InterpolationArea)
	defer gray.Close()

	values := make([]float64, 0, hashSize*hashSize)
	var sum float64
	for y := 0; y < gray.Rows(); y++ {
		for x := 0; x < gray.Cols(); x++ {
			v := float64(gray.GetUCharAt(y, x))
			values = append(values, v)
			sum += v
		}
	}
	mean := sum / float64(len(values))

	bits := make([]bool, len(values))
	for i, v := range values {
		bits[i] = v > mean
	}
	return bitsToHex(bits), nil
}

// ComputeDifferenceHash calculates the difference hash: a 9x8 grayscale
// thumbnail where each bit tells whether a pixel is brighter than its left neighbour
func ComputeDifferenceHash(img gocv.Mat) (string, error) {
	if img.Empty() {
		return "", fmt.Errorf("cannot compute hash for empty image")
	}

	gray := toGray(img, image.Point{X: hashSize + 1, Y: hashSize}, gocv.InterpolationArea)
	defer gray.Close()

	bits := make([]bool, 0, hashSize*hashSize)
	for y := 0; y < gray.Rows(); y++ {
		for x := 1; x < gray.Cols(); x++ {
			bits = append(bits, gray.GetUCharAt(y, x) > gray.GetUCharAt(y, x-1))
		}
	}
	return bitsToHex(bits), nil
}

// ComputePerceptualHash computes a DCT-based perceptual hash for the image
func ComputePerceptualHash(img gocv.Mat) (string, error) {
	if img.Empty() {
		return "", fmt.Errorf("cannot compute hash for empty image")
	}

	gray := toGray(img, image.Point{X: hashSize * 4, Y: hashSize * 4}, gocv.InterpolationArea)
	defer gray.Close()

	floatImg := gocv.NewMat()
	defer floatImg.Close()
	gray.ConvertTo(&floatImg, gocv.MatTypeCV32F)

	dct := gocv.NewMat()
	defer dct.Close()
	gocv.DCT(floatImg, &dct, 0)
	if dct.Empty() {
		return "", fmt.Errorf("DCT produced an empty matrix")
	}

	// Low frequency band
	lowFreq := dct.Region(image.Rect(0, 0, hashSize, hashSize))
	defer lowFreq.Close()

	values := make([]float64, 0, hashSize*hashSize)
	for y := 0; y < lowFreq.Rows(); y++ {
		for x := 0; x < lowFreq.Cols(); x++ {
			values = append(values, float64(lowFreq.GetFloatAt(y, x)))
		}
	}
	return thresholdMedian(values), nil
}

// ComputeWaveletHash computes a Haar wavelet hash: the image is area-resized
// to a power-of-two square, reduced to its 8x8 approximation band and
// thresholded against the band median
func ComputeWaveletHash(img gocv.Mat) (string, error) {
	if img.Empty() {
		return "", fmt.Errorf("cannot compute hash for empty image")
	}

	scale := waveletScale(img.Cols(), img.Rows())
	if scale < hashSize {
		return "", fmt.Errorf("image %dx%d is smaller than the %dx%d hash grid", img.Cols(), img.Rows(), hashSize, hashSize)
	}

	gray := toGray(img, image.Point{X: scale, Y: scale}, gocv.InterpolationArea)
	defer gray.Close()

	pixels := make([]float64, scale*scale)
	for y := 0; y < scale; y++ {
		for x := 0; x < scale; x++ {
			pixels[y*scale+x] = float64(gray.GetUCharAt(y, x)) / 255.0
		}
	}

	band := haarApproximation(pixels, scale, hashSize)
	return thresholdMedian(band), nil
}
