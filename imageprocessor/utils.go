package imageprocessor

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Utility functions shared by the hash backends

// bitsToHex packs bits MSB first into bytes and renders them as lowercase hex
func bitsToHex(bits []bool) string {
	var sb strings.Builder
	var currentByte byte
	var bitCount uint

	for _, bit := range bits {
		currentByte <<= 1
		if bit {
			currentByte |= 1
		}
		bitCount++
		if bitCount == 8 {
			fmt.Fprintf(&sb, "%02x", currentByte)
			currentByte = 0
			bitCount = 0
		}
	}

	// Pad any remaining bits with zeros on the right
	if bitCount > 0 {
		currentByte <<= 8 - bitCount
		fmt.Fprintf(&sb, "%02x", currentByte)
	}
	return sb.String()
}

// thresholdMedian sets a bit for every value strictly above the median
func thresholdMedian(values []float64) string {
	median := calculateMedian(values)
	bits := make([]bool, len(values))
	for i, v := range values {
		bits[i] = v > median
	}
	return bitsToHex(bits)
}

// calculateMedian calculates the median value of a float64 slice
func calculateMedian(values []float64) float64 {
	// Work on a copy so callers keep their ordering
	valuesCopy := make([]float64, len(values))
	copy(valuesCopy, values)
	sort.Float64s(valuesCopy)

	length := len(valuesCopy)
	switch {
	case length == 0:
		return 0
	case length%2 == 0:
		return (valuesCopy[length/2-1] + valuesCopy[length/2]) / 2
	default:
		return valuesCopy[length/2]
	}
}

// waveletScale returns the largest power of two not above the smaller image side,
// capped at maxWaveletScale
func waveletScale(width, height int) int {
	side := width
	if height < side {
		side = height
	}
	if side <= 0 {
		return 0
	}
	scale := 1 << uint(math.Floor(math.Log2(float64(side))))
	if scale > maxWaveletScale {
		scale = maxWaveletScale
	}
	return scale
}

// haarApproximation applies orthonormal 2D Haar steps to a size x size
// row-major grid, keeping only the approximation band each time, until the
// band is target x target. size and target must be powers of two.
func haarApproximation(pixels []float64, size, target int) []float64 {
	current := pixels
	for size > target {
		half := size / 2
		next := make([]float64, half*half)
		for y := 0; y < half; y++ {
			for x := 0; x < half; x++ {
				a := current[(2*y)*size+2*x]
				b := current[(2*y)*size+2*x+1]
				c := current[(2*y+1)*size+2*x]
				d := current[(2*y+1)*size+2*x+1]
				next[y*half+x] = (a + b + c + d) / 2
			}
		}
		current = next
		size = half
	}
	return current
}
