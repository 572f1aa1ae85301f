package imageprocessor

import (
	"encoding/hex"
	"fmt"
	"math/bits"
)

// CalculateHammingDistance counts the differing bits of two hex hash tokens
func CalculateHammingDistance(hash1, hash2 string) (int, error) {
	a, err := hex.DecodeString(hash1)
	if err != nil {
		return 0, fmt.Errorf("invalid hash %q: %w", hash1, err)
	}
	b, err := hex.DecodeString(hash2)
	if err != nil {
		return 0, fmt.Errorf("invalid hash %q: %w", hash2, err)
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("hash length mismatch: %d vs %d bytes", len(a), len(b))
	}

	var distance int
	for i := range a {
		distance += bits.OnesCount8(a[i] ^ b[i])
	}
	return distance, nil
}
