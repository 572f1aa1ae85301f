package types

import (
	"fmt"
	"strings"
	"time"
)

// ImagePath is the filesystem path of an image, the key for all per-image data
type ImagePath = string

// HashKind names one of the perceptual hash algorithms
type HashKind string

// Known hash kinds
const (
	PHash HashKind = "PHash"
	DHash HashKind = "DHash"
	WHash HashKind = "WHash"
	AHash HashKind = "AHash"
)

// HashKinds lists every hash kind in the order it is written to the store
var HashKinds = []HashKind{PHash, DHash, WHash, AHash}

// IsKnownKind reports whether kind is one of HashKinds
func IsKnownKind(kind HashKind) bool {
	for _, k := range HashKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// HashValue is a single kind/value pair of a HashSet
type HashValue struct {
	Kind  HashKind
	Value string
}

// HashSet holds the hash values of one image in insertion order
type HashSet []HashValue

// Get returns the value stored for kind
func (s HashSet) Get(kind HashKind) (string, bool) {
	for _, hv := range s {
		if hv.Kind == kind {
			return hv.Value, true
		}
	}
	return "", false
}

// Kinds returns the kinds of the set in insertion order
func (s HashSet) Kinds() []HashKind {
	kinds := make([]HashKind, 0, len(s))
	for _, hv := range s {
		kinds = append(kinds, hv.Kind)
	}
	return kinds
}

// Matches compares s with other kind by kind over the kinds of s.
// A kind missing from other counts as a mismatch.
func (s HashSet) Matches(other HashSet) (matched, total int) {
	for _, hv := range s {
		if v, ok := other.Get(hv.Kind); ok && v == hv.Value {
			matched++
		}
	}
	return matched, len(s)
}

// Equal reports whether every kind of s has the same value in other
func (s HashSet) Equal(other HashSet) bool {
	matched, total := s.Matches(other)
	return matched == total
}

// Validate checks that the set carries exactly the known kinds, once each,
// with non-empty values
func (s HashSet) Validate() error {
	if len(s) != len(HashKinds) {
		return fmt.Errorf("expected %d hash kinds, got %d", len(HashKinds), len(s))
	}
	seen := make(map[HashKind]bool, len(s))
	for _, hv := range s {
		if !IsKnownKind(hv.Kind) {
			return fmt.Errorf("unknown hash kind %q", hv.Kind)
		}
		if seen[hv.Kind] {
			return fmt.Errorf("duplicate hash kind %q", hv.Kind)
		}
		if strings.TrimSpace(hv.Value) == "" {
			return fmt.Errorf("empty value for hash kind %q", hv.Kind)
		}
		seen[hv.Kind] = true
	}
	return nil
}

// HashStore maps image paths to their hash sets, preserving insertion order
type HashStore struct {
	paths []ImagePath
	sets  map[ImagePath]HashSet
}

// NewHashStore creates an empty store
func NewHashStore() *HashStore {
	return &HashStore{sets: make(map[ImagePath]HashSet)}
}

// Add appends an entry. Paths are unique within a store.
func (h *HashStore) Add(path ImagePath, set HashSet) error {
	if _, exists := h.sets[path]; exists {
		return fmt.Errorf("duplicate image path %q", path)
	}
	h.paths = append(h.paths, path)
	h.sets[path] = set
	return nil
}

// Get returns the hash set of path
func (h *HashStore) Get(path ImagePath) (HashSet, bool) {
	set, ok := h.sets[path]
	return set, ok
}

// Paths returns the image paths in insertion order
func (h *HashStore) Paths() []ImagePath {
	out := make([]ImagePath, len(h.paths))
	copy(out, h.paths)
	return out
}

// Len returns the number of entries
func (h *HashStore) Len() int {
	return len(h.paths)
}

// Group is an ordered set of at least two image paths related by hash agreement
type Group []ImagePath

// ImageInfo holds the metadata recorded for a hashed image
type ImageInfo struct {
	Path       ImagePath `json:"path"`
	Format     string    `json:"format"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	ModifiedAt string    `json:"modified_at"`
	Size       int64     `json:"size"`
	Hashes     HashSet   `json:"hashes"`
}

// ScanSummary describes one hashing run
type ScanSummary struct {
	ID         string    `json:"id"`
	Root       string    `json:"root"`
	Backend    string    `json:"backend"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Discovered int       `json:"discovered"`
	Hashed     int       `json:"hashed"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
}
