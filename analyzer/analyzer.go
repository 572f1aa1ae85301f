// Package analyzer groups stored images into duplicate and suspicious sets.
//
// Grouping compares every unassigned pair once, so its cost grows with the
// square of the number of stored images. That is fine for personal photo
// libraries of a few thousand images.
package analyzer

import (
	"errors"
	"fmt"
	"io/fs"

	"imagededup/logging"
	"imagededup/types"
)

// ErrNoStore is returned when there is no hash store to analyze
var ErrNoStore = errors.New("no hash store found; compute hashes first")

// Loader provides the persisted hash store
type Loader interface {
	LoadHashStore() (*types.HashStore, error)
}

// CompletionFunc receives the groups and the full store they were built from
type CompletionFunc func(duplicates, suspicious []types.Group, store *types.HashStore)

// Analyzer reads a hash store and groups its images
type Analyzer struct {
	loader Loader
}

// New creates an analyzer reading from loader
func New(loader Loader) *Analyzer {
	return &Analyzer{loader: loader}
}

// FindDuplicates loads the store, groups it and calls onComplete once.
// A missing store yields ErrNoStore; a malformed one the loader's parse error.
// onComplete is not called on error.
func (a *Analyzer) FindDuplicates(onComplete CompletionFunc) error {
	store, err := a.loader.LoadHashStore()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %w", ErrNoStore, err)
		}
		return fmt.Errorf("load hash store: %w", err)
	}

	duplicates, suspicious := Group(store)
	logging.Logger().Info("grouping complete",
		"images", store.Len(),
		"duplicate_groups", len(duplicates),
		"suspicious_groups", len(suspicious),
	)

	if onComplete != nil {
		onComplete(duplicates, suspicious, store)
	}
	return nil
}

// Group partitions the store into duplicate groups, where every hash kind of
// a member equals the seed's, and suspicious groups, where some but not all
// do. Images are visited in store order; each later image is consumed by the
// first seed it relates to. The seed itself is never consumed, so it may head
// both a duplicate and a suspicious group.
func Group(store *types.HashStore) (duplicates, suspicious []types.Group) {
	paths := store.Paths()
	grouped := make(map[types.ImagePath]bool, len(paths))

	for i, seed := range paths {
		if grouped[seed] {
			continue
		}
		seedHashes, _ := store.Get(seed)

		duplicateGroup := types.Group{seed}
		var suspiciousGroup types.Group

		for _, candidate := range paths[i+1:] {
			if grouped[candidate] {
				continue
			}
			candidateHashes, _ := store.Get(candidate)

			matched, total := seedHashes.Matches(candidateHashes)
			switch {
			case matched == total:
				duplicateGroup = append(duplicateGroup, candidate)
				grouped[candidate] = true
			case matched > 0:
				if len(suspiciousGroup) == 0 {
					suspiciousGroup = append(suspiciousGroup, seed)
				}
				suspiciousGroup = append(suspiciousGroup, candidate)
				grouped[candidate] = true
			}
		}

		if len(duplicateGroup) > 1 {
			duplicates = append(duplicates, duplicateGroup)
		}
		if len(suspiciousGroup) > 1 {
			suspicious = append(suspicious, suspiciousGroup)
		}
	}
	return duplicates, suspicious
}
