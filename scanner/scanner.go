// Package scanner discovers images under a folder, hashes them on a bounded
// worker pool and persists the results in discovery order.
package scanner

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"imagededup/hashstore"
	"imagededup/imageprocessor"
	"imagededup/logging"
	"imagededup/types"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Engine computes and persists hash sets for a folder tree
type Engine struct {
	storePath string
	hasher    imageprocessor.Hasher
	workers   int
	recorder  Recorder

	mu   sync.Mutex
	last types.ScanSummary
}

// NewEngine creates an engine from options
func NewEngine(options ScanOptions) (*Engine, error) {
	if options.StorePath == "" {
		return nil, errors.New("store path is required")
	}
	hasher, err := imageprocessor.NewHasher(options.Backend)
	if err != nil {
		return nil, err
	}
	return NewEngineWithHasher(options, hasher), nil
}

// NewEngineWithHasher creates an engine around an existing hasher
func NewEngineWithHasher(options ScanOptions, hasher imageprocessor.Hasher) *Engine {
	workers := options.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{
		storePath: options.StorePath,
		hasher:    hasher,
		workers:   workers,
		recorder:  options.Recorder,
	}
}

// LastSummary returns the summary of the most recent run
func (e *Engine) LastSummary() types.ScanSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// StorePath returns the hash store location
func (e *Engine) StorePath() string { return e.storePath }

// HasExistingStore reports whether a store from a previous run is on disk
func (e *Engine) HasExistingStore() bool {
	return hashstore.Exists(e.storePath)
}

// ComputeAll hashes every image under rootFolder and replaces the store.
// onProgress receives the completed percentage after each file; onComplete
// fires exactly once. Per-file failures are logged and skipped. An error is
// returned, after onComplete(false), only when discovery or the store write
// fails.
func (e *Engine) ComputeAll(rootFolder string, onProgress func(float64), onComplete func(bool)) error {
	summary, err := e.run(rootFolder, onProgress)
	e.mu.Lock()
	e.last = summary
	e.mu.Unlock()
	if err != nil {
		logging.LogError("Hashing %s failed: %v", rootFolder, err)
		if onComplete != nil {
			onComplete(false)
		}
		return err
	}

	logging.Logger().Info("hashing complete",
		"root", summary.Root,
		"discovered", summary.Discovered,
		"hashed", summary.Hashed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"elapsed", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond),
	)
	if onComplete != nil {
		onComplete(true)
	}
	return nil
}

func (e *Engine) run(rootFolder string, onProgress func(float64)) (types.ScanSummary, error) {
	summary := types.ScanSummary{
		ID:        uuid.NewString(),
		Root:      rootFolder,
		Backend:   e.hasher.Name(),
		StartedAt: time.Now(),
	}

	paths, stats, err := DiscoverImages(rootFolder)
	if err != nil {
		return summary, err
	}
	summary.Discovered = stats.Total()
	logging.DebugLog("Found %d image files under %s (%d HEIC, %d BMP), %d workers",
		stats.totalFiles, rootFolder, stats.heicFiles, stats.bmpFiles, e.workers)

	tracker := NewProgressTracker(len(paths), onProgress)
	results := make([]ProcessImageResult, len(paths))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, path := range paths {
		g.Go(func() error {
			results[i] = e.processImage(path)
			tracker.Record(results[i])
			return nil
		})
	}
	_ = g.Wait()

	summary.Hashed, summary.Skipped, summary.Failed = tracker.Counts()

	store := types.NewHashStore()
	var images []types.ImageInfo
	for _, result := range results {
		if result.Outcome != OutcomeHashed {
			continue
		}
		if err := store.Add(result.Path, result.Info.Hashes); err != nil {
			return summary, err
		}
		images = append(images, result.Info)
	}

	if err := hashstore.Save(e.storePath, store); err != nil {
		return summary, err
	}
	summary.FinishedAt = time.Now()

	if e.recorder != nil {
		if err := e.recorder.RecordScan(summary, images); err != nil {
			logging.LogWarning("Failed to mirror scan %s: %v", summary.ID, err)
		}
	}
	return summary, nil
}

// processImage classifies and hashes one file. It never returns an error;
// failures are carried in the result.
func (e *Engine) processImage(path string) ProcessImageResult {
	result := ProcessImageResult{Path: path}

	format, err := imageprocessor.DetectFileFormat(path)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Error = err
		return result
	}
	result.Format = format
	if format == imageprocessor.FormatUnknown {
		result.Outcome = OutcomeSkipped
		result.Error = fmt.Errorf("%s: %w", path, imageprocessor.ErrUnknownType)
		return result
	}

	hashed, err := e.hasher.Compute(path, format)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Error = err
		if diag, derr := imageprocessor.DescribeFile(path); derr == nil {
			logging.Logger().Warn("image diagnostics",
				"path", path,
				"size", diag.Size,
				"human_size", diag.HumanSize,
				"header", diag.HeaderHex,
			)
		}
		return result
	}

	result.Outcome = OutcomeHashed
	result.Info = types.ImageInfo{
		Path:   path,
		Format: string(format),
		Width:  hashed.Width,
		Height: hashed.Height,
		Hashes: hashed.Hashes,
	}
	if info, err := os.Stat(path); err == nil {
		result.Info.Size = info.Size()
		result.Info.ModifiedAt = info.ModTime().UTC().Format(time.RFC3339)
	}
	return result
}
