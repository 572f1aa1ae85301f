package scanner

import (
	"sync"

	"imagededup/logging"
)

// ProgressTracker counts finished units of work and reports the completed
// percentage. Updates from concurrent workers are serialized, so the
// reported percentage never decreases.
type ProgressTracker struct {
	mu         sync.Mutex
	totalFiles int
	processed  int
	hashed     int
	skipped    int
	failed     int
	onProgress func(float64)
}

// NewProgressTracker initializes the progress tracker
func NewProgressTracker(total int, onProgress func(float64)) *ProgressTracker {
	return &ProgressTracker{totalFiles: total, onProgress: onProgress}
}

// Record books one finished file and reports progress
func (p *ProgressTracker) Record(result ProcessImageResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processed++
	switch result.Outcome {
	case OutcomeHashed:
		p.hashed++
		logging.LogImageProcessed(result.Path, true, "")
	case OutcomeSkipped:
		p.skipped++
		logging.LogImageProcessed(result.Path, false, errorText(result.Error))
	case OutcomeFailed:
		p.failed++
		logging.LogImageProcessed(result.Path, false, errorText(result.Error))
	}

	if p.onProgress != nil && p.totalFiles > 0 {
		p.onProgress(float64(p.processed) / float64(p.totalFiles) * 100)
	}
}

// Counts returns the hashed, skipped and failed totals
func (p *ProgressTracker) Counts() (hashed, skipped, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hashed, p.skipped, p.failed
}

// Processed returns the number of finished files
func (p *ProgressTracker) Processed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
