package scanner

import (
	"imagededup/imageprocessor"
	"imagededup/types"
)

// ScanOptions defines the options for a hashing engine
type ScanOptions struct {
	StorePath  string
	Backend    string
	MaxWorkers int      // Zero means available CPU parallelism
	Recorder   Recorder // Optional mirror of each completed run
}

// Recorder receives the ordered results of a completed run
type Recorder interface {
	RecordScan(summary types.ScanSummary, images []types.ImageInfo) error
}

// Outcome is the fate of one discovered file
type Outcome int

const (
	OutcomeHashed Outcome = iota
	OutcomeSkipped
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHashed:
		return "hashed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ProcessImageResult holds the result of processing an image
type ProcessImageResult struct {
	Path    string
	Format  imageprocessor.FormatType
	Outcome Outcome
	Info    types.ImageInfo
	Error   error
}

// FileStats tracks information about files to be processed
type FileStats struct {
	totalFiles int
	heicFiles  int
	bmpFiles   int
}

// Total returns the number of discovered files
func (s FileStats) Total() int { return s.totalFiles }
