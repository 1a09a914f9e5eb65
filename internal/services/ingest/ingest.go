package ingest

import (
	"context"
	"time"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath   string
	Filename     string
	HashHex      string
	FileExt      string
	Size         int64
	ModifiedAt   time.Time
	Deduplicated bool // a document with the same content was already processed
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Ingestor is the behavior the service depends on.
type Ingestor interface {
	// IngestPath inspects a single path.
	IngestPath(ctx context.Context, path string) (IngestionResult, error)
	// IngestDirectory inspects all matching files under root.
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error)
}
