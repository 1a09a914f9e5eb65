package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/joseph-ayodele/business-dashboard/internal/common"
	"github.com/joseph-ayodele/business-dashboard/internal/core/async"
)

// Service handles ingestion business logic.
type Service struct {
	ingestor Ingestor
	queue    async.Queue
	logger   *slog.Logger
}

// NewService creates a new ingest service.
func NewService(ing Ingestor, q async.Queue, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		ingestor: ing,
		queue:    q,
		logger:   logger,
	}
}

// DirectoryIngestRequest represents directory ingestion parameters.
type DirectoryIngestRequest struct {
	RootPath       string
	SkipHidden     bool
	SkipDuplicates bool
}

// DirectoryIngestResult represents directory ingestion results.
type DirectoryIngestResult struct {
	Statistics DirStats
	Results    []IngestionResult
	Queued     int
}

// IngestFile inspects a single file.
func (s *Service) IngestFile(ctx context.Context, path string) (IngestionResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		s.logger.Error("ingest request missing path")
		return IngestionResult{}, common.NewAppError(common.CodeInvalidInput, "path is required", common.ErrInvalidInput)
	}

	s.logger.Info("starting file ingest", "path", path)
	r, err := s.ingestor.IngestPath(ctx, path)
	if err != nil {
		return IngestionResult{}, fmt.Errorf("ingest %s: %w", path, err)
	}
	s.logger.Info("file ingest succeeded", "path", r.SourcePath, "deduplicated", r.Deduplicated)
	return r, nil
}

// IngestDirectory walks a directory and returns what it found, sorted by path.
func (s *Service) IngestDirectory(ctx context.Context, req DirectoryIngestRequest) (*DirectoryIngestResult, error) {
	root := strings.TrimSpace(req.RootPath)
	if root == "" {
		s.logger.Error("ingest directory request missing root_path")
		return nil, common.NewAppError(common.CodeInvalidInput, "root_path is required", common.ErrInvalidInput)
	}

	s.logger.Info("starting directory ingest", "root", root, "skip_hidden", req.SkipHidden)
	results, stats, err := s.ingestor.IngestDirectory(ctx, root, req.SkipHidden)
	if err != nil {
		return nil, fmt.Errorf("ingest directory: %w", err)
	}
	SortByPath(results)

	s.logger.Info("directory ingest completed", "root", root, "scanned", stats.Scanned, "matched", stats.Matched, "succeeded", stats.Succeeded, "deduplicated", stats.Deduplicated, "failed", stats.Failed)

	return &DirectoryIngestResult{
		Statistics: stats,
		Results:    results,
	}, nil
}

// EnqueueDirectory ingests a directory and queues every processable file.
func (s *Service) EnqueueDirectory(ctx context.Context, req DirectoryIngestRequest) (*DirectoryIngestResult, error) {
	res, err := s.IngestDirectory(ctx, req)
	if err != nil {
		return nil, err
	}
	for i := range res.Results {
		queued, err := s.ProcessIngestedFile(ctx, &res.Results[i], req.SkipDuplicates)
		if err != nil {
			return res, err
		}
		if queued {
			res.Queued++
		}
	}
	return res, nil
}

// ProcessIngestedFile queues one ingested file, honouring skipDuplicates.
func (s *Service) ProcessIngestedFile(ctx context.Context, result *IngestionResult, skipDuplicates bool) (bool, error) {
	if result.Err != "" || result.SourcePath == "" {
		return false, nil
	}
	if result.Deduplicated && skipDuplicates {
		s.logger.Info("skipping processing (duplicate)", "path", result.SourcePath, "content_hash", result.HashHex)
		return false, nil
	}
	if s.queue == nil {
		return false, errors.New("no processing queue configured")
	}

	if err := s.queue.Enqueue(ctx, async.Job{
		Filename:    result.Filename,
		Path:        result.SourcePath,
		SubmittedAt: time.Now(),
	}); err != nil {
		s.logger.Error("enqueue failed for file", "path", result.SourcePath, "error", err)
		return false, fmt.Errorf("enqueue %s: %w", result.SourcePath, err)
	}
	return true, nil
}
