package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/business-dashboard/constants"
	"github.com/joseph-ayodele/business-dashboard/internal/common"
	"github.com/joseph-ayodele/business-dashboard/internal/repository"
	"github.com/joseph-ayodele/business-dashboard/internal/utils"
)

// FSIngestor reads from the local filesystem.
type FSIngestor struct {
	Documents repository.DocumentRepository // nil -> no duplicate detection
	logger    *slog.Logger
}

func NewFSIngestor(docs repository.DocumentRepository, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{
		Documents: docs,
		logger:    logger,
	}
}

func (i *FSIngestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	var out IngestionResult

	abs, err := filepath.Abs(path)
	if err != nil {
		i.logger.Error("abs path error", "path", path, "error", err)
		return out, err
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		i.logger.Warn("unsupported or missing extension", "path", abs, "extension", ext)
		return out, common.NewAppError(common.CodeUnsupportedFormat, fmt.Sprintf("extension %q", ext), common.ErrUnsupportedFormat)
	}

	st, err := os.Stat(abs)
	if err != nil {
		i.logger.Error("stat error", "path", abs, "error", err)
		return out, err
	}
	if st.IsDir() {
		return out, fmt.Errorf("%s is a directory: %w", abs, common.ErrInvalidInput)
	}

	sum, size, err := utils.HashFile(abs)
	if err != nil {
		i.logger.Error("hash error", "path", abs, "error", err)
		return out, err
	}

	dedup := false
	if i.Documents != nil {
		dedup, err = i.Documents.SeenHash(ctx, sum)
		if err != nil {
			return out, err
		}
	}

	out = IngestionResult{
		SourcePath:   abs,
		Filename:     filepath.Base(abs),
		HashHex:      sum,
		FileExt:      ext,
		Size:         size,
		ModifiedAt:   st.ModTime().UTC(),
		Deduplicated: dedup,
	}
	return out, nil
}

// IngestDirectory walks root, skips hidden if requested,
// and calls IngestPath for each file. Returns per-file results + aggregate stats.
func (i *FSIngestor) IngestDirectory(
	ctx context.Context,
	root string,
	skipHidden bool,
) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if !AllowedExt(ext) {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, path)
		if err != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: err.Error()})
			stats.Failed++
			return nil
		}

		results = append(results, r)
		stats.Succeeded++
		if r.Deduplicated {
			stats.Deduplicated++
		}
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}
