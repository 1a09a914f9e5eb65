package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/business-dashboard/constants"
	"github.com/joseph-ayodele/business-dashboard/internal/core/extract"
	"github.com/joseph-ayodele/business-dashboard/internal/core/textextract"
	"github.com/joseph-ayodele/business-dashboard/internal/entity"
	"github.com/joseph-ayodele/business-dashboard/internal/metrics"
	"github.com/joseph-ayodele/business-dashboard/internal/repository"
	"github.com/joseph-ayodele/business-dashboard/internal/utils"
)

// TextExtractor turns a file into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (textextract.Result, error)
	ExtractReader(ctx context.Context, name string, r io.Reader) (textextract.Result, error)
}

// Outcome is the result of processing one document.
type Outcome struct {
	DocumentID     uuid.UUID
	Filename       string
	SourcePath     string
	ContentHash    string
	Status         constants.DocumentStatus
	Rows           entity.Collections
	Written        map[string]int
	Classification extract.Classification
	Err            error
}

// Source describes where a text came from, for the documents record.
type Source struct {
	Path        string
	ContentHash string
	Format      string
	Pages       int
}

// Processor coordinates text extraction, row extraction and persistence.
type Processor struct {
	logger    *slog.Logger
	texts     TextExtractor
	engine    *extract.Extractor
	records   repository.Sink
	documents repository.DocumentRepository
	metrics   *metrics.Metrics
}

// NewProcessor wires the stages. records and documents may be nil, in which case rows are
// returned but not persisted.
func NewProcessor(
	logger *slog.Logger,
	texts TextExtractor,
	engine *extract.Extractor,
	records repository.Sink,
	documents repository.DocumentRepository,
	m *metrics.Metrics,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		engine = extract.NewExtractor(nil, logger)
	}
	return &Processor{
		logger:    logger,
		texts:     texts,
		engine:    engine,
		records:   records,
		documents: documents,
		metrics:   m,
	}
}

// ProcessFile extracts text from path and runs it through the engine and the sink.
// A text extraction failure is returned and recorded; no rows are written for that file.
func (p *Processor) ProcessFile(ctx context.Context, path string) (Outcome, error) {
	filename := filepath.Base(path)
	hash, _, err := utils.HashFile(path)
	if err != nil {
		p.logger.Warn("failed to hash file", "path", path, "error", err)
	}

	res, err := p.texts.Extract(ctx, path)
	p.metrics.ObserveExtractSeconds(res.Duration.Seconds())
	if err != nil {
		return p.fail(ctx, filename, Source{Path: path, ContentHash: hash, Format: res.Format}, err)
	}

	return p.ProcessText(ctx, extract.Document{Filename: filename, Text: res.Text}, Source{
		Path:        path,
		ContentHash: hash,
		Format:      res.Format,
		Pages:       res.Pages,
	})
}

// ProcessUpload processes an uploaded document read from r.
func (p *Processor) ProcessUpload(ctx context.Context, name string, r io.Reader) (Outcome, error) {
	filename := filepath.Base(name)
	h := sha256.New()

	res, err := p.texts.ExtractReader(ctx, filename, io.TeeReader(r, h))
	p.metrics.ObserveExtractSeconds(res.Duration.Seconds())
	src := Source{ContentHash: hex.EncodeToString(h.Sum(nil)), Format: res.Format, Pages: res.Pages}
	if err != nil {
		return p.fail(ctx, filename, src, err)
	}
	return p.ProcessText(ctx, extract.Document{Filename: filename, Text: res.Text}, src)
}

// ProcessText runs already-extracted text through the engine and persists the rows.
func (p *Processor) ProcessText(ctx context.Context, doc extract.Document, src Source) (Outcome, error) {
	rows, cls := p.engine.Analyze(doc)
	out := Outcome{
		Filename:       doc.Filename,
		SourcePath:     src.Path,
		ContentHash:    src.ContentHash,
		Rows:           rows,
		Classification: cls,
		Status:         constants.DocumentStatusProcessed,
	}
	if rows.IsEmpty() {
		out.Status = constants.DocumentStatusNoRows
	}

	if p.records != nil && !rows.IsEmpty() {
		written, err := p.records.Append(ctx, rows)
		if err != nil {
			return p.fail(ctx, doc.Filename, src, fmt.Errorf("save rows: %w", err))
		}
		out.Written = written
	}

	out.DocumentID = p.record(ctx, &entity.Document{
		Filename:    doc.Filename,
		SourcePath:  src.Path,
		ContentHash: src.ContentHash,
		Format:      formatOrText(src.Format),
		Pages:       src.Pages,
		Status:      out.Status,
		RowCount:    rows.Len(),
	})
	p.metrics.ObserveDocument(out.Status, rows.Counts(), cls.MissingHeader)

	p.logger.Info("document processed",
		"filename", doc.Filename,
		"status", out.Status,
		"rows", rows.Len(),
		"categories", cls.Categories,
	)
	return out, nil
}

// ProcessBatch processes paths in order. When continueOnError is false the first failure stops
// the batch; rows already saved for earlier documents stay saved.
func (p *Processor) ProcessBatch(ctx context.Context, paths []string, continueOnError bool) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(paths))
	var errs []error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		out, err := p.ProcessFile(ctx, path)
		outcomes = append(outcomes, out)
		if err != nil {
			if !continueOnError {
				return outcomes, err
			}
			errs = append(errs, err)
		}
	}
	return outcomes, errors.Join(errs...)
}

// Combined concatenates the rows of every outcome in order.
func Combined(outcomes []Outcome) entity.Collections {
	all := entity.NewCollections()
	for _, o := range outcomes {
		all.Append(o.Rows)
	}
	return all
}

func (p *Processor) fail(ctx context.Context, filename string, src Source, err error) (Outcome, error) {
	p.logger.Error("document failed", "filename", filename, "error", err)
	out := Outcome{
		Filename:    filename,
		SourcePath:  src.Path,
		ContentHash: src.ContentHash,
		Status:      constants.DocumentStatusFailed,
		Rows:        entity.NewCollections(),
		Err:         err,
	}
	out.DocumentID = p.record(ctx, &entity.Document{
		Filename:     filename,
		SourcePath:   src.Path,
		ContentHash:  src.ContentHash,
		Format:       formatOrText(src.Format),
		Status:       constants.DocumentStatusFailed,
		ErrorMessage: truncate(err.Error(), 1024),
	})
	p.metrics.ObserveDocument(constants.DocumentStatusFailed, nil, false)
	return out, err
}

// record stores doc; a failure to record is logged and does not fail the document.
func (p *Processor) record(ctx context.Context, doc *entity.Document) uuid.UUID {
	if p.documents == nil {
		return uuid.Nil
	}
	if err := p.documents.Create(ctx, doc); err != nil {
		p.logger.Error("failed to record document", "filename", doc.Filename, "error", err)
		return uuid.Nil
	}
	return doc.ID
}

func formatOrText(format string) string {
	if format == "" {
		return constants.TEXT
	}
	return format
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.ToValidUTF8(s[:max], "")
}
