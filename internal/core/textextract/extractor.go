// Package textextract produces plain text from uploaded or ingested documents.
package textextract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/business-dashboard/constants"
	"github.com/joseph-ayodele/business-dashboard/internal/common"
)

// Extraction methods recorded on Result.
const (
	MethodNative    = "pdf-native"
	MethodPdfToText = "pdftotext"
	MethodPlainText = "plain-text"
)

type Config struct {
	PdfToText        string // binary name or absolute path; if empty -> "pdftotext"
	Fallback         bool   // run PdfToText when native parsing fails or yields no text
	ArtifactCacheDir string // spool directory for uploads; if empty -> "./tmp"
	MaxPages         int    // 0 = no limit
}

// ConfigFrom maps the env-driven extraction settings.
func ConfigFrom(c common.ExtractConfig) Config {
	return Config{
		PdfToText:        c.PdfToText,
		Fallback:         c.Fallback,
		ArtifactCacheDir: c.ArtifactCacheDir,
	}
}

type Result struct {
	Text     string
	Pages    int
	Format   string // constants.PDF | constants.TEXT
	Method   string
	Duration time.Duration
	Warnings []string
}

// Extractor turns a file into normalized text.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PdfToText == "" {
		cfg.PdfToText = "pdftotext"
	}
	if cfg.ArtifactCacheDir == "" {
		cfg.ArtifactCacheDir = "./tmp"
	}
	return &Extractor{cfg: cfg, runner: ExecRunner{}, logger: logger}
}

// WithRunner replaces the command runner used for the pdftotext fallback.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// Extract picks a strategy based on file extension.
// Failures unwrap to common.ErrUpstreamExtraction or common.ErrUnsupportedFormat.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting text extraction", "path", path, "ext", ext)

	var (
		res Result
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.TEXT:
		res, err = e.extractPlain(path)
	default:
		e.logger.Error("unsupported extension", "path", path, "extension", ext)
		return Result{}, common.NewAppError(common.CodeUnsupportedFormat,
			fmt.Sprintf("extension %q", ext), common.ErrUnsupportedFormat)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, common.ExtractionError(filepath.Base(path), err)
	}
	if res.Method == MethodPdfToText {
		res.Text = NormalizeLayout(res.Text)
	} else {
		res.Text = Normalize(res.Text)
	}
	e.logger.Debug("text extraction done",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// ExtractReader spools r into the artifact directory under name's extension and extracts it.
func (e *Extractor) ExtractReader(ctx context.Context, name string, r io.Reader) (Result, error) {
	ext := constants.NormalizeExt(filepath.Ext(name))
	if !constants.IsAllowedExt(ext) {
		return Result{}, common.NewAppError(common.CodeUnsupportedFormat,
			fmt.Sprintf("extension %q", ext), common.ErrUnsupportedFormat)
	}
	if err := os.MkdirAll(e.cfg.ArtifactCacheDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(e.cfg.ArtifactCacheDir, "upload-*."+ext)
	if err != nil {
		return Result{}, fmt.Errorf("create spool file: %w", err)
	}
	defer func() {
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			e.logger.Warn("failed to remove spool file", "path", tmp.Name(), "error", rmErr)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return Result{}, fmt.Errorf("spool upload %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, fmt.Errorf("close spool file: %w", err)
	}

	res, err := e.Extract(ctx, tmp.Name())
	var appErr *common.AppError
	if errors.As(err, &appErr) && appErr.Code == common.CodeUpstreamExtraction {
		appErr.Message = name
	}
	return res, err
}

func (e *Extractor) extractPlain(path string) (Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Result{Format: constants.TEXT}, err
	}
	return Result{
		Text:   string(b),
		Pages:  1,
		Format: constants.TEXT,
		Method: MethodPlainText,
	}, nil
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (Result, error) {
	res := Result{Format: constants.PDF}

	pages, err := countPages(path)
	if err != nil {
		res.Warnings = append(res.Warnings, "page count: "+err.Error())
	}

	text, nativePages, nativeErr := readNative(path, e.cfg.MaxPages)
	if nativeErr == nil && strings.TrimSpace(text) != "" {
		res.Text = text
		res.Method = MethodNative
		res.Pages = firstPositive(pages, nativePages)
		return res, nil
	}
	if nativeErr != nil {
		e.logger.Warn("native pdf parse failed", "path", path, "error", nativeErr)
		res.Warnings = append(res.Warnings, "native: "+nativeErr.Error())
	} else {
		res.Warnings = append(res.Warnings, "native: no text layer")
	}

	if !e.cfg.Fallback {
		if nativeErr != nil {
			return res, nativeErr
		}
		return res, errors.New("pdf has no extractable text")
	}

	text, toolPages, err := e.pdfToText(ctx, path)
	if err != nil {
		return res, fmt.Errorf("%s: %w", e.cfg.PdfToText, err)
	}
	if strings.TrimSpace(text) == "" {
		return res, errors.New("pdf has no extractable text")
	}
	res.Text = text
	res.Method = MethodPdfToText
	res.Pages = firstPositive(pages, toolPages)
	return res, nil
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (string, int, error) {
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", fmt.Sprintf("%d", e.cfg.MaxPages))
	}
	args = append(args, path, "-")

	out, errb, err := e.runner.Run(ctx, e.cfg.PdfToText, e.logger, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return "", 0, fmt.Errorf("%w: %s", err, msg)
		}
		return "", 0, err
	}
	text := string(out)
	// pdftotext separates pages with a form feed
	pages := 1 + strings.Count(strings.TrimRight(text, "\f\n"), "\f")
	return text, pages, nil
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
