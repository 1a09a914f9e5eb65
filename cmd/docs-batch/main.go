package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/business-dashboard/constants"
	"github.com/joseph-ayodele/business-dashboard/internal/common"
	"github.com/joseph-ayodele/business-dashboard/internal/core"
	"github.com/joseph-ayodele/business-dashboard/internal/core/extract"
	"github.com/joseph-ayodele/business-dashboard/internal/core/textextract"
	"github.com/joseph-ayodele/business-dashboard/internal/entity"
	"github.com/joseph-ayodele/business-dashboard/internal/metrics"
	repo "github.com/joseph-ayodele/business-dashboard/internal/repository"
	"github.com/joseph-ayodele/business-dashboard/internal/services/export"
	"github.com/joseph-ayodele/business-dashboard/internal/services/ingest"
)

// fileList collects -file values; each value may hold several comma-separated paths.
type fileList []string

func (f *fileList) String() string { return strings.Join(*f, ",") }

func (f *fileList) Set(v string) error {
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			*f = append(*f, p)
		}
	}
	return nil
}

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var files fileList
	var (
		dir             = flag.String("dir", "", "directory to process documents from")
		dsn             = flag.String("db", "", "database DSN (overrides DB_URL)")
		inmem           = flag.Bool("inmem", false, "use in-memory SQLite database")
		out             = flag.String("out", "", "write the extracted rows to this XLSX file")
		csvDir          = flag.String("csv-dir", "", "write one CSV per table into this directory")
		dryRun          = flag.Bool("dry-run", false, "extract only, do not write to the database")
		continueOnError = flag.Bool("continue-on-error", false, "keep going when a document fails")
	)
	flag.Var(&files, "file", "document to process (repeatable, comma-separated)")
	flag.Parse()

	// Validate required flags
	if *dir == "" && len(files) == 0 {
		printError("Error: --dir or --file is required\n")
		os.Exit(1)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := common.LoadConfig()
	switch {
	case *inmem:
		cfg.Database.DSN = ":memory:"
	case *dsn != "":
		cfg.Database.DSN = *dsn
	}

	var (
		records   repo.RecordRepository
		documents repo.DocumentRepository
	)
	if !*dryRun {
		client, err := repo.Open(ctx, repo.ConfigFrom(cfg.Database), logger)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		if err := repo.EnsureTables(ctx, client); err != nil {
			logger.Error("failed to create tables", "error", err)
			os.Exit(1)
		}
		records = repo.NewRecordRepository(client, logger)
		documents = repo.NewDocumentRepository(client, logger)
	}

	paths := []string(files)
	if *dir != "" {
		ingestor := ingest.NewFSIngestor(nil, logger)
		results, stats, err := ingestor.IngestDirectory(ctx, *dir, true)
		if err != nil {
			logger.Error("failed to ingest directory", "error", err)
			os.Exit(1)
		}
		ingest.SortByPath(results)
		paths = append(paths, ingest.Paths(results, false)...)
		logger.Info("ingestion complete",
			"scanned", stats.Scanned,
			"matched", stats.Matched,
			"succeeded", stats.Succeeded,
			"failed", stats.Failed)
	}

	texts := textextract.NewExtractor(textextract.ConfigFrom(cfg.Extract), logger)
	processor := core.NewProcessor(logger, texts, extract.NewExtractor(nil, logger), records, documents, metrics.New())

	outcomes, batchErr := processor.ProcessBatch(ctx, paths, *continueOnError)
	rows := core.Combined(outcomes)

	if *out != "" {
		if err := writeWorkbook(*out, rows); err != nil {
			logger.Error("failed to write output file", "error", err)
			os.Exit(1)
		}
	}
	if *csvDir != "" {
		if _, err := export.WriteCSVDir(*csvDir, rows); err != nil {
			logger.Error("failed to write csv files", "error", err)
			os.Exit(1)
		}
	}

	failures := 0
	for _, o := range outcomes {
		if o.Status == constants.DocumentStatusFailed {
			failures++
		}
	}
	counts := rows.Counts()
	logger.Info("batch processing complete",
		"documents", len(outcomes),
		"failures", failures,
		"rows", rows.Len(),
		"dry_run", *dryRun)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Documents processed: %d of %d\n", len(outcomes), len(paths))
	fmt.Printf("- Failures: %d\n", failures)
	for _, table := range constants.Tables() {
		fmt.Printf("- %s: %d rows\n", table, counts[table])
	}
	if *out != "" {
		fmt.Printf("- Output: %s\n", *out)
	}

	if batchErr != nil {
		logger.Error("batch finished with errors", "error", batchErr)
		os.Exit(1)
	}
}

func writeWorkbook(path string, rows entity.Collections) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteWorkbook(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
