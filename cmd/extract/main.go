package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/business-dashboard/internal/common"
	"github.com/joseph-ayodele/business-dashboard/internal/core/extract"
	"github.com/joseph-ayodele/business-dashboard/internal/core/textextract"
)

func main() {
	// Logs go to stderr so stdout carries only the JSON rows.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	pages := flag.Int("pages", 0, "only read the first N pages (0 = all)")
	flag.Parse()
	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "extract [-pages N] <file.pdf|file.txt>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg := common.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Extract.Timeout)
	defer cancel()

	tcfg := textextract.ConfigFrom(cfg.Extract)
	tcfg.MaxPages = *pages

	start := time.Now()
	res, err := textextract.NewExtractor(tcfg, logger).Extract(ctx, path)
	if err != nil {
		logger.Error("text extraction failed", "path", path, "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	rows, cls := extract.NewExtractor(nil, logger).Analyze(extract.Document{
		Filename: filepath.Base(path),
		Text:     res.Text,
	})
	logger.Info("text extraction OK",
		"method", res.Method,
		"pages", res.Pages,
		"bytes", len(res.Text),
		"categories", cls.Categories,
		"order_id", cls.OrderID,
		"rows", rows.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		logger.Error("encode rows", "error", err)
		os.Exit(1)
	}
}
