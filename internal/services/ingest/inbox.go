package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Inbox periodically scans a directory and queues unseen documents.
type Inbox struct {
	cron     *cron.Cron
	service  *Service
	dir      string
	schedule string
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex // one scan at a time
	entryID cron.EntryID
}

// NewInbox creates an inbox scanner for dir on the given cron schedule ("@every 5m", "*/10 * * * *").
func NewInbox(service *Service, dir, schedule string, logger *slog.Logger) *Inbox {
	if logger == nil {
		logger = slog.Default()
	}
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Inbox{
		cron:     c,
		service:  service,
		dir:      dir,
		schedule: schedule,
		timeout:  10 * time.Minute,
		logger:   logger,
	}
}

// Start registers the scan job and starts the scheduler.
func (i *Inbox) Start() error {
	id, err := i.cron.AddFunc(i.schedule, i.scheduledScan)
	if err != nil {
		return err
	}
	i.entryID = id

	i.cron.Start()
	i.logger.Info("inbox scheduler started",
		slog.String("dir", i.dir),
		slog.String("schedule", i.schedule),
	)
	return nil
}

// Stop stops the scheduler. The returned context is done once a running scan finishes.
func (i *Inbox) Stop() context.Context {
	i.logger.Info("inbox scheduler stopping")
	return i.cron.Stop()
}

// Next reports when the next scan is due, or the zero time if not started.
func (i *Inbox) Next() time.Time {
	if i.entryID == 0 {
		return time.Time{}
	}
	return i.cron.Entry(i.entryID).Next
}

// ScanOnce ingests the inbox directory and queues every file not processed before.
func (i *Inbox) ScanOnce(ctx context.Context) (*DirectoryIngestResult, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	res, err := i.service.EnqueueDirectory(ctx, DirectoryIngestRequest{
		RootPath:       i.dir,
		SkipHidden:     true,
		SkipDuplicates: true,
	})
	if err != nil {
		return res, err
	}
	i.logger.Info("inbox scan completed",
		slog.String("dir", i.dir),
		slog.Int("queued", res.Queued),
		slog.Any("deduplicated", res.Statistics.Deduplicated),
	)
	return res, nil
}

func (i *Inbox) scheduledScan() {
	ctx, cancel := context.WithTimeout(context.Background(), i.timeout)
	defer cancel()

	if _, err := i.ScanOnce(ctx); err != nil {
		i.logger.Error("inbox scan failed", slog.String("dir", i.dir), slog.Any("error", err))
	}
}
