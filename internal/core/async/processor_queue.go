package async

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/business-dashboard/internal/core"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

type ProcessorQueue struct {
	proc    processFunc
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	// senders counts Enqueue calls between the closed check and their send. ch is closed
	// only after they leave, and done releases the ones blocked on a full buffer.
	mu      sync.Mutex
	closed  bool
	done    chan struct{}
	senders sync.WaitGroup

	onDone func(Job, core.Outcome, error)
}

type processFunc func(ctx context.Context, job Job) (core.Outcome, error)

type Option func(*ProcessorQueue)

// WithWorkers sets the number of workers. The default of one keeps a single writer on the store.
func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithCompletion registers a callback invoked by the worker after each job.
func WithCompletion(fn func(Job, core.Outcome, error)) Option {
	return func(q *ProcessorQueue) {
		q.onDone = fn
	}
}

func NewProcessorQueue(proc *core.Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	return newQueue(func(ctx context.Context, job Job) (core.Outcome, error) {
		if job.Path != "" {
			return proc.ProcessFile(ctx, job.Path)
		}
		return proc.ProcessUpload(ctx, job.Filename, bytes.NewReader(job.Data))
	}, logger, opts...)
}

func newQueue(fn processFunc, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    fn,
		logger:  logger,
		workers: 1,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 64),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					out, err := q.proc(ctx, job)
					cancel()

					if err != nil {
						q.logger.Error("processing failed", "worker_id", workerID, "job_id", job.ID, "filename", job.Filename, "error", err)
					} else {
						q.logger.Info("processed document", "worker_id", workerID, "job_id", job.ID, "filename", job.Filename, "rows", out.Rows.Len())
					}
					if q.onDone != nil {
						q.onDone(job, out, err)
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue hands job to a worker, blocking while the buffer is full or until ctx ends.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("cannot enqueue: queue is shutting down", "filename", job.Filename)
		return ErrQueueClosed
	}
	q.senders.Add(1)
	q.mu.Unlock()
	defer q.senders.Done()

	select {
	case q.ch <- job:
		q.logger.Info("queued document for processing", "job_id", job.ID, "filename", job.Filename)
		return nil
	default:
	}

	q.logger.Warn("queue full, applying backpressure", "filename", job.Filename)
	select {
	case q.ch <- job:
		return nil
	case <-q.done:
		q.logger.Warn("cannot enqueue: queue is shutting down", "filename", job.Filename)
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending is the number of jobs waiting for a worker.
func (q *ProcessorQueue) Pending() int {
	return len(q.ch)
}

func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.done)
	q.mu.Unlock()

	q.senders.Wait()
	close(q.ch)

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
