package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/business-dashboard/internal/core"
	"github.com/joseph-ayodele/business-dashboard/internal/entity"
)

func TestProcessorQueue_ProcessesInOrder(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	done := make(chan struct{}, 3)
	q := newQueue(func(_ context.Context, job Job) (core.Outcome, error) {
		mu.Lock()
		seen = append(seen, job.Filename)
		mu.Unlock()
		return core.Outcome{Filename: job.Filename, Rows: entity.NewCollections()}, nil
	}, nil, WithCompletion(func(Job, core.Outcome, error) { done <- struct{}{} }))

	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		require.NoError(t, q.Enqueue(context.Background(), Job{Filename: name, Data: []byte("x")}))
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}
	q.Shutdown(context.Background())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"}, seen)
}

func TestProcessorQueue_ReportsErrors(t *testing.T) {
	boom := errors.New("boom")
	results := make(chan error, 1)
	q := newQueue(func(context.Context, Job) (core.Outcome, error) {
		return core.Outcome{Rows: entity.NewCollections()}, boom
	}, nil, WithCompletion(func(job Job, _ core.Outcome, err error) {
		assert.NotEqual(t, "", job.ID.String())
		results <- err
	}))

	require.NoError(t, q.Enqueue(context.Background(), Job{Filename: "x.pdf"}))
	select {
	case err := <-results:
		assert.ErrorIs(t, err, boom)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
	q.Shutdown(context.Background())
}

func TestProcessorQueue_EnqueueAfterShutdown(t *testing.T) {
	q := newQueue(func(context.Context, Job) (core.Outcome, error) {
		return core.Outcome{}, nil
	}, nil, WithWorkers(2), WithQueueSize(1), WithProcessTimeout(time.Second))

	q.Shutdown(context.Background())
	q.Shutdown(context.Background())
	assert.ErrorIs(t, q.Enqueue(context.Background(), Job{Filename: "late.pdf"}), ErrQueueClosed)
}

func TestProcessorQueue_BackpressureHonoursContext(t *testing.T) {
	release := make(chan struct{})
	q := newQueue(func(context.Context, Job) (core.Outcome, error) {
		<-release
		return core.Outcome{}, nil
	}, nil, WithQueueSize(1))
	defer func() {
		close(release)
		q.Shutdown(context.Background())
	}()

	require.NoError(t, q.Enqueue(context.Background(), Job{Filename: "1"}))
	// wait for the worker to take the first job so the buffer holds exactly one
	require.Eventually(t, func() bool { return q.Pending() == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), Job{Filename: "2"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Enqueue(ctx, Job{Filename: "3"}), context.DeadlineExceeded)
}

func TestProcessorQueue_ShutdownReleasesBlockedEnqueue(t *testing.T) {
	release := make(chan struct{})
	q := newQueue(func(context.Context, Job) (core.Outcome, error) {
		<-release
		return core.Outcome{}, nil
	}, nil, WithQueueSize(1))

	require.NoError(t, q.Enqueue(context.Background(), Job{Filename: "1"}))
	require.Eventually(t, func() bool { return q.Pending() == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), Job{Filename: "2"}))

	blocked := make(chan error, 1)
	go func() { blocked <- q.Enqueue(context.Background(), Job{Filename: "3"}) }()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		q.Shutdown(context.Background())
	}()

	select {
	case err := <-blocked:
		assert.ErrorIs(t, err, ErrQueueClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("enqueue stayed blocked during shutdown")
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not drain")
	}
	assert.ErrorIs(t, q.Enqueue(context.Background(), Job{Filename: "4"}), ErrQueueClosed)
}
