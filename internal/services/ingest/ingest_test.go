package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/business-dashboard/constants"
	"github.com/joseph-ayodele/business-dashboard/internal/common"
	"github.com/joseph-ayodele/business-dashboard/internal/core/async"
	"github.com/joseph-ayodele/business-dashboard/internal/entity"
	"github.com/joseph-ayodele/business-dashboard/internal/repository"
	"github.com/joseph-ayodele/business-dashboard/internal/utils"
)

type recordingQueue struct {
	mu   sync.Mutex
	jobs []async.Job
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, job async.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) Shutdown(context.Context) {}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newDocs(t *testing.T) repository.DocumentRepository {
	t.Helper()
	ctx := context.Background()
	client, err := repository.Open(ctx, repository.Config{DSN: ":memory:", DialTimeout: time.Second}, nil)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	require.NoError(t, repository.EnsureTables(ctx, client))
	return repository.NewDocumentRepository(client, nil)
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/tmp/.git", true},
		{".env", true},
		{"/tmp/report.pdf", false},
		{".", false},
		{"..", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHidden(tt.path))
		})
	}
}

func TestFSIngestor_IngestPath(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	ing := NewFSIngestor(nil, nil)

	t.Run("text file", func(t *testing.T) {
		path := writeFile(t, dir, "stock.TXT", "Stock Report\nBolt 1 2 3.00\n")
		r, err := ing.IngestPath(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "stock.TXT", r.Filename)
		assert.Equal(t, "txt", r.FileExt)
		assert.Len(t, r.HashHex, 64)
		assert.EqualValues(t, 27, r.Size)
		assert.False(t, r.Deduplicated)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, dir, "photo.jpg", "x")
		_, err := ing.IngestPath(ctx, path)
		assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ing.IngestPath(ctx, filepath.Join(dir, "gone.pdf"))
		assert.Error(t, err)
	})
}

func TestFSIngestor_IngestDirectory(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "Invoice\n")
	writeFile(t, dir, "nested/b.pdf", "%PDF-1.4")
	writeFile(t, dir, "notes.md", "ignored")
	writeFile(t, dir, ".hidden/c.txt", "skipped")
	writeFile(t, dir, ".d.txt", "skipped")

	results, stats, err := NewFSIngestor(nil, nil).IngestDirectory(ctx, dir, true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Matched)
	assert.EqualValues(t, 2, stats.Succeeded)
	assert.EqualValues(t, 0, stats.Failed)

	SortByPath(results)
	require.Len(t, results, 2)
	assert.Equal(t, "a.txt", results[0].Filename)
	assert.Equal(t, "b.pdf", results[1].Filename)

	_, stats, err = NewFSIngestor(nil, nil).IngestDirectory(ctx, dir, false)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.Matched)
}

func TestFSIngestor_DetectsDuplicates(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	docs := newDocs(t)
	seen := writeFile(t, dir, "seen.txt", "Stock Report\n")
	failed := writeFile(t, dir, "failed.txt", "broken")
	writeFile(t, dir, "new.txt", "Purchase Orders\n")

	for path, status := range map[string]constants.DocumentStatus{
		seen:   constants.DocumentStatusProcessed,
		failed: constants.DocumentStatusFailed,
	} {
		sum, _, err := utils.HashFile(path)
		require.NoError(t, err)
		require.NoError(t, docs.Create(ctx, &entity.Document{Filename: filepath.Base(path), ContentHash: sum, Status: status}))
	}

	results, stats, err := NewFSIngestor(docs, nil).IngestDirectory(ctx, dir, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Deduplicated)

	byName := map[string]bool{}
	for _, r := range results {
		byName[r.Filename] = r.Deduplicated
	}
	assert.Equal(t, map[string]bool{"seen.txt": true, "failed.txt": false, "new.txt": false}, byName)
	assert.Equal(t, []string{filepath.Join(dir, "failed.txt"), filepath.Join(dir, "new.txt")}, sortedPaths(results, true))
}

func sortedPaths(results []IngestionResult, skipDuplicates bool) []string {
	SortByPath(results)
	return Paths(results, skipDuplicates)
}

func TestService_EnqueueDirectory(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	docs := newDocs(t)
	dup := writeFile(t, dir, "dup.txt", "Stock Report\n")
	writeFile(t, dir, "fresh.txt", "Invoice\n")
	sum, _, err := utils.HashFile(dup)
	require.NoError(t, err)
	require.NoError(t, docs.Create(ctx, &entity.Document{Filename: "dup.txt", ContentHash: sum, Status: constants.DocumentStatusNoRows}))

	q := &recordingQueue{}
	svc := NewService(NewFSIngestor(docs, nil), q, nil)

	res, err := svc.EnqueueDirectory(ctx, DirectoryIngestRequest{RootPath: dir, SkipHidden: true, SkipDuplicates: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Queued)
	require.Len(t, q.jobs, 1)
	assert.Equal(t, "fresh.txt", q.jobs[0].Filename)
	assert.Equal(t, filepath.Join(dir, "fresh.txt"), q.jobs[0].Path)

	q.jobs = nil
	res, err = svc.EnqueueDirectory(ctx, DirectoryIngestRequest{RootPath: dir, SkipDuplicates: false})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Queued)
}

func TestService_Errors(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewFSIngestor(nil, nil), &recordingQueue{err: errors.New("full")}, nil)

	_, err := svc.IngestDirectory(ctx, DirectoryIngestRequest{RootPath: "  "})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = svc.IngestFile(ctx, "")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "Invoice\n")
	_, err = svc.EnqueueDirectory(ctx, DirectoryIngestRequest{RootPath: dir})
	assert.ErrorContains(t, err, "full")
}

func TestInbox_ScanOnceSkipsSeen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "one.txt", "Stock Report\n")

	q := &recordingQueue{}
	inbox := NewInbox(NewService(NewFSIngestor(nil, nil), q, nil), dir, "@every 1h", nil)

	res, err := inbox.ScanOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Queued)
	assert.True(t, inbox.Next().IsZero())
}

func TestInbox_StartRejectsBadSchedule(t *testing.T) {
	inbox := NewInbox(NewService(NewFSIngestor(nil, nil), &recordingQueue{}, nil), t.TempDir(), "not a schedule", nil)
	assert.Error(t, inbox.Start())
}

func TestInbox_StartStop(t *testing.T) {
	inbox := NewInbox(NewService(NewFSIngestor(nil, nil), &recordingQueue{}, nil), t.TempDir(), "@every 1h", nil)
	require.NoError(t, inbox.Start())
	assert.WithinDuration(t, time.Now().Add(time.Hour), inbox.Next(), time.Minute)
	<-inbox.Stop().Done()
}
