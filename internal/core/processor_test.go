package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/business-dashboard/constants"
	"github.com/joseph-ayodele/business-dashboard/internal/common"
	"github.com/joseph-ayodele/business-dashboard/internal/core/extract"
	"github.com/joseph-ayodele/business-dashboard/internal/core/textextract"
	"github.com/joseph-ayodele/business-dashboard/internal/metrics"
	"github.com/joseph-ayodele/business-dashboard/internal/repository"
)

type fixture struct {
	proc    *Processor
	records repository.RecordRepository
	docs    repository.DocumentRepository
	dir     string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	client, err := repository.Open(ctx, repository.Config{DSN: ":memory:", DialTimeout: time.Second}, nil)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	require.NoError(t, repository.EnsureTables(ctx, client))

	dir := t.TempDir()
	records := repository.NewRecordRepository(client, nil)
	docs := repository.NewDocumentRepository(client, nil)
	texts := textextract.NewExtractor(textextract.Config{ArtifactCacheDir: filepath.Join(dir, "spool")}, nil)
	proc := NewProcessor(nil, texts, extract.NewExtractor(nil, nil), records, docs, metrics.New())
	return fixture{proc: proc, records: records, docs: docs, dir: dir}
}

func (f fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProcessFile_SavesRowsAndDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	path := f.write(t, "stock.txt", "Stock Report\nWidget A 120 30 9.99\n")

	out, err := f.proc.ProcessFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, constants.DocumentStatusProcessed, out.Status)
	assert.Equal(t, map[string]int{constants.TableStockReports: 1}, out.Written)
	require.Len(t, out.Rows.StockReports, 1)
	assert.Equal(t, "stock.txt", out.Rows.StockReports[0].Filename)

	stored, err := f.records.List(ctx, constants.TableStockReports)
	require.NoError(t, err)
	assert.Equal(t, out.Rows.StockReports, stored.StockReports)

	doc, err := f.docs.Get(ctx, out.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.RowCount)
	assert.Equal(t, constants.TEXT, doc.Format)
	assert.Len(t, doc.ContentHash, 64)

	seen, err := f.docs.SeenHash(ctx, out.ContentHash)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestProcessFile_NoRows(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "memo.txt", "Order ID: 1234")

	out, err := f.proc.ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, constants.DocumentStatusNoRows, out.Status)
	assert.True(t, out.Rows.IsEmpty())
	assert.Nil(t, out.Written)
}

func TestProcessFile_ExtractionFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	out, err := f.proc.ProcessFile(ctx, filepath.Join(f.dir, "missing.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUpstreamExtraction)
	assert.Equal(t, constants.DocumentStatusFailed, out.Status)
	assert.True(t, out.Rows.IsEmpty())

	doc, err := f.docs.Get(ctx, out.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, constants.DocumentStatusFailed, doc.Status)
	assert.NotEmpty(t, doc.ErrorMessage)
}

func TestProcessBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("stops on first failure", func(t *testing.T) {
		f := newFixture(t)
		paths := []string{
			f.write(t, "a.txt", "Stock Report\nGear 1 2 3.00"),
			filepath.Join(f.dir, "broken.txt"),
			f.write(t, "c.txt", "Stock Report\nCog 4 5 6.00"),
		}

		outcomes, err := f.proc.ProcessBatch(ctx, paths, false)
		require.Error(t, err)
		require.Len(t, outcomes, 2)

		counts, err := f.records.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, counts[constants.TableStockReports], "rows of earlier documents stay saved")
	})

	t.Run("continues on error", func(t *testing.T) {
		f := newFixture(t)
		paths := []string{
			f.write(t, "a.txt", "Stock Report\nGear 1 2 3.00"),
			filepath.Join(f.dir, "broken.txt"),
			f.write(t, "c.txt", "Stock Report\nCog 4 5 6.00"),
		}

		outcomes, err := f.proc.ProcessBatch(ctx, paths, true)
		require.Error(t, err)
		require.Len(t, outcomes, 3)
		assert.Equal(t, constants.DocumentStatusFailed, outcomes[1].Status)

		all := Combined(outcomes)
		require.Len(t, all.StockReports, 2)
		assert.Equal(t, "a.txt", all.StockReports[0].Filename)
		assert.Equal(t, "c.txt", all.StockReports[1].Filename)
	})

	t.Run("cancelled context", func(t *testing.T) {
		f := newFixture(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		outcomes, err := f.proc.ProcessBatch(cctx, []string{f.write(t, "a.txt", "x")}, true)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, outcomes)
	})
}

func TestProcessUpload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	out, err := f.proc.ProcessUpload(ctx, "uploads/order.txt",
		strings.NewReader("Order ID: 500\nProduct: Gadget Quantity: 3 Unit Price: 10.00 Total: 30.00"))
	require.NoError(t, err)
	assert.Equal(t, "order.txt", out.Filename)
	require.Len(t, out.Rows.Orders, 1)
	assert.Equal(t, "500", out.Rows.Orders[0].OrderID)
	assert.Len(t, out.ContentHash, 64)

	_, err = f.proc.ProcessUpload(ctx, "scan.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestProcessText_WithoutStorage(t *testing.T) {
	proc := NewProcessor(nil, nil, nil, nil, nil, nil)

	out, err := proc.ProcessText(context.Background(),
		extract.Document{Filename: "inv.txt", Text: "Invoice\nOrder ID: 77\n1 Blue Widget 2 4.50\n"}, Source{})
	require.NoError(t, err)
	require.Len(t, out.Rows.Invoices, 1)
	assert.Equal(t, "N/A", out.Rows.Invoices[0].TotalPrice)
	assert.Nil(t, out.Written)
}
