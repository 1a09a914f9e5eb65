package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/business-dashboard/constants"
	"github.com/joseph-ayodele/business-dashboard/internal/common"
	"github.com/joseph-ayodele/business-dashboard/internal/entity"
	"github.com/joseph-ayodele/business-dashboard/internal/repository"
)

func sampleRows() entity.Collections {
	c := entity.NewCollections()
	c.StockReports = append(c.StockReports, entity.StockReportRow{
		Filename: "s.pdf", Product: "Widget A", UnitsSold: "120", UnitsInStock: "30", UnitPrice: "9.99",
	})
	c.Invoices = append(c.Invoices, entity.InvoiceRow{
		Filename: "i.pdf", OrderID: "77", ProductID: "1", Product: "Nut", Quantity: "3", UnitPrice: "1.5", TotalPrice: entity.NotAvailable,
	})
	return c
}

func newSource(t *testing.T, rows entity.Collections) repository.Source {
	t.Helper()
	ctx := context.Background()
	client, err := repository.Open(ctx, repository.Config{DSN: ":memory:", DialTimeout: time.Second}, nil)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	require.NoError(t, repository.EnsureTables(ctx, client))
	records := repository.NewRecordRepository(client, nil)
	_, err = records.Append(ctx, rows)
	require.NoError(t, err)
	return records
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, sampleRows()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, constants.Tables(), f.GetSheetList())

	rows, err := f.GetRows(constants.TableStockReports)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Filename", "Product", "UnitsSold", "UnitsInStock", "UnitPrice"},
		{"s.pdf", "Widget A", "120", "30", "9.99"},
	}, rows)

	rows, err = f.GetRows(constants.TableInvoices)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, entity.NotAvailable, rows[1][6])
	assert.Equal(t, "1.5", rows[1][5])

	rows, err = f.GetRows(constants.TableOrders)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows(), constants.TableInvoices))
	assert.Equal(t,
		"Filename,OrderID,ProductID,Product,Quantity,UnitPrice,TotalPrice\n"+
			"i.pdf,77,1,Nut,3,1.5,N/A\n",
		buf.String())

	buf.Reset()
	err := WriteCSV(&buf, sampleRows(), "Shipments")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestWriteCSVDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "csv")
	paths, err := WriteCSVDir(dir, sampleRows())
	require.NoError(t, err)
	require.Len(t, paths, 4)

	data, err := os.ReadFile(filepath.Join(dir, constants.TableOrders+".csv"))
	require.NoError(t, err)
	assert.Equal(t, "Filename,OrderID,Product,Quantity,UnitPrice,Total\n", string(data))
}

func TestService_Exports(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newSource(t, sampleRows()), nil)

	data, err := svc.WorkbookXLSX(ctx)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	rows, err := f.GetRows(constants.TableStockReports)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	_ = f.Close()

	csv, err := svc.TableCSV(ctx, "stock-reports")
	require.NoError(t, err)
	assert.Contains(t, string(csv), "s.pdf,Widget A,120,30,9.99")

	_, err = svc.TableCSV(ctx, "customers")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
