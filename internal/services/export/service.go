package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/business-dashboard/constants"
	"github.com/joseph-ayodele/business-dashboard/internal/aggregate"
	"github.com/joseph-ayodele/business-dashboard/internal/common"
	"github.com/joseph-ayodele/business-dashboard/internal/entity"
	"github.com/joseph-ayodele/business-dashboard/internal/repository"
)

// Service produces XLSX and CSV exports of stored rows.
type Service struct {
	source repository.Source
	logger *slog.Logger
}

func NewService(source repository.Source, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, logger: logger}
}

// WorkbookXLSX returns every table as one workbook (as bytes).
func (s *Service) WorkbookXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()
	rows, err := s.source.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, rows); err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok",
		"rows", rows.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// TableCSV returns one table as CSV with a header row.
func (s *Service) TableCSV(ctx context.Context, table string) ([]byte, error) {
	cat, ok := constants.ParseTable(table)
	if !ok {
		return nil, common.NewAppError(common.CodeNotFound, "table "+table, common.ErrNotFound)
	}
	rows, err := s.source.List(ctx, cat.Table())
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", cat.Table(), err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows, cat.Table()); err != nil {
		return nil, err
	}
	s.logger.Info("export.csv.ok", "table", cat.Table(), "rows", rows.Counts()[cat.Table()])
	return buf.Bytes(), nil
}

// numericColumns are written as numbers when they coerce, text otherwise.
var numericColumns = map[string]bool{
	"UnitsSold":    true,
	"UnitsInStock": true,
	"UnitPrice":    true,
	"Quantity":     true,
	"Total":        true,
	"TotalPrice":   true,
}

// WriteWorkbook writes one sheet per table, named after the table, in category order.
func WriteWorkbook(w io.Writer, c entity.Collections) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, table := range constants.Tables() {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), table); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(table); err != nil {
			return err
		}

		headers := repository.Columns(table)
		header := make([]any, len(headers))
		for j, h := range headers {
			header[j] = h
		}
		if err := f.SetSheetRow(table, "A1", &header); err != nil {
			return err
		}

		for r, record := range c.Records(table) {
			cells := make([]any, len(record))
			for j, v := range record {
				cells[j] = v
				if numericColumns[headers[j]] {
					if d, ok := aggregate.Coerce(v); ok {
						cells[j] = d.InexactFloat64()
					}
				}
			}
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(table, cell, &cells); err != nil {
				return err
			}
		}

		last, _ := excelize.ColumnNumberToName(len(headers))
		_ = f.SetColWidth(table, "A", last, 16)
		_ = f.SetPanes(table, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// WriteCSV writes table's rows of c as CSV.
func WriteCSV(w io.Writer, c entity.Collections, table string) error {
	var err error
	switch table {
	case constants.TableStockReports:
		err = gocsv.Marshal(&c.StockReports, w)
	case constants.TablePurchaseOrders:
		err = gocsv.Marshal(&c.PurchaseOrders, w)
	case constants.TableOrders:
		err = gocsv.Marshal(&c.Orders, w)
	case constants.TableInvoices:
		err = gocsv.Marshal(&c.Invoices, w)
	default:
		return common.NewAppError(common.CodeNotFound, "table "+table, common.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("csv write %s: %w", table, err)
	}
	return nil
}

// WriteCSVDir writes <dir>/<Table>.csv for every table and returns the paths written.
func WriteCSVDir(dir string, c entity.Collections) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, table := range constants.Tables() {
		path := filepath.Join(dir, table+".csv")
		out, err := os.Create(path)
		if err != nil {
			return paths, err
		}
		err = WriteCSV(out, c, table)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
