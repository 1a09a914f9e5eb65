package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/business-dashboard/constants"
	"github.com/joseph-ayodele/business-dashboard/internal/common"
	"github.com/joseph-ayodele/business-dashboard/internal/entity"
)

// Sink accepts row collections keyed by table. Writes are append-only.
type Sink interface {
	Append(ctx context.Context, rows entity.Collections) (map[string]int, error)
}

// Source reads persisted rows back.
type Source interface {
	List(ctx context.Context, table string) (entity.Collections, error)
	ListAll(ctx context.Context) (entity.Collections, error)
	Counts(ctx context.Context) (map[string]int, error)
}

type RecordRepository interface {
	Sink
	Source
}

type recordRepository struct {
	client *Client
	logger *slog.Logger
}

func NewRecordRepository(client *Client, logger *slog.Logger) RecordRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &recordRepository{
		client: client,
		logger: logger,
	}
}

// Append writes every non-empty table of rows in one transaction and returns the rows written per table.
func (r *recordRepository) Append(ctx context.Context, rows entity.Collections) (map[string]int, error) {
	written := make(map[string]int, len(constants.AllCategories))
	if rows.IsEmpty() {
		return written, nil
	}

	err := r.client.backend.inTx(ctx, func(q querier) error {
		for _, table := range constants.Tables() {
			values := rowValues(rows, table)
			if len(values) == 0 {
				continue
			}
			n, err := q.copyRows(ctx, table, Columns(table), values)
			if err != nil {
				return fmt.Errorf("append %s: %w", table, err)
			}
			written[table] = int(n)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to append rows", "counts", rows.Counts(), "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}

	r.logger.Debug("rows appended", "written", written)
	return written, nil
}

// List returns every row of one table in storage order.
func (r *recordRepository) List(ctx context.Context, table string) (entity.Collections, error) {
	out := entity.NewCollections()
	cat, ok := constants.ParseTable(table)
	if !ok {
		return out, common.NewAppError(common.CodeNotFound, fmt.Sprintf("table %q", table), common.ErrNotFound)
	}
	table = cat.Table()
	cols := Columns(table)

	b := r.client.builder()
	stmt, args := b.Select(cols...).From(b.Table(table)).Query()

	err := r.client.backend.query(ctx, stmt, args, func(scan func(dest ...any) error) error {
		raw := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := scan(dest...); err != nil {
			return err
		}
		vals := make([]string, len(raw))
		for i, v := range raw {
			vals[i] = v.String
		}
		appendRow(&out, table, vals)
		return nil
	})
	if err != nil {
		r.logger.Error("failed to list rows", "table", table, "error", err)
		return entity.NewCollections(), fmt.Errorf("%w: list %s: %v", common.ErrDatabase, table, err)
	}
	return out, nil
}

// ListAll returns the rows of all four tables.
func (r *recordRepository) ListAll(ctx context.Context) (entity.Collections, error) {
	out := entity.NewCollections()
	for _, table := range constants.Tables() {
		rows, err := r.List(ctx, table)
		if err != nil {
			return entity.NewCollections(), err
		}
		out.Append(rows)
	}
	return out, nil
}

// Counts returns the number of stored rows per table.
func (r *recordRepository) Counts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(constants.AllCategories))
	b := r.client.builder()
	for _, table := range constants.Tables() {
		stmt, args := b.Select(entsql.Count("*")).From(b.Table(table)).Query()
		var n sql.NullInt64
		err := r.client.backend.query(ctx, stmt, args, func(scan func(dest ...any) error) error {
			return scan(&n)
		})
		if err != nil {
			r.logger.Error("failed to count rows", "table", table, "error", err)
			return nil, fmt.Errorf("%w: count %s: %v", common.ErrDatabase, table, err)
		}
		counts[table] = int(n.Int64)
	}
	return counts, nil
}

// rowValues flattens one table of rows into insert values, in Columns order.
func rowValues(c entity.Collections, table string) [][]any {
	var out [][]any
	switch table {
	case constants.TableStockReports:
		for _, r := range c.StockReports {
			out = append(out, []any{r.Filename, r.Product, r.UnitsSold, r.UnitsInStock, r.UnitPrice})
		}
	case constants.TablePurchaseOrders:
		for _, r := range c.PurchaseOrders {
			out = append(out, []any{r.Filename, r.ProductID, r.Product, r.Quantity, r.UnitPrice})
		}
	case constants.TableOrders:
		for _, r := range c.Orders {
			out = append(out, []any{r.Filename, r.OrderID, r.Product, r.Quantity, r.UnitPrice, r.Total})
		}
	case constants.TableInvoices:
		for _, r := range c.Invoices {
			out = append(out, []any{r.Filename, r.OrderID, r.ProductID, r.Product, r.Quantity, r.UnitPrice, r.TotalPrice})
		}
	}
	return out
}

func appendRow(c *entity.Collections, table string, v []string) {
	switch table {
	case constants.TableStockReports:
		c.StockReports = append(c.StockReports, entity.StockReportRow{
			Filename: v[0], Product: v[1], UnitsSold: v[2], UnitsInStock: v[3], UnitPrice: v[4],
		})
	case constants.TablePurchaseOrders:
		c.PurchaseOrders = append(c.PurchaseOrders, entity.PurchaseOrderRow{
			Filename: v[0], ProductID: v[1], Product: v[2], Quantity: v[3], UnitPrice: v[4],
		})
	case constants.TableOrders:
		c.Orders = append(c.Orders, entity.OrderRow{
			Filename: v[0], OrderID: v[1], Product: v[2], Quantity: v[3], UnitPrice: v[4], Total: v[5],
		})
	case constants.TableInvoices:
		c.Invoices = append(c.Invoices, entity.InvoiceRow{
			Filename: v[0], OrderID: v[1], ProductID: v[2], Product: v[3], Quantity: v[4], UnitPrice: v[5], TotalPrice: v[6],
		})
	}
}
