package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/business-dashboard/constants"
)

// TableDocuments records every ingested file.
const TableDocuments = "documents"

// column types per dialect. SQLite keeps the historical affinities so existing data.db
// files stay readable; Postgres stores the extracted record text as-is.
type column struct {
	name     string
	sqlite   string
	postgres string
}

func textCol(name string) column  { return column{name, "TEXT", "TEXT"} }
func intCol(name string) column   { return column{name, "INTEGER", "TEXT"} }
func realCol(name string) column  { return column{name, "REAL", "TEXT"} }
func countCol(name string) column { return column{name, "INTEGER", "INTEGER"} }

var recordColumns = map[string][]column{
	constants.TableStockReports: {
		textCol("Filename"),
		textCol("Product"),
		intCol("UnitsSold"),
		intCol("UnitsInStock"),
		realCol("UnitPrice"),
	},
	constants.TablePurchaseOrders: {
		textCol("Filename"),
		textCol("ProductID"),
		textCol("Product"),
		intCol("Quantity"),
		realCol("UnitPrice"),
	},
	constants.TableOrders: {
		textCol("Filename"),
		textCol("OrderID"),
		textCol("Product"),
		intCol("Quantity"),
		realCol("UnitPrice"),
		realCol("Total"),
	},
	constants.TableInvoices: {
		textCol("Filename"),
		textCol("OrderID"),
		textCol("ProductID"),
		textCol("Product"),
		intCol("Quantity"),
		realCol("UnitPrice"),
		realCol("TotalPrice"),
	},
}

var documentColumns = []column{
	textCol("id"),
	textCol("filename"),
	textCol("source_path"),
	textCol("content_hash"),
	textCol("format"),
	countCol("pages"),
	textCol("status"),
	textCol("error_message"),
	countCol("row_count"),
	textCol("ingested_at"),
}

// Columns returns the persisted column names of a record table in insert order.
func Columns(table string) []string {
	cols := recordColumns[table]
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	return names
}

func documentColumnNames() []string {
	names := make([]string, len(documentColumns))
	for i, c := range documentColumns {
		names[i] = c.name
	}
	return names
}

func (c column) typeFor(d string) string {
	if d == dialect.Postgres {
		return c.postgres
	}
	return c.sqlite
}

// createTable renders CREATE TABLE IF NOT EXISTS with identifiers quoted for dialect d.
func createTable(d, name string, cols []column, primaryKey string) string {
	return entsql.Dialect(d).String(func(b *entsql.Builder) {
		b.WriteString("CREATE TABLE IF NOT EXISTS ").Ident(name).WriteString("(")
		for i, c := range cols {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Ident(c.name).WriteString(" " + c.typeFor(d))
		}
		if primaryKey != "" {
			b.WriteString(", PRIMARY KEY(").Ident(primaryKey).WriteString(")")
		}
		b.WriteString(")")
	})
}

// EnsureTables creates the four record tables and the documents table when missing.
// Existing tables are left untouched.
func EnsureTables(ctx context.Context, c *Client) error {
	for _, table := range constants.Tables() {
		stmt := createTable(c.dialect, table, recordColumns[table], "")
		if err := c.backend.exec(ctx, stmt); err != nil {
			c.logger.Error("failed to create table", "table", table, "error", err)
			return fmt.Errorf("create table %s: %w", table, err)
		}
	}

	stmt := createTable(c.dialect, TableDocuments, documentColumns, "id")
	if err := c.backend.exec(ctx, stmt); err != nil {
		c.logger.Error("failed to create table", "table", TableDocuments, "error", err)
		return fmt.Errorf("create table %s: %w", TableDocuments, err)
	}

	c.logger.Debug("tables ready", "dialect", c.dialect)
	return nil
}
