package extract

import (
	"strings"

	"github.com/joseph-ayodele/business-dashboard/internal/entity"
)

// Tuple arities per rule. Tuples of any other length are skipped.
const (
	stockArity         = 4
	purchaseOrderArity = 4
	orderArity         = 4
	invoiceArity       = 4
)

// BuildStockRows turns stock tuples into rows.
// The non-digit product run can swallow heading lines, so only the last line of the
// trimmed capture is kept as the product name.
func BuildStockRows(filename string, tuples [][]string) []entity.StockReportRow {
	rows := make([]entity.StockReportRow, 0, len(tuples))
	for _, t := range tuples {
		if len(t) != stockArity {
			continue
		}
		rows = append(rows, entity.StockReportRow{
			Filename:     filename,
			Product:      lastLine(t[0]),
			UnitsSold:    t[1],
			UnitsInStock: t[2],
			UnitPrice:    t[3],
		})
	}
	return rows
}

// BuildPurchaseOrderRows turns purchase order tuples into rows.
func BuildPurchaseOrderRows(filename string, tuples [][]string) []entity.PurchaseOrderRow {
	rows := make([]entity.PurchaseOrderRow, 0, len(tuples))
	for _, t := range tuples {
		if len(t) != purchaseOrderArity {
			continue
		}
		rows = append(rows, entity.PurchaseOrderRow{
			Filename:  filename,
			ProductID: t[0],
			Product:   strings.TrimSpace(t[1]),
			Quantity:  t[2],
			UnitPrice: t[3],
		})
	}
	return rows
}

// BuildOrderRows turns order product blocks into rows sharing orderID.
func BuildOrderRows(filename, orderID string, tuples [][]string) []entity.OrderRow {
	rows := make([]entity.OrderRow, 0, len(tuples))
	for _, t := range tuples {
		if len(t) != orderArity {
			continue
		}
		rows = append(rows, entity.OrderRow{
			Filename:  filename,
			OrderID:   orderID,
			Product:   strings.TrimSpace(t[0]),
			Quantity:  t[1],
			UnitPrice: t[2],
			Total:     t[3],
		})
	}
	return rows
}

// BuildInvoiceRows turns invoice line items into rows sharing orderID.
// An empty totalPrice is stored as entity.NotAvailable.
func BuildInvoiceRows(filename, orderID, totalPrice string, tuples [][]string) []entity.InvoiceRow {
	if totalPrice == "" {
		totalPrice = entity.NotAvailable
	}
	rows := make([]entity.InvoiceRow, 0, len(tuples))
	for _, t := range tuples {
		if len(t) != invoiceArity {
			continue
		}
		rows = append(rows, entity.InvoiceRow{
			Filename:   filename,
			OrderID:    orderID,
			ProductID:  t[0],
			Product:    strings.TrimSpace(t[1]),
			Quantity:   t[2],
			UnitPrice:  t[3],
			TotalPrice: totalPrice,
		})
	}
	return rows
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexAny(s, "\r\n"); i >= 0 {
		s = strings.TrimSpace(s[i+1:])
	}
	return s
}
