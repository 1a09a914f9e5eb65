package constants

import (
	"strings"
)

// Category is a document type with its own row schema and marker phrase.
type Category string

const (
	StockReport   Category = "StockReport"
	PurchaseOrder Category = "PurchaseOrder"
	Order         Category = "Order"
	Invoice       Category = "Invoice"
)

// Table names used by the storage sink. These exact strings are the persisted table names.
const (
	TableStockReports   = "StockReports"
	TablePurchaseOrders = "PurchaseOrders"
	TableOrders         = "Orders"
	TableInvoices       = "Invoices"
)

// AllCategories is the stable processing order for a document.
var AllCategories = []Category{
	StockReport,
	PurchaseOrder,
	Order,
	Invoice,
}

var tables = map[Category]string{
	StockReport:   TableStockReports,
	PurchaseOrder: TablePurchaseOrders,
	Order:         TableOrders,
	Invoice:       TableInvoices,
}

// Table returns the sink table that collects rows of this category.
func (c Category) Table() string {
	return tables[c]
}

// Tables returns the four table names in category order.
func Tables() []string {
	result := make([]string, len(AllCategories))
	for i, cat := range AllCategories {
		result[i] = cat.Table()
	}
	return result
}

// ParseTable maps a table name (case-insensitive, spaces and dashes ignored) back to its category.
func ParseTable(name string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(normalized)
	if normalized == "" {
		return "", false
	}

	for _, cat := range AllCategories {
		if normalized == strings.ToLower(cat.Table()) || normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}
	return "", false
}
