package entity

import "github.com/joseph-ayodele/business-dashboard/constants"

// NotAvailable is the sentinel stored in InvoiceRow.TotalPrice when the document has no
// TotalPrice label. It is distinct from a valid "0".
const NotAvailable = "N/A"

// Numeric fields hold the text exactly as extracted. Coercion happens in consumers
// (see internal/aggregate).

// StockReportRow is one product line of a stock report.
type StockReportRow struct {
	Filename     string `json:"Filename" csv:"Filename"`
	Product      string `json:"Product" csv:"Product"`
	UnitsSold    string `json:"UnitsSold" csv:"UnitsSold"`
	UnitsInStock string `json:"UnitsInStock" csv:"UnitsInStock"`
	UnitPrice    string `json:"UnitPrice" csv:"UnitPrice"`
}

// PurchaseOrderRow is one item line of a purchase order.
type PurchaseOrderRow struct {
	Filename  string `json:"Filename" csv:"Filename"`
	ProductID string `json:"ProductID" csv:"ProductID"`
	Product   string `json:"Product" csv:"Product"`
	Quantity  string `json:"Quantity" csv:"Quantity"`
	UnitPrice string `json:"UnitPrice" csv:"UnitPrice"`
}

// OrderRow is one product block of a sales order.
type OrderRow struct {
	Filename  string `json:"Filename" csv:"Filename"`
	OrderID   string `json:"OrderID" csv:"OrderID"`
	Product   string `json:"Product" csv:"Product"`
	Quantity  string `json:"Quantity" csv:"Quantity"`
	UnitPrice string `json:"UnitPrice" csv:"UnitPrice"`
	Total     string `json:"Total" csv:"Total"`
}

// InvoiceRow is one line item of an invoice.
type InvoiceRow struct {
	Filename   string `json:"Filename" csv:"Filename"`
	OrderID    string `json:"OrderID" csv:"OrderID"`
	ProductID  string `json:"ProductID" csv:"ProductID"`
	Product    string `json:"Product" csv:"Product"`
	Quantity   string `json:"Quantity" csv:"Quantity"`
	UnitPrice  string `json:"UnitPrice" csv:"UnitPrice"`
	TotalPrice string `json:"TotalPrice" csv:"TotalPrice"`
}

// Collections holds the four category-keyed row sets.
type Collections struct {
	StockReports   []StockReportRow   `json:"StockReports"`
	PurchaseOrders []PurchaseOrderRow `json:"PurchaseOrders"`
	Orders         []OrderRow         `json:"Orders"`
	Invoices       []InvoiceRow       `json:"Invoices"`
}

// NewCollections returns empty, non-nil collections so they encode as [] rather than null.
func NewCollections() Collections {
	return Collections{
		StockReports:   []StockReportRow{},
		PurchaseOrders: []PurchaseOrderRow{},
		Orders:         []OrderRow{},
		Invoices:       []InvoiceRow{},
	}
}

// Append adds every row of other after the rows already held.
func (c *Collections) Append(other Collections) {
	c.StockReports = append(c.StockReports, other.StockReports...)
	c.PurchaseOrders = append(c.PurchaseOrders, other.PurchaseOrders...)
	c.Orders = append(c.Orders, other.Orders...)
	c.Invoices = append(c.Invoices, other.Invoices...)
}

// Len is the total row count across all categories.
func (c Collections) Len() int {
	return len(c.StockReports) + len(c.PurchaseOrders) + len(c.Orders) + len(c.Invoices)
}

// IsEmpty reports whether no category holds a row.
func (c Collections) IsEmpty() bool {
	return c.Len() == 0
}

// Counts returns row counts keyed by table name.
func (c Collections) Counts() map[string]int {
	return map[string]int{
		constants.TableStockReports:   len(c.StockReports),
		constants.TablePurchaseOrders: len(c.PurchaseOrders),
		constants.TableOrders:         len(c.Orders),
		constants.TableInvoices:       len(c.Invoices),
	}
}

// Records returns the rows of one table as text in column order, or nil for an unknown table.
func (c Collections) Records(table string) [][]string {
	var out [][]string
	switch table {
	case constants.TableStockReports:
		for _, r := range c.StockReports {
			out = append(out, []string{r.Filename, r.Product, r.UnitsSold, r.UnitsInStock, r.UnitPrice})
		}
	case constants.TablePurchaseOrders:
		for _, r := range c.PurchaseOrders {
			out = append(out, []string{r.Filename, r.ProductID, r.Product, r.Quantity, r.UnitPrice})
		}
	case constants.TableOrders:
		for _, r := range c.Orders {
			out = append(out, []string{r.Filename, r.OrderID, r.Product, r.Quantity, r.UnitPrice, r.Total})
		}
	case constants.TableInvoices:
		for _, r := range c.Invoices {
			out = append(out, []string{r.Filename, r.OrderID, r.ProductID, r.Product, r.Quantity, r.UnitPrice, r.TotalPrice})
		}
	}
	return out
}
