package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/business-dashboard/constants"
	"github.com/joseph-ayodele/business-dashboard/internal/entity"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"integer", "120", "120", true},
		{"decimal", "9.99", "9.99", true},
		{"padded", " 4.5 ", "4.5", true},
		{"sentinel", entity.NotAvailable, "0", false},
		{"empty", "", "0", false},
		{"dots only", "1.2.3", "0", false},
		{"text", "abc", "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Coerce(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, dec(t, tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestSummarize(t *testing.T) {
	c := entity.Collections{
		StockReports: []entity.StockReportRow{
			{Filename: "s.pdf", Product: "Widget A", UnitsSold: "120", UnitsInStock: "30", UnitPrice: "9.99"},
			{Filename: "s.pdf", Product: "Gadget", UnitsSold: "5", UnitsInStock: "2", UnitPrice: "1.2.3"},
			{Filename: "t.pdf", Product: "Widget A", UnitsSold: "10", UnitsInStock: "0", UnitPrice: "9.99"},
		},
		PurchaseOrders: []entity.PurchaseOrderRow{
			{Filename: "p.pdf", ProductID: "1001", Product: "Bolt", Quantity: "50", UnitPrice: "0.25"},
		},
		Orders: []entity.OrderRow{
			{Filename: "o.pdf", OrderID: "1234", Product: "Widget", Quantity: "2", UnitPrice: "5.00", Total: "10.00"},
			{Filename: "o.pdf", OrderID: "1234", Product: "Gizmo", Quantity: "1", UnitPrice: "3.50", Total: "3.50"},
		},
		Invoices: []entity.InvoiceRow{
			{Filename: "i.pdf", OrderID: "77", ProductID: "1", Product: "Nut", Quantity: "3", UnitPrice: "1.00", TotalPrice: "30.00"},
			{Filename: "i.pdf", OrderID: "77", ProductID: "2", Product: "Bolt", Quantity: "3", UnitPrice: "9.00", TotalPrice: "30.00"},
			{Filename: "j.pdf", OrderID: "78", ProductID: "1", Product: "Nut", Quantity: "1", UnitPrice: "1.00", TotalPrice: entity.NotAvailable},
		},
	}

	o := Summarize(c)
	assert.Equal(t, map[string]int{
		constants.TableStockReports:   3,
		constants.TablePurchaseOrders: 1,
		constants.TableOrders:         2,
		constants.TableInvoices:       3,
	}, o.Counts)
	assert.Equal(t, "135", o.UnitsSold.String())
	assert.Equal(t, "32", o.UnitsInStock.String())
	assert.Equal(t, "299.7", o.InventoryValue.String())
	assert.Equal(t, "12.5", o.PurchaseSpend.String())
	assert.Equal(t, "13.5", o.OrderRevenue.String())
	assert.Equal(t, "30", o.InvoiceTotal.String())
	assert.Equal(t, 1, o.InvoiceCount)
	assert.Equal(t, map[string]int{constants.TableStockReports: 1, constants.TableInvoices: 1}, o.Skipped)

	require.Len(t, o.TopProducts, 2)
	assert.Equal(t, "Widget A", o.TopProducts[0].Product)
	assert.Equal(t, "130", o.TopProducts[0].UnitsSold.String())
	assert.Equal(t, "1298.7", o.TopProducts[0].Revenue.String())
	assert.Equal(t, "Gadget", o.TopProducts[1].Product)
	assert.True(t, o.TopProducts[1].Revenue.IsZero())
}

func TestSummarize_Empty(t *testing.T) {
	o := Summarize(entity.NewCollections())
	assert.True(t, o.InvoiceTotal.IsZero())
	assert.Empty(t, o.Skipped)
	assert.NotNil(t, o.TopProducts)
	assert.Equal(t, 0, o.Counts[constants.TableOrders])
}

func TestSummarize_TopProductsLimit(t *testing.T) {
	var c entity.Collections
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		c.StockReports = append(c.StockReports, entity.StockReportRow{
			Product: name, UnitsSold: decimal.NewFromInt(int64(i)).String(), UnitsInStock: "1", UnitPrice: "1",
		})
	}
	o := Summarize(c)
	require.Len(t, o.TopProducts, TopProductsLimit)
	assert.Equal(t, "g", o.TopProducts[0].Product)
}

func TestFormatter(t *testing.T) {
	f := NewFormatter("usd")
	assert.Equal(t, "USD", f.Code())
	assert.Equal(t, "$1,234.50", f.Format(dec(t, "1234.5")))
	assert.Equal(t, "$0.01", f.Format(dec(t, "0.005")))

	assert.Equal(t, DefaultCurrency, NewFormatter("nope").Code())
	assert.Equal(t, int64(1000), NewFormatter("JPY").Money(dec(t, "999.6")).Amount())
}
