package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegexRule(t *testing.T) {
	_, err := NewRegexRule("broken", `(\d+`)
	assert.Error(t, err)

	r, err := NewRegexRule("pairs", `(\w)=(\d)`)
	require.NoError(t, err)
	assert.Equal(t, "pairs", r.Name())
	assert.Equal(t, [][]string{{"a", "1"}, {"b", "2"}}, r.Match("a=1 b=2"))
	assert.Nil(t, r.Match("nothing here"))
}

func TestNewLabelRule(t *testing.T) {
	_, err := NewLabelRule("nocapture", `Order`)
	assert.Error(t, err)

	r, err := NewLabelRule(RuleOrderHeader, exprOrderHeader)
	require.NoError(t, err)

	id, ok := r.Find("Order ID 12\nOrder ID: 13")
	assert.True(t, ok)
	assert.Equal(t, "12", id)

	_, ok = r.Find("Order: 12")
	assert.False(t, ok)
}

func TestDefaultLibrary(t *testing.T) {
	lib := DefaultLibrary()
	require.NoError(t, lib.Validate())

	total, ok := lib.InvoiceTotal.Find("Subtotal 4\nTotalPrice:  88.10")
	assert.True(t, ok)
	assert.Equal(t, "88.10", total)

	lib.Order = nil
	assert.ErrorContains(t, lib.Validate(), RuleOrder)

	var empty *Library
	assert.Error(t, empty.Validate())
}

func TestBuildStockRows_LastLine(t *testing.T) {
	rows := BuildStockRows("f.pdf", [][]string{
		{"Stock Report\nQ3\n  Widget A ", "1", "2", "3.5"},
		{"  Gear  ", "4", "5", "6"},
		{"bad", "1"},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "Widget A", rows[0].Product)
	assert.Equal(t, "Gear", rows[1].Product)
}

func TestBuildInvoiceRows_TotalPrice(t *testing.T) {
	tuples := [][]string{{"1", " Pen ", "2", "1.5"}}

	rows := BuildInvoiceRows("i.pdf", "5", "", tuples)
	require.Len(t, rows, 1)
	assert.Equal(t, "N/A", rows[0].TotalPrice)
	assert.Equal(t, "Pen", rows[0].Product)

	rows = BuildInvoiceRows("i.pdf", "5", "0", tuples)
	assert.Equal(t, "0", rows[0].TotalPrice)
}

// The non-digit run of the stock rule spans every line above the first product; only the
// final line names the product.
func TestStockRule_ProductIsLastLineOfCapture(t *testing.T) {
	lib := DefaultLibrary()
	text := "Stock Report\nWarehouse East\nWidget A 10 5 2.50"

	tuples := lib.Stock.Match(text)
	require.Len(t, tuples, 1)
	assert.Equal(t, "Stock Report\nWarehouse East\nWidget A", tuples[0][0])

	rows := NewExtractor(nil, nil).Extract(Document{Filename: "s.pdf", Text: text})
	require.Len(t, rows.StockReports, 1)
	assert.Equal(t, "Widget A", rows.StockReports[0].Product)
	assert.Equal(t, "10", rows.StockReports[0].UnitsSold)
	assert.Equal(t, "5", rows.StockReports[0].UnitsInStock)
	assert.Equal(t, "2.50", rows.StockReports[0].UnitPrice)
}
