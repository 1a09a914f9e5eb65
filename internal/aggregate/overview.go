package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/business-dashboard/constants"
	"github.com/joseph-ayodele/business-dashboard/internal/entity"
)

// TopProductsLimit caps Overview.TopProducts.
const TopProductsLimit = 5

// ProductSales is the stock-report total for one product name.
type ProductSales struct {
	Product   string          `json:"product"`
	UnitsSold decimal.Decimal `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// Overview is the dashboard summary over stored rows.
type Overview struct {
	Counts         map[string]int  `json:"counts"`
	UnitsSold      decimal.Decimal `json:"units_sold"`
	UnitsInStock   decimal.Decimal `json:"units_in_stock"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
	PurchaseSpend  decimal.Decimal `json:"purchase_spend"`
	OrderRevenue   decimal.Decimal `json:"order_revenue"`
	InvoiceTotal   decimal.Decimal `json:"invoice_total"`
	InvoiceCount   int             `json:"invoice_count"`
	// Skipped counts fields per table that could not be coerced, including "N/A" totals.
	Skipped     map[string]int `json:"skipped"`
	TopProducts []ProductSales `json:"top_products"`
}

type invoiceKey struct {
	filename string
	orderID  string
}

// Summarize computes the overview. Values that fail Coerce are counted in Skipped and
// contribute nothing. A product of two fields is skipped when either side is missing.
func Summarize(c entity.Collections) Overview {
	o := Overview{
		Counts:         c.Counts(),
		UnitsSold:      decimal.Zero,
		UnitsInStock:   decimal.Zero,
		InventoryValue: decimal.Zero,
		PurchaseSpend:  decimal.Zero,
		OrderRevenue:   decimal.Zero,
		InvoiceTotal:   decimal.Zero,
		Skipped:        map[string]int{},
		TopProducts:    []ProductSales{},
	}
	skip := func(table string) { o.Skipped[table]++ }

	products := map[string]*ProductSales{}
	for _, r := range c.StockReports {
		sold, okSold := Coerce(r.UnitsSold)
		stock, okStock := Coerce(r.UnitsInStock)
		price, okPrice := Coerce(r.UnitPrice)
		if !okSold || !okStock || !okPrice {
			skip(constants.TableStockReports)
		}
		if okSold {
			o.UnitsSold = o.UnitsSold.Add(sold)
		}
		if okStock {
			o.UnitsInStock = o.UnitsInStock.Add(stock)
		}
		if okStock && okPrice {
			o.InventoryValue = o.InventoryValue.Add(stock.Mul(price))
		}
		if !okSold {
			continue
		}
		p, ok := products[r.Product]
		if !ok {
			p = &ProductSales{Product: r.Product, UnitsSold: decimal.Zero, Revenue: decimal.Zero}
			products[r.Product] = p
		}
		p.UnitsSold = p.UnitsSold.Add(sold)
		if okPrice {
			p.Revenue = p.Revenue.Add(sold.Mul(price))
		}
	}

	for _, r := range c.PurchaseOrders {
		qty, okQty := Coerce(r.Quantity)
		price, okPrice := Coerce(r.UnitPrice)
		if !okQty || !okPrice {
			skip(constants.TablePurchaseOrders)
			continue
		}
		o.PurchaseSpend = o.PurchaseSpend.Add(qty.Mul(price))
	}

	for _, r := range c.Orders {
		total, ok := Coerce(r.Total)
		if !ok {
			skip(constants.TableOrders)
			continue
		}
		o.OrderRevenue = o.OrderRevenue.Add(total)
	}

	// TotalPrice repeats on every item row of an invoice; count it once per document.
	seen := map[invoiceKey]struct{}{}
	for _, r := range c.Invoices {
		key := invoiceKey{filename: r.Filename, orderID: r.OrderID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		total, ok := Coerce(r.TotalPrice)
		if !ok {
			skip(constants.TableInvoices)
			continue
		}
		o.InvoiceTotal = o.InvoiceTotal.Add(total)
		o.InvoiceCount++
	}

	for _, p := range products {
		o.TopProducts = append(o.TopProducts, *p)
	}
	sort.Slice(o.TopProducts, func(i, j int) bool {
		a, b := o.TopProducts[i], o.TopProducts[j]
		if cmp := a.UnitsSold.Cmp(b.UnitsSold); cmp != 0 {
			return cmp > 0
		}
		return a.Product < b.Product
	})
	if len(o.TopProducts) > TopProductsLimit {
		o.TopProducts = o.TopProducts[:TopProductsLimit]
	}
	return o
}
