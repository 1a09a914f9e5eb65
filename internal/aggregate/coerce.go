package aggregate

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/business-dashboard/internal/entity"
)

// Coerce parses a stored numeric field. Empty text, the "N/A" sentinel and anything that is
// not a plain decimal number report ok=false.
func Coerce(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == entity.NotAvailable {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
