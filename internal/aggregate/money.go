package aggregate

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no (or an unknown) currency code is configured.
const DefaultCurrency = money.USD

// Formatter renders decimal amounts in a display currency.
type Formatter struct {
	currency *money.Currency
}

// NewFormatter returns a formatter for an ISO 4217 code, falling back to USD.
func NewFormatter(code string) Formatter {
	c := money.GetCurrency(strings.ToUpper(strings.TrimSpace(code)))
	if c == nil {
		c = money.GetCurrency(DefaultCurrency)
	}
	return Formatter{currency: c}
}

// Code returns the formatter's currency code.
func (f Formatter) Code() string {
	return f.currency.Code
}

// Money converts d to minor units, rounding half away from zero.
func (f Formatter) Money(d decimal.Decimal) *money.Money {
	minor := d.Shift(int32(f.currency.Fraction)).Round(0).IntPart()
	return money.New(minor, f.currency.Code)
}

// Format renders d, e.g. "$1,234.50".
func (f Formatter) Format(d decimal.Decimal) string {
	return f.Money(d).Display()
}
