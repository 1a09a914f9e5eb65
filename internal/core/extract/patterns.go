// Package extract turns the raw text of a business document into categorized rows.
//
// The engine is split into a pattern library (one named rule per category), a
// marker-based classifier, a record builder and the extractor that ties them together.
// Everything in this package is a pure function of its inputs.
package extract

import (
	"fmt"
	"regexp"
)

// Rule names. They show up in logs and identify which rule to swap.
const (
	RuleStock         = "stock"
	RulePurchaseOrder = "purchase_order"
	RuleOrderHeader   = "order_header"
	RuleOrder         = "order"
	RuleInvoiceItems  = "invoice_items"
	RuleInvoiceTotal  = "invoice_total"
)

// Compatibility expressions. Product names have no escaping discipline, so these are kept
// exactly as the stored data expects them.
const (
	exprStock         = `(\D+)\s+(\d+)\s+(\d+)\s+([\d.]+)`
	exprPurchaseOrder = `(\d+)\s+([A-Za-z\s]+)\s+(\d+)\s+([\d.]+)`
	exprOrderHeader   = `Order ID[:\s]+(\d+)`
	exprOrder         = `(?s)Product[:\s]+(.+?)\s+Quantity[:\s]+(\d+)\s+Unit Price[:\s]+([\d.]+)\s+Total[:\s]+([\d.]+)`
	exprInvoiceItems  = `(\d+)\s+([A-Za-z'’\s]+)\s+(\d+)\s+([\d.]+)`
	exprInvoiceTotal  = `TotalPrice[:\s]+([\d.]+)`
)

// Rule locates candidate rows of one category inside raw text.
// Each returned tuple holds the raw captures in the category's field order.
type Rule interface {
	Name() string
	Match(text string) [][]string
}

// LabelRule finds a single labelled value, such as the order header.
type LabelRule interface {
	Name() string
	Find(text string) (string, bool)
}

type regexRule struct {
	name string
	re   *regexp.Regexp
}

// NewRegexRule compiles expr into a Rule that returns every non-overlapping match.
func NewRegexRule(name, expr string) (Rule, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile rule %s: %w", name, err)
	}
	return &regexRule{name: name, re: re}, nil
}

func (r *regexRule) Name() string { return r.name }

func (r *regexRule) Match(text string) [][]string {
	matches := r.re.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	tuples := make([][]string, 0, len(matches))
	for _, m := range matches {
		tuples = append(tuples, m[1:])
	}
	return tuples
}

type labelRule struct {
	name string
	re   *regexp.Regexp
}

// NewLabelRule compiles expr into a LabelRule returning the first capture of the first match.
func NewLabelRule(name, expr string) (LabelRule, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile rule %s: %w", name, err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("rule %s: expression needs one capture group", name)
	}
	return &labelRule{name: name, re: re}, nil
}

func (r *labelRule) Name() string { return r.name }

func (r *labelRule) Find(text string) (string, bool) {
	m := r.re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Library is the set of rules the classifier and builder work with.
// Order and invoice documents share the OrderHeader rule.
type Library struct {
	Stock         Rule
	PurchaseOrder Rule
	OrderHeader   LabelRule
	Order         Rule
	InvoiceItems  Rule
	InvoiceTotal  LabelRule
}

// DefaultLibrary returns the compatibility rules.
func DefaultLibrary() *Library {
	return &Library{
		Stock:         mustRule(RuleStock, exprStock),
		PurchaseOrder: mustRule(RulePurchaseOrder, exprPurchaseOrder),
		OrderHeader:   mustLabel(RuleOrderHeader, exprOrderHeader),
		Order:         mustRule(RuleOrder, exprOrder),
		InvoiceItems:  mustRule(RuleInvoiceItems, exprInvoiceItems),
		InvoiceTotal:  mustLabel(RuleInvoiceTotal, exprInvoiceTotal),
	}
}

// Validate reports the first missing rule.
func (l *Library) Validate() error {
	switch {
	case l == nil:
		return fmt.Errorf("rule library is nil")
	case l.Stock == nil:
		return fmt.Errorf("missing rule %s", RuleStock)
	case l.PurchaseOrder == nil:
		return fmt.Errorf("missing rule %s", RulePurchaseOrder)
	case l.OrderHeader == nil:
		return fmt.Errorf("missing rule %s", RuleOrderHeader)
	case l.Order == nil:
		return fmt.Errorf("missing rule %s", RuleOrder)
	case l.InvoiceItems == nil:
		return fmt.Errorf("missing rule %s", RuleInvoiceItems)
	case l.InvoiceTotal == nil:
		return fmt.Errorf("missing rule %s", RuleInvoiceTotal)
	}
	return nil
}

func mustRule(name, expr string) Rule {
	r, err := NewRegexRule(name, expr)
	if err != nil {
		panic(err)
	}
	return r
}

func mustLabel(name, expr string) LabelRule {
	r, err := NewLabelRule(name, expr)
	if err != nil {
		panic(err)
	}
	return r
}
