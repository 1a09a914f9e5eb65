package extract

import (
	"sync"

	"github.com/cloudflare/ahocorasick"

	"github.com/joseph-ayodele/business-dashboard/constants"
)

// Marker is a literal phrase whose presence makes a category applicable.
type Marker struct {
	Phrase   string
	Category constants.Category
}

// DefaultMarkers are matched case-sensitively. Invoice is listed in both casings.
var DefaultMarkers = []Marker{
	{Phrase: "Stock Report", Category: constants.StockReport},
	{Phrase: "Purchase Orders", Category: constants.PurchaseOrder},
	{Phrase: "Order ID:", Category: constants.Order},
	{Phrase: "Invoice", Category: constants.Invoice},
	{Phrase: "invoice", Category: constants.Invoice},
}

// Classification is the outcome of testing one text for every category.
type Classification struct {
	// Categories that apply, in constants.AllCategories order.
	Categories []constants.Category
	// OrderID read from the order header; empty when no header matched.
	OrderID string
	// MissingHeader is set when an order or invoice marker was present but no OrderID
	// could be read. Those categories are then left out of Categories.
	MissingHeader bool
	// Markers lists every category whose marker was seen, before the header check.
	Markers []constants.Category
}

// Has reports whether cat applies.
func (c Classification) Has(cat constants.Category) bool {
	for _, got := range c.Categories {
		if got == cat {
			return true
		}
	}
	return false
}

// Classifier finds marker phrases in a single pass and decides which rules to run.
// Checks are independent: one text may belong to several categories.
type Classifier struct {
	headers LabelRule
	markers []Marker

	mu      sync.Mutex // Matcher.Match mutates its hit counters
	matcher *ahocorasick.Matcher
}

// NewClassifier builds the marker matcher. headers reads the OrderID for order and invoice texts.
func NewClassifier(headers LabelRule, markers []Marker) *Classifier {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	phrases := make([]string, len(markers))
	for i, m := range markers {
		phrases[i] = m.Phrase
	}
	return &Classifier{
		headers: headers,
		markers: markers,
		matcher: ahocorasick.NewStringMatcher(phrases),
	}
}

// Classify tests text for every category marker.
func (c *Classifier) Classify(text string) Classification {
	var out Classification
	if text == "" {
		return out
	}

	c.mu.Lock()
	hits := c.matcher.Match([]byte(text))
	c.mu.Unlock()

	seen := make(map[constants.Category]bool, len(constants.AllCategories))
	for _, idx := range hits {
		if idx >= 0 && idx < len(c.markers) {
			seen[c.markers[idx].Category] = true
		}
	}
	if len(seen) == 0 {
		return out
	}

	needsHeader := seen[constants.Order] || seen[constants.Invoice]
	if needsHeader {
		if id, ok := c.headers.Find(text); ok {
			out.OrderID = id
		} else {
			out.MissingHeader = true
		}
	}

	for _, cat := range constants.AllCategories {
		if !seen[cat] {
			continue
		}
		out.Markers = append(out.Markers, cat)
		if (cat == constants.Order || cat == constants.Invoice) && out.OrderID == "" {
			continue
		}
		out.Categories = append(out.Categories, cat)
	}
	return out
}
