package extract

import (
	"log/slog"

	"github.com/joseph-ayodele/business-dashboard/constants"
	"github.com/joseph-ayodele/business-dashboard/internal/entity"
)

// Document is one (filename, raw text) input.
type Document struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

// Extractor runs the classifier and record builder over documents.
// It holds no state between calls.
type Extractor struct {
	lib        *Library
	classifier *Classifier
	logger     *slog.Logger
}

// NewExtractor creates an extractor. A nil lib uses DefaultLibrary.
func NewExtractor(lib *Library, logger *slog.Logger) *Extractor {
	if lib == nil {
		lib = DefaultLibrary()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		lib:        lib,
		classifier: NewClassifier(lib.OrderHeader, nil),
		logger:     logger,
	}
}

// Classify reports which categories apply to text.
func (e *Extractor) Classify(text string) Classification {
	return e.classifier.Classify(text)
}

// Extract returns the rows of a single document.
func (e *Extractor) Extract(doc Document) entity.Collections {
	rows, _ := e.Analyze(doc)
	return rows
}

// ExtractBatch processes docs in the given order and accumulates their rows.
func (e *Extractor) ExtractBatch(docs []Document) entity.Collections {
	out := entity.NewCollections()
	for _, doc := range docs {
		out.Append(e.Extract(doc))
	}
	return out
}

// Analyze returns the rows of doc together with its classification.
func (e *Extractor) Analyze(doc Document) (entity.Collections, Classification) {
	out := entity.NewCollections()
	cls := e.classifier.Classify(doc.Text)

	if cls.MissingHeader {
		e.logger.Warn("order header not found", "filename", doc.Filename, "markers", cls.Markers)
	}

	for _, cat := range cls.Categories {
		switch cat {
		case constants.StockReport:
			out.StockReports = BuildStockRows(doc.Filename, e.lib.Stock.Match(doc.Text))
		case constants.PurchaseOrder:
			out.PurchaseOrders = BuildPurchaseOrderRows(doc.Filename, e.lib.PurchaseOrder.Match(doc.Text))
		case constants.Order:
			out.Orders = BuildOrderRows(doc.Filename, cls.OrderID, e.lib.Order.Match(doc.Text))
		case constants.Invoice:
			total, _ := e.lib.InvoiceTotal.Find(doc.Text)
			out.Invoices = BuildInvoiceRows(doc.Filename, cls.OrderID, total, e.lib.InvoiceItems.Match(doc.Text))
		}
	}

	e.logger.Debug("document extracted",
		"filename", doc.Filename,
		"categories", cls.Categories,
		"rows", out.Len(),
	)
	return out, cls
}
