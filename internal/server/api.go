package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/joseph-ayodele/business-dashboard/constants"
	"github.com/joseph-ayodele/business-dashboard/internal/aggregate"
	"github.com/joseph-ayodele/business-dashboard/internal/common"
	"github.com/joseph-ayodele/business-dashboard/internal/core"
	"github.com/joseph-ayodele/business-dashboard/internal/core/extract"
	"github.com/joseph-ayodele/business-dashboard/internal/entity"
)

type documentResult struct {
	Filename      string               `json:"filename"`
	Categories    []constants.Category `json:"categories"`
	OrderID       string               `json:"order_id,omitempty"`
	MissingHeader bool                 `json:"missing_header,omitempty"`
	Rows          int                  `json:"rows"`
	DocumentID    string               `json:"document_id,omitempty"`
	Status        string               `json:"status,omitempty"`
	Error         string               `json:"error,omitempty"`
}

// extractResponse holds the four collections at the top level plus a per-document summary.
type extractResponse struct {
	entity.Collections
	Documents []documentResult `json:"documents"`
}

type overviewResponse struct {
	Currency string             `json:"currency"`
	Overview aggregate.Overview `json:"overview"`
	Display  map[string]string  `json:"display"`
}

// apiExtract runs submitted texts through the engine. With ?save=true the rows are also
// persisted and each text is recorded as a document. A document that fails to save is
// reported in its result; the request fails only when every document failed.
func (s *Server) apiExtract(c echo.Context) error {
	save := false
	if raw := c.QueryParam("save"); raw != "" {
		var err error
		if save, err = strconv.ParseBool(raw); err != nil {
			return common.NewAppError(common.CodeInvalidInput, "save must be a boolean", common.ErrInvalidInput)
		}
	}
	if save && s.deps.Processor == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "saving is not configured")
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	docs, err := decodeDocuments(s.schema, body)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	resp := extractResponse{Collections: entity.NewCollections(), Documents: make([]documentResult, 0, len(docs))}
	var (
		failed   int
		firstErr error
	)
	for _, doc := range docs {
		var (
			rows entity.Collections
			cls  extract.Classification
		)
		result := documentResult{Filename: doc.Filename}
		if save {
			out, err := s.deps.Processor.ProcessText(ctx, doc, core.Source{Format: constants.TEXT})
			rows, cls = out.Rows, out.Classification
			result.Status = string(out.Status)
			if out.DocumentID != uuid.Nil {
				result.DocumentID = out.DocumentID.String()
			}
			if err != nil {
				failed++
				if firstErr == nil {
					firstErr = err
				}
				result.Error = publicError(err)
			}
		} else {
			rows, cls = s.deps.Engine.Analyze(doc)
		}

		resp.Collections.Append(rows)
		result.Categories = cls.Categories
		result.OrderID = cls.OrderID
		result.MissingHeader = cls.MissingHeader
		result.Rows = rows.Len()
		resp.Documents = append(resp.Documents, result)
	}
	if failed == len(docs) && firstErr != nil {
		return firstErr
	}
	return c.JSON(http.StatusOK, resp)
}

// publicError is the message a client sees for a failed document. Server-side causes stay in the log.
func publicError(err error) string {
	var appErr *common.AppError
	if common.HTTPStatus(err) < http.StatusInternalServerError && errors.As(err, &appErr) {
		return appErr.Message
	}
	return "document could not be saved"
}

func (s *Server) apiOverview(c echo.Context) error {
	rows, err := s.deps.Records.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	o := aggregate.Summarize(rows)
	return c.JSON(http.StatusOK, overviewResponse{
		Currency: s.money.Code(),
		Overview: o,
		Display: map[string]string{
			"inventory_value": s.money.Format(o.InventoryValue),
			"purchase_spend":  s.money.Format(o.PurchaseSpend),
			"order_revenue":   s.money.Format(o.OrderRevenue),
			"invoice_total":   s.money.Format(o.InvoiceTotal),
		},
	})
}

func (s *Server) healthz(c echo.Context) error {
	if s.deps.Ping != nil {
		if err := s.deps.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
