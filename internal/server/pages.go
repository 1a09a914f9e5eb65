package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/joseph-ayodele/business-dashboard/constants"
	"github.com/joseph-ayodele/business-dashboard/internal/aggregate"
	"github.com/joseph-ayodele/business-dashboard/internal/common"
	"github.com/joseph-ayodele/business-dashboard/internal/entity"
	"github.com/joseph-ayodele/business-dashboard/internal/repository"
)

const recentDocuments = 10

type overviewView struct {
	Title    string
	Currency string
	Overview aggregate.Overview
	Recent   []*entity.Document
}

type tableView struct {
	Title   string
	Table   string
	Query   string
	Headers []string
	Rows    [][]string
	Total   int
}

type documentsView struct {
	Title     string
	Documents []*entity.Document
}

type documentView struct {
	Title    string
	Document *entity.Document
}

func (s *Server) overviewPage(c echo.Context) error {
	ctx := c.Request().Context()
	rows, err := s.deps.Records.ListAll(ctx)
	if err != nil {
		return err
	}
	view := overviewView{
		Title:    "Overview",
		Currency: s.money.Code(),
		Overview: aggregate.Summarize(rows),
	}
	if view.Recent, err = s.deps.Documents.ListRecent(ctx, recentDocuments); err != nil {
		return err
	}
	return c.Render(http.StatusOK, "overview", view)
}

func (s *Server) tablePage(c echo.Context) error {
	cat, ok := constants.ParseTable(c.Param("name"))
	if !ok {
		return common.NewAppError(common.CodeNotFound, "table "+c.Param("name"), common.ErrNotFound)
	}
	table := cat.Table()
	rows, err := s.deps.Records.List(c.Request().Context(), table)
	if err != nil {
		return err
	}

	records := rows.Records(table)
	query := strings.TrimSpace(c.QueryParam("q"))
	return c.Render(http.StatusOK, "table", tableView{
		Title:   table,
		Table:   table,
		Query:   query,
		Headers: repository.Columns(table),
		Rows:    filterRecords(records, query),
		Total:   len(records),
	})
}

// filterRecords keeps records whose joined fields fuzzy-match query, ignoring case and accents.
func filterRecords(records [][]string, query string) [][]string {
	if query == "" {
		return records
	}
	out := make([][]string, 0, len(records))
	for _, r := range records {
		if fuzzy.MatchNormalizedFold(query, strings.Join(r, " ")) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) documentsPage(c echo.Context) error {
	docs, err := s.deps.Documents.ListRecent(c.Request().Context(), 200)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "documents", documentsView{Title: "Documents", Documents: docs})
}

func (s *Server) documentPage(c echo.Context) error {
	raw := c.Param("id")
	if err := common.ValidateAndReturnError(common.NewValidator().Field("id", raw, common.UUID)); err != nil {
		return err
	}
	id := uuid.MustParse(raw)
	doc, err := s.deps.Documents.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "document", documentView{Title: doc.Filename, Document: doc})
}
