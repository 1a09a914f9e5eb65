package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/joseph-ayodele/business-dashboard/internal/common"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) exportXLSX(c echo.Context) error {
	data, err := s.deps.Exports.WorkbookXLSX(c.Request().Context())
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="business-dashboard.xlsx"`)
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

// exportCSV serves /export/<Table>.csv.
func (s *Server) exportCSV(c echo.Context) error {
	file := c.Param("file")
	table, ok := strings.CutSuffix(file, ".csv")
	if !ok {
		return common.NewAppError(common.CodeNotFound, file, common.ErrNotFound)
	}
	data, err := s.deps.Exports.TableCSV(c.Request().Context(), table)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, file))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}
