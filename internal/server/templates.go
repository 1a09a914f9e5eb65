package server

import (
	"embed"
	"html/template"
	"io"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/business-dashboard/constants"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates renders html/template pages for echo.
type Templates struct {
	templates *template.Template
}

func (t *Templates) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

// newTemplates parses the embedded pages, or *.html under dir when set.
func newTemplates(dir string, funcs template.FuncMap) (*Templates, error) {
	t := template.New("pages").Funcs(funcs)
	var err error
	if dir != "" {
		t, err = t.ParseGlob(filepath.Join(dir, "*.html"))
	} else {
		t, err = t.ParseFS(templateFS, "templates/*.html")
	}
	if err != nil {
		return nil, err
	}
	return &Templates{templates: t}, nil
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money":  func(d decimal.Decimal) string { return s.money.Format(d) },
		"tables": constants.Tables,
		"when":   formatWhen,
	}
}

func formatWhen(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
