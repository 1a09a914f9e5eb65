package textextract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// countPages validates the file structure and returns its page count.
func countPages(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu: %w", err)
	}
	return n, nil
}

// readNative concatenates the plain text of every page in page order.
// The parser panics on some malformed streams, which is reported as an error.
func readNative(path string, maxPages int) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	total := r.NumPage()
	if maxPages > 0 && total > maxPages {
		total = maxPages
	}

	var b strings.Builder
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", 0, fmt.Errorf("page %d: %w", i, err)
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(content)
	}
	return b.String(), r.NumPage(), nil
}
