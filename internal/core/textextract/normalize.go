package textextract

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reFormFeed   = regexp.MustCompile(`\f+`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

// Normalize unifies line endings and page breaks and trims line ends. Spacing inside a
// line is kept as the PDF reader produced it, so names like "Widget  A" are stored unchanged.
// Digits and punctuation are never rewritten: the extraction rules depend on them.
func Normalize(s string) string {
	return normalize(s, false)
}

// NormalizeLayout also collapses the column padding pdftotext -layout inserts.
func NormalizeLayout(s string) string {
	return normalize(s, true)
}

func normalize(s string, collapseSpaces bool) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reFormFeed.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	if collapseSpaces {
		s = reMultiSpace.ReplaceAllString(s, " ")
	}
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
