package constants

import "strings"

// Formats recorded on the documents table.
const (
	PDF  = "PDF"
	TEXT = "TEXT"
)

// AllowedExtensions holds the file extensions accepted for ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// IsAllowedExt reports whether ext (with or without the dot) can be ingested.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// MapExtToFormat returns PDF or TEXT for a supported extension, "" otherwise.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt":
		return TEXT
	default:
		return ""
	}
}
