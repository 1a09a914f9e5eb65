package ingest

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/business-dashboard/constants"
)

// AllowedExt checks if a file extension is in the allowed set.
func AllowedExt(ext string) bool {
	return constants.IsAllowedExt(ext)
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

// Paths returns the source paths of results that can be processed, in the order given.
func Paths(results []IngestionResult, skipDuplicates bool) []string {
	var out []string
	for _, r := range results {
		if r.Err != "" || (skipDuplicates && r.Deduplicated) {
			continue
		}
		out = append(out, r.SourcePath)
	}
	return out
}

// SortByPath orders results by source path so batch runs are reproducible.
func SortByPath(results []IngestionResult) {
	sort.SliceStable(results, func(i, j int) bool { return results[i].SourcePath < results[j].SourcePath })
}
