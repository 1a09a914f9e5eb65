package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/business-dashboard/constants"
)

// Document is one ingested source file as recorded on the documents table.
type Document struct {
	ID           uuid.UUID                `json:"id"`
	Filename     string                   `json:"filename"`
	SourcePath   string                   `json:"source_path"`
	ContentHash  string                   `json:"content_hash"`
	Format       string                   `json:"format"`
	Pages        int                      `json:"pages"`
	Status       constants.DocumentStatus `json:"status"`
	ErrorMessage string                   `json:"error_message,omitempty"`
	RowCount     int                      `json:"row_count"`
	IngestedAt   time.Time                `json:"ingested_at"`
}
