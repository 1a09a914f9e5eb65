package constants

// DocumentStatus is the canonical outcome stored on the documents table.
type DocumentStatus string

// Stable values (store these exact strings in DB).
const (
	DocumentStatusProcessed DocumentStatus = "PROCESSED" // rows extracted and saved
	DocumentStatusNoRows    DocumentStatus = "NO_ROWS"   // text extracted, nothing matched
	DocumentStatusFailed    DocumentStatus = "FAILED"    // text extraction or save failed
)
