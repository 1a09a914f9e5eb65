package async

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job is one document waiting to be processed. Exactly one of Path or Data is set.
type Job struct {
	ID          uuid.UUID
	Filename    string
	Path        string // file on disk, e.g. from the inbox
	Data        []byte // uploaded content
	SubmittedAt time.Time
	RequestID   string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
