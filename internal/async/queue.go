package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/docparse/constants"
)

// Job asks for one document to be processed.
type Job struct {
	Path        string
	Class       constants.DocClass // ClassAuto follows the detected template
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
