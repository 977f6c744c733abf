package application

import (
	"context"
	"io"

	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
)

// ObjectStore persists uploaded bytes and returns a publicly retrievable URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

// SubmissionRepository writes new submissions. The store assigns ID, CreatedAt and the initial status.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *domain.Submission) error
}

// Notifier delivers a best-effort alert about a recorded submission.
type Notifier interface {
	Notify(ctx context.Context, summary domain.Summary) error
}

// FileRelay moves a validated upload into durable storage.
type FileRelay interface {
	Relay(ctx context.Context, upload *Upload) (domain.FileRef, error)
}

// Upload is the file chosen by the end user.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}
