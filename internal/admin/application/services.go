package application

import (
	"context"

	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
)

// SubmissionRepository exposes the operator-side view of recorded submissions.
type SubmissionRepository interface {
	List(ctx context.Context) ([]domain.Submission, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Submission, error)
}

// ReviewService describes admin review use-cases.
type ReviewService interface {
	List(ctx context.Context) ([]domain.Submission, error)
	UpdateStatus(ctx context.Context, id, rawStatus string) (*domain.Submission, error)
}
