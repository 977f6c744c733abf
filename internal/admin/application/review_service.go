package application

import (
	"context"
	"strings"

	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
)

type reviewService struct {
	repo SubmissionRepository
}

// NewReviewService creates a new review service.
func NewReviewService(repo SubmissionRepository) ReviewService {
	return &reviewService{repo: repo}
}

func (s *reviewService) List(ctx context.Context) ([]domain.Submission, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []domain.Submission{}
	}
	return subs, nil
}

// UpdateStatus overwrites the status only. Any known status is a legal target.
func (s *reviewService) UpdateStatus(ctx context.Context, id, rawStatus string) (*domain.Submission, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrNotFound
	}
	status, err := domain.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
