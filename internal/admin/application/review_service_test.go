package application

import (
	"context"
	"errors"
	"testing"

	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
)

type memoryRepository struct {
	subs    []domain.Submission
	updates int
}

func (m *memoryRepository) List(context.Context) ([]domain.Submission, error) {
	return m.subs, nil
}

func (m *memoryRepository) UpdateStatus(_ context.Context, id string, status domain.Status) (*domain.Submission, error) {
	m.updates++
	for i := range m.subs {
		if m.subs[i].ID == id {
			m.subs[i].Status = status
			updated := m.subs[i]
			return &updated, nil
		}
	}
	return nil, domain.ErrNotFound
}

func TestReviewServiceListNeverNil(t *testing.T) {
	svc := NewReviewService(&memoryRepository{})
	subs, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if subs == nil {
		t.Fatalf("empty list should be a non-nil slice")
	}
}

func TestReviewServiceUpdateStatus(t *testing.T) {
	repo := &memoryRepository{subs: []domain.Submission{{ID: "a", Name: "Ada", Status: domain.StatusNew}}}
	svc := NewReviewService(repo)

	updated, err := svc.UpdateStatus(context.Background(), "a", " Completed ")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != domain.StatusCompleted || updated.Name != "Ada" {
		t.Fatalf("unexpected submission %+v", updated)
	}

	// Backwards transitions are allowed.
	if _, err := svc.UpdateStatus(context.Background(), "a", "new"); err != nil {
		t.Fatalf("UpdateStatus back to new: %v", err)
	}

	if _, err := svc.UpdateStatus(context.Background(), "a", "archived"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), "missing", "reviewed"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), "  ", "reviewed"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("blank id should be not found, got %v", err)
	}
	if repo.updates != 3 {
		t.Fatalf("invalid status must not reach the store, updates=%d", repo.updates)
	}
}
