package application

import (
	"context"

	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
)

// Recorder persists a submission and reports any store failure as a RecordError.
type Recorder struct {
	repo SubmissionRepository
}

func NewRecorder(repo SubmissionRepository) *Recorder {
	return &Recorder{repo: repo}
}

// Record writes fields and file reference as a new submission with status new.
func (r *Recorder) Record(ctx context.Context, fields domain.ContactFields, file domain.FileRef, fileName string) (*domain.Submission, error) {
	fields = fields.Normalize()
	sub := &domain.Submission{
		Name:      fields.Name,
		Email:     fields.Email,
		Phone:     fields.Phone,
		Notes:     fields.Notes,
		FileName:  fileName,
		FileURL:   file.URL,
		ObjectKey: file.CanonicalName,
		Status:    domain.StatusNew,
	}
	if err := r.repo.Create(ctx, sub); err != nil {
		return nil, &domain.RecordError{Err: err}
	}
	return sub, nil
}
