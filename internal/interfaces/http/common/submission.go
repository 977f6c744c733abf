package common

import (
	"time"

	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
)

// SubmissionResponse is the wire shape of a recorded submission.
type SubmissionResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Notes     string    `json:"notes"`
	FileName  string    `json:"file_name"`
	FileURL   string    `json:"file_url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func NewSubmissionResponse(sub domain.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:        sub.ID,
		Name:      sub.Name,
		Email:     sub.Email,
		Phone:     sub.Phone,
		Notes:     sub.Notes,
		FileName:  sub.FileName,
		FileURL:   sub.FileURL,
		Status:    sub.Status.String(),
		CreatedAt: sub.CreatedAt.UTC(),
	}
}
