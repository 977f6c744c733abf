package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status is the operator-facing review state of a submission.
type Status string

const (
	StatusNew        Status = "new"
	StatusReviewed   Status = "reviewed"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
)

var statuses = []Status{StatusNew, StatusReviewed, StatusProcessing, StatusCompleted}

// Statuses returns every status value in display order.
func Statuses() []Status {
	return append([]Status(nil), statuses...)
}

// ParseStatus accepts any of the known status values, case-insensitively.
// Transitions are unordered, so every known value is a legal target.
func ParseStatus(raw string) (Status, error) {
	value := Status(strings.ToLower(strings.TrimSpace(raw)))
	for _, s := range statuses {
		if s == value {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

func (s Status) String() string {
	return string(s)
}

// Submission is one end user's contact details plus the reference to the uploaded design file.
// ID and CreatedAt are assigned by the store and never change afterwards.
type Submission struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Notes     string
	FileName  string
	FileURL   string
	ObjectKey string
	Status    Status
	CreatedAt time.Time
}

// FileRef is what the file relay hands back once the object store accepted an upload.
type FileRef struct {
	URL           string
	CanonicalName string
}

// ContactFields holds the user-typed part of the intake form.
type ContactFields struct {
	Name  string
	Email string
	Phone string
	Notes string
}

// Normalize trims surrounding whitespace from every field.
func (f ContactFields) Normalize() ContactFields {
	return ContactFields{
		Name:  strings.TrimSpace(f.Name),
		Email: strings.TrimSpace(f.Email),
		Phone: strings.TrimSpace(f.Phone),
		Notes: strings.TrimSpace(f.Notes),
	}
}

// Validate reports the first missing or malformed required field.
func (f ContactFields) Validate() error {
	f = f.Normalize()
	if f.Name == "" {
		return &ValidationError{Field: "name", Message: "Name is required"}
	}
	if f.Email == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	if !strings.Contains(f.Email, "@") {
		return &ValidationError{Field: "email", Message: "Email address is not valid"}
	}
	if f.Phone == "" {
		return &ValidationError{Field: "phone", Message: "Phone is required"}
	}
	return nil
}

// Summary is the notification payload rendered for the chat alert.
type Summary struct {
	SubmissionID string
	Name         string
	Email        string
	Phone        string
	Notes        string
	FileName     string
	FileURL      string
	SubmittedAt  time.Time
}

// NewSummary builds the notification payload from a persisted submission.
func NewSummary(sub Submission) Summary {
	return Summary{
		SubmissionID: sub.ID,
		Name:         sub.Name,
		Email:        sub.Email,
		Phone:        sub.Phone,
		Notes:        sub.Notes,
		FileName:     sub.FileName,
		FileURL:      sub.FileURL,
		SubmittedAt:  sub.CreatedAt,
	}
}
