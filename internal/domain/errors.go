package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFile means the caller did not attach a file at all.
	ErrMissingFile = errors.New("no file uploaded")
	// ErrInvalidCredential is a wrong operator secret.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrServerMisconfigured means the reference hash or signing secret is not provisioned.
	ErrServerMisconfigured = errors.New("server misconfiguration")
	// ErrNotFound is returned when no submission has the requested identifier.
	ErrNotFound = errors.New("submission not found")
	// ErrInvalidStatus is returned for status values outside the enumeration.
	ErrInvalidStatus = errors.New("invalid status")
)

const genericFailureMessage = "We could not process your submission. Please try again."

// ValidationError is a missing or invalid user-supplied field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s is invalid", e.Field)
	}
	return e.Message
}

// UnsupportedFileTypeError names a content type outside the file policy.
type UnsupportedFileTypeError struct {
	ContentType string
}

func (e *UnsupportedFileTypeError) Error() string {
	ct := e.ContentType
	if ct == "" {
		ct = "(none)"
	}
	return fmt.Sprintf("unsupported file type: %s", ct)
}

// RelayError wraps an object store failure. The wrapped error is for logs only.
type RelayError struct {
	Err error
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("file relay failed: %v", e.Err)
}

func (e *RelayError) Unwrap() error {
	return e.Err
}

// RecordError wraps a submission store failure.
type RecordError struct {
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record submission failed: %v", e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// NotificationError wraps a chat alert failure. It is logged and never surfaced.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification failed: %v", e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

// IsFileError reports whether err is about the chosen file rather than the typed fields.
func IsFileError(err error) bool {
	var unsupported *UnsupportedFileTypeError
	return errors.Is(err, ErrMissingFile) || errors.As(err, &unsupported)
}

// UserMessage renders one human-readable message per failure category.
// Provider details carried by relay and record errors never reach the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var validation *ValidationError
	var unsupported *UnsupportedFileTypeError
	switch {
	case errors.As(err, &validation):
		return validation.Error()
	case errors.Is(err, ErrMissingFile):
		return "No file uploaded"
	case errors.As(err, &unsupported):
		if unsupported.ContentType == "" {
			return "Invalid file type"
		}
		return "Invalid file type: " + unsupported.ContentType
	case errors.Is(err, ErrInvalidCredential):
		return "Invalid password"
	case errors.Is(err, ErrServerMisconfigured):
		return "Server misconfiguration"
	case errors.Is(err, ErrNotFound):
		return "Submission not found"
	case errors.Is(err, ErrInvalidStatus):
		return "Status must be one of new, reviewed, processing, completed"
	default:
		return genericFailureMessage
	}
}
