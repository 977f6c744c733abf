package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
)

const defaultNotifyTimeout = 5 * time.Second

var (
	// ErrSessionClosed is returned for any edit or submit after a successful submission.
	ErrSessionClosed = errors.New("submission already completed")
	// ErrSubmissionInFlight is returned while a submit attempt is still running.
	ErrSubmissionInFlight = errors.New("submission in progress")
)

// State is the lifecycle position of an intake session.
type State string

const (
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// IntakeConfig provides dependencies for NewIntakeService.
type IntakeConfig struct {
	Relay         FileRelay
	Repository    SubmissionRepository
	Notifier      Notifier
	Policy        domain.FilePolicy
	Logger        *zap.Logger
	NotifyTimeout time.Duration
}

// IntakeService runs the relay, record, notify chain for end-user submissions.
type IntakeService struct {
	relay         FileRelay
	recorder      *Recorder
	notifier      Notifier
	policy        domain.FilePolicy
	logger        *zap.Logger
	notifyTimeout time.Duration

	inflight sync.WaitGroup
}

func NewIntakeService(cfg IntakeConfig) *IntakeService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	return &IntakeService{
		relay:         cfg.Relay,
		recorder:      NewRecorder(cfg.Repository),
		notifier:      cfg.Notifier,
		policy:        cfg.Policy,
		logger:        logger,
		notifyTimeout: timeout,
	}
}

// NewSession starts an empty intake form in the editing state.
func (s *IntakeService) NewSession() *Session {
	return &Session{svc: s, state: StateEditing}
}

// Submit runs a one-shot session, as the upload endpoint does for every request.
func (s *IntakeService) Submit(ctx context.Context, fields domain.ContactFields, upload *Upload) (*domain.Submission, error) {
	session := s.NewSession()
	if err := session.SetFields(fields); err != nil {
		return nil, err
	}
	if err := session.SetFile(upload); err != nil {
		return nil, err
	}
	return session.Submit(ctx)
}

// Wait blocks until every dispatched notification has finished.
func (s *IntakeService) Wait() {
	s.inflight.Wait()
}

func (s *IntakeService) notify(sub domain.Submission) {
	if s.notifier == nil {
		return
	}
	summary := domain.NewSummary(sub)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, summary); err != nil {
			s.logger.Warn("submission notification lost",
				zap.String("submissionId", summary.SubmissionID),
				zap.Error(&domain.NotificationError{Err: err}),
			)
		}
	}()
}

// Session is one end user's form. It is safe for concurrent use; a second
// Submit while one is running returns ErrSubmissionInFlight.
type Session struct {
	svc *IntakeService

	mu      sync.Mutex
	state   State
	fields  domain.ContactFields
	file    *Upload
	lastErr error
	result  *domain.Submission
}

// SetFields replaces the typed contact fields.
func (s *Session) SetFields(fields domain.ContactFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	s.fields = fields
	return nil
}

// SetFile replaces the file selection. A nil upload clears it.
func (s *Session) SetFile(upload *Upload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	s.file = upload
	return nil
}

func (s *Session) editableLocked() error {
	switch s.state {
	case StateSucceeded:
		return ErrSessionClosed
	case StateSubmitting:
		return ErrSubmissionInFlight
	case StateFailed:
		s.state = StateEditing
	}
	return nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Fields() domain.ContactFields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields
}

// File returns the current file selection or nil.
func (s *Session) File() *Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file
}

// Err returns the error of the last guard or submit failure.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Message is the user-facing text for the last failure.
func (s *Session) Message() string {
	return domain.UserMessage(s.Err())
}

// Result is the recorded submission once the session succeeded.
func (s *Session) Result() *domain.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Submit validates the form and, when the guard passes, relays the file,
// records the submission and dispatches the notification in the background.
func (s *Session) Submit(ctx context.Context) (*domain.Submission, error) {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if err := s.guardLocked(); err != nil {
		s.lastErr = err
		if domain.IsFileError(err) {
			s.file = nil
		}
		s.mu.Unlock()
		return nil, err
	}
	s.state = StateSubmitting
	s.lastErr = nil
	fields := s.fields.Normalize()
	upload := *s.file
	s.mu.Unlock()

	sub, err := s.svc.run(ctx, fields, &upload)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateFailed
		s.lastErr = err
		if domain.IsFileError(err) {
			s.file = nil
		}
		return nil, err
	}
	s.state = StateSucceeded
	s.result = sub
	return sub, nil
}

func (s *Session) guardLocked() error {
	if err := s.fields.Validate(); err != nil {
		return err
	}
	if s.file == nil || s.file.Body == nil || s.file.Size <= 0 {
		return domain.ErrMissingFile
	}
	return s.svc.policy.Check(s.file.ContentType)
}

func (s *IntakeService) run(ctx context.Context, fields domain.ContactFields, upload *Upload) (*domain.Submission, error) {
	// A retry after a failed attempt re-reads the same file from the start.
	if seeker, ok := upload.Body.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, &domain.RelayError{Err: err}
		}
	}

	ref, err := s.relay.Relay(ctx, upload)
	if err != nil {
		var relayErr *domain.RelayError
		if errors.As(err, &relayErr) {
			s.logger.Error("file relay failed",
				zap.String("fileName", upload.FileName),
				zap.String("contentType", upload.ContentType),
				zap.Error(err),
			)
		}
		return nil, err
	}

	sub, err := s.recorder.Record(ctx, fields, ref, upload.FileName)
	if err != nil {
		s.logger.Error("submission not recorded, relayed file is orphaned",
			zap.String("objectKey", ref.CanonicalName),
			zap.String("fileURL", ref.URL),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("submission recorded",
		zap.String("submissionId", sub.ID),
		zap.String("objectKey", sub.ObjectKey),
	)
	s.notify(*sub)
	return sub, nil
}
