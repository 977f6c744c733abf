package public

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sngm3741/pcb-intake-services/api/internal/auth"
	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
	"github.com/sngm3741/pcb-intake-services/api/internal/interfaces/http/common"
	publicapp "github.com/sngm3741/pcb-intake-services/api/internal/public/application"
)

// Intake runs one end-user submission.
type Intake interface {
	Submit(ctx context.Context, fields domain.ContactFields, upload *publicapp.Upload) (*domain.Submission, error)
}

// Authenticator exchanges the operator secret for a session credential.
type Authenticator interface {
	Authenticate(secret string) (auth.Credential, error)
}

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger         *zap.Logger
	intake         Intake
	authenticator  Authenticator
	maxUploadBytes int64
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger         *zap.Logger
	Intake         Intake
	Authenticator  Authenticator
	MaxUploadBytes int64
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = common.DefaultMaxUploadBytes
	}
	return &Handler{
		logger:         logger,
		intake:         cfg.Intake,
		authenticator:  cfg.Authenticator,
		maxUploadBytes: maxUpload,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Post("/upload", h.uploadHandler())
	r.Post("/admin/login", h.loginHandler())
	r.With(authMiddleware).Get("/auth/verify", h.authVerifyHandler())
}
