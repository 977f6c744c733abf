package admin

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	adminapp "github.com/sngm3741/pcb-intake-services/api/internal/admin/application"
)

// Handler wires admin HTTP endpoints to application services.
type Handler struct {
	logger  *zap.Logger
	reviews adminapp.ReviewService
}

// Config provides dependencies for Handler.
type Config struct {
	Logger  *zap.Logger
	Reviews adminapp.ReviewService
}

// NewHandler constructs an admin HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{logger: logger, reviews: cfg.Reviews}
}

// Register mounts admin routes onto router. Callers apply the auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/submissions", h.submissionListHandler())
	r.Patch("/submissions/{id}/status", h.submissionStatusHandler())
}
