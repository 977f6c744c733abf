package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sngm3741/pcb-intake-services/api/internal/config"
	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
	mongostore "github.com/sngm3741/pcb-intake-services/api/internal/infrastructure/mongo"
	"github.com/sngm3741/pcb-intake-services/api/internal/infrastructure/sqlstore"
)

// Repository is the full submission store used by both intake and review.
type Repository interface {
	Create(ctx context.Context, sub *domain.Submission) error
	List(ctx context.Context) ([]domain.Submission, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Submission, error)
	Ping(ctx context.Context) error
}

// Open connects the backend named by cfg.StoreDriver. The returned func releases it.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (Repository, func(context.Context) error, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.StoreDriver {
	case "", "mongo", "mongodb":
		client, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.Timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		logger.Info("submission store ready", zap.String("driver", "mongo"), zap.String("database", cfg.MongoDatabase))
		repo := mongostore.NewSubmissionRepository(client, cfg.MongoDatabase, cfg.SubmissionCollection)
		return repo, client.Disconnect, nil
	default:
		connectCtx, cancel := context.WithTimeout(ctx, timeoutOrDefault(cfg.Timeout))
		defer cancel()

		db, err := sqlstore.Open(connectCtx, cfg.StoreDriver, cfg.StoreDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := sqlstore.Migrate(connectCtx, db, cfg.StoreDriver); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("submission store ready", zap.String("driver", cfg.StoreDriver))
		closeFn := func(context.Context) error { return db.Close() }
		return sqlstore.NewRepository(db, cfg.StoreDriver), closeFn, nil
	}
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}
