package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sanctified-studios/studio/internal/observability"
)

// KeyCleaner deletes idempotency keys older than a retention window.
type KeyCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// IdempotencyCleanupJob keeps the idempotency table bounded. Keys only need to
// outlive any realistic client retry.
type IdempotencyCleanupJob struct {
	Store     KeyCleaner
	Retention time.Duration
	Logger    *slog.Logger
	Metrics   *observability.Metrics
}

// NewIdempotencyCleanupJob initialises the cleanup handler.
func NewIdempotencyCleanupJob(store KeyCleaner, retention time.Duration, logger *slog.Logger, metrics *observability.Metrics) *IdempotencyCleanupJob {
	return &IdempotencyCleanupJob{Store: store, Retention: retention, Logger: logger, Metrics: metrics}
}

// Handle executes one cleanup pass.
func (j *IdempotencyCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("idempotency cleanup: handler not configured")
	}
	var payload IdempotencyCleanupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			j.Metrics.JobProcessed(TaskIdempotencyCleanup, "skipped")
			return asynq.SkipRetry
		}
	}
	retention := payload.Retention
	if retention <= 0 {
		retention = j.Retention
	}
	if retention <= 0 {
		j.Metrics.JobProcessed(TaskIdempotencyCleanup, "skipped")
		return errors.Join(errors.New("idempotency cleanup: retention must be positive"), asynq.SkipRetry)
	}

	start := time.Now()
	logger := j.logger().With(slog.Duration("retention", retention))
	removed, err := j.Store.Cleanup(ctx, retention)
	if err != nil {
		j.Metrics.JobProcessed(TaskIdempotencyCleanup, "failure")
		logger.Error("cleanup failed", slog.Any("error", err))
		return err
	}
	j.Metrics.JobProcessed(TaskIdempotencyCleanup, "success")
	logger.Info("completed idempotency cleanup",
		slog.Int64("removed", removed),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *IdempotencyCleanupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskIdempotencyCleanup))
	}
	return slog.Default().With(slog.String("job", TaskIdempotencyCleanup))
}
