package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskIdempotencyCleanup purges processed payment keys past retention.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// IdempotencyCleanupPayload carries the retention window. Zero falls back to the
// job's configured retention.
type IdempotencyCleanupPayload struct {
	Retention time.Duration `json:"retention,omitempty"`
}

// NewIdempotencyCleanupTask constructs an Asynq task.
func NewIdempotencyCleanupTask(retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(IdempotencyCleanupPayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data, asynq.Queue(QueueDefault)), nil
}
