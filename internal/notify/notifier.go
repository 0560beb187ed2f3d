package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/tonyarciria-byte/psycomed/internal/logger"
	"github.com/tonyarciria-byte/psycomed/internal/queue"
)

// Notifier delivers a due job to the user
type Notifier interface {
	Deliver(ctx context.Context, job *queue.Job) error
}

// LogNotifier delivers notifications as structured log events
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier writing to logger
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{logger: log}
}

// Deliver logs the notification
func (n *LogNotifier) Deliver(ctx context.Context, job *queue.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.logger.Info("notification_delivered",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.String("title", logger.SanitizeString(job.Title, 120)),
		zap.String("body", logger.SanitizeString(job.Body, 200)),
		zap.String("recurrence", job.Recurrence),
	)
	return nil
}

var _ Notifier = (*LogNotifier)(nil)
