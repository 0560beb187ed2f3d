package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tonyarciria-byte/psycomed/internal/notify"
	"github.com/tonyarciria-byte/psycomed/internal/queue"
)

// DefaultRetryDelay is the delay before the first delivery retry. It doubles on each retry.
const DefaultRetryDelay = 30 * time.Second

// ReminderWorker delivers reminder and medication alarm jobs
type ReminderWorker struct {
	notifier   notify.Notifier
	scheduler  *notify.Scheduler
	jobQueue   queue.JobQueue // For re-enqueueing failed deliveries with a delay
	logger     *zap.Logger
	retryDelay time.Duration
	now        func() time.Time
}

// NewReminderWorker creates a new reminder worker
func NewReminderWorker(notifier notify.Notifier, jobQueue queue.JobQueue, logger *zap.Logger) *ReminderWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderWorker{
		notifier:   notifier,
		scheduler:  notify.NewScheduler(jobQueue, logger),
		jobQueue:   jobQueue,
		logger:     logger,
		retryDelay: DefaultRetryDelay,
		now:        time.Now,
	}
}

// Run consumes jobs until ctx is cancelled or the queue stops delivering
func (w *ReminderWorker) Run(ctx context.Context, prefetch int) error {
	msgs, errs, err := w.jobQueue.Consume(ctx, prefetch)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errs:
			if ok && err != nil {
				return fmt.Errorf("consumer stopped: %w", err)
			}
			errs = nil
		case msg, ok := <-msgs:
			if !ok {
				if errs != nil {
					if err := <-errs; err != nil {
						return fmt.Errorf("consumer stopped: %w", err)
					}
				}
				return nil
			}
			if err := w.ProcessJob(ctx, msg); err != nil {
				w.logger.Warn("job_processing_failed",
					zap.String("job_id", msg.GetJob().ID.String()),
					zap.Error(err),
				)
			}
		}
	}
}

// ProcessJob processes a job from the queue
func (w *ReminderWorker) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()
	if job == nil {
		if err := msg.Nack(false); err != nil {
			w.logger.Warn("job_nack_failed", zap.Error(err))
		}
		return errors.New("message has no job")
	}

	now := w.now()
	if job.IsExpired(now) {
		w.logger.Info("job_expired",
			zap.String("job_id", job.ID.String()),
			zap.Time("not_after", *job.NotAfter),
		)
		if err := msg.Ack(); err != nil {
			return fmt.Errorf("failed to ack expired job: %w", err)
		}
		return nil
	}

	// Brokers without the delayed exchange deliver early
	if delay := job.Delay(now); delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			_ = msg.Nack(true)
			return ctx.Err()
		case <-timer.C:
		}
	}

	switch job.Type {
	case queue.JobTypeReminder, queue.JobTypeMedicationAlarm:
		if err := w.notifier.Deliver(ctx, job); err != nil {
			return w.handleJobError(ctx, msg, job, err)
		}
		if err := msg.Ack(); err != nil {
			return fmt.Errorf("failed to ack job: %w", err)
		}
		return w.reschedule(ctx, job)

	default:
		if err := msg.Nack(false); err != nil { // Unknown job type, send to DLQ
			w.logger.Warn("job_nack_failed", zap.Error(err))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError retries a failed delivery with exponential delay, then dead-letters it
func (w *ReminderWorker) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, cause error) error {
	if !job.CanRetry() {
		w.logger.Warn("job_dead_lettered",
			zap.String("job_id", job.ID.String()),
			zap.Int("retry_count", job.RetryCount),
			zap.Error(cause),
		)
		if err := msg.Nack(false); err != nil {
			w.logger.Warn("job_nack_failed", zap.Error(err))
		}
		// A dead-lettered occurrence must not end the daily series
		return errors.Join(
			fmt.Errorf("delivery failed after %d retries: %w", job.RetryCount, cause),
			w.reschedule(ctx, job),
		)
	}

	delay := w.retryDelay << job.RetryCount
	notBefore := w.now().Add(delay)
	retry := *job
	retry.NotBefore = &notBefore
	retry.RetryCount = job.RetryCount + 1

	if err := msg.Ack(); err != nil {
		w.logger.Warn("job_ack_failed", zap.Error(err))
	}
	if err := w.jobQueue.Enqueue(ctx, &retry); err != nil {
		return fmt.Errorf("delivery failed, failed to re-enqueue: %w", errors.Join(cause, err))
	}

	w.logger.Info("job_retry_scheduled",
		zap.String("job_id", job.ID.String()),
		zap.Int("retry_count", retry.RetryCount),
		zap.Duration("delay", delay),
	)
	return nil
}

func (w *ReminderWorker) reschedule(ctx context.Context, job *queue.Job) error {
	next, err := w.scheduler.Reschedule(ctx, job)
	if err != nil {
		return fmt.Errorf("failed to reschedule %s: %w", job.Recurrence, err)
	}
	if next != nil {
		w.logger.Debug("job_rescheduled",
			zap.String("job_id", job.ID.String()),
			zap.String("next_job_id", next.ID.String()),
			zap.Time("not_before", *next.NotBefore),
		)
	}
	return nil
}
