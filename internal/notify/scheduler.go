// Package notify turns reminders, medication alarms and smart notifications
// into queued jobs with a delivery time.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tonyarciria-byte/psycomed/internal/models"
	"github.com/tonyarciria-byte/psycomed/internal/queue"
	"github.com/tonyarciria-byte/psycomed/internal/recommend"
)

// Metadata keys carried on scheduled jobs
const (
	MetaNotificationType = "notification_type"
	MetaMedicationID     = "medication_id"
	MetaDays             = "days"
)

// ErrAlarmDisabled is returned when scheduling a medication without an active alarm
var ErrAlarmDisabled = errors.New("medication alarm disabled")

// Scheduler enqueues notification jobs
type Scheduler struct {
	queue  queue.JobQueue
	logger *zap.Logger
	now    func() time.Time
}

// NewScheduler creates a scheduler publishing to q
func NewScheduler(q queue.JobQueue, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{queue: q, logger: logger, now: time.Now}
}

// WithClock replaces the clock used to compute delivery times
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Schedule enqueues a one-off reminder delivered at or after at
func (s *Scheduler) Schedule(ctx context.Context, at time.Time, title, body string) (*queue.Job, error) {
	job := s.newJob(queue.JobTypeReminder, title, body, at)
	if err := s.enqueue(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// ScheduleDaily enqueues a reminder for the next hhmm that is rescheduled every day after delivery
func (s *Scheduler) ScheduleDaily(ctx context.Context, hhmm, title, body string) (*queue.Job, error) {
	at, err := NextOccurrence(hhmm, s.now())
	if err != nil {
		return nil, err
	}
	job := s.newJob(queue.JobTypeReminder, title, body, at)
	job.Recurrence = hhmm
	if err := s.enqueue(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// ScheduleMedicationAlarm enqueues the next alarm for med on its alarm days
func (s *Scheduler) ScheduleMedicationAlarm(ctx context.Context, med models.Medication) (*queue.Job, error) {
	if !med.AlarmEnabled || med.AlarmTime == "" {
		return nil, ErrAlarmDisabled
	}
	at, err := NextWeeklyOccurrence(med.AlarmTime, med.AlarmDays, s.now())
	if err != nil {
		return nil, err
	}

	body := med.Dosage
	if med.Notes != "" {
		body += " · " + med.Notes
	}
	job := s.newJob(queue.JobTypeMedicationAlarm, med.Name, body, at)
	job.Recurrence = med.AlarmTime
	job.Metadata[MetaMedicationID] = med.ID.String()
	if len(med.AlarmDays) > 0 {
		job.Metadata[MetaDays] = FormatDays(med.AlarmDays)
	}
	if err := s.enqueue(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// ScheduleNotifications enqueues smart notifications. Clock times map to their
// next occurrence, "now" is immediate and "evening" is the next EveningHour.
func (s *Scheduler) ScheduleNotifications(ctx context.Context, notifications []recommend.Notification) ([]*queue.Job, error) {
	now := s.now()
	jobs := make([]*queue.Job, 0, len(notifications))
	var errs []error

	for _, n := range notifications {
		at, err := deliveryTime(n.Time, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("notification %s: %w", n.Type, err))
			continue
		}
		job := s.newJob(queue.JobTypeReminder, n.Title, n.Message, at)
		job.Metadata[MetaNotificationType] = n.Type
		if err := s.enqueue(ctx, job); err != nil {
			errs = append(errs, err)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, errors.Join(errs...)
}

// Reschedule enqueues the next delivery of a recurring job. Non-recurring jobs return nil.
func (s *Scheduler) Reschedule(ctx context.Context, job *queue.Job) (*queue.Job, error) {
	if job.Recurrence == "" {
		return nil, nil
	}
	now := s.now()
	days, err := ParseDays(job.Metadata[MetaDays])
	if err != nil {
		return nil, err
	}
	at, err := NextWeeklyOccurrence(job.Recurrence, days, now)
	if err != nil {
		return nil, err
	}
	next := job.Next(at, now)
	if err := s.enqueue(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *Scheduler) newJob(jobType queue.JobType, title, body string, at time.Time) *queue.Job {
	job := queue.NewJob(jobType, title, body)
	job.CreatedAt = s.now()
	if at.After(job.CreatedAt) {
		job.NotBefore = &at
	}
	return job
}

func (s *Scheduler) enqueue(ctx context.Context, job *queue.Job) error {
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", job.Type, err)
	}
	fields := []zap.Field{
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
	}
	if job.NotBefore != nil {
		fields = append(fields, zap.Time("not_before", *job.NotBefore))
	}
	s.logger.Info("notification_scheduled", fields...)
	return nil
}

func deliveryTime(hint string, now time.Time) (time.Time, error) {
	switch hint {
	case "", recommend.TimeNow:
		return now, nil
	case recommend.TimeEvening:
		return NextOccurrence(fmt.Sprintf("%02d:00", EveningHour), now)
	default:
		return NextOccurrence(hint, now)
	}
}

// FormatDays encodes weekdays as a comma separated list
func FormatDays(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// ParseDays decodes a FormatDays list. An empty string means every day.
func ParseDays(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || d < 0 || d > 6 {
			return nil, fmt.Errorf("invalid weekday %q", p)
		}
		days = append(days, d)
	}
	return days, nil
}
