package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tonyarciria-byte/psycomed/internal/models"
	"github.com/tonyarciria-byte/psycomed/internal/queue"
	"github.com/tonyarciria-byte/psycomed/internal/recommend"
)

type recordingQueue struct {
	jobs []*queue.Job
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, job *queue.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) Consume(context.Context, int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (q *recordingQueue) Close() error                      { return nil }
func (q *recordingQueue) HealthCheck(context.Context) error { return nil }

var saturday = time.Date(2024, time.July, 20, 10, 30, 0, 0, time.UTC)

func newTestScheduler(q queue.JobQueue) *Scheduler {
	s := NewScheduler(q, nil)
	s.now = func() time.Time { return saturday }
	return s
}

func TestNextOccurrence(t *testing.T) {
	t.Parallel()
	tests := []struct {
		hhmm string
		want time.Time
	}{
		{"11:00", time.Date(2024, time.July, 20, 11, 0, 0, 0, time.UTC)},
		{"10:30", time.Date(2024, time.July, 21, 10, 30, 0, 0, time.UTC)},
		{"09:00", time.Date(2024, time.July, 21, 9, 0, 0, 0, time.UTC)},
		{"00:00", time.Date(2024, time.July, 21, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.hhmm, func(t *testing.T) {
			t.Parallel()
			got, err := NextOccurrence(tt.hhmm, saturday)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrence(%q) = %v, want %v", tt.hhmm, got, tt.want)
			}
		})
	}

	if _, err := NextOccurrence("25:00", saturday); err == nil {
		t.Error("invalid time should fail")
	}
}

func TestNextWeeklyOccurrence(t *testing.T) {
	t.Parallel()
	// Saturday 10:30; Monday and Wednesday alarms at 08:00
	got, err := NextWeeklyOccurrence("08:00", []int{1, 3}, saturday)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, time.July, 22, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	got, _ = NextWeeklyOccurrence("12:00", []int{6}, saturday)
	if !got.Equal(time.Date(2024, time.July, 20, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("same day alarm = %v", got)
	}

	if _, err := NextWeeklyOccurrence("08:00", []int{9}, saturday); err == nil {
		t.Error("out of range weekday should fail")
	}
}

func TestScheduler_Schedule(t *testing.T) {
	t.Parallel()
	q := &recordingQueue{}
	s := newTestScheduler(q)

	at := saturday.Add(2 * time.Hour)
	job, err := s.Schedule(context.Background(), at, "Pausa", "Respira")
	if err != nil {
		t.Fatal(err)
	}
	if len(q.jobs) != 1 || q.jobs[0] != job {
		t.Fatalf("queued = %v", q.jobs)
	}
	if job.NotBefore == nil || !job.NotBefore.Equal(at) || job.Type != queue.JobTypeReminder {
		t.Errorf("job = %+v", job)
	}

	past, err := s.Schedule(context.Background(), saturday.Add(-time.Hour), "Ya", "")
	if err != nil {
		t.Fatal(err)
	}
	if past.NotBefore != nil {
		t.Error("past times should be delivered immediately")
	}

	q.err = errors.New("broker down")
	if _, err := s.Schedule(context.Background(), at, "x", ""); err == nil {
		t.Error("enqueue failure should be returned")
	}
}

func TestScheduler_ScheduleDailyAndReschedule(t *testing.T) {
	t.Parallel()
	q := &recordingQueue{}
	s := newTestScheduler(q)

	job, err := s.ScheduleDaily(context.Background(), "09:00", "Registro", "¿Cómo estás?")
	if err != nil {
		t.Fatal(err)
	}
	if job.Recurrence != "09:00" || !job.NotBefore.Equal(time.Date(2024, time.July, 21, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("job = %+v", job)
	}

	s.now = func() time.Time { return time.Date(2024, time.July, 21, 9, 0, 5, 0, time.UTC) }
	next, err := s.Reschedule(context.Background(), job)
	if err != nil {
		t.Fatal(err)
	}
	if !next.NotBefore.Equal(time.Date(2024, time.July, 22, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("next = %v", next.NotBefore)
	}
	if len(q.jobs) != 2 {
		t.Errorf("queued = %d, want 2", len(q.jobs))
	}

	oneOff := queue.NewJob(queue.JobTypeReminder, "x", "")
	if next, err := s.Reschedule(context.Background(), oneOff); next != nil || err != nil {
		t.Errorf("Reschedule(one-off) = %v, %v", next, err)
	}
}

func TestScheduler_ScheduleMedicationAlarm(t *testing.T) {
	t.Parallel()
	q := &recordingQueue{}
	s := newTestScheduler(q)

	med := models.Medication{
		ID:           uuid.New(),
		Name:         "Sertralina",
		Dosage:       "50mg",
		AlarmEnabled: true,
		AlarmTime:    "08:00",
		AlarmDays:    []int{1, 3, 5},
	}
	job, err := s.ScheduleMedicationAlarm(context.Background(), med)
	if err != nil {
		t.Fatal(err)
	}
	if job.Type != queue.JobTypeMedicationAlarm || job.Metadata[MetaMedicationID] != med.ID.String() {
		t.Errorf("job = %+v", job)
	}
	if job.Metadata[MetaDays] != "1,3,5" {
		t.Errorf("days = %q", job.Metadata[MetaDays])
	}
	if !job.NotBefore.Equal(time.Date(2024, time.July, 22, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("NotBefore = %v", job.NotBefore)
	}

	med.AlarmEnabled = false
	if _, err := s.ScheduleMedicationAlarm(context.Background(), med); !errors.Is(err, ErrAlarmDisabled) {
		t.Errorf("disabled alarm err = %v", err)
	}
}

func TestScheduler_ScheduleNotifications(t *testing.T) {
	t.Parallel()
	q := &recordingQueue{}
	s := newTestScheduler(q)

	jobs, err := s.ScheduleNotifications(context.Background(), []recommend.Notification{
		{Type: recommend.NotificationReminder, Title: "r", Time: "21:00"},
		{Type: recommend.NotificationCare, Title: "c", Time: recommend.TimeNow},
		{Type: recommend.NotificationSleep, Title: "s", Time: recommend.TimeEvening},
		{Type: "broken", Time: "later"},
	})
	if err == nil {
		t.Error("invalid time should be reported")
	}
	if len(jobs) != 3 {
		t.Fatalf("jobs = %d, want 3", len(jobs))
	}
	if !jobs[0].NotBefore.Equal(time.Date(2024, time.July, 20, 21, 0, 0, 0, time.UTC)) {
		t.Errorf("reminder at %v", jobs[0].NotBefore)
	}
	if jobs[1].NotBefore != nil {
		t.Errorf("care should be immediate, got %v", jobs[1].NotBefore)
	}
	if !jobs[2].NotBefore.Equal(time.Date(2024, time.July, 20, EveningHour, 0, 0, 0, time.UTC)) {
		t.Errorf("sleep at %v", jobs[2].NotBefore)
	}
	if jobs[1].Metadata[MetaNotificationType] != recommend.NotificationCare {
		t.Errorf("metadata = %v", jobs[1].Metadata)
	}
}

func TestParseDays(t *testing.T) {
	t.Parallel()
	days, err := ParseDays(FormatDays([]int{0, 6}))
	if err != nil || len(days) != 2 || days[0] != 0 || days[1] != 6 {
		t.Errorf("ParseDays round trip = %v, %v", days, err)
	}
	if days, err := ParseDays(""); days != nil || err != nil {
		t.Errorf("ParseDays(\"\") = %v, %v", days, err)
	}
	if _, err := ParseDays("1,x"); err == nil {
		t.Error("invalid weekday should fail")
	}
}

func TestLogNotifier(t *testing.T) {
	t.Parallel()
	n := NewLogNotifier(nil)
	if err := n.Deliver(context.Background(), queue.NewJob(queue.JobTypeReminder, "t", "b")); err != nil {
		t.Errorf("Deliver() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Deliver(ctx, queue.NewJob(queue.JobTypeReminder, "t", "b")); err == nil {
		t.Error("cancelled context should fail")
	}
}
