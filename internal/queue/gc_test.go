package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type mockDLQPurger struct {
	purgeFunc func(ctx context.Context, retention time.Duration) (int, error)
}

func (m *mockDLQPurger) PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error) {
	if m.purgeFunc != nil {
		return m.purgeFunc(ctx, retention)
	}
	return 0, nil
}

func TestGarbageCollector_Collect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		purger     DLQPurger
		wantErr    bool
		wantCalled bool
	}{
		{name: "no purger", purger: nil},
		{name: "purged", wantCalled: true, purger: &mockDLQPurger{}},
		{name: "purge error", wantCalled: true, wantErr: true, purger: &mockDLQPurger{
			purgeFunc: func(context.Context, time.Duration) (int, error) { return 0, errors.New("purge failed") },
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var called atomic.Bool
			var retention time.Duration
			purger := tt.purger
			if m, ok := purger.(*mockDLQPurger); ok {
				inner := m.purgeFunc
				purger = &mockDLQPurger{purgeFunc: func(ctx context.Context, r time.Duration) (int, error) {
					called.Store(true)
					retention = r
					if inner != nil {
						return inner(ctx, r)
					}
					return 3, nil
				}}
			}

			gc := NewGarbageCollector(purger, time.Minute, 24*time.Hour, nil)
			err := gc.collect(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("collect() error = %v, wantErr %v", err, tt.wantErr)
			}
			if called.Load() != tt.wantCalled {
				t.Errorf("PurgeOlderThan called = %v, want %v", called.Load(), tt.wantCalled)
			}
			if tt.wantCalled && retention != 24*time.Hour {
				t.Errorf("retention = %v, want 24h", retention)
			}
		})
	}
}

func TestGarbageCollector_Start_StopsOnContextCancel(t *testing.T) {
	t.Parallel()
	mock := &mockDLQPurger{purgeFunc: func(context.Context, time.Duration) (int, error) { return 0, nil }}
	gc := NewGarbageCollector(mock, 24*time.Hour, time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := gc.Start(ctx)
	if err == nil {
		t.Error("expected context cancelled error")
	}
}

func TestGarbageCollector_Collect_MemoryQueue(t *testing.T) {
	t.Parallel()
	q := NewMemoryQueue()
	now := time.Date(2024, time.July, 20, 9, 0, 0, 0, time.UTC)
	q.dead = append(q.dead, deadJob{job: NewJob(JobTypeReminder, "old", ""), at: now.Add(-48 * time.Hour)})
	q.dead = append(q.dead, deadJob{job: NewJob(JobTypeReminder, "new", ""), at: now.Add(-time.Hour)})
	q.now = func() time.Time { return now }

	gc := NewGarbageCollector(q, time.Minute, 24*time.Hour, nil)
	if err := gc.collect(context.Background()); err != nil {
		t.Fatalf("collect: %v", err)
	}
	dead := q.DeadLetters()
	if len(dead) != 1 || dead[0].Title != "new" {
		t.Errorf("dead letters after purge = %v", dead)
	}
}
