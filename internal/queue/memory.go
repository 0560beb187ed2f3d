package queue

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// ErrQueueClosed is returned by operations on a closed MemoryQueue
var ErrQueueClosed = errors.New("queue closed")

const memoryPollInterval = time.Second

// MemoryQueue is an in-process JobQueue. Jobs are held until NotBefore and
// jobs nacked without requeue are kept in a dead letter list.
type MemoryQueue struct {
	mu       sync.Mutex
	pending  []*Job
	inflight map[uint64]*Job
	dead     []deadJob
	nextTag  uint64
	closed   bool
	wake     chan struct{}
	now      func() time.Time
}

type deadJob struct {
	job *Job
	at  time.Time
}

// NewMemoryQueue creates an empty in-process queue
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		inflight: make(map[uint64]*Job),
		wake:     make(chan struct{}, 1),
		now:      time.Now,
	}
}

// Enqueue adds a job to the queue
func (q *MemoryQueue) Enqueue(ctx context.Context, job *Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if job == nil {
		return errors.New("job is nil")
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.pending = append(q.pending, job)
	q.mu.Unlock()

	q.signal()
	return nil
}

func (q *MemoryQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// take removes the earliest due job, expired jobs are dropped to the dead list
func (q *MemoryQueue) take(now time.Time) (*Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := 0; i < len(q.pending); {
		job := q.pending[i]
		if job.IsExpired(now) {
			q.pending = slices.Delete(q.pending, i, i+1)
			q.dead = append(q.dead, deadJob{job: job, at: now})
			continue
		}
		if job.ShouldProcess(now) {
			q.pending = slices.Delete(q.pending, i, i+1)
			q.nextTag++
			q.inflight[q.nextTag] = job
			return &Message{Job: job, DeliveryTag: q.nextTag, Channel: q}, true
		}
		i++
	}
	return nil, false
}

// Consume delivers due jobs until ctx is cancelled or the queue is closed
func (q *MemoryQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error) {
	if prefetchCount < 1 {
		prefetchCount = 1
	}
	q.mu.Lock()
	closed := q.closed
	q.mu.Unlock()
	if closed {
		return nil, nil, ErrQueueClosed
	}

	msgChan := make(chan *Message, prefetchCount)
	errChan := make(chan error, 1)

	go func() {
		defer close(msgChan)
		defer close(errChan)

		ticker := time.NewTicker(memoryPollInterval)
		defer ticker.Stop()

		for {
			for {
				msg, ok := q.take(q.now())
				if !ok {
					break
				}
				select {
				case <-ctx.Done():
					_ = msg.Nack(true)
					return
				case msgChan <- msg:
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-q.wake:
			case <-ticker.C:
			}

			q.mu.Lock()
			closed := q.closed
			q.mu.Unlock()
			if closed {
				errChan <- ErrQueueClosed
				return
			}
		}
	}()

	return msgChan, errChan, nil
}

// Ack settles an in-flight delivery
func (q *MemoryQueue) Ack(tag uint64, _ bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.inflight[tag]; !ok {
		return errors.New("unknown delivery tag")
	}
	delete(q.inflight, tag)
	return nil
}

// Nack returns an in-flight delivery to the queue or dead-letters it
func (q *MemoryQueue) Nack(tag uint64, _ bool, requeue bool) error {
	q.mu.Lock()
	job, ok := q.inflight[tag]
	if !ok {
		q.mu.Unlock()
		return errors.New("unknown delivery tag")
	}
	delete(q.inflight, tag)
	if requeue {
		q.pending = append(q.pending, job)
	} else {
		q.dead = append(q.dead, deadJob{job: job, at: q.now()})
	}
	q.mu.Unlock()

	if requeue {
		q.signal()
	}
	return nil
}

// Pending returns the number of jobs not yet delivered
func (q *MemoryQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// DeadLetters returns the dead-lettered jobs
func (q *MemoryQueue) DeadLetters() []*Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Job, len(q.dead))
	for i, d := range q.dead {
		out[i] = d.job
	}
	return out
}

// PurgeOlderThan drops dead letters older than retention
func (q *MemoryQueue) PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	cutoff := q.now().Add(-retention)

	q.mu.Lock()
	defer q.mu.Unlock()
	before := len(q.dead)
	q.dead = slices.DeleteFunc(q.dead, func(d deadJob) bool { return d.at.Before(cutoff) })
	return before - len(q.dead), nil
}

// HealthCheck reports whether the queue is open
func (q *MemoryQueue) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	return nil
}

// Close stops consumers and rejects further enqueues
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
	return nil
}

var (
	_ JobQueue     = (*MemoryQueue)(nil)
	_ DLQPurger    = (*MemoryQueue)(nil)
	_ acknowledger = (*MemoryQueue)(nil)
)
