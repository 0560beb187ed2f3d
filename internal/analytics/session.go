package analytics

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTrackingInterval is how often session time is accumulated
const DefaultTrackingInterval = time.Minute

// Session event kinds delivered to subscribers
const (
	EventInteraction = "interaction"
	EventTimeUpdate  = "timeUpdate"
	EventMoodEntry   = "moodEntry"
)

// FeatureMoodEntry is the feature name recorded when an entry is submitted
const FeatureMoodEntry = "mood_entry"

// SessionSnapshot is a point-in-time copy of session bookkeeping
type SessionSnapshot struct {
	SessionStart time.Time `json:"sessionStart"`
	Interactions int       `json:"interactions"`
	TimeSpent    int       `json:"timeSpent"`
	FeaturesUsed []string  `json:"featuresUsed"`
	LastActivity time.Time `json:"lastActivity"`
}

// Event is delivered to subscribers after every tracked change
type Event struct {
	Kind     string
	Feature  string
	Snapshot SessionSnapshot
}

type subscriber struct {
	id int
	fn func(Event)
}

// SessionTracker counts interactions and session minutes. It records usage only.
type SessionTracker struct {
	mu           sync.Mutex
	logger       *zap.Logger
	metrics      *Metrics
	interval     time.Duration
	now          func() time.Time
	sessionStart time.Time
	interactions int
	timeSpent    int
	features     map[string]struct{}
	lastActivity time.Time
	subscribers  []subscriber
	nextID       int
	cancel       context.CancelFunc
	done         chan struct{}
}

// NewSessionTracker creates a tracker. A non-positive interval uses DefaultTrackingInterval.
func NewSessionTracker(logger *zap.Logger, metrics *Metrics, interval time.Duration) *SessionTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = DefaultTrackingInterval
	}
	now := time.Now()
	return &SessionTracker{
		logger:       logger,
		metrics:      metrics,
		interval:     interval,
		now:          time.Now,
		sessionStart: now,
		lastActivity: now,
		features:     make(map[string]struct{}),
	}
}

// Init resets the session and starts accumulating time until ctx is done or Dispose is called.
// Calling Init on a running tracker restarts it.
func (t *SessionTracker) Init(ctx context.Context) {
	t.Dispose()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	t.mu.Lock()
	now := t.now()
	t.sessionStart = now
	t.lastActivity = now
	t.interactions = 0
	t.timeSpent = 0
	t.features = make(map[string]struct{})
	t.cancel = cancel
	t.done = done
	t.mu.Unlock()

	go t.run(runCtx, done)
	t.logger.Info("session_tracking_started", zap.Duration("interval", t.interval))
}

func (t *SessionTracker) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tick()
		}
	}
}

func (t *SessionTracker) tick() {
	t.mu.Lock()
	t.timeSpent++
	snap := t.snapshotLocked()
	subs := slices.Clone(t.subscribers)
	t.mu.Unlock()

	t.metrics.RecordSessionMinute()
	notify(subs, Event{Kind: EventTimeUpdate, Snapshot: snap})
}

// RecordInteraction counts one interaction with feature
func (t *SessionTracker) RecordInteraction(feature string) {
	t.record(EventInteraction, feature)
}

// RecordMoodEntry marks the mood entry feature as used
func (t *SessionTracker) RecordMoodEntry() {
	t.record(EventMoodEntry, FeatureMoodEntry)
}

func (t *SessionTracker) record(kind, feature string) {
	t.mu.Lock()
	t.interactions++
	t.lastActivity = t.now()
	if feature != "" {
		t.features[feature] = struct{}{}
	}
	snap := t.snapshotLocked()
	subs := slices.Clone(t.subscribers)
	t.mu.Unlock()

	t.metrics.RecordInteraction(feature)
	notify(subs, Event{Kind: kind, Feature: feature, Snapshot: snap})
}

// Snapshot returns the current session state
func (t *SessionTracker) Snapshot() SessionSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *SessionTracker) snapshotLocked() SessionSnapshot {
	features := make([]string, 0, len(t.features))
	for f := range t.features {
		features = append(features, f)
	}
	slices.Sort(features)
	return SessionSnapshot{
		SessionStart: t.sessionStart,
		Interactions: t.interactions,
		TimeSpent:    t.timeSpent,
		FeaturesUsed: features,
		LastActivity: t.lastActivity,
	}
}

// Subscribe registers fn for session events and returns a function that removes it.
// fn runs on the goroutine that caused the event and must not block.
func (t *SessionTracker) Subscribe(fn func(Event)) (unsubscribe func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	id := t.nextID
	t.subscribers = append(t.subscribers, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			t.subscribers = slices.DeleteFunc(t.subscribers, func(s subscriber) bool { return s.id == id })
		})
	}
}

// Dispose stops the time accumulator and waits for it to exit. It is safe to call repeatedly.
func (t *SessionTracker) Dispose() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	t.logger.Info("session_tracking_stopped")
}

func notify(subs []subscriber, ev Event) {
	for _, s := range subs {
		s.fn(ev)
	}
}
