package scheduler

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

type task struct {
	seq     uint64
	key     string
	due     time.Time
	after   uint64
	fn      func()
	stopped bool
}

type SchedulerOpt func(*Scheduler)

// WithClock overrides the time source.
func WithClock(now func() time.Time) SchedulerOpt {
	return func(s *Scheduler) {
		s.now = now
	}
}

// Scheduler runs delayed work from the driver's tick. A task never runs in
// the tick it was scheduled in, even with a zero delay.
type Scheduler struct {
	mu    sync.Mutex
	now   func() time.Time
	tick  uint64
	seq   uint64
	tasks []*task
	keyed map[string]*task
}

func New(opts ...SchedulerOpt) *Scheduler {
	s := &Scheduler{
		now:   time.Now,
		keyed: map[string]*task{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule runs fn once delay has elapsed, no earlier than the next tick.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add("", delay, fn)
}

// ScheduleKeyed is Schedule, replacing any task still pending under key.
func (s *Scheduler) ScheduleKeyed(key string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.keyed[key]; ok {
		s.remove(old)
	}
	s.keyed[key] = s.add(key, delay, fn)
}

// CancelKey cancels the task pending under key.
func (s *Scheduler) CancelKey(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.keyed[key]
	if !ok {
		return false
	}
	return s.remove(t)
}

// Pending returns the number of tasks waiting to run.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *Scheduler) add(key string, delay time.Duration, fn func()) *task {
	s.seq++
	t := &task{
		seq:   s.seq,
		key:   key,
		due:   s.now().Add(max(delay, 0)),
		after: s.tick,
		fn:    fn,
	}
	s.tasks = append(s.tasks, t)
	return t
}

func (s *Scheduler) remove(t *task) bool {
	if t.stopped {
		return false
	}
	t.stopped = true

	s.tasks = slices.DeleteFunc(s.tasks, func(o *task) bool { return o == t })
	if t.key != "" && s.keyed[t.key] == t {
		delete(s.keyed, t.key)
	}
	return true
}

// Tick runs every due task in due order. Tasks scheduled while running are
// left for a later tick.
func (s *Scheduler) Tick(ctx context.Context) error {
	s.mu.Lock()
	s.tick++
	now := s.now()

	var due []*task
	for _, t := range s.tasks {
		if t.after < s.tick && !t.due.After(now) {
			due = append(due, t)
		}
	}
	for _, t := range due {
		s.remove(t)
	}
	s.mu.Unlock()

	slices.SortFunc(due, func(a, b *task) int {
		if c := a.due.Compare(b.due); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})

	for _, t := range due {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.run(ctx, t)
	}
	return nil
}

func (s *Scheduler) run(ctx context.Context, t *task) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "scheduled task panicked", "key", t.key, "panic", r)
		}
	}()
	t.fn()
}
