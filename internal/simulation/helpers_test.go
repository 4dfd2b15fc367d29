package simulation

import (
	"sync"
	"testing"
	"time"
)

// ---- Test doubles ----

// fakeClock only moves when the test advances it.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// manualScheduler records periodic tasks; the test fires them explicitly.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	interval  time.Duration
	fn        func()
	cancelled bool
}

func (s *manualScheduler) Every(interval time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := &manualTask{interval: interval, fn: fn}
	s.tasks = append(s.tasks, task)
	return func() {
		s.mu.Lock()
		task.cancelled = true
		s.mu.Unlock()
	}
}

// Fire runs every live task n times.
func (s *manualScheduler) Fire(n int) {
	for i := 0; i < n; i++ {
		s.mu.Lock()
		live := make([]*manualTask, 0, len(s.tasks))
		for _, t := range s.tasks {
			if !t.cancelled {
				live = append(live, t)
			}
		}
		s.mu.Unlock()
		for _, t := range live {
			t.fn()
		}
	}
}

// fireStale runs every task, cancelled or not, to mimic a ticker that fired just before cancel.
func (s *manualScheduler) fireStale() {
	s.mu.Lock()
	all := append([]*manualTask(nil), s.tasks...)
	s.mu.Unlock()
	for _, t := range all {
		t.fn()
	}
}

func (s *manualScheduler) live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

func newTestEngine(t *testing.T) (*Engine, *fakeClock, *manualScheduler) {
	t.Helper()
	clk := newFakeClock()
	sched := &manualScheduler{}
	e := NewEngine(Options{Clock: clk, Scheduler: sched})
	return e, clk, sched
}

func near(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}
