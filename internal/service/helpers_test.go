package service

import (
	"context"
	"sync"
	"time"

	"heating_board/internal/models"
	"heating_board/internal/repository"
	"heating_board/internal/simulation"
)

// ---- Test doubles ----

// fakeEventRepo is a minimal stub that satisfies the repository.EventRepo interface.
type fakeEventRepo struct {
	mu sync.Mutex

	// captured inputs
	gotCtx  context.Context
	gotFrom time.Time
	gotTo   time.Time
	gotType string

	// configured outputs
	events    []models.DeviceEvent
	err       error
	appendErr error

	calls    int
	appended []models.DeviceEvent
}

func (f *fakeEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]models.DeviceEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotCtx = ctx
	f.gotFrom = from
	f.gotTo = to
	f.gotType = typ
	return f.events, f.err
}

func (f *fakeEventRepo) Append(ctx context.Context, e models.DeviceEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, e)
	return nil
}

func (f *fakeEventRepo) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.appended))
	for _, e := range f.appended {
		out = append(out, e.Type)
	}
	return out
}

// fakeControlsRepo keeps the controls row in memory.
type fakeControlsRepo struct {
	stored  *models.Controls
	saves   int
	saveErr error
	loadErr error
}

func (f *fakeControlsRepo) Save(ctx context.Context, c models.Controls) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.stored = &c
	return nil
}

func (f *fakeControlsRepo) Load(ctx context.Context) (models.Controls, bool, error) {
	if f.loadErr != nil {
		return models.Controls{}, false, f.loadErr
	}
	if f.stored == nil {
		return models.Controls{}, false, nil
	}
	return *f.stored, true, nil
}

// manualScheduler never fires on its own.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	fn        func()
	cancelled bool
}

func (s *manualScheduler) Every(interval time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := &manualTask{fn: fn}
	s.tasks = append(s.tasks, task)
	return func() {
		s.mu.Lock()
		task.cancelled = true
		s.mu.Unlock()
	}
}

func (s *manualScheduler) Fire(n int) {
	for i := 0; i < n; i++ {
		s.mu.Lock()
		var live []*manualTask
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

type fakeMetrics struct {
	mu        sync.Mutex
	snapshots int
	events    map[string]int
	fits      int
}

func (m *fakeMetrics) ObserveSnapshot(models.MonitorSnapshot) {
	m.mu.Lock()
	m.snapshots++
	m.mu.Unlock()
}

func (m *fakeMetrics) CountEvent(typ string) {
	m.mu.Lock()
	if m.events == nil {
		m.events = map[string]int{}
	}
	m.events[typ]++
	m.mu.Unlock()
}

func (m *fakeMetrics) ObserveFit(float64) {
	m.mu.Lock()
	m.fits++
	m.mu.Unlock()
}

type fakePublisher struct {
	mu    sync.Mutex
	sent  []models.MonitorSnapshot
	err   error
	calls int
}

func (p *fakePublisher) Publish(ctx context.Context, s models.MonitorSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, s)
	return nil
}

type testRig struct {
	svc      *Service
	engine   *simulation.Engine
	sched    *manualScheduler
	events   *fakeEventRepo
	controls *fakeControlsRepo
	metrics  *fakeMetrics
}

func newTestRig() *testRig {
	r := &testRig{
		sched:    &manualScheduler{},
		events:   &fakeEventRepo{},
		controls: &fakeControlsRepo{},
		metrics:  &fakeMetrics{},
	}
	r.engine = simulation.NewEngine(simulation.Options{
		Scheduler:             r.sched,
		OnCalibrationArchived: CalibrationArchivedHook(r.events, r.metrics, nil),
	})
	r.svc = NewService(Deps{
		Engine:  r.engine,
		Repos:   &repository.Repository{EventRepo: r.events, ControlsRepo: r.controls},
		Metrics: r.metrics,
	})
	return r
}
