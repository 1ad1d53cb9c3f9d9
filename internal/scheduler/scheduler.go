package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/medication-bot/internal/domain"
	"github.com/ykvlv/medication-bot/internal/metrics"
)

// Func is a scheduled action. It receives the handle it was scheduled under,
// so the owner can tell a live timer from a stale one.
type Func func(ctx context.Context, h domain.TimerHandle)

type jobKind int

const (
	jobDaily jobKind = iota
	jobHourly
)

func (k jobKind) String() string {
	if k == jobHourly {
		return "hourly"
	}
	return "daily"
}

type job struct {
	handle    domain.TimerHandle
	kind      jobKind
	at        domain.TimeOfDay // daily only
	fn        Func
	notBefore time.Time // first eligible minute
	lastFire  int64     // unix minute of the last execution
	running   atomic.Bool
}

func (j *job) matches(local time.Time) bool {
	switch j.kind {
	case jobHourly:
		return local.Minute() == 0
	default:
		return local.Hour() == j.at.Hour && local.Minute() == j.at.Minute
	}
}

// Scheduler drives every job from a single ticker. A job fires at most once
// per wall-clock minute and never while its previous execution is running.
type Scheduler struct {
	log      *zap.Logger
	loc      *time.Location
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	seq  domain.TimerHandle
	jobs map[domain.TimerHandle]*job

	wg sync.WaitGroup
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New creates a scheduler evaluating jobs in loc every interval.
// The interval must stay below one minute or matching minutes can be missed;
// non-positive values default to 15s.
func New(log *zap.Logger, loc *time.Location, interval time.Duration, opts ...Option) *Scheduler {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		log:      log,
		loc:      loc,
		interval: interval,
		now:      time.Now,
		jobs:     make(map[domain.TimerHandle]*job),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Location returns the fixed zone jobs are evaluated in.
func (s *Scheduler) Location() *time.Location { return s.loc }

// ScheduleDaily runs fn every day when the local clock reads at.
func (s *Scheduler) ScheduleDaily(at domain.TimeOfDay, fn Func) domain.TimerHandle {
	return s.add(&job{kind: jobDaily, at: at, fn: fn})
}

// ScheduleHourly runs fn at every HH:00.
func (s *Scheduler) ScheduleHourly(fn Func) domain.TimerHandle {
	return s.add(&job{kind: jobHourly, fn: fn})
}

func (s *Scheduler) add(j *job) domain.TimerHandle {
	j.notBefore = s.now().Truncate(time.Minute).Add(time.Minute)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	j.handle = s.seq
	s.jobs[j.handle] = j
	metrics.SetJobs(len(s.jobs))
	return j.handle
}

// Cancel removes the job. Unknown, fired or already cancelled handles are a no-op.
func (s *Scheduler) Cancel(h domain.TimerHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[h]; !ok {
		return
	}
	delete(s.jobs, h)
	metrics.SetJobs(len(s.jobs))
}

// Active reports whether h is a live job.
func (s *Scheduler) Active(h domain.TimerHandle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[h]
	return ok
}

// Len returns the number of live jobs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Run starts the loop until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("scheduler started", zap.Duration("interval", s.interval), zap.String("tz", s.loc.String()))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			s.wg.Wait()
			return
		case <-ticker.C:
			// Ticks may overlap; per-job running flags keep executions from stacking.
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.Tick(ctx, s.now())
			}()
		}
	}
}

// Tick performs one evaluation at now and waits for the jobs it started.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	metrics.IncTick()
	local := now.In(s.loc)
	minute := now.Unix() / 60

	s.mu.Lock()
	var due []*job
	for _, j := range s.jobs {
		if now.Before(j.notBefore) || j.lastFire == minute || !j.matches(local) {
			continue
		}
		if !j.running.CompareAndSwap(false, true) {
			metrics.IncSkipped()
			s.log.Warn("job still running, skipping tick",
				zap.Uint64("handle", uint64(j.handle)), zap.Stringer("kind", j.kind))
			continue
		}
		j.lastFire = minute
		due = append(due, j)
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, j := range due {
		wg.Add(1)
		go func(j *job) {
			defer wg.Done()
			s.execute(ctx, j)
		}(j)
	}
	wg.Wait()
}

func (s *Scheduler) execute(ctx context.Context, j *job) {
	defer j.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduled job panicked",
				zap.Uint64("handle", uint64(j.handle)), zap.Any("panic", r))
		}
	}()
	metrics.IncFire(j.kind.String())
	j.fn(ctx, j.handle)
}
