package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"
)

// providerTimeout bounds building the job list, not running the jobs.
const providerTimeout = 5 * time.Minute

// ScheduleTime is a local time of day at which the scheduler fires.
type ScheduleTime struct {
	Hour   int
	Minute int
}

func (st ScheduleTime) String() string {
	return fmt.Sprintf("%02d:%02d", st.Hour, st.Minute)
}

// on returns the instant st falls on for the calendar day of day.
func (st ScheduleTime) on(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), st.Hour, st.Minute, 0, 0, day.Location())
}

// ParseScheduleTime parses "H:MM" or "HH:MM".
func ParseScheduleTime(s string) (ScheduleTime, error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return ScheduleTime{}, fmt.Errorf("invalid time %q (expected HH:MM)", s)
	}
	hour, err := strconv.Atoi(hs)
	if err != nil || hour < 0 || hour > 23 {
		return ScheduleTime{}, fmt.Errorf("invalid hour in %q (must be 0-23)", s)
	}
	minute, err := strconv.Atoi(ms)
	if err != nil || minute < 0 || minute > 59 {
		return ScheduleTime{}, fmt.Errorf("invalid minute in %q (must be 0-59)", s)
	}
	return ScheduleTime{Hour: hour, Minute: minute}, nil
}

// JobProvider builds the jobs for one scheduled run.
type JobProvider func(ctx context.Context) ([]Job, error)

type Config struct {
	ScheduleTimes []string
	WorkerCount   int
	JobDelay      time.Duration
	QueueSize     int
	RunOnStartup  bool
	JobProvider   JobProvider
}

// Scheduler fires the job provider at fixed times of day and feeds the
// resulting jobs to a worker pool.
type Scheduler struct {
	pool         *WorkerPool
	times        []ScheduleTime
	runOnStartup bool
	provide      JobProvider
	now          func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	lastFired string
}

func NewScheduler(cfg Config) (*Scheduler, error) {
	if len(cfg.ScheduleTimes) == 0 {
		return nil, errors.New("at least one schedule time is required")
	}
	if cfg.JobProvider == nil {
		return nil, errors.New("job provider is required")
	}

	times := make([]ScheduleTime, len(cfg.ScheduleTimes))
	for i, raw := range cfg.ScheduleTimes {
		st, err := ParseScheduleTime(raw)
		if err != nil {
			return nil, err
		}
		times[i] = st
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		pool:         NewWorkerPool(cfg.WorkerCount, cfg.JobDelay, cfg.QueueSize),
		times:        times,
		runOnStartup: cfg.RunOnStartup,
		provide:      cfg.JobProvider,
		now:          time.Now,
		ctx:          ctx,
		cancel:       cancel,
	}
	log.Printf("Scheduler: times=%v workers=%d delay=%v", times, cfg.WorkerCount, cfg.JobDelay)
	return s, nil
}

// Start launches the worker pool and the minute ticker.
func (s *Scheduler) Start() {
	s.pool.Start()

	if s.runOnStartup {
		s.launch("startup")
	}

	s.wg.Add(1)
	go s.loop()

	log.Printf("Scheduler: started, next run at %s", s.NextRun().Format(time.RFC3339))
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldRun(now) {
				s.enqueue(now.Format("15:04"))
			}
		}
	}
}

// shouldRun reports whether now matches a schedule time that has not
// already fired this minute.
func (s *Scheduler) shouldRun(now time.Time) bool {
	minute := now.Format("2006-01-02T15:04")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastFired == minute {
		return false
	}
	for _, st := range s.times {
		if st.Hour == now.Hour() && st.Minute == now.Minute() {
			s.lastFired = minute
			return true
		}
	}
	return false
}

// launch runs enqueue on its own goroutine, tracked for shutdown.
func (s *Scheduler) launch(reason string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.enqueue(reason)
	}()
}

func (s *Scheduler) enqueue(reason string) {
	ctx, cancel := context.WithTimeout(s.ctx, providerTimeout)
	defer cancel()

	jobs, err := s.provide(ctx)
	if err != nil {
		log.Printf("Scheduler: %s run: failed to build jobs: %v", reason, err)
		return
	}
	log.Printf("Scheduler: %s run: queueing %d jobs", reason, len(jobs))
	s.pool.SubmitBatch(jobs)
}

// NextRun returns the earliest schedule time strictly after now.
func (s *Scheduler) NextRun() time.Time {
	now := s.now()

	var next time.Time
	for _, st := range s.times {
		t := st.on(now)
		if !t.After(now) {
			t = st.on(now.AddDate(0, 0, 1))
		}
		if next.IsZero() || t.Before(next) {
			next = t
		}
	}
	return next
}

// Shutdown stops the ticker, waits for in-flight enqueues, then drains the
// worker pool. Each phase waits at most timeout.
func (s *Scheduler) Shutdown(timeout time.Duration) {
	s.cancel()
	if !waitTimeout(&s.wg, timeout) {
		log.Printf("Scheduler: loop still busy after %v", timeout)
	}
	s.pool.ShutdownWithTimeout(timeout)
}
