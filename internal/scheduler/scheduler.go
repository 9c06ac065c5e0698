// Package scheduler registers and runs the background jobs §4.13 names:
// periodic price monitoring, a daily cron re-check, and a retention sweep.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ErrUnknownJob is returned by TriggerNow for a job name that was never
// registered.
var ErrUnknownJob = errors.New("unknown job")

const (
	JobPriceMonitoring     = "price_monitoring"
	JobDailyPriceCheck     = "daily_price_check"
	JobCleanupPriceHistory = "cleanup_price_history"
)

// JobFunc is a scheduled job's body. It receives the scheduler's base
// context so a process shutdown can cancel an in-flight run.
type JobFunc func(ctx context.Context) error

// JobStatus is the admin-surface shape for one registered job.
type JobStatus struct {
	ID      string
	Name    string
	NextRun time.Time
}

// Scheduler wraps robfig/cron with named jobs and manual-trigger support.
// Every job body is wrapped with cron.SkipIfStillRunning so a slow run
// never overlaps its own next fire, per §4.13's "must not overlap
// themselves".
type Scheduler struct {
	cron    *cron.Cron
	log     *logrus.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	ids     map[string]cron.EntryID
	funcs   map[string]JobFunc
	running bool
}

func New(log *logrus.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		ids:    make(map[string]cron.EntryID),
		funcs:  make(map[string]JobFunc),
	}
}

// RegisterInterval arms a job on a fixed-duration interval trigger, e.g.
// "every 6 hours" for price_monitoring.
func (s *Scheduler) RegisterInterval(name string, interval time.Duration, fn JobFunc) error {
	return s.register(name, cron.Every(interval), fn)
}

// RegisterCron arms a job on a standard 5-field cron expression, e.g.
// "0 0 * * *" for a 00:00 UTC daily check.
func (s *Scheduler) RegisterCron(name, expr string, fn JobFunc) error {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return err
	}
	return s.register(name, schedule, fn)
}

func (s *Scheduler) register(name string, schedule cron.Schedule, fn JobFunc) error {
	s.funcs[name] = fn
	id := s.cron.Schedule(schedule, cron.FuncJob(func() {
		s.log.WithField("job", name).Info("작업 시작")
		if err := fn(s.ctx); err != nil {
			s.log.WithFields(logrus.Fields{"job": name, "error": err}).Error("작업 실패")
			return
		}
		s.log.WithField("job", name).Info("작업 완료")
	}))
	s.ids[name] = id
	return nil
}

// RegisterDefaults wires the §4.13 default job set.
func (s *Scheduler) RegisterDefaults(checkAll, dailyCheck, cleanup JobFunc) error {
	if err := s.RegisterInterval(JobPriceMonitoring, 6*time.Hour, checkAll); err != nil {
		return err
	}
	if err := s.RegisterCron(JobDailyPriceCheck, "0 0 * * *", dailyCheck); err != nil {
		return err
	}
	return s.RegisterCron(JobCleanupPriceHistory, "0 15 * * *", cleanup)
}

func (s *Scheduler) Start() {
	s.running = true
	s.cron.Start()
}

// Stop cancels pending fires and the shared job context, then waits for
// any in-flight run to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.running = false
}

// TriggerNow runs a registered job's body immediately and blocks until it
// completes — the manual-trigger operation §4.13 calls out for
// price_monitoring.
func (s *Scheduler) TriggerNow(ctx context.Context, name string) error {
	fn, ok := s.funcs[name]
	if !ok {
		return ErrUnknownJob
	}
	return fn(ctx)
}

// Status reports the running flag plus every registered job's next fire
// time, the §6 admin shape.
func (s *Scheduler) Status() (running bool, jobs []JobStatus) {
	for name, id := range s.ids {
		entry := s.cron.Entry(id)
		jobs = append(jobs, JobStatus{ID: name, Name: name, NextRun: entry.Next})
	}
	return s.running, jobs
}
