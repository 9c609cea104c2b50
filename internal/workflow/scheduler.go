package workflow

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

const runTimeout = 5 * time.Minute

// cronLogger routes robfig/cron logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "err", err)...)
}

type Scheduler struct {
	cron     *cron.Cron
	workflow *Workflow
	interval time.Duration
	logger   *slog.Logger
	running  atomic.Bool
	runs     atomic.Int64

	// base is the parent of every run context; Stop cancels it.
	base   context.Context
	cancel context.CancelFunc
}

func NewScheduler(workflow *Workflow, interval time.Duration, logger *slog.Logger) *Scheduler {
	l := cronLogger{logger: logger.With("svc", "scheduler")}
	base, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		workflow: workflow,
		interval: interval,
		logger:   logger,
		base:     base,
		cancel:   cancel,
	}

	s.cron.Schedule(cron.Every(interval), cron.FuncJob(s.run))

	return s
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(s.base, runTimeout)
	defer cancel()

	s.runs.Add(1)

	if _, err := s.workflow.CrawlAndUpdate(ctx); err != nil {
		s.logger.Error("error running crawl", "svc", "scheduler", "err", err)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.running.Store(true)
	s.logger.Info("scheduler started", "interval", s.interval)
}

// Stop prevents new runs, cancels a crawl in flight and waits up to ctx for
// it to return.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	s.cancel()
	s.running.Store(false)

	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stopped before crawl finished")
	}
}

func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Runs counts started crawl runs.
func (s *Scheduler) Runs() int64 {
	return s.runs.Load()
}
