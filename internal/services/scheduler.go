package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// SchedulerConfig controls when validation runs fire.
type SchedulerConfig struct {
	// Schedule is a standard cron spec or descriptor such as "@every 5m".
	Schedule string
	// Timeout bounds a single run.
	Timeout time.Duration
}

// Scheduler repeats validation runs on a cron schedule. A run that is
// still in progress when the next tick fires causes that tick to be skipped.
type Scheduler struct {
	runner  *Runner
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     SchedulerConfig
	results chan RunResult
}

func NewScheduler(runner *Runner, monitor ConnectionHealth, logger *zap.Logger, cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 5m"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scheduler{
		runner:  runner,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		results: make(chan RunResult, 1),
	}
	cronLog := cronLogger{logger: logger.Sugar()}
	s.cron = cron.New(cron.WithChain(
		cron.Recover(cronLog),
		cron.SkipIfStillRunning(cronLog),
	))

	if _, err := s.cron.AddFunc(cfg.Schedule, s.tick); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
	}
	return s, nil
}

// Start launches the cron scheduler.
func (s *Scheduler) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("schedule", s.cfg.Schedule))
}

// Stop gracefully stops the scheduler, waiting for a running validation
// until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("scheduler stopped")
}

// Results delivers the outcome of the latest successful run. Older
// unread results are replaced.
func (s *Scheduler) Results() <-chan RunResult {
	return s.results
}

// RunOnce validates immediately unless the upstream is known to be down.
func (s *Scheduler) RunOnce(ctx context.Context) (RunResult, bool, error) {
	if s.monitor != nil && !s.monitor.IsOnline() {
		s.logger.Debug("skipping validation run (upstream offline)")
		return RunResult{}, false, nil
	}
	res, err := s.runner.Run(ctx)
	if err != nil {
		return res, true, err
	}
	s.publish(res)
	return res, true, nil
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()
	if _, _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("scheduled validation failed", zap.Error(err))
	}
}

func (s *Scheduler) publish(res RunResult) {
	select {
	case s.results <- res:
		return
	default:
	}
	// drop the stale result and retry once
	select {
	case <-s.results:
	default:
	}
	select {
	case s.results <- res:
	default:
	}
}

// cronLogger routes cron's own messages (skipped ticks, recovered panics)
// into zap.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Infow("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
