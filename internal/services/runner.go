package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/regioncheck/domain"
	"github.com/fastygo/regioncheck/internal/infrastructure/monitor"
	"github.com/fastygo/regioncheck/internal/report"
	appLogger "github.com/fastygo/regioncheck/pkg/logger"
	validationUC "github.com/fastygo/regioncheck/usecase/validation"
)

// RunTracker collects timings and outcomes of validation runs.
type RunTracker interface {
	Start()
	Stop()
	Performance() (monitor.PerformanceSummary, bool)
	ObserveRun(summary *domain.Summary, err error)
}

// RunnerConfig controls how a Runner validates and what it leaves behind.
type RunnerConfig struct {
	Endpoint  string
	Parallel  bool
	Workers   int
	Formats   report.Formats
	Retention time.Duration
}

// RunResult is everything one validation run produced.
type RunResult struct {
	Meta        report.RunMeta
	Summary     *domain.Summary
	Reports     []string
	Performance monitor.PerformanceSummary
}

// Runner performs a complete validation run: fetch, judge, record and
// write reports.
type Runner struct {
	uc      *validationUC.UseCase
	writer  *report.Writer
	tracker RunTracker
	cfg     RunnerConfig
	logger  *zap.Logger
}

// NewRunner wires a runner. writer and tracker may be nil.
func NewRunner(uc *validationUC.UseCase, writer *report.Writer, tracker RunTracker, cfg RunnerConfig, logger *zap.Logger) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		uc:      uc,
		writer:  writer,
		tracker: tracker,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run validates once. A fetch error aborts the run before any report is
// written. Report failures are logged and do not change the verdict.
func (r *Runner) Run(ctx context.Context) (RunResult, error) {
	meta := report.NewRunMeta(r.cfg.Endpoint, r.uc.Criteria())
	ctx = appLogger.ContextWithRunID(ctx, meta.RunID)
	log := appLogger.FromContext(ctx, r.logger)

	log.Info("validation run started",
		zap.Bool("parallel", r.cfg.Parallel),
		zap.String("endpoint", r.cfg.Endpoint))

	if r.tracker != nil {
		r.tracker.Start()
	}
	summary, err := r.validate(ctx)
	result := RunResult{Meta: meta, Summary: summary}
	if r.tracker != nil {
		r.tracker.Stop()
		r.tracker.ObserveRun(summary, err)
		if perf, ok := r.tracker.Performance(); ok {
			result.Performance = perf
		}
	}
	if err != nil {
		log.Error("validation run failed", zap.Error(err))
		return result, err
	}

	log.Info("validation run finished",
		zap.Int("passed", summary.PassedUsers),
		zap.Int("total", summary.TotalUsers),
		zap.Bool("overall_result", summary.OverallResult),
		zap.Int("api_calls", result.Performance.TotalAPICalls))

	if r.writer != nil {
		paths, err := r.writer.WriteAll(meta, summary, r.cfg.Formats)
		if err != nil {
			log.Error("report generation failed", zap.Error(err))
		}
		result.Reports = paths
		if _, err := r.writer.Cleanup(r.cfg.Retention); err != nil {
			log.Warn("report cleanup failed", zap.Error(err))
		}
	}
	return result, nil
}

func (r *Runner) validate(ctx context.Context) (*domain.Summary, error) {
	if r.cfg.Parallel {
		return r.uc.ValidateAllConcurrent(ctx, r.cfg.Workers)
	}
	return r.uc.ValidateAll(ctx)
}
