package services

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/regioncheck/domain"
	"github.com/fastygo/regioncheck/internal/infrastructure/monitor"
	"github.com/fastygo/regioncheck/internal/report"
	"github.com/fastygo/regioncheck/internal/testing/fixtures"
	"github.com/fastygo/regioncheck/repository/jsonplaceholder"
	validationUC "github.com/fastygo/regioncheck/usecase/validation"
)

type harness struct {
	upstream *fixtures.Upstream
	metrics  *monitor.Metrics
	writer   *report.Writer
	runner   *Runner
}

func newHarness(t *testing.T, cfg RunnerConfig) *harness {
	t.Helper()
	logger := zaptest.NewLogger(t)
	up := fixtures.NewUpstream(fixtures.Scenario())
	t.Cleanup(up.Close)

	metrics := monitor.NewMetrics("regioncheck_test")
	client := jsonplaceholder.NewClient(jsonplaceholder.ClientConfig{BaseURL: up.URL, Timeout: 2 * time.Second},
		jsonplaceholder.WithLogger(logger), jsonplaceholder.WithObserver(metrics))
	uc := validationUC.New(jsonplaceholder.NewUserRepository(client), jsonplaceholder.NewTaskRepository(client),
		domain.DefaultCriteria(), logger)

	writer, err := report.NewWriter(filepath.Join(t.TempDir(), "reports"), logger)
	require.NoError(t, err)

	cfg.Endpoint = client.BaseURL()
	return &harness{
		upstream: up,
		metrics:  metrics,
		writer:   writer,
		runner:   NewRunner(uc, writer, metrics, cfg, logger),
	}
}

func TestRunner_Run(t *testing.T) {
	h := newHarness(t, RunnerConfig{Formats: report.Formats{CSV: true, JSON: true, HTML: true}, Retention: time.Hour})

	res, err := h.runner.Run(context.Background())
	require.NoError(t, err)

	require.NotNil(t, res.Summary)
	assert.Equal(t, 2, res.Summary.TotalUsers)
	assert.False(t, res.Summary.OverallResult)
	assert.NotEmpty(t, res.Meta.RunID)
	assert.Equal(t, h.upstream.URL, res.Meta.Endpoint)

	// users + one todos fetch per in-region user
	assert.Equal(t, 3, res.Performance.TotalAPICalls)

	require.Len(t, res.Reports, 3)
	for _, p := range res.Reports {
		assert.FileExists(t, p)
	}
	assertRuns(t, h.metrics, "fail")
}

func TestRunner_ParallelMatchesSequential(t *testing.T) {
	seq := newHarness(t, RunnerConfig{})
	par := newHarness(t, RunnerConfig{Parallel: true, Workers: 4})

	a, err := seq.runner.Run(context.Background())
	require.NoError(t, err)
	b, err := par.runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Summary, b.Summary)
	assert.Empty(t, a.Reports)
}

func TestRunner_FetchErrorWritesNoReports(t *testing.T) {
	h := newHarness(t, RunnerConfig{Formats: report.Formats{CSV: true, JSON: true}})
	h.upstream.Handle("/users", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	res, err := h.runner.Run(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsFetchError(err))
	assert.Nil(t, res.Summary)
	assert.Empty(t, res.Reports)

	entries, err := os.ReadDir(h.writer.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assertRuns(t, h.metrics, "error")
}

func assertRuns(t *testing.T, m *monitor.Metrics, result string) {
	t.Helper()
	expected := `
# HELP regioncheck_test_validation_runs_total Validation runs by result (pass, fail, error).
# TYPE regioncheck_test_validation_runs_total counter
regioncheck_test_validation_runs_total{result="` + result + `"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"regioncheck_test_validation_runs_total"))
}

type fixedHealth bool

func (f fixedHealth) IsOnline() bool { return bool(f) }

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	h := newHarness(t, RunnerConfig{})
	_, err := NewScheduler(h.runner, nil, nil, SchedulerConfig{Schedule: "every now and then"})
	assert.Error(t, err)
}

func TestScheduler_RunOnceSkipsWhenOffline(t *testing.T) {
	h := newHarness(t, RunnerConfig{})
	s, err := NewScheduler(h.runner, fixedHealth(false), zaptest.NewLogger(t), SchedulerConfig{})
	require.NoError(t, err)

	_, ran, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Zero(t, h.upstream.Requests())
}

func TestScheduler_RunOncePublishesLatest(t *testing.T) {
	h := newHarness(t, RunnerConfig{})
	s, err := NewScheduler(h.runner, fixedHealth(true), zaptest.NewLogger(t), SchedulerConfig{})
	require.NoError(t, err)

	first, ran, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	require.True(t, ran)
	second, _, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.Meta.RunID, second.Meta.RunID)

	select {
	case got := <-s.Results():
		assert.Equal(t, second.Meta.RunID, got.Meta.RunID)
	default:
		t.Fatal("expected a published result")
	}
}

func TestScheduler_FiresOnSchedule(t *testing.T) {
	h := newHarness(t, RunnerConfig{})
	s, err := NewScheduler(h.runner, nil, zaptest.NewLogger(t), SchedulerConfig{Schedule: "@every 1s", Timeout: 5 * time.Second})
	require.NoError(t, err)

	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Stop(ctx)
	}()

	select {
	case res := <-s.Results():
		assert.Equal(t, 2, res.Summary.TotalUsers)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled run did not fire")
	}
}

func TestCronLogger_WritesThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := cronLogger{logger: zap.New(core).Sugar()}

	l.Info("skip")
	l.Error(errors.New("boom"), "panic", "stack", "...")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "cron: skip", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
	assert.Equal(t, "...", entries[1].ContextMap()["stack"])
}

func TestScheduler_RecoveredPanicIsLogged(t *testing.T) {
	h := newHarness(t, RunnerConfig{})
	core, logs := observer.New(zapcore.InfoLevel)
	s, err := NewScheduler(h.runner, nil, zap.New(core), SchedulerConfig{Schedule: "@every 1h"})
	require.NoError(t, err)

	_, err = s.cron.AddFunc("@every 1s", func() { panic("job exploded") })
	require.NoError(t, err)
	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Stop(ctx)
	}()

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("cron: panic").Len() > 0
	}, 5*time.Second, 50*time.Millisecond)
}
