package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/regioncheck/api/handler"
	"github.com/fastygo/regioncheck/internal/config"
	"github.com/fastygo/regioncheck/internal/infrastructure/monitor"
	"github.com/fastygo/regioncheck/internal/middleware"
	"github.com/fastygo/regioncheck/internal/report"
	"github.com/fastygo/regioncheck/internal/router"
	"github.com/fastygo/regioncheck/internal/services"
	"github.com/fastygo/regioncheck/internal/services/lifecycle"
	"github.com/fastygo/regioncheck/pkg/httpcontext"
	"github.com/fastygo/regioncheck/pkg/logger"
	"github.com/fastygo/regioncheck/repository/jsonplaceholder"
	validationUC "github.com/fastygo/regioncheck/usecase/validation"
)

var version = "dev"

// errRunFailed signals a completed run whose overall result is false.
var errRunFailed = errors.New("validation failed")

const usage = `usage: regioncheck [run|serve|watch] [flags]

  run    validate once, print the report and write report files (default)
  serve  expose validation over HTTP
  watch  validate on RUN_SCHEDULE until interrupted
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	command := "run"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet("regioncheck", flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() {
		fmt.Fprint(stdout, usage)
		fs.PrintDefaults()
	}
	parallel := fs.Bool("parallel", false, "fetch todos concurrently")
	workers := fs.Int("workers", 0, "max concurrent todo fetches (default MAX_WORKERS)")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintf(stdout, "regioncheck %s\n", version)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "parallel":
			cfg.Run.Parallel = *parallel
		case "workers":
			cfg.Run.MaxWorkers = *workers
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		return fmt.Errorf("logger error: %w", err)
	}
	defer zapLogger.Sync()

	a, err := newApp(cfg, zapLogger)
	if err != nil {
		return err
	}

	switch command {
	case "run":
		return a.runOnce(ctx, stdout)
	case "serve":
		return a.serve(ctx)
	case "watch":
		return a.watch(ctx, stdout)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// app holds the components shared by every command.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *monitor.Metrics
	client  *jsonplaceholder.Client
	uc      *validationUC.UseCase
	runner  *services.Runner
}

func newApp(cfg *config.Config, zapLogger *zap.Logger) (*app, error) {
	metrics := monitor.NewMetrics(strings.ReplaceAll(cfg.AppName, "-", "_"))

	client := jsonplaceholder.NewClient(jsonplaceholder.ClientConfig{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		MaxConns:  cfg.API.MaxConns,
		UserAgent: cfg.AppName + "/" + version,
	}, jsonplaceholder.WithLogger(zapLogger), jsonplaceholder.WithObserver(metrics))

	uc := validationUC.New(
		jsonplaceholder.NewUserRepository(client),
		jsonplaceholder.NewTaskRepository(client),
		cfg.Criteria(),
		zapLogger,
	)

	writer, err := report.NewWriter(cfg.Report.Dir, zapLogger)
	if err != nil {
		return nil, err
	}

	runner := services.NewRunner(uc, writer, metrics, services.RunnerConfig{
		Endpoint: client.BaseURL(),
		Parallel: cfg.Run.Parallel,
		Workers:  cfg.Run.MaxWorkers,
		Formats: report.Formats{
			CSV:  cfg.Report.CSV,
			JSON: cfg.Report.JSON,
			HTML: cfg.Report.HTML,
		},
		Retention: time.Duration(cfg.Report.RetentionDays) * 24 * time.Hour,
	}, zapLogger)

	return &app{
		cfg:     cfg,
		logger:  zapLogger,
		metrics: metrics,
		client:  client,
		uc:      uc,
		runner:  runner,
	}, nil
}

func (a *app) runOnce(ctx context.Context, stdout io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Context.RequestTimeout)
	defer cancel()

	res, err := a.runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("validation run aborted: %w", err)
	}
	return printResult(stdout, res)
}

func printResult(stdout io.Writer, res services.RunResult) error {
	if err := report.RenderText(stdout, res.Summary); err != nil {
		return err
	}
	perf := res.Performance
	fmt.Fprintf(stdout, "API calls: %d in %.3fs (avg %.3fs, min %.3fs, max %.3fs)\n",
		perf.TotalAPICalls, perf.TotalExecutionTime,
		perf.AverageResponseTime, perf.MinResponseTime, perf.MaxResponseTime)
	for _, p := range res.Reports {
		fmt.Fprintf(stdout, "Report: %s\n", p)
	}
	if !res.Summary.OverallResult {
		return errRunFailed
	}
	return nil
}

func (a *app) startMonitor(manager *lifecycle.Manager) *monitor.Monitor {
	mon := monitor.New(a.client, a.cfg.HTTP.MonitorInterval, a.logger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})
	return mon
}

func (a *app) newServer(status apiHandler.StatusSource) *fasthttp.Server {
	ctxAdapter := httpcontext.NewAdapter(a.cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Validation: apiHandler.NewValidationHandler(a.uc, apiHandler.ValidationOptions{
			Parallel: a.cfg.Run.Parallel,
			Workers:  a.cfg.Run.MaxWorkers,
			Recorder: a.metrics,
		}, ctxAdapter, a.logger),
		Health:  apiHandler.NewHealthHandler(status, ctxAdapter, a.logger),
		Metrics: a.metrics.Registry(),
	}

	throttle := middleware.RateLimit(a.cfg.HTTP.RateLimit, a.cfg.HTTP.RateBurst, a.logger)
	r := router.New(handlers, throttle)

	return &fasthttp.Server{
		Handler:      middleware.RequestLog(a.logger)(r.Handler),
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
		Name:         a.cfg.AppName,
	}
}

func (a *app) serve(ctx context.Context) error {
	manager := lifecycle.New(a.cfg.Context.ShutdownTimeout, a.logger)
	appCtx, stop := manager.Listen(ctx)
	defer stop()

	mon := a.startMonitor(manager)
	server := a.newServer(mon)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server started", zap.String("address", a.cfg.Address()))
		errCh <- server.ListenAndServe(a.cfg.Address())
	}()
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	var serveErr error
	select {
	case <-appCtx.Done():
	case serveErr = <-errCh:
		if serveErr != nil {
			a.logger.Error("server crashed", zap.Error(serveErr))
		}
	}

	if err := manager.Shutdown(context.Background()); err != nil {
		a.logger.Error("graceful shutdown error", zap.Error(err))
	}
	return serveErr
}

func (a *app) watch(ctx context.Context, stdout io.Writer) error {
	manager := lifecycle.New(a.cfg.Context.ShutdownTimeout, a.logger)
	appCtx, stop := manager.Listen(ctx)
	defer stop()

	mon := a.startMonitor(manager)
	scheduler, err := services.NewScheduler(a.runner, mon, a.logger, services.SchedulerConfig{
		Schedule: a.cfg.Run.Schedule,
		Timeout:  a.cfg.Context.RequestTimeout,
	})
	if err != nil {
		_ = manager.Shutdown(context.Background())
		return err
	}
	scheduler.Start()
	manager.Register("scheduler", func(ctx context.Context) error {
		scheduler.Stop(ctx)
		return nil
	})

	for {
		select {
		case <-appCtx.Done():
			return manager.Shutdown(context.Background())
		case res := <-scheduler.Results():
			if err := printResult(stdout, res); err != nil && !errors.Is(err, errRunFailed) {
				a.logger.Warn("failed to print run result", zap.Error(err))
			}
		}
	}
}
