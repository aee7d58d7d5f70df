package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"FinLab/internal/services/split"
	"FinLab/internal/usecase"
	"FinLab/pkg/config"
	xhttp "FinLab/pkg/http"
	applogger "FinLab/pkg/logger"
	"FinLab/pkg/metrics"
)

// Closers are infrastructure clients released when the app exits.
type Closers []io.Closer

// App encapsulates the application lifecycle for batch commands and the API server.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	recorder   *metrics.Recorder
	downloader *usecase.Downloader
	builder    *usecase.DatasetBuilder
	trainer    *usecase.BaselineTrainer
	reports    *usecase.ReportsUseCase
	handler    xhttp.Handler
	closers    Closers
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	recorder *metrics.Recorder,
	downloader *usecase.Downloader,
	builder *usecase.DatasetBuilder,
	trainer *usecase.BaselineTrainer,
	reports *usecase.ReportsUseCase,
	handler xhttp.Handler,
	closers Closers,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		recorder:   recorder,
		downloader: downloader,
		builder:    builder,
		trainer:    trainer,
		reports:    reports,
		handler:    handler,
		closers:    closers,
	}
}

// Logger returns the application logger.
func (a *App) Logger() *applogger.Logger { return a.log }

// SplitParams returns the configured split fractions.
func (a *App) SplitParams() split.Params {
	return split.Params{TrainFrac: a.cfg.Dataset.TrainFrac, ValFrac: a.cfg.Dataset.ValFrac}
}

// Download fetches raw CSVs for every configured ticker. It fails only when nothing
// could be downloaded.
func (a *App) Download(ctx context.Context) error {
	defer a.pushMetrics(ctx)

	res, err := a.downloader.Run(ctx)
	if err != nil {
		return err
	}
	if len(res.Saved) == 0 && len(res.Failed) > 0 {
		return fmt.Errorf("download: all %d tickers failed", len(res.Failed))
	}
	return nil
}

// Build creates the model dataset from the raw directory.
func (a *App) Build(ctx context.Context, p split.Params) error {
	defer a.pushMetrics(ctx)

	if _, err := a.builder.Build(ctx, p); err != nil {
		if errors.Is(err, usecase.ErrNoRawData) {
			return fmt.Errorf("%w in %s (run download first)", err, a.cfg.Paths.RawDir)
		}
		return fmt.Errorf("build dataset: %w", err)
	}
	return nil
}

// Train fits and evaluates the baseline on the persisted dataset.
func (a *App) Train(ctx context.Context) error {
	defer a.pushMetrics(ctx)

	if _, err := a.trainer.Train(ctx); err != nil {
		return fmt.Errorf("train baseline: %w", err)
	}
	if err := a.reports.Invalidate(ctx); err != nil {
		a.log.Warn("cache invalidate failed", applogger.Error(err))
	}
	return nil
}

// Run builds the dataset and trains the baseline.
func (a *App) Run(ctx context.Context, p split.Params) error {
	if err := a.Build(ctx, p); err != nil {
		return err
	}
	return a.Train(ctx)
}

// Serve starts the HTTP API and blocks until interrupted or ctx is done.
func (a *App) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := xhttp.NewServer(a.log, a.handler,
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithCORS(a.cfg.Server.CORS),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(a.cfg.Metrics.Path, a.recorder.Handler(), a.recorder.Registry()),
	)
	return srv.Run(ctx)
}

// Close releases infrastructure clients.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		a.log.Warn("close error", applogger.Error(errors.Join(errs...)))
	}
	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}

func (a *App) pushMetrics(ctx context.Context) {
	if a.cfg.Metrics.PushURL == "" {
		return
	}
	if err := a.recorder.Push(ctx, a.cfg.Metrics.PushURL, a.cfg.Metrics.Job); err != nil {
		a.log.Warn("metrics push failed", applogger.String("url", a.cfg.Metrics.PushURL), applogger.Error(err))
	}
}
