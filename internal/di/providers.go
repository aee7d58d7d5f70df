package di

import (
	"context"
	"fmt"
	"time"

	"FinLab/internal/domain/repository"
	domsvc "FinLab/internal/domain/service"
	"FinLab/internal/handler/api"
	internalrepo "FinLab/internal/repository"
	"FinLab/internal/service/stooq"
	"FinLab/internal/services/baseline"
	"FinLab/internal/usecase"
	"FinLab/pkg/cache"
	pkgch "FinLab/pkg/clickhouse"
	"FinLab/pkg/config"
	xhttp "FinLab/pkg/http"
	pkgkafka "FinLab/pkg/kafka"
	applogger "FinLab/pkg/logger"
	"FinLab/pkg/metrics"
	"FinLab/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideMetricsPort exposes the recorder through the domain interface.
func ProvideMetricsPort(r *metrics.Recorder) repository.Metrics {
	return r
}

// ProvideCache returns Redis behind a memory layer when enabled, memory otherwise.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("redis cache connected", applogger.String("addr", cfg.Redis.Addr))
	return cache.NewLayeredCache(rc, 30*time.Second), nil
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	ch := cfg.ClickHouse
	client, err := pkgch.NewClient(pkgch.Config{
		Host:        ch.Host,
		Port:        ch.Port,
		Database:    ch.Database,
		User:        ch.User,
		Password:    ch.Password,
		UseHTTP:     ch.UseHTTP,
		DialTimeout: ch.DialTimeout,
		ReadTimeout: ch.ReadTimeout,
		MaxExecTime: ch.MaxExecutionTime,
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config, rec *metrics.Recorder) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	k := cfg.Kafka
	producer, err := pkgkafka.NewProducer(pkgkafka.ProducerConfig{
		Brokers:      k.Brokers,
		RequiredAcks: k.RequiredAcks,
		Compression:  k.Compression,
		MaxAttempts:  k.Producer.MaxAttempts,
		WriteTimeout: k.Producer.WriteTimeout,
		ReadTimeout:  k.Producer.ReadTimeout,
		BatchSize:    k.Producer.BatchSize,
		BatchBytes:   k.Producer.BatchBytes,
		Linger:       k.Producer.Linger,
		HashByKey:    true,
	}, rec.Registry())
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventPublisher publishes to Kafka when a producer exists.
func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.EventPublisher {
	if producer == nil {
		return internalrepo.NoopEventPublisher{}
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topic)
}

// ProvideRawStore creates the raw CSV directory store.
func ProvideRawStore(cfg *config.Config, l *applogger.Logger) *internalrepo.RawCSVStore {
	return internalrepo.NewRawCSVStore(cfg.Paths.RawDir, l)
}

// ProvideDatasetSinks returns the Parquet store plus ClickHouse when enabled.
func ProvideDatasetSinks(cfg *config.Config, l *applogger.Logger, ch *pkgch.Client) (usecase.DatasetSinks, error) {
	sinks := usecase.DatasetSinks{internalrepo.NewParquetDatasetStore(cfg.Paths.DatasetPath, l)}
	if ch == nil {
		return sinks, nil
	}
	store := internalrepo.NewCHDatasetStore(ch, l)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return append(sinks, store), nil
}

// ProvideDatasetSource selects the store training and the API read from.
func ProvideDatasetSource(cfg *config.Config, l *applogger.Logger, ch *pkgch.Client) repository.DatasetStore {
	if cfg.Dataset.Source == "clickhouse" && ch != nil {
		return internalrepo.NewCHDatasetStore(ch, l)
	}
	return internalrepo.NewParquetDatasetStore(cfg.Paths.DatasetPath, l)
}

// ProvideBarDownloader creates the Stooq client.
func ProvideBarDownloader(cfg *config.Config, c cache.Service, l *applogger.Logger) domsvc.BarDownloader {
	return stooq.New(
		stooq.WithBaseURL(cfg.Download.BaseURL),
		stooq.WithHTTPClient(xhttp.NewClient(xhttp.WithTimeout(cfg.Download.Timeout))),
		stooq.WithAttempts(cfg.Download.Attempts),
		stooq.WithRate(cfg.Download.RPS, cfg.Download.Burst),
		stooq.WithCache(c, cfg.Download.CacheTTL),
		stooq.WithLogger(l),
	)
}

// ProvideDownloader creates the download use case.
func ProvideDownloader(cfg *config.Config, dl domsvc.BarDownloader, raw *internalrepo.RawCSVStore, m repository.Metrics, l *applogger.Logger) *usecase.Downloader {
	return usecase.NewDownloader(dl, raw, raw, cfg.Download.Tickers, m, l)
}

// ProvideDatasetBuilder creates the dataset build use case.
func ProvideDatasetBuilder(cfg *config.Config, raw *internalrepo.RawCSVStore, sinks usecase.DatasetSinks, pub repository.EventPublisher, m repository.Metrics, l *applogger.Logger) *usecase.DatasetBuilder {
	return usecase.NewDatasetBuilder(raw, sinks, pub, m, l, cfg.Dataset.Workers)
}

// ProvideEvaluator creates the baseline trainer with configured regularisation.
func ProvideEvaluator(cfg *config.Config) domsvc.Evaluator {
	return baseline.NewTrainer(baseline.WithClassifier(func() domsvc.Classifier {
		return baseline.NewLogisticRegression(
			baseline.WithC(cfg.Baseline.C),
			baseline.WithMaxIter(cfg.Baseline.MaxIter),
		)
	}))
}

// ProvideReportStore creates the JSON report store.
func ProvideReportStore(cfg *config.Config) repository.ReportStore {
	return internalrepo.NewJSONReportStore(cfg.Paths.ReportDir)
}

// ProvideReportExporters returns the optional report renderers.
func ProvideReportExporters(cfg *config.Config) []repository.ReportExporter {
	if !cfg.Report.XLSX {
		return nil
	}
	return []repository.ReportExporter{internalrepo.NewXLSXReportExporter(cfg.Paths.ReportDir)}
}

// ProvideBaselineTrainer creates the training use case.
func ProvideBaselineTrainer(
	cfg *config.Config,
	dataset repository.DatasetStore,
	eval domsvc.Evaluator,
	reports repository.ReportStore,
	exporters []repository.ReportExporter,
	pub repository.EventPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.BaselineTrainer {
	return usecase.NewBaselineTrainer(dataset, eval, reports, exporters, pub, m, l, usecase.BaselineConfig{
		Features: cfg.Baseline.Features,
		Target:   cfg.Baseline.Target,
	})
}

// ProvideReportsUseCase creates the cached read side.
func ProvideReportsUseCase(cfg *config.Config, reports repository.ReportStore, dataset repository.DatasetStore, c cache.Service, l *applogger.Logger) *usecase.ReportsUseCase {
	return usecase.NewReportsUseCase(reports, dataset, c, cfg.Server.CacheTTL, l)
}

// ProvideHTTPHandler creates the Echo route handler.
func ProvideHTTPHandler(l *applogger.Logger, reports *usecase.ReportsUseCase) xhttp.Handler {
	return api.NewReportsEchoHandler(l, reports)
}

// ProvideClosers collects clients released on exit.
func ProvideClosers(c cache.Service, pub repository.EventPublisher, ch *pkgch.Client) server.Closers {
	closers := server.Closers{c, pub}
	if ch != nil {
		closers = append(closers, ch)
	}
	return closers
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	rec *metrics.Recorder,
	downloader *usecase.Downloader,
	builder *usecase.DatasetBuilder,
	trainer *usecase.BaselineTrainer,
	reports *usecase.ReportsUseCase,
	handler xhttp.Handler,
	closers server.Closers,
) *server.App {
	return server.New(cfg, l, rec, downloader, builder, trainer, reports, handler, closers)
}
