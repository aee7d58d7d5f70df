//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"FinLab/pkg/config"
	"FinLab/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideMetricsPort,
		ProvideCache,

		ProvideClickHouseClient,
		ProvideKafkaProducer,

		ProvideEventPublisher,
		ProvideRawStore,
		ProvideDatasetSinks,
		ProvideDatasetSource,
		ProvideReportStore,
		ProvideReportExporters,
		ProvideBarDownloader,
		ProvideEvaluator,

		ProvideDownloader,
		ProvideDatasetBuilder,
		ProvideBaselineTrainer,
		ProvideReportsUseCase,

		ProvideHTTPHandler,
		ProvideClosers,
		ProvideApp,
	)
	return &server.App{}, nil
}
