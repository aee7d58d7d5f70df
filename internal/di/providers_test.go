package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalrepo "FinLab/internal/repository"
	"FinLab/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Paths.RawDir = filepath.Join(dir, "raw")
	cfg.Paths.DatasetPath = filepath.Join(dir, "processed", "model_dataset.parquet")
	cfg.Paths.ReportDir = filepath.Join(dir, "out")
	cfg.Log.Level = "error"
	return cfg
}

func TestInitializeAppWithDefaults(t *testing.T) {
	cfg := testConfig(t)
	app, err := InitializeApp(cfg)
	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, 0.70, app.SplitParams().TrainFrac)

	err = app.Build(context.Background(), app.SplitParams())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run download first")

	err = app.Train(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset not found")

	assert.NoError(t, app.Close())
}

func TestDisabledInfrastructure(t *testing.T) {
	cfg := testConfig(t)

	ch, err := ProvideClickHouseClient(cfg)
	require.NoError(t, err)
	assert.Nil(t, ch)

	p, err := ProvideKafkaProducer(cfg, ProvideMetrics())
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.IsType(t, internalrepo.NoopEventPublisher{}, ProvideEventPublisher(cfg, p))

	sinks, err := ProvideDatasetSinks(cfg, nil, nil)
	require.NoError(t, err)
	assert.Len(t, sinks, 1)

	assert.Empty(t, ProvideReportExporters(cfg))
	cfg.Report.XLSX = true
	assert.Len(t, ProvideReportExporters(cfg), 1)
}
