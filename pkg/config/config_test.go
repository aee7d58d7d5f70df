package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 0.70, c.Dataset.TrainFrac)
	assert.Equal(t, 0.15, c.Dataset.ValFrac)
	assert.Equal(t, "parquet", c.Dataset.Source)
	assert.Equal(t, []string{"IWM", "QQQ", "SPY"}, c.TickerSymbols())
	assert.Equal(t, "spy.us", c.Download.Tickers["SPY"])
	assert.Len(t, c.Baseline.Features, 8)
	assert.Equal(t, 6*time.Hour, c.Download.CacheTTL)
	assert.Equal(t, "0.0.0.0", c.Server.Host)
	assert.False(t, c.Server.CORS)
}

func TestLoadFillsDefaults(t *testing.T) {
	p := writeConfig(t, `
environment: test
dataset:
  train_frac: 0.6
download:
  tickers:
    DIA: dia.us
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, 0.6, c.Dataset.TrainFrac)
	assert.Equal(t, 0.15, c.Dataset.ValFrac)
	assert.Equal(t, map[string]string{"DIA": "dia.us"}, c.Download.Tickers)
	assert.Equal(t, 8080, c.Server.Port)
}

func TestLoadRejectsBadFractions(t *testing.T) {
	p := writeConfig(t, `
dataset:
  train_frac: 0.9
  val_frac: 0.2
`)
	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "train_frac")
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	p := writeConfig(t, "dataset:\n  source: csv\n")
	_, err := Load(p)
	assert.Error(t, err)

	p = writeConfig(t, "dataset:\n  source: clickhouse\n")
	_, err = Load(p)
	assert.Error(t, err)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("FINLAB_ENVIRONMENT", "production")
	t.Setenv("FINLAB_TICKERS", "AAPL:aapl.us,MSFT:msft.us")
	t.Setenv("FINLAB_KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, []string{"AAPL", "MSFT"}, c.TickerSymbols())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
}

func TestRepositoryConfigLoads(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "development", c.Environment)
	assert.True(t, c.Report.XLSX)
	assert.True(t, c.Server.CORS)
}
