package repository

import (
	"context"

	"FinLab/internal/domain/models"
)

// RawSource lists and loads per-ticker raw tables.
type RawSource interface {
	Tickers(ctx context.Context) ([]string, error)
	Load(ctx context.Context, ticker string) (models.RawTable, error)
}

// RawSink persists downloaded raw payloads, one per ticker.
type RawSink interface {
	Save(ctx context.Context, ticker string, body []byte) error
}

// EventPublisher announces finished pipeline stages to downstream consumers.
type EventPublisher interface {
	PublishDatasetBuilt(ctx context.Context, runID string, summary models.DatasetSummary) error
	PublishBaselineReport(ctx context.Context, report *models.BaselineReport) error
	Close() error
}

// ReportStore persists baseline reports.
type ReportStore interface {
	SaveReport(ctx context.Context, report *models.BaselineReport) error
	LatestReport(ctx context.Context) (*models.BaselineReport, error)
}

// ReportExporter renders a report into an additional human-facing format.
type ReportExporter interface {
	Export(ctx context.Context, report *models.BaselineReport) (string, error)
}

type Metrics interface {
	RecordRows(stage, ticker string, in, out int)
	RecordTicker(outcome string)
	RecordLatency(op string, seconds float64)
	RecordDownload(ticker, result string)
	RecordScore(ticker, partition, metric string, value float64)
}
