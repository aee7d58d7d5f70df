package repository

import (
	"context"
	"time"

	"FinLab/internal/domain/models"
	domrepo "FinLab/internal/domain/repository"
	pkgkafka "FinLab/pkg/kafka"
)

const (
	EventDatasetBuilt   = "dataset_built"
	EventBaselineReport = "baseline_report"
)

// DatasetBuiltEvent is published after the dataset has been persisted.
type DatasetBuiltEvent struct {
	Type        string                 `json:"type"`
	RunID       string                 `json:"run_id"`
	Rows        int                    `json:"rows"`
	Tickers     []models.TickerSummary `json:"tickers"`
	SplitCounts map[models.Split]int   `json:"split_counts"`
	Timestamp   time.Time              `json:"ts"`
}

// BaselineReportEvent carries a full baseline report.
type BaselineReportEvent struct {
	Type      string                 `json:"type"`
	RunID     string                 `json:"run_id"`
	Report    *models.BaselineReport `json:"report"`
	Timestamp time.Time              `json:"ts"`
}

// KafkaEventPublisher implements EventPublisher on one topic keyed by run id.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaEventPublisher creates Kafka publisher.
func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) PublishDatasetBuilt(ctx context.Context, runID string, summary models.DatasetSummary) error {
	return p.producer.Publish(ctx, p.topic, []byte(runID), DatasetBuiltEvent{
		Type:        EventDatasetBuilt,
		RunID:       runID,
		Rows:        summary.Rows,
		Tickers:     summary.Tickers,
		SplitCounts: summary.SplitCounts,
		Timestamp:   time.Now().UTC(),
	})
}

func (p *KafkaEventPublisher) PublishBaselineReport(ctx context.Context, report *models.BaselineReport) error {
	return p.producer.Publish(ctx, p.topic, []byte(report.RunID), BaselineReportEvent{
		Type:      EventBaselineReport,
		RunID:     report.RunID,
		Report:    report,
		Timestamp: time.Now().UTC(),
	})
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopEventPublisher is used when Kafka is disabled.
type NoopEventPublisher struct{}

func (NoopEventPublisher) PublishDatasetBuilt(context.Context, string, models.DatasetSummary) error {
	return nil
}

func (NoopEventPublisher) PublishBaselineReport(context.Context, *models.BaselineReport) error {
	return nil
}

func (NoopEventPublisher) Close() error { return nil }

var (
	_ domrepo.EventPublisher = (*KafkaEventPublisher)(nil)
	_ domrepo.EventPublisher = NoopEventPublisher{}
)
