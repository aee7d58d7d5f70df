package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"FinLab/internal/domain/models"
	domrepo "FinLab/internal/domain/repository"
	"FinLab/internal/services/features"
	"FinLab/internal/services/split"
	applogger "FinLab/pkg/logger"
)

// ErrNoRawData is returned when the raw source holds no ticker files.
var ErrNoRawData = errors.New("no raw CSVs found")

// DatasetSinks are every store a built dataset is written to, primary first.
type DatasetSinks []domrepo.DatasetStore

// DatasetBuilder runs clean, build and split for every raw ticker and persists the
// concatenated dataset.
type DatasetBuilder struct {
	source  domrepo.RawSource
	sinks   DatasetSinks
	pub     domrepo.EventPublisher
	metrics domrepo.Metrics
	log     *applogger.Logger
	workers int
}

func NewDatasetBuilder(source domrepo.RawSource, sinks DatasetSinks, pub domrepo.EventPublisher, m domrepo.Metrics, l *applogger.Logger, workers int) *DatasetBuilder {
	if l == nil {
		l = applogger.Nop()
	}
	if workers < 1 {
		workers = 1
	}
	return &DatasetBuilder{source: source, sinks: sinks, pub: pub, metrics: metricsOrNop(m), log: l, workers: workers}
}

// BuildResult is the outcome of one dataset build.
type BuildResult struct {
	RunID   string
	Rows    []models.FeatureRow
	Summary models.DatasetSummary
}

// Build cleans and featurises tickers in parallel, then splits each ticker on its own
// calendar. Output rows are concatenated in sorted ticker order regardless of completion
// order. Tickers left with no feature rows are skipped; any other failing ticker aborts
// the build. An all-empty run yields an empty dataset.
func (uc *DatasetBuilder) Build(ctx context.Context, p split.Params) (*BuildResult, error) {
	start := time.Now()
	defer observe(uc.metrics, "build", start)

	if err := p.Validate(); err != nil {
		return nil, err
	}

	tickers, err := uc.source.Tickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	if len(tickers) == 0 {
		return nil, ErrNoRawData
	}

	slots := make([][]models.FeatureRow, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)
	for i, ticker := range tickers {
		g.Go(func() error {
			rows, err := uc.buildTicker(gctx, ticker)
			if err != nil {
				uc.metrics.RecordTicker("failed")
				return fmt.Errorf("ticker %s: %w", ticker, err)
			}
			slots[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var n, built int
	for i, s := range slots {
		if len(s) == 0 {
			uc.metrics.RecordTicker("empty")
			uc.log.Warn("ticker has no feature rows, skipped", applogger.String("ticker", tickers[i]))
			continue
		}
		n += len(s)
		built++
	}
	featureRows := make([]models.FeatureRow, 0, n)
	for _, s := range slots {
		featureRows = append(featureRows, s...)
	}

	all, err := split.ByTicker(featureRows, p)
	if err != nil {
		uc.metrics.RecordTicker("failed")
		return nil, err
	}
	for i := 0; i < built; i++ {
		uc.metrics.RecordTicker("ok")
	}

	for _, sink := range uc.sinks {
		if err := sink.SaveDataset(ctx, all); err != nil {
			return nil, fmt.Errorf("save dataset: %w", err)
		}
	}

	res := &BuildResult{RunID: uuid.NewString(), Rows: all, Summary: models.Summarize(all)}
	if uc.pub != nil {
		if err := uc.pub.PublishDatasetBuilt(ctx, res.RunID, res.Summary); err != nil {
			uc.log.Warn("publish dataset_built failed", applogger.String("run_id", res.RunID), applogger.Error(err))
		}
	}

	uc.log.Info("dataset built",
		applogger.String("run_id", res.RunID),
		applogger.Int("rows", res.Summary.Rows),
		applogger.Int("tickers", len(res.Summary.Tickers)),
		applogger.Int("train", res.Summary.SplitCounts[models.SplitTrain]),
		applogger.Int("val", res.Summary.SplitCounts[models.SplitVal]),
		applogger.Int("test", res.Summary.SplitCounts[models.SplitTest]),
		applogger.Duration("duration_ms", time.Since(start)))
	for _, ts := range res.Summary.Tickers {
		uc.log.Debug("ticker summary",
			applogger.String("ticker", ts.Ticker),
			applogger.Int("rows", ts.Rows),
			applogger.String("first_date", ts.FirstDate),
			applogger.String("last_date", ts.LastDate))
	}
	return res, nil
}

func (uc *DatasetBuilder) buildTicker(ctx context.Context, ticker string) ([]models.FeatureRow, error) {
	raw, err := uc.source.Load(ctx, ticker)
	if err != nil {
		return nil, err
	}

	series := features.Clean(raw)
	series.Ticker = ticker
	uc.metrics.RecordRows("clean", ticker, len(raw.Records), series.Len())

	rows := features.Build(series)
	uc.metrics.RecordRows("features", ticker, series.Len(), len(rows))
	uc.log.Debug("features built",
		applogger.String("ticker", ticker),
		applogger.Int("raw_rows", len(raw.Records)),
		applogger.Int("clean_rows", series.Len()),
		applogger.Int("feature_rows", len(rows)))
	return rows, nil
}
