package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"FinLab/internal/domain/models"
	domrepo "FinLab/internal/domain/repository"
	domsvc "FinLab/internal/domain/service"
	"FinLab/internal/services/regime"
	applogger "FinLab/pkg/logger"
)

// BaselineConfig selects the model inputs.
type BaselineConfig struct {
	Features []string
	Target   string
}

// BaselineTrainer fits the baseline per ticker on the persisted dataset and writes the
// report.
type BaselineTrainer struct {
	dataset   domrepo.DatasetStore
	eval      domsvc.Evaluator
	reports   domrepo.ReportStore
	exporters []domrepo.ReportExporter
	pub       domrepo.EventPublisher
	metrics   domrepo.Metrics
	log       *applogger.Logger
	cfg       BaselineConfig
}

func NewBaselineTrainer(dataset domrepo.DatasetStore, eval domsvc.Evaluator, reports domrepo.ReportStore, exporters []domrepo.ReportExporter, pub domrepo.EventPublisher, m domrepo.Metrics, l *applogger.Logger, cfg BaselineConfig) *BaselineTrainer {
	if l == nil {
		l = applogger.Nop()
	}
	if len(cfg.Features) == 0 {
		cfg.Features = models.DefaultFeatures
	}
	if cfg.Target == "" {
		cfg.Target = models.DefaultTarget
	}
	return &BaselineTrainer{
		dataset: dataset, eval: eval, reports: reports, exporters: exporters,
		pub: pub, metrics: metricsOrNop(m), log: l, cfg: cfg,
	}
}

// Train evaluates every ticker of the dataset on val and test.
func (uc *BaselineTrainer) Train(ctx context.Context) (*models.BaselineReport, error) {
	start := time.Now()
	defer observe(uc.metrics, "train", start)

	rows, err := uc.dataset.LoadDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	report := &models.BaselineReport{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Features:    uc.cfg.Features,
	}

	groups := groupByTicker(rows)
	tickers := make([]string, 0, len(groups))
	for t := range groups {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tr, err := uc.trainTicker(ticker, groups[ticker])
		if err != nil {
			return nil, fmt.Errorf("train %s: %w", ticker, err)
		}
		report.Results = append(report.Results, tr)
	}

	if err := uc.reports.SaveReport(ctx, report); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	for _, ex := range uc.exporters {
		path, err := ex.Export(ctx, report)
		if err != nil {
			return nil, fmt.Errorf("export report: %w", err)
		}
		uc.log.Info("report exported", applogger.String("path", path))
	}
	if uc.pub != nil {
		if err := uc.pub.PublishBaselineReport(ctx, report); err != nil {
			uc.log.Warn("publish baseline_report failed", applogger.String("run_id", report.RunID), applogger.Error(err))
		}
	}

	uc.log.Info("baseline trained",
		applogger.String("run_id", report.RunID),
		applogger.Int("tickers", len(report.Results)),
		applogger.Duration("duration_ms", time.Since(start)))
	return report, nil
}

func (uc *BaselineTrainer) trainTicker(ticker string, rows []models.FeatureRow) (models.TickerReport, error) {
	labeled := regime.Label(rows)
	var train, val, test []models.LabeledRow
	for _, r := range labeled {
		switch r.Split {
		case models.SplitTrain:
			train = append(train, r)
		case models.SplitVal:
			val = append(val, r)
		case models.SplitTest:
			test = append(test, r)
		}
	}

	valM, err := uc.eval.TrainAndEvaluate(train, val, uc.cfg.Features, uc.cfg.Target)
	if err != nil {
		return models.TickerReport{}, err
	}
	testM, err := uc.eval.TrainAndEvaluate(train, test, uc.cfg.Features, uc.cfg.Target)
	if err != nil {
		return models.TickerReport{}, err
	}

	uc.recordScores(ticker, "val", valM)
	uc.recordScores(ticker, "test", testM)
	uc.log.Info("baseline result",
		applogger.String("ticker", ticker),
		applogger.Int("train_rows", len(train)),
		applogger.Float64("val_acc", float64(valM.Acc)),
		applogger.String("val_auc", scoreString(valM.AUC)),
		applogger.Float64("test_acc", float64(testM.Acc)))

	return models.TickerReport{
		Ticker:       ticker,
		Val:          valM,
		Test:         testM,
		RegimeCounts: regime.Counts(labeled),
	}, nil
}

func (uc *BaselineTrainer) recordScores(ticker, partition string, m models.EvalMetrics) {
	uc.metrics.RecordScore(ticker, partition, "acc", float64(m.Acc))
	uc.metrics.RecordScore(ticker, partition, "f1", float64(m.F1))
	uc.metrics.RecordScore(ticker, partition, "auc", float64(m.AUC))
}

func scoreString(s models.Score) string {
	if math.IsNaN(float64(s)) {
		return "nan"
	}
	return fmt.Sprintf("%.4f", float64(s))
}

func groupByTicker(rows []models.FeatureRow) map[string][]models.FeatureRow {
	out := map[string][]models.FeatureRow{}
	for _, r := range rows {
		out[r.Ticker] = append(out[r.Ticker], r)
	}
	return out
}
