package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"FinLab/internal/domain/models"
	domrepo "FinLab/internal/domain/repository"
	applogger "FinLab/pkg/logger"
)

// datasetRecord is the on-disk row layout; field order follows models.DatasetColumns.
type datasetRecord struct {
	Ticker     string  `parquet:"ticker"`
	Date       string  `parquet:"date"`
	Open       float64 `parquet:"open"`
	High       float64 `parquet:"high"`
	Low        float64 `parquet:"low"`
	Close      float64 `parquet:"close"`
	Volume     float64 `parquet:"volume"`
	Ret1D      float64 `parquet:"ret_1d"`
	Ret5D      float64 `parquet:"ret_5d"`
	LogRet1D   float64 `parquet:"logret_1d"`
	Vol10D     float64 `parquet:"vol_10d"`
	Vol20D     float64 `parquet:"vol_20d"`
	SMA10      float64 `parquet:"sma_10"`
	SMA20      float64 `parquet:"sma_20"`
	SMA50      float64 `parquet:"sma_50"`
	PriceSMA20 float64 `parquet:"price_sma20"`
	SMA20SMA50 float64 `parquet:"sma20_sma50"`
	Drawdown60 float64 `parquet:"drawdown_60"`
	YRet1D     float64 `parquet:"y_ret_1d"`
	YDir1D     int32   `parquet:"y_dir_1d"`
	Split      string  `parquet:"split"`
}

func toRecord(r models.FeatureRow) datasetRecord {
	return datasetRecord{
		Ticker: r.Ticker, Date: r.DateString(),
		Open: r.Open, High: r.High, Low: r.Low, Close: r.Close, Volume: r.Volume,
		Ret1D: r.Ret1D, Ret5D: r.Ret5D, LogRet1D: r.LogRet1D,
		Vol10D: r.Vol10D, Vol20D: r.Vol20D,
		SMA10: r.SMA10, SMA20: r.SMA20, SMA50: r.SMA50,
		PriceSMA20: r.PriceSMA20, SMA20SMA50: r.SMA20SMA50, Drawdown60: r.Drawdown60,
		YRet1D: r.YRet1D, YDir1D: int32(r.YDir1D),
		Split: string(r.Split),
	}
}

func fromRecord(rec datasetRecord) (models.FeatureRow, error) {
	d, err := time.Parse(models.DateLayout, rec.Date)
	if err != nil {
		return models.FeatureRow{}, fmt.Errorf("parse date %q: %w", rec.Date, err)
	}
	return models.FeatureRow{
		Ticker: rec.Ticker,
		Bar: models.Bar{
			Date: d, Open: rec.Open, High: rec.High, Low: rec.Low, Close: rec.Close, Volume: rec.Volume,
		},
		Ret1D: rec.Ret1D, Ret5D: rec.Ret5D, LogRet1D: rec.LogRet1D,
		Vol10D: rec.Vol10D, Vol20D: rec.Vol20D,
		SMA10: rec.SMA10, SMA20: rec.SMA20, SMA50: rec.SMA50,
		PriceSMA20: rec.PriceSMA20, SMA20SMA50: rec.SMA20SMA50, Drawdown60: rec.Drawdown60,
		YRet1D: rec.YRet1D, YDir1D: int(rec.YDir1D),
		Split: models.Split(rec.Split),
	}, nil
}

// ParquetDatasetStore keeps the model dataset in a single Parquet file.
type ParquetDatasetStore struct {
	path string
	l    *applogger.Logger
}

func NewParquetDatasetStore(path string, l *applogger.Logger) *ParquetDatasetStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &ParquetDatasetStore{path: path, l: l}
}

// Path is the dataset file location.
func (s *ParquetDatasetStore) Path() string { return s.path }

func (s *ParquetDatasetStore) SaveDataset(_ context.Context, rows []models.FeatureRow) error {
	start := time.Now()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}

	recs := make([]datasetRecord, len(rows))
	for i, r := range rows {
		recs[i] = toRecord(r)
	}

	tmp := s.path + ".tmp"
	if err := parquet.WriteFile(tmp, recs); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write parquet: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename parquet: %w", err)
	}

	s.l.Info("parquet dataset saved",
		applogger.String("path", s.path),
		applogger.Int("rows", len(rows)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

func (s *ParquetDatasetStore) LoadDataset(_ context.Context) ([]models.FeatureRow, error) {
	recs, err := parquet.ReadFile[datasetRecord](s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (run build first)", domrepo.ErrDatasetNotFound, s.path)
		}
		return nil, fmt.Errorf("read parquet: %w", err)
	}

	out := make([]models.FeatureRow, 0, len(recs))
	for _, rec := range recs {
		r, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *ParquetDatasetStore) LoadTicker(ctx context.Context, ticker string) ([]models.FeatureRow, error) {
	rows, err := s.LoadDataset(ctx)
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, r := range rows {
		if r.Ticker == ticker {
			out = append(out, r)
		}
	}
	return out, nil
}

var _ domrepo.DatasetStore = (*ParquetDatasetStore)(nil)
