package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FinLab/internal/domain/models"
	domrepo "FinLab/internal/domain/repository"
	pkgch "FinLab/pkg/clickhouse"
	applogger "FinLab/pkg/logger"
)

const datasetTable = "model_dataset"

// CHDatasetStore implements DatasetStore backed by a ClickHouse MergeTree table.
type CHDatasetStore struct {
	ch    *pkgch.Client
	table string
	l     *applogger.Logger
}

func NewCHDatasetStore(ch *pkgch.Client, l *applogger.Logger) *CHDatasetStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHDatasetStore{ch: ch, table: ch.Database() + "." + datasetTable, l: l}
}

// Schema returns the DDL for the dataset table.
func (s *CHDatasetStore) Schema() []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", s.ch.Database()),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    ticker LowCardinality(String),
    date Date,
    open Float64, high Float64, low Float64, close Float64, volume Float64,
    ret_1d Float64, ret_5d Float64, logret_1d Float64, vol_10d Float64, vol_20d Float64,
    sma_10 Float64, sma_20 Float64, sma_50 Float64,
    price_sma20 Float64, sma20_sma50 Float64, drawdown_60 Float64,
    y_ret_1d Float64, y_dir_1d UInt8,
    split LowCardinality(String)
) ENGINE = MergeTree ORDER BY (ticker, date)`, s.table),
	}
}

// Init creates the database and table when missing.
func (s *CHDatasetStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, s.Schema())
}

// SaveDataset replaces the table contents with rows.
func (s *CHDatasetStore) SaveDataset(ctx context.Context, rows []models.FeatureRow) error {
	start := time.Now()
	if _, err := s.ch.DB().ExecContext(ctx, "TRUNCATE TABLE IF EXISTS "+s.table); err != nil {
		s.l.Error("clickhouse truncate error", applogger.String("table", s.table), applogger.Error(err))
		return fmt.Errorf("truncate dataset: %w", err)
	}

	args := make([][]any, len(rows))
	for i, r := range rows {
		args[i] = []any{
			r.Ticker, r.Date,
			r.Open, r.High, r.Low, r.Close, r.Volume,
			r.Ret1D, r.Ret5D, r.LogRet1D, r.Vol10D, r.Vol20D,
			r.SMA10, r.SMA20, r.SMA50, r.PriceSMA20, r.SMA20SMA50, r.Drawdown60,
			r.YRet1D, uint8(r.YDir1D), string(r.Split),
		}
	}
	q := fmt.Sprintf("INSERT INTO %s (%s)", s.table, strings.Join(models.DatasetColumns, ", "))
	if err := s.ch.InsertBatch(ctx, q, args); err != nil {
		s.l.Error("clickhouse insert dataset error",
			applogger.String("table", s.table),
			applogger.Int("rows", len(rows)),
			applogger.Error(err),
		)
		return fmt.Errorf("insert dataset: %w", err)
	}

	s.l.Info("clickhouse dataset saved",
		applogger.String("table", s.table),
		applogger.Int("rows", len(rows)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

func (s *CHDatasetStore) LoadDataset(ctx context.Context) ([]models.FeatureRow, error) {
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY ticker, date", strings.Join(models.DatasetColumns, ", "), s.table)
	return s.query(ctx, q)
}

func (s *CHDatasetStore) LoadTicker(ctx context.Context, ticker string) ([]models.FeatureRow, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE ticker = ? ORDER BY date", strings.Join(models.DatasetColumns, ", "), s.table)
	return s.query(ctx, q, ticker)
}

func (s *CHDatasetStore) query(ctx context.Context, q string, args ...any) ([]models.FeatureRow, error) {
	start := time.Now()
	rows, err := s.ch.DB().QueryContext(ctx, q, args...)
	if err != nil {
		s.l.Error("clickhouse dataset query error", applogger.String("table", s.table), applogger.Error(err))
		return nil, fmt.Errorf("query dataset: %w", err)
	}
	defer rows.Close()

	out := make([]models.FeatureRow, 0, 1024)
	for rows.Next() {
		r, err := scanFeatureRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dataset row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if len(out) == 0 && len(args) == 0 {
		return nil, fmt.Errorf("%w: table %s is empty", domrepo.ErrDatasetNotFound, s.table)
	}

	s.l.Debug("clickhouse dataset query ok",
		applogger.String("table", s.table),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func scanFeatureRow(rows *sql.Rows) (models.FeatureRow, error) {
	var (
		r     models.FeatureRow
		dir   uint8
		split string
	)
	err := rows.Scan(
		&r.Ticker, &r.Date,
		&r.Open, &r.High, &r.Low, &r.Close, &r.Volume,
		&r.Ret1D, &r.Ret5D, &r.LogRet1D, &r.Vol10D, &r.Vol20D,
		&r.SMA10, &r.SMA20, &r.SMA50, &r.PriceSMA20, &r.SMA20SMA50, &r.Drawdown60,
		&r.YRet1D, &dir, &split,
	)
	if err != nil {
		return models.FeatureRow{}, err
	}
	r.Date = r.Date.UTC()
	r.YDir1D = int(dir)
	r.Split = models.Split(split)
	return r, nil
}

var _ domrepo.DatasetStore = (*CHDatasetStore)(nil)
