package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FinLab/internal/domain/models"
	domrepo "FinLab/internal/domain/repository"
	"FinLab/pkg/cache"
	applogger "FinLab/pkg/logger"
)

// ErrTickerNotFound is returned when a report or dataset has no entry for a ticker.
var ErrTickerNotFound = errors.New("ticker not found")

const cachePrefix = "api"

// ReportsUseCase serves the read side of the HTTP API with a short-lived cache.
type ReportsUseCase struct {
	reports domrepo.ReportStore
	dataset domrepo.DatasetStore
	cache   cache.Service
	ttl     time.Duration
	log     *applogger.Logger
}

func NewReportsUseCase(reports domrepo.ReportStore, dataset domrepo.DatasetStore, c cache.Service, ttl time.Duration, l *applogger.Logger) *ReportsUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	return &ReportsUseCase{reports: reports, dataset: dataset, cache: c, ttl: ttl, log: l}
}

// LatestReport returns the most recent baseline report.
func (uc *ReportsUseCase) LatestReport(ctx context.Context) (*models.BaselineReport, error) {
	key := cache.Key(cachePrefix, "reports", "latest")
	var cached models.BaselineReport
	if uc.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	r, err := uc.reports.LatestReport(ctx)
	if err != nil {
		return nil, err
	}
	uc.toCache(ctx, key, r)
	return r, nil
}

// TickerReport returns the latest report entry for one ticker.
func (uc *ReportsUseCase) TickerReport(ctx context.Context, ticker string) (models.TickerReport, error) {
	r, err := uc.LatestReport(ctx)
	if err != nil {
		return models.TickerReport{}, err
	}
	tr, ok := r.Find(ticker)
	if !ok {
		return models.TickerReport{}, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}
	return tr, nil
}

// DatasetSummary summarises the whole dataset, or one ticker when ticker is set.
func (uc *ReportsUseCase) DatasetSummary(ctx context.Context, ticker string) (models.DatasetSummary, error) {
	scope := ticker
	if scope == "" {
		scope = "all"
	}
	key := cache.Key(cachePrefix, "summary", scope)
	var cached models.DatasetSummary
	if uc.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	var (
		rows []models.FeatureRow
		err  error
	)
	if ticker == "" {
		rows, err = uc.dataset.LoadDataset(ctx)
	} else {
		rows, err = uc.dataset.LoadTicker(ctx, ticker)
	}
	if err != nil {
		return models.DatasetSummary{}, err
	}
	if ticker != "" && len(rows) == 0 {
		return models.DatasetSummary{}, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	sum := models.Summarize(rows)
	uc.toCache(ctx, key, sum)
	return sum, nil
}

// Invalidate drops every cached API response.
func (uc *ReportsUseCase) Invalidate(ctx context.Context) error {
	if uc.cache == nil {
		return nil
	}
	return uc.cache.DeleteByPattern(ctx, cache.Prefix(cachePrefix))
}

func (uc *ReportsUseCase) fromCache(ctx context.Context, key string, dest interface{}) bool {
	if uc.cache == nil {
		return false
	}
	err := uc.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		uc.log.Warn("cache get failed", applogger.String("key", key), applogger.Error(err))
	}
	return false
}

func (uc *ReportsUseCase) toCache(ctx context.Context, key string, v interface{}) {
	if uc.cache == nil || uc.ttl <= 0 {
		return
	}
	if err := uc.cache.Set(ctx, key, v, uc.ttl); err != nil {
		uc.log.Warn("cache set failed", applogger.String("key", key), applogger.Error(err))
	}
}
