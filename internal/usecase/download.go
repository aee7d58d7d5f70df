package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"FinLab/internal/domain/models"
	domrepo "FinLab/internal/domain/repository"
	domsvc "FinLab/internal/domain/service"
	"FinLab/internal/services/features"
	applogger "FinLab/pkg/logger"
)

// Downloader fetches every configured ticker and stores the raw CSV.
type Downloader struct {
	dl      domsvc.BarDownloader
	sink    domrepo.RawSink
	source  domrepo.RawSource
	tickers map[string]string
	metrics domrepo.Metrics
	log     *applogger.Logger
}

// NewDownloader creates the use case. tickers maps ticker symbol to provider code.
func NewDownloader(dl domsvc.BarDownloader, sink domrepo.RawSink, source domrepo.RawSource, tickers map[string]string, m domrepo.Metrics, l *applogger.Logger) *Downloader {
	if l == nil {
		l = applogger.Nop()
	}
	return &Downloader{dl: dl, sink: sink, source: source, tickers: tickers, metrics: metricsOrNop(m), log: l}
}

// DownloadResult lists saved tickers and per-ticker failures.
type DownloadResult struct {
	Saved  []string
	Failed map[string]error
}

// RawSanity is a quick look at a stored raw file.
type RawSanity struct {
	Rows      int
	FirstDate string
	LastDate  string
	Missing   int
	Columns   []string
}

// Run downloads tickers in sorted order. A failing ticker is logged and skipped; only
// context cancellation aborts the run.
func (uc *Downloader) Run(ctx context.Context) (*DownloadResult, error) {
	start := time.Now()
	defer observe(uc.metrics, "download", start)

	symbols := make([]string, 0, len(uc.tickers))
	for t := range uc.tickers {
		symbols = append(symbols, t)
	}
	sort.Strings(symbols)

	res := &DownloadResult{Failed: map[string]error{}}
	for _, ticker := range symbols {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		code := uc.tickers[ticker]
		if err := uc.fetch(ctx, ticker, code); err != nil {
			uc.metrics.RecordDownload(ticker, "error")
			uc.log.Error("download failed",
				applogger.String("ticker", ticker),
				applogger.String("code", code),
				applogger.Error(err))
			res.Failed[ticker] = err
			continue
		}
		uc.metrics.RecordDownload(ticker, "ok")
		res.Saved = append(res.Saved, ticker)

		if uc.source != nil {
			sanity, err := uc.Inspect(ctx, ticker)
			if err != nil {
				uc.log.Warn("sanity check failed", applogger.String("ticker", ticker), applogger.Error(err))
				continue
			}
			uc.log.Info("downloaded",
				applogger.String("ticker", ticker),
				applogger.Int("rows", sanity.Rows),
				applogger.String("first_date", sanity.FirstDate),
				applogger.String("last_date", sanity.LastDate),
				applogger.Int("missing_cells", sanity.Missing),
				applogger.Strings("columns", sanity.Columns))
		}
	}
	uc.log.Info("download finished",
		applogger.Int("saved", len(res.Saved)),
		applogger.Int("failed", len(res.Failed)),
		applogger.Duration("duration_ms", time.Since(start)))
	return res, nil
}

func (uc *Downloader) fetch(ctx context.Context, ticker, code string) error {
	body, err := uc.dl.Download(ctx, code)
	if err != nil {
		return err
	}
	if err := uc.sink.Save(ctx, ticker, body); err != nil {
		return fmt.Errorf("save raw %s: %w", ticker, err)
	}
	return nil
}

// Inspect loads a stored raw file and summarises it after cleaning.
func (uc *Downloader) Inspect(ctx context.Context, ticker string) (RawSanity, error) {
	tbl, err := uc.source.Load(ctx, ticker)
	if err != nil {
		return RawSanity{}, err
	}
	s := features.Clean(tbl)
	out := RawSanity{Rows: s.Len(), Columns: tbl.Header}
	if s.Len() > 0 {
		out.FirstDate = s.Bars[0].Date.Format(models.DateLayout)
		out.LastDate = s.Bars[s.Len()-1].Date.Format(models.DateLayout)
	}
	for _, rec := range tbl.Records {
		for i := range tbl.Header {
			if i >= len(rec) || rec[i] == "" {
				out.Missing++
			}
		}
	}
	return out, nil
}
