package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"FinLab/internal/domain/models"
	domrepo "FinLab/internal/domain/repository"
)

// memRaw is an in-memory RawSource and RawSink.
type memRaw struct {
	mu     sync.Mutex
	tables map[string]models.RawTable
}

func newMemRaw() *memRaw { return &memRaw{tables: map[string]models.RawTable{}} }

func (m *memRaw) Tickers(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.tables))
	for t := range m.tables {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memRaw) Load(_ context.Context, ticker string) (models.RawTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[ticker]
	if !ok {
		return models.RawTable{}, fmt.Errorf("no raw %s", ticker)
	}
	return t, nil
}

func (m *memRaw) Save(_ context.Context, ticker string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[ticker] = parseCSV(ticker, string(body))
	return nil
}

func parseCSV(ticker, body string) models.RawTable {
	t := models.RawTable{Ticker: ticker}
	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		rec := strings.Split(line, ",")
		if t.Header == nil {
			t.Header = rec
			continue
		}
		t.Records = append(t.Records, rec)
	}
	return t
}

// walkTable renders n business-ish days of a seeded random walk.
func walkTable(ticker string, n int, seed int64) models.RawTable {
	rng := rand.New(rand.NewSource(seed))
	d := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	price := 100.0
	s := models.Series{Ticker: ticker, Fields: models.FieldsOHLCV}
	for i := 0; i < n; i++ {
		price *= math.Exp(rng.NormFloat64() * 0.01)
		s.Bars = append(s.Bars, models.Bar{
			Date: d.AddDate(0, 0, i), Open: price, High: price * 1.01, Low: price * 0.99,
			Close: price, Volume: 1000 + float64(i),
		})
	}
	return s.ToRawTable()
}

// memDataset is an in-memory DatasetStore.
type memDataset struct {
	rows  []models.FeatureRow
	saved int
	err   error
}

func (m *memDataset) SaveDataset(_ context.Context, rows []models.FeatureRow) error {
	if m.err != nil {
		return m.err
	}
	m.rows = append([]models.FeatureRow(nil), rows...)
	m.saved++
	return nil
}

func (m *memDataset) LoadDataset(context.Context) ([]models.FeatureRow, error) {
	if m.rows == nil {
		return nil, domrepo.ErrDatasetNotFound
	}
	return m.rows, nil
}

func (m *memDataset) LoadTicker(_ context.Context, ticker string) ([]models.FeatureRow, error) {
	var out []models.FeatureRow
	for _, r := range m.rows {
		if r.Ticker == ticker {
			out = append(out, r)
		}
	}
	return out, nil
}

type memReports struct {
	latest *models.BaselineReport
	loads  int
}

func (m *memReports) SaveReport(_ context.Context, r *models.BaselineReport) error {
	m.latest = r
	return nil
}

func (m *memReports) LatestReport(context.Context) (*models.BaselineReport, error) {
	m.loads++
	if m.latest == nil {
		return nil, domrepo.ErrReportNotFound
	}
	return m.latest, nil
}

type recordingExporter struct{ calls int }

func (e *recordingExporter) Export(context.Context, *models.BaselineReport) (string, error) {
	e.calls++
	return "baseline_results.xlsx", nil
}

type recordingPublisher struct {
	built   []models.DatasetSummary
	reports []*models.BaselineReport
	err     error
}

func (p *recordingPublisher) PublishDatasetBuilt(_ context.Context, _ string, s models.DatasetSummary) error {
	p.built = append(p.built, s)
	return p.err
}

func (p *recordingPublisher) PublishBaselineReport(_ context.Context, r *models.BaselineReport) error {
	p.reports = append(p.reports, r)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type recordingMetrics struct {
	mu        sync.Mutex
	tickers   map[string]int
	downloads map[string]string
	scores    int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{tickers: map[string]int{}, downloads: map[string]string{}}
}

func (m *recordingMetrics) RecordRows(string, string, int, int) {}
func (m *recordingMetrics) RecordLatency(string, float64)       {}

func (m *recordingMetrics) RecordTicker(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickers[outcome]++
}

func (m *recordingMetrics) RecordDownload(ticker, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloads[ticker] = result
}

func (m *recordingMetrics) RecordScore(string, string, string, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores++
}

// fakeDownloader serves fixed bodies by provider code.
type fakeDownloader struct {
	bodies map[string]string
}

var errUnknownCode = errors.New("unknown code")

func (f fakeDownloader) Download(_ context.Context, code string) ([]byte, error) {
	b, ok := f.bodies[code]
	if !ok {
		return nil, errUnknownCode
	}
	return []byte(b), nil
}
