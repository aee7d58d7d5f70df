package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	registry *prometheus.Registry

	rowsIn      *prometheus.CounterVec
	rowsOut     *prometheus.CounterVec
	rowsDropped *prometheus.CounterVec
	tickers     *prometheus.CounterVec
	downloads   *prometheus.CounterVec
	scores      *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder on its own registry so repeated construction never collides.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		rowsIn: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finlab_stage_rows_in_total",
				Help: "Rows entering a pipeline stage",
			},
			[]string{"stage", "ticker"},
		),
		rowsOut: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finlab_stage_rows_out_total",
				Help: "Rows leaving a pipeline stage",
			},
			[]string{"stage", "ticker"},
		),
		rowsDropped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finlab_stage_rows_dropped_total",
				Help: "Rows quarantined by a pipeline stage",
			},
			[]string{"stage", "ticker"},
		),
		tickers: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finlab_tickers_total",
				Help: "Tickers processed by outcome",
			},
			[]string{"outcome"},
		),
		downloads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finlab_downloads_total",
				Help: "Raw CSV downloads by result",
			},
			[]string{"ticker", "result"},
		),
		scores: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finlab_baseline_score",
				Help: "Latest baseline metric per ticker and partition",
			},
			[]string{"ticker", "partition", "metric"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finlab_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRows records rows in and out of a stage; the difference is counted as dropped.
func (r *Recorder) RecordRows(stage, ticker string, in, out int) {
	r.rowsIn.WithLabelValues(stage, ticker).Add(float64(in))
	r.rowsOut.WithLabelValues(stage, ticker).Add(float64(out))
	if in > out {
		r.rowsDropped.WithLabelValues(stage, ticker).Add(float64(in - out))
	}
}

// RecordTicker records a processed ticker by outcome (ok, skipped, failed).
func (r *Recorder) RecordTicker(outcome string) {
	r.tickers.WithLabelValues(outcome).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordDownload records a download attempt result (ok, cached, error).
func (r *Recorder) RecordDownload(ticker, result string) {
	r.downloads.WithLabelValues(ticker, result).Inc()
}

// RecordScore sets a baseline metric; NaN is stored as is.
func (r *Recorder) RecordScore(ticker, partition, metric string, value float64) {
	r.scores.WithLabelValues(ticker, partition, metric).Set(value)
}

// Registry exposes the underlying registry for tests and custom collectors.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Push sends the current state to a Pushgateway. Batch commands call it before exit.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
