package usecase

import (
	"time"

	domrepo "FinLab/internal/domain/repository"
)

type nopMetrics struct{}

func (nopMetrics) RecordRows(string, string, int, int)         {}
func (nopMetrics) RecordTicker(string)                         {}
func (nopMetrics) RecordLatency(string, float64)               {}
func (nopMetrics) RecordDownload(string, string)               {}
func (nopMetrics) RecordScore(string, string, string, float64) {}

func metricsOrNop(m domrepo.Metrics) domrepo.Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}

// observe records the latency of op since start.
func observe(m domrepo.Metrics, op string, start time.Time) {
	m.RecordLatency(op, time.Since(start).Seconds())
}
