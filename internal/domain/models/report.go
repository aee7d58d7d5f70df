package models

import (
	"encoding/json"
	"math"
	"time"
)

// Score is a metric value; NaN marks an undefined metric and encodes as JSON null.
type Score float64

// NaN returns the undefined-metric sentinel.
func NaN() Score { return Score(math.NaN()) }

// IsNaN reports whether the metric is undefined.
func (s Score) IsNaN() bool { return math.IsNaN(float64(s)) }

func (s Score) MarshalJSON() ([]byte, error) {
	if s.IsNaN() || math.IsInf(float64(s), 0) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(s))
}

func (s *Score) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = NaN()
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*s = Score(f)
	return nil
}

// EvalMetrics are the scores of one classifier on one evaluation partition.
type EvalMetrics struct {
	Acc Score `json:"acc"`
	F1  Score `json:"f1"`
	AUC Score `json:"auc"`
}

// UndefinedMetrics is returned for an empty evaluation set.
func UndefinedMetrics() EvalMetrics {
	return EvalMetrics{Acc: NaN(), F1: NaN(), AUC: NaN()}
}

// TickerReport is the baseline outcome for one ticker.
type TickerReport struct {
	Ticker       string         `json:"ticker"`
	Val          EvalMetrics    `json:"val"`
	Test         EvalMetrics    `json:"test"`
	RegimeCounts map[Regime]int `json:"regime_counts"`
}

// BaselineReport is the full result of one training run.
type BaselineReport struct {
	RunID       string         `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Features    []string       `json:"features"`
	Results     []TickerReport `json:"results"`
}

// Find returns the report for ticker, if present.
func (r *BaselineReport) Find(ticker string) (TickerReport, bool) {
	for _, tr := range r.Results {
		if tr.Ticker == ticker {
			return tr, true
		}
	}
	return TickerReport{}, false
}
