package models

import (
	"fmt"
	"time"
)

// Split is the chronological partition a row belongs to.
type Split string

const (
	SplitTrain Split = "train"
	SplitVal   Split = "val"
	SplitTest  Split = "test"
)

// Splits lists partitions in chronological order.
var Splits = []Split{SplitTrain, SplitVal, SplitTest}

// FeatureRow is a bar augmented with derived features and the next-day target.
type FeatureRow struct {
	Ticker string
	Bar

	Ret1D      float64
	Ret5D      float64
	LogRet1D   float64
	Vol10D     float64
	Vol20D     float64
	SMA10      float64
	SMA20      float64
	SMA50      float64
	PriceSMA20 float64
	SMA20SMA50 float64
	Drawdown60 float64

	YRet1D float64
	YDir1D int

	Split Split
}

// DatasetColumns is the canonical column order of the model dataset.
var DatasetColumns = []string{
	"ticker", "date", "open", "high", "low", "close", "volume",
	"ret_1d", "ret_5d", "logret_1d", "vol_10d", "vol_20d",
	"sma_10", "sma_20", "sma_50", "price_sma20", "sma20_sma50", "drawdown_60",
	"y_ret_1d", "y_dir_1d", "split",
}

// DefaultFeatures are the baseline model inputs.
var DefaultFeatures = []string{
	"ret_1d", "ret_5d", "logret_1d", "vol_10d", "vol_20d",
	"price_sma20", "sma20_sma50", "drawdown_60",
}

// DefaultTarget is the binary next-day direction label.
const DefaultTarget = "y_dir_1d"

// Value returns a numeric column by its dataset name.
func (r FeatureRow) Value(col string) (float64, error) {
	switch col {
	case "open":
		return r.Open, nil
	case "high":
		return r.High, nil
	case "low":
		return r.Low, nil
	case "close":
		return r.Close, nil
	case "volume":
		return r.Volume, nil
	case "ret_1d":
		return r.Ret1D, nil
	case "ret_5d":
		return r.Ret5D, nil
	case "logret_1d":
		return r.LogRet1D, nil
	case "vol_10d":
		return r.Vol10D, nil
	case "vol_20d":
		return r.Vol20D, nil
	case "sma_10":
		return r.SMA10, nil
	case "sma_20":
		return r.SMA20, nil
	case "sma_50":
		return r.SMA50, nil
	case "price_sma20":
		return r.PriceSMA20, nil
	case "sma20_sma50":
		return r.SMA20SMA50, nil
	case "drawdown_60":
		return r.Drawdown60, nil
	case "y_ret_1d":
		return r.YRet1D, nil
	case "y_dir_1d":
		return float64(r.YDir1D), nil
	default:
		return 0, NewValidationError(col, "unknown numeric column")
	}
}

// DateString formats the row date as YYYY-MM-DD.
func (r FeatureRow) DateString() string { return r.Date.Format(DateLayout) }

// TickerSummary describes one ticker's slice of the dataset.
type TickerSummary struct {
	Ticker      string        `json:"ticker"`
	Rows        int           `json:"rows"`
	FirstDate   string        `json:"first_date"`
	LastDate    string        `json:"last_date"`
	SplitCounts map[Split]int `json:"split_counts"`
}

// DatasetSummary aggregates the per-ticker summaries.
type DatasetSummary struct {
	Rows        int             `json:"rows"`
	Tickers     []TickerSummary `json:"tickers"`
	SplitCounts map[Split]int   `json:"split_counts"`
}

// Summarize groups rows by ticker in first-seen order.
func Summarize(rows []FeatureRow) DatasetSummary {
	sum := DatasetSummary{Rows: len(rows), SplitCounts: map[Split]int{}}
	idx := map[string]int{}
	var first, last []time.Time
	for _, r := range rows {
		i, ok := idx[r.Ticker]
		if !ok {
			i = len(sum.Tickers)
			idx[r.Ticker] = i
			sum.Tickers = append(sum.Tickers, TickerSummary{Ticker: r.Ticker, SplitCounts: map[Split]int{}})
			first = append(first, r.Date)
			last = append(last, r.Date)
		}
		ts := &sum.Tickers[i]
		ts.Rows++
		if r.Split != "" {
			ts.SplitCounts[r.Split]++
			sum.SplitCounts[r.Split]++
		}
		if r.Date.Before(first[i]) {
			first[i] = r.Date
		}
		if r.Date.After(last[i]) {
			last[i] = r.Date
		}
	}
	for i := range sum.Tickers {
		sum.Tickers[i].FirstDate = first[i].Format(DateLayout)
		sum.Tickers[i].LastDate = last[i].Format(DateLayout)
	}
	return sum
}

// String is used in log lines.
func (s DatasetSummary) String() string {
	return fmt.Sprintf("rows=%d tickers=%d train=%d val=%d test=%d",
		s.Rows, len(s.Tickers), s.SplitCounts[SplitTrain], s.SplitCounts[SplitVal], s.SplitCounts[SplitTest])
}
