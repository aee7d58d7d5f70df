package features

import (
	"math"

	"FinLab/internal/domain/models"
)

const (
	volShortWindow = 10
	volLongWindow  = 20
	smaFast        = 10
	smaMid         = 20
	smaSlow        = 50
	drawdownWindow = 60
	retLongLag     = 5
)

// WarmupBars is the number of leading bars that can never yield a complete feature row.
const WarmupBars = drawdownWindow - 1

// Build derives return, volatility, trend and drawdown features plus the next-day target
// from a cleaned series. Every column is computed on the full series first; rows with any
// undefined value, including the last row whose target has no future bar, are dropped.
func Build(s models.Series) []models.FeatureRow {
	n := len(s.Bars)
	if n == 0 {
		return nil
	}
	closes := s.Closes()

	ret1 := pctChange(closes, 1)
	ret5 := pctChange(closes, retLongLag)
	logRet := logDiff(closes)

	vol10 := rollingStd(ret1, volShortWindow)
	vol20 := rollingStd(ret1, volLongWindow)

	sma10 := rollingMean(closes, smaFast)
	sma20 := rollingMean(closes, smaMid)
	sma50 := rollingMean(closes, smaSlow)

	peak := rollingMax(closes, drawdownWindow)

	yRet := lead(ret1)

	out := make([]models.FeatureRow, 0, max(0, n-WarmupBars-1))
	for t, b := range s.Bars {
		if !barComplete(b, s.Fields) {
			continue
		}
		row := models.FeatureRow{
			Ticker:     s.Ticker,
			Bar:        b,
			Ret1D:      ret1[t],
			Ret5D:      ret5[t],
			LogRet1D:   logRet[t],
			Vol10D:     vol10[t],
			Vol20D:     vol20[t],
			SMA10:      sma10[t],
			SMA20:      sma20[t],
			SMA50:      sma50[t],
			PriceSMA20: closes[t] / sma20[t],
			SMA20SMA50: sma20[t] / sma50[t],
			Drawdown60: closes[t]/peak[t] - 1,
			YRet1D:     yRet[t],
		}
		if !finite(row.Ret1D, row.Ret5D, row.LogRet1D, row.Vol10D, row.Vol20D,
			row.SMA10, row.SMA20, row.SMA50, row.PriceSMA20, row.SMA20SMA50,
			row.Drawdown60, row.YRet1D) {
			continue
		}
		if row.YRet1D > 0 {
			row.YDir1D = 1
		}
		out = append(out, row)
	}
	return out
}

// barComplete reports whether every column the source provided is present.
func barComplete(b models.Bar, fields models.FieldSet) bool {
	if math.IsNaN(b.Close) {
		return false
	}
	if fields.Has(models.FieldOpen) && math.IsNaN(b.Open) {
		return false
	}
	if fields.Has(models.FieldHigh) && math.IsNaN(b.High) {
		return false
	}
	if fields.Has(models.FieldLow) && math.IsNaN(b.Low) {
		return false
	}
	if fields.Has(models.FieldVolume) && math.IsNaN(b.Volume) {
		return false
	}
	return true
}
