package regime

import (
	"sort"

	"FinLab/internal/domain/models"
)

// Label tags every row with its trend x volatility regime.
//
// The trend flag only reads the row's own close and moving averages. The volatility
// flag compares vol_20d with the median vol_20d of the same ticker, so tickers with
// different volatility scales never share a threshold. Output order matches input order.
func Label(rows []models.FeatureRow) []models.LabeledRow {
	thresholds := volThresholds(rows)

	out := make([]models.LabeledRow, len(rows))
	for i, r := range rows {
		bull := r.Close > r.SMA50 && r.SMA20 > r.SMA50
		highVol := r.Vol20D > thresholds[r.Ticker]
		out[i] = models.LabeledRow{
			FeatureRow: r,
			Bull:       bull,
			HighVol:    highVol,
			Regime:     models.RegimeOf(bull, highVol),
		}
	}
	return out
}

// Counts tallies rows per regime. Regimes with no rows are absent.
func Counts(rows []models.LabeledRow) map[models.Regime]int {
	out := make(map[models.Regime]int, len(models.Regimes))
	for _, r := range rows {
		out[r.Regime]++
	}
	return out
}

func volThresholds(rows []models.FeatureRow) map[string]float64 {
	vols := map[string][]float64{}
	for _, r := range rows {
		vols[r.Ticker] = append(vols[r.Ticker], r.Vol20D)
	}
	out := make(map[string]float64, len(vols))
	for t, v := range vols {
		out[t] = median(v)
	}
	return out
}

// median averages the two middle values for even lengths. v is reordered.
func median(v []float64) float64 {
	sort.Float64s(v)
	n := len(v)
	if n%2 == 1 {
		return v[n/2]
	}
	return (v[n/2-1] + v[n/2]) / 2
}
