package regime

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinLab/internal/domain/models"
)

func row(ticker string, close, sma20, sma50, vol float64) models.FeatureRow {
	return models.FeatureRow{Ticker: ticker, Bar: models.Bar{Close: close}, SMA20: sma20, SMA50: sma50, Vol20D: vol}
}

func TestLabelSmallTable(t *testing.T) {
	rows := []models.FeatureRow{
		row("X", 1, 1, 1, 0.1),
		row("X", 2, 1, 1, 0.2),
		row("X", 3, 2, 1, 0.3),
		row("X", 2, 2, 1, 0.2),
		row("X", 1, 1, 1, 0.1),
	}
	out := Label(rows)
	require.Len(t, out, 5)

	want := []models.Regime{
		models.RegimeBearLowVol,
		models.RegimeBearLowVol,
		models.RegimeBullHighVol,
		models.RegimeBullLowVol,
		models.RegimeBearLowVol,
	}
	for i, r := range out {
		assert.Equal(t, want[i], r.Regime, "row %d", i)
		assert.Equal(t, rows[i], r.FeatureRow)
	}
	assert.True(t, out[2].Bull)
	assert.True(t, out[2].HighVol)
	assert.False(t, out[3].HighVol) // equal to the median is not high
}

func TestLabelThresholdPerTicker(t *testing.T) {
	var rows []models.FeatureRow
	// LOW lives around 0.01, HIGH around 0.05: a pooled median would mark all of LOW as low vol
	for _, v := range []float64{0.005, 0.010, 0.015, 0.020} {
		rows = append(rows, row("LOW", 1, 1, 1, v))
	}
	for _, v := range []float64{0.04, 0.05, 0.06, 0.07} {
		rows = append(rows, row("HIGH", 1, 1, 1, v))
	}
	out := Label(rows)

	high := func(ticker string) int {
		n := 0
		for _, r := range out {
			if r.Ticker == ticker && r.HighVol {
				n++
			}
		}
		return n
	}
	assert.Equal(t, 2, high("LOW"))
	assert.Equal(t, 2, high("HIGH"))
}

func TestLabelTotals(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var rows []models.FeatureRow
	for _, tk := range []string{"SPY", "QQQ", "IWM"} {
		for i := 0; i < 250; i++ {
			rows = append(rows, row(tk, 100+rng.NormFloat64(), 100+rng.NormFloat64(), 100+rng.NormFloat64(), rng.Float64()))
		}
	}
	out := Label(rows)
	require.Len(t, out, len(rows))

	perTicker := map[string][]models.LabeledRow{}
	for _, r := range out {
		require.Contains(t, models.Regimes, r.Regime)
		perTicker[r.Ticker] = append(perTicker[r.Ticker], r)
	}
	for tk, rs := range perTicker {
		total := 0
		for _, c := range Counts(rs) {
			total += c
		}
		assert.Equal(t, 250, total, tk)
	}
}

func TestCountsSkipsEmptyRegimes(t *testing.T) {
	out := Label([]models.FeatureRow{row("X", 2, 2, 1, 0.1)})
	c := Counts(out)
	assert.Equal(t, map[models.Regime]int{models.RegimeBullLowVol: 1}, c)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, median([]float64{4, 1, 3, 2}))
}
