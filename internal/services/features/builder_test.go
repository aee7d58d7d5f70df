package features

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinLab/internal/domain/models"
)

func seriesFromCloses(ticker string, closes []float64) models.Series {
	start := day("2021-01-01")
	s := models.Series{Ticker: ticker, Fields: models.FieldsOHLCV}
	for i, c := range closes {
		s.Bars = append(s.Bars, models.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1000 + float64(i),
		})
	}
	return s
}

func randomWalk(seed int64, n int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	p := 100.0
	for i := range out {
		p *= 1 + 0.01*rng.NormFloat64()
		out[i] = p
	}
	return out
}

func allFinite(r models.FeatureRow) bool {
	return finite(r.Open, r.High, r.Low, r.Close, r.Volume,
		r.Ret1D, r.Ret5D, r.LogRet1D, r.Vol10D, r.Vol20D,
		r.SMA10, r.SMA20, r.SMA50, r.PriceSMA20, r.SMA20SMA50,
		r.Drawdown60, r.YRet1D)
}

func TestBuildLinearSeries(t *testing.T) {
	closes := make([]float64, 250)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rows := Build(seriesFromCloses("LIN", closes))
	require.Len(t, rows, 250-WarmupBars-1)

	for i, r := range rows {
		assert.Equal(t, 0.0, r.Drawdown60, "row %d", i)
		assert.Greater(t, r.Ret1D, 0.0)
		assert.Greater(t, r.LogRet1D, 0.0)
		assert.InDelta(t, r.Ret1D, r.LogRet1D, 1e-4)
		assert.Equal(t, 1, r.YDir1D)
		if i > 0 {
			prev := rows[i-1]
			assert.Greater(t, r.SMA10, prev.SMA10)
			assert.Greater(t, r.SMA20, prev.SMA20)
			assert.Greater(t, r.SMA50, prev.SMA50)
		}
	}

	first := rows[0]
	assert.True(t, first.Date.Equal(day("2021-01-01").AddDate(0, 0, WarmupBars)))
	assert.InDelta(t, 159.0/158.0-1, first.Ret1D, 1e-12)
	assert.InDelta(t, 159.0/154.0-1, first.Ret5D, 1e-12)
	assert.InDelta(t, 154.5, first.SMA10, 1e-9)
	assert.InDelta(t, 149.5, first.SMA20, 1e-9)
	assert.InDelta(t, 134.5, first.SMA50, 1e-9)
	assert.InDelta(t, 159.0/149.5, first.PriceSMA20, 1e-12)
	assert.InDelta(t, 149.5/134.5, first.SMA20SMA50, 1e-12)
}

func TestBuildDropsOnlyWarmupAndLastRow(t *testing.T) {
	for _, n := range []int{0, 1, 59, 60, 61, 120} {
		rows := Build(seriesFromCloses("X", randomWalk(int64(n), n)))
		assert.Len(t, rows, max(0, n-WarmupBars-1), "n=%d", n)
		for _, r := range rows {
			require.True(t, allFinite(r))
		}
	}
}

func TestBuildTargetMatchesRawCloses(t *testing.T) {
	closes := randomWalk(7, 300)
	s := seriesFromCloses("RW", closes)
	idx := map[string]int{}
	for i, b := range s.Bars {
		idx[b.Date.Format(models.DateLayout)] = i
	}

	rows := Build(s)
	require.NotEmpty(t, rows)
	for _, r := range rows {
		i := idx[r.DateString()]
		require.Less(t, i+1, len(closes))
		up := closes[i+1] > closes[i]
		assert.Equal(t, up, r.YDir1D == 1, "date %s", r.DateString())
		assert.InDelta(t, closes[i+1]/closes[i]-1, r.YRet1D, 1e-12)
	}
}

func TestBuildVolatilityIsSampleStd(t *testing.T) {
	closes := randomWalk(11, 100)
	rows := Build(seriesFromCloses("V", closes))
	require.NotEmpty(t, rows)

	r := rows[0] // t = 59
	t0 := WarmupBars
	rets := make([]float64, 0, 20)
	for k := t0 - 19; k <= t0; k++ {
		rets = append(rets, closes[k]/closes[k-1]-1)
	}
	var mean float64
	for _, v := range rets {
		mean += v
	}
	mean /= float64(len(rets))
	var ss float64
	for _, v := range rets {
		ss += (v - mean) * (v - mean)
	}
	assert.InDelta(t, math.Sqrt(ss/19), r.Vol20D, 1e-12)
}

func TestBuildHasNoLookahead(t *testing.T) {
	closes := randomWalk(3, 200)
	base := Build(seriesFromCloses("L", closes))

	const cut = 120
	mutated := append([]float64(nil), closes...)
	for i := cut + 1; i < len(mutated); i++ {
		mutated[i] *= 3
	}
	changed := Build(seriesFromCloses("L", mutated))

	cutDate := day("2021-01-01").AddDate(0, 0, cut)
	for i, r := range base {
		if r.Date.After(cutDate) {
			break
		}
		c := changed[i]
		require.True(t, r.Date.Equal(c.Date))
		assert.Equal(t, r.Ret1D, c.Ret1D)
		assert.Equal(t, r.Ret5D, c.Ret5D)
		assert.Equal(t, r.Vol10D, c.Vol10D)
		assert.Equal(t, r.Vol20D, c.Vol20D)
		assert.Equal(t, r.SMA50, c.SMA50)
		assert.Equal(t, r.Drawdown60, c.Drawdown60)
		if r.Date.Before(cutDate) {
			assert.Equal(t, r.YRet1D, c.YRet1D)
		}
	}
}

func TestBuildDropsIncompleteProvidedColumns(t *testing.T) {
	closes := randomWalk(5, 100)
	s := seriesFromCloses("N", closes)
	s.Bars[80].Volume = math.NaN()

	rows := Build(s)
	assert.Len(t, rows, 100-WarmupBars-1-1)
	for _, r := range rows {
		assert.False(t, r.Date.Equal(s.Bars[80].Date))
	}

	// an absent column is not a reason to drop rows
	s.Fields &^= models.FieldVolume
	assert.Len(t, Build(s), 100-WarmupBars-1)
}

func TestBuildDrawdownNonPositive(t *testing.T) {
	for _, r := range Build(seriesFromCloses("D", randomWalk(9, 400))) {
		assert.LessOrEqual(t, r.Drawdown60, 0.0)
	}
}
