package split

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinLab/internal/domain/models"
)

var start = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func rowsFor(ticker string, days int) []models.FeatureRow {
	rows := make([]models.FeatureRow, days)
	for i := range rows {
		rows[i] = models.FeatureRow{Ticker: ticker, Bar: models.Bar{Date: start.AddDate(0, 0, i), Close: float64(i)}}
	}
	return rows
}

func countSplits(rows []models.FeatureRow) map[models.Split]int {
	out := map[models.Split]int{}
	for _, r := range rows {
		out[r.Split]++
	}
	return out
}

func TestAssignSizes(t *testing.T) {
	out, err := Assign(rowsFor("SPY", 200), DefaultParams)
	require.NoError(t, err)
	require.Len(t, out, 200)

	for i, r := range out {
		switch {
		case i < 140:
			assert.Equal(t, models.SplitTrain, r.Split, "row %d", i)
		case i < 170:
			assert.Equal(t, models.SplitVal, r.Split, "row %d", i)
		default:
			assert.Equal(t, models.SplitTest, r.Split, "row %d", i)
		}
	}
}

func TestAssignContiguous(t *testing.T) {
	rows := rowsFor("QQQ", 137)
	// reverse the input; output must still be chronological
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	out, err := Assign(rows, Params{TrainFrac: 0.6, ValFrac: 0.2})
	require.NoError(t, err)

	var maxTrain, minVal, maxVal, minTest time.Time
	for _, r := range out {
		switch r.Split {
		case models.SplitTrain:
			if r.Date.After(maxTrain) {
				maxTrain = r.Date
			}
		case models.SplitVal:
			if minVal.IsZero() || r.Date.Before(minVal) {
				minVal = r.Date
			}
			if r.Date.After(maxVal) {
				maxVal = r.Date
			}
		case models.SplitTest:
			if minTest.IsZero() || r.Date.Before(minTest) {
				minTest = r.Date
			}
		}
	}
	assert.True(t, maxTrain.Before(minVal))
	assert.True(t, maxVal.Before(minTest))

	c := countSplits(out)
	assert.Equal(t, 82, c[models.SplitTrain]) // floor(137*0.6)
	assert.Equal(t, 109-82, c[models.SplitVal])
	assert.Equal(t, 137-109, c[models.SplitTest])
}

func TestAssignDuplicateDatesShareSplit(t *testing.T) {
	rows := rowsFor("X", 100)
	rows = append(rows, rowsFor("X", 100)...)
	out, err := Assign(rows, DefaultParams)
	require.NoError(t, err)

	byDate := map[time.Time]models.Split{}
	for _, r := range out {
		if s, ok := byDate[r.Date]; ok {
			assert.Equal(t, s, r.Split)
		}
		byDate[r.Date] = r.Split
	}
	c := countSplits(out)
	assert.Equal(t, 140, c[models.SplitTrain])
	assert.Equal(t, 30, c[models.SplitVal])
	assert.Equal(t, 30, c[models.SplitTest])
}

func TestAssignTooFewDates(t *testing.T) {
	_, err := Assign(rowsFor("IWM", 30), DefaultParams)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrValidation))

	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Reason, "not enough dates")
}

func TestAssignExactlyMinimum(t *testing.T) {
	out, err := Assign(rowsFor("IWM", MinUniqueDates), DefaultParams)
	require.NoError(t, err)
	c := countSplits(out)
	assert.Equal(t, 35, c[models.SplitTrain])
	assert.Equal(t, 7, c[models.SplitVal])
	assert.Equal(t, 8, c[models.SplitTest])
}

func TestAssignRejectsBadFractions(t *testing.T) {
	cases := map[string]Params{
		"zero train":    {TrainFrac: 0, ValFrac: 0.2},
		"negative val":  {TrainFrac: 0.7, ValFrac: -0.1},
		"train one":     {TrainFrac: 1, ValFrac: 0.1},
		"sum one":       {TrainFrac: 0.8, ValFrac: 0.2},
		"sum above one": {TrainFrac: 0.9, ValFrac: 0.5},
	}
	rows := rowsFor("SPY", 200)
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Assign(rows, p)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestAssignEmptyTrainPartition(t *testing.T) {
	_, err := Assign(rowsFor("SPY", 60), Params{TrainFrac: 0.01, ValFrac: 0.5})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestByTickerIndependentAndSorted(t *testing.T) {
	rows := append(rowsFor("QQQ", 100), rowsFor("AAA", 200)...)
	out, err := ByTicker(rows, DefaultParams)
	require.NoError(t, err)
	require.Len(t, out, 300)

	assert.Equal(t, "AAA", out[0].Ticker)
	assert.Equal(t, "QQQ", out[200].Ticker)

	aaa := countSplits(out[:200])
	qqq := countSplits(out[200:])
	assert.Equal(t, 140, aaa[models.SplitTrain])
	assert.Equal(t, 70, qqq[models.SplitTrain])
	assert.Equal(t, 15, qqq[models.SplitVal])
	assert.Equal(t, 15, qqq[models.SplitTest])
}

func TestByTickerPropagatesTicker(t *testing.T) {
	rows := append(rowsFor("OK", 100), rowsFor("SHORT", 20)...)
	_, err := ByTicker(rows, DefaultParams)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), "SHORT")
}

func TestByTickerEmptyInput(t *testing.T) {
	out, err := ByTicker(nil, DefaultParams)
	require.NoError(t, err)
	assert.Empty(t, out)
}
