package split

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"FinLab/internal/domain/models"
)

// MinUniqueDates is the smallest history a ticker may have before it is split.
const MinUniqueDates = 50

// Params are the fractional cut points of the chronological split.
type Params struct {
	TrainFrac float64 `validate:"gt=0,lt=1"`
	ValFrac   float64 `validate:"gt=0,lt=1"`
}

// DefaultParams is the 70/15/15 split.
var DefaultParams = Params{TrainFrac: 0.70, ValFrac: 0.15}

var validate = validator.New()

// Validate checks the fraction constraints; the remainder after train and val must be
// non-empty.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return models.NewValidationError(fe.Field(), fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param()))
		}
		return models.NewValidationError("params", err.Error())
	}
	if p.TrainFrac+p.ValFrac >= 1 {
		return models.NewValidationError("TrainFrac+ValFrac", "must be less than 1")
	}
	return nil
}

// Assign labels every row of one ticker with its partition.
//
// Unique dates are ranked chronologically; the first floor(n*TrainFrac) dates are train,
// up to floor(n*(TrainFrac+ValFrac)) are val and the rest are test. Rows sharing a date
// always share a partition. The returned slice is a date-sorted copy.
func Assign(rows []models.FeatureRow, p Params) ([]models.FeatureRow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	out := make([]models.FeatureRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	dates := uniqueDates(out)
	n := len(dates)
	if n < MinUniqueDates {
		return nil, models.NewValidationError("dates",
			fmt.Sprintf("not enough dates to split safely: %d < %d", n, MinUniqueDates))
	}

	trainEnd := int(math.Floor(float64(n) * p.TrainFrac))
	valEnd := int(math.Floor(float64(n) * (p.TrainFrac + p.ValFrac)))
	if trainEnd == 0 {
		return nil, models.NewValidationError("TrainFrac", "train partition would be empty")
	}
	lastTrain := dates[trainEnd-1]
	lastVal := lastTrain
	if valEnd > 0 {
		lastVal = dates[valEnd-1]
	}

	for i := range out {
		d := out[i].Date
		switch {
		case !d.After(lastTrain):
			out[i].Split = models.SplitTrain
		case !d.After(lastVal):
			out[i].Split = models.SplitVal
		default:
			out[i].Split = models.SplitTest
		}
	}
	return out, nil
}

// ByTicker splits each ticker independently and concatenates the results in sorted
// ticker order. Tickers without rows are skipped.
func ByTicker(rows []models.FeatureRow, p Params) ([]models.FeatureRow, error) {
	groups := map[string][]models.FeatureRow{}
	for _, r := range rows {
		groups[r.Ticker] = append(groups[r.Ticker], r)
	}
	tickers := make([]string, 0, len(groups))
	for t := range groups {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	out := make([]models.FeatureRow, 0, len(rows))
	for _, t := range tickers {
		part, err := Assign(groups[t], p)
		if err != nil {
			return nil, fmt.Errorf("split %s: %w", t, err)
		}
		out = append(out, part...)
	}
	return out, nil
}

func uniqueDates(sorted []models.FeatureRow) []time.Time {
	dates := make([]time.Time, 0, len(sorted))
	for i, r := range sorted {
		if i > 0 && r.Date.Equal(sorted[i-1].Date) {
			continue
		}
		dates = append(dates, r.Date)
	}
	return dates
}
