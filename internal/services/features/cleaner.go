package features

import (
	"math"
	"sort"

	"FinLab/internal/domain/models"
	"FinLab/pkg/util"
)

// Clean normalizes a raw per-ticker table into a Series.
//
// Malformed rows never fail the call: rows with an unparsable date or a missing close
// are excluded, duplicate dates keep the last occurrence in input order, and the
// result is sorted by date. An empty series is a valid result.
func Clean(raw models.RawTable) models.Series {
	s := models.Series{Ticker: raw.Ticker}

	cols := make(map[string]int, len(raw.Header))
	for i, h := range raw.Header {
		name := util.NormalizeColumn(h)
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}
	dateIdx, okDate := cols["date"]
	closeIdx, okClose := cols["close"]
	if !okDate || !okClose {
		return s
	}

	optional := func(name string, f models.FieldSet) int {
		if i, ok := cols[name]; ok {
			s.Fields |= f
			return i
		}
		return -1
	}
	openIdx := optional("open", models.FieldOpen)
	highIdx := optional("high", models.FieldHigh)
	lowIdx := optional("low", models.FieldLow)
	volIdx := optional("volume", models.FieldVolume)

	bars := make([]models.Bar, 0, len(raw.Records))
	for _, rec := range raw.Records {
		d, ok := util.ParseDate(cell(rec, dateIdx))
		if !ok {
			continue
		}
		bars = append(bars, models.Bar{
			Date:   d,
			Open:   number(rec, openIdx),
			High:   number(rec, highIdx),
			Low:    number(rec, lowIdx),
			Close:  number(rec, closeIdx),
			Volume: number(rec, volIdx),
		})
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	out := make([]models.Bar, 0, len(bars))
	for i, b := range bars {
		if i+1 < len(bars) && bars[i+1].Date.Equal(b.Date) {
			continue // a later duplicate wins
		}
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			continue
		}
		out = append(out, b)
	}
	s.Bars = out
	return s
}

func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

func number(rec []string, idx int) float64 {
	if idx < 0 {
		return math.NaN()
	}
	return util.ParseNumber(cell(rec, idx))
}
