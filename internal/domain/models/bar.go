package models

import (
	"math"
	"strconv"
	"time"
)

// DateLayout is the calendar-date format used for every persisted date.
const DateLayout = "2006-01-02"

// RawTable is one ticker's tabular input exactly as it was read or downloaded.
type RawTable struct {
	Ticker  string
	Header  []string
	Records [][]string
}

// FieldSet marks which optional OHLCV columns a source provided.
type FieldSet uint8

const (
	FieldOpen FieldSet = 1 << iota
	FieldHigh
	FieldLow
	FieldVolume

	FieldsOHLCV = FieldOpen | FieldHigh | FieldLow | FieldVolume
)

// Has reports whether every field in f is set.
func (s FieldSet) Has(f FieldSet) bool { return s&f == f }

// Bar is one daily OHLCV observation. Missing numeric cells are NaN.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is a cleaned per-ticker bar history in strictly increasing date order.
type Series struct {
	Ticker string
	Fields FieldSet
	Bars   []Bar
}

// Len returns the number of bars.
func (s Series) Len() int { return len(s.Bars) }

// Closes returns the close column.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// ToRawTable renders the series back into raw CSV form. Only provided columns are written.
func (s Series) ToRawTable() RawTable {
	header := []string{"date"}
	if s.Fields.Has(FieldOpen) {
		header = append(header, "open")
	}
	if s.Fields.Has(FieldHigh) {
		header = append(header, "high")
	}
	if s.Fields.Has(FieldLow) {
		header = append(header, "low")
	}
	header = append(header, "close")
	if s.Fields.Has(FieldVolume) {
		header = append(header, "volume")
	}

	records := make([][]string, 0, len(s.Bars))
	for _, b := range s.Bars {
		rec := []string{b.Date.Format(DateLayout)}
		if s.Fields.Has(FieldOpen) {
			rec = append(rec, FormatFloat(b.Open))
		}
		if s.Fields.Has(FieldHigh) {
			rec = append(rec, FormatFloat(b.High))
		}
		if s.Fields.Has(FieldLow) {
			rec = append(rec, FormatFloat(b.Low))
		}
		rec = append(rec, FormatFloat(b.Close))
		if s.Fields.Has(FieldVolume) {
			rec = append(rec, FormatFloat(b.Volume))
		}
		records = append(records, rec)
	}
	return RawTable{Ticker: s.Ticker, Header: header, Records: records}
}

// FormatFloat writes the shortest round-tripping representation; NaN becomes an empty cell.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
