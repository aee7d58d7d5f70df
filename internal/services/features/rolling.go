package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// The helpers below return a slice aligned with the input where undefined positions
// hold NaN. Every value at index t reads only x[..t].

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// pctChange is x[t]/x[t-k] - 1.
func pctChange(x []float64, k int) []float64 {
	out := nanSlice(len(x))
	for t := k; t < len(x); t++ {
		out[t] = x[t]/x[t-k] - 1
	}
	return out
}

// logDiff is ln(x[t]) - ln(x[t-1]).
func logDiff(x []float64) []float64 {
	out := nanSlice(len(x))
	for t := 1; t < len(x); t++ {
		out[t] = math.Log(x[t]) - math.Log(x[t-1])
	}
	return out
}

// rollingMean is the mean of the trailing w values; NaN unless all w are defined.
func rollingMean(x []float64, w int) []float64 {
	return rolling(x, w, func(win []float64) float64 { return stat.Mean(win, nil) })
}

// rollingStd is the sample (n-1) standard deviation of the trailing w values.
func rollingStd(x []float64, w int) []float64 {
	return rolling(x, w, func(win []float64) float64 { return stat.StdDev(win, nil) })
}

// rollingMax is the maximum of the trailing w values.
func rollingMax(x []float64, w int) []float64 {
	return rolling(x, w, floats.Max)
}

func rolling(x []float64, w int, fn func([]float64) float64) []float64 {
	out := nanSlice(len(x))
	if w <= 0 {
		return out
	}
	for t := w - 1; t < len(x); t++ {
		win := x[t-w+1 : t+1]
		if hasNaN(win) {
			continue
		}
		out[t] = fn(win)
	}
	return out
}

// lead returns x shifted one step into the past: out[t] = x[t+1]. Only targets use it.
func lead(x []float64) []float64 {
	out := nanSlice(len(x))
	for t := 0; t+1 < len(x); t++ {
		out[t] = x[t+1]
	}
	return out
}

func hasNaN(xs []float64) bool {
	for _, v := range xs {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func finite(xs ...float64) bool {
	for _, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
