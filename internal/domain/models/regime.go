package models

// Regime is a coarse trend x volatility market state, used for stratified analysis only.
type Regime string

const (
	RegimeBullLowVol  Regime = "bull_lowvol"
	RegimeBullHighVol Regime = "bull_highvol"
	RegimeBearLowVol  Regime = "bear_lowvol"
	RegimeBearHighVol Regime = "bear_highvol"
)

// Regimes lists every regime in report order.
var Regimes = []Regime{RegimeBullLowVol, RegimeBullHighVol, RegimeBearLowVol, RegimeBearHighVol}

// RegimeOf maps the trend and volatility flags onto the 2x2 regime table.
func RegimeOf(bull, highVol bool) Regime {
	switch {
	case bull && !highVol:
		return RegimeBullLowVol
	case bull && highVol:
		return RegimeBullHighVol
	case !bull && !highVol:
		return RegimeBearLowVol
	default:
		return RegimeBearHighVol
	}
}

// LabeledRow is a feature row tagged with its regime.
type LabeledRow struct {
	FeatureRow
	Bull    bool
	HighVol bool
	Regime  Regime
}
