// Package indicator computes technical indicators over a closing-price series.
// Every function returns a slice aligned with its input; dates without enough
// history hold NaN.
package indicator

import "math"

// Params are the caller supplied indicator periods.
type Params struct {
	EMASpan    int `yaml:"ema_span" default:"14" validate:"gt=0"`
	RSIPeriod  int `yaml:"rsi_period" default:"14" validate:"gt=0"`
	MACDShort  int `yaml:"macd_short" default:"12" validate:"gt=0"`
	MACDLong   int `yaml:"macd_long" default:"26" validate:"gt=0,gtfield=MACDShort"`
	MACDSignal int `yaml:"macd_signal" default:"9" validate:"gt=0"`
	EMAFast    int `yaml:"ema_fast" default:"10" validate:"gt=0"`
	EMASlow    int `yaml:"ema_slow" default:"50" validate:"gt=0,gtfield=EMAFast"`
}

// DefaultParams returns EMA 14, RSI 14, MACD 12/26/9 and an EMA 10/50
// crossover pair.
func DefaultParams() Params {
	return Params{
		EMASpan:    14,
		RSIPeriod:  14,
		MACDShort:  12,
		MACDLong:   26,
		MACDSignal: 9,
		EMAFast:    10,
		EMASlow:    50,
	}
}

// Values is the indicator set of a single date.
type Values struct {
	EMA        float64
	RSI        float64
	MACD       float64
	MACDSignal float64
}

// Defined reports whether RSI, MACD and the MACD signal all hold a value.
func (v Values) Defined() bool {
	return !math.IsNaN(v.RSI) && !math.IsNaN(v.MACD) && !math.IsNaN(v.MACDSignal)
}

// Set holds per-date indicator series aligned with the price series they came from.
type Set struct {
	EMA        []float64
	RSI        []float64
	MACD       []float64
	MACDSignal []float64
}

// Compute derives EMA, RSI and MACD from closes.
func Compute(closes []float64, p Params) Set {
	macd, signal := CalculateMACD(closes, p.MACDShort, p.MACDLong, p.MACDSignal)
	return Set{
		EMA:        CalculateEMA(closes, p.EMASpan),
		RSI:        CalculateRSI(closes, p.RSIPeriod),
		MACD:       macd,
		MACDSignal: signal,
	}
}

// Len returns the number of dates covered by the set.
func (s Set) Len() int {
	return len(s.RSI)
}

// At returns the indicator values of date i; missing entries read as NaN.
func (s Set) At(i int) Values {
	return Values{
		EMA:        at(s.EMA, i),
		RSI:        at(s.RSI, i),
		MACD:       at(s.MACD, i),
		MACDSignal: at(s.MACDSignal, i),
	}
}

func at(series []float64, i int) float64 {
	if i < 0 || i >= len(series) {
		return math.NaN()
	}
	return series[i]
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
