package strategy

import (
	"math"

	"github.com/amirphl/pantheon/internal/indicator"
)

// RSIBand buys while RSI is oversold and sells while it is overbought.
type RSIBand struct {
	Period     int
	Overbought float64
	Oversold   float64
}

// NewRSIBand creates a new RSI band strategy with the given parameters
func NewRSIBand(period int, overbought, oversold float64) *RSIBand {
	return &RSIBand{Period: period, Overbought: overbought, Oversold: oversold}
}

func (s *RSIBand) Name() string { return "rsi-band" }

func (s *RSIBand) WarmupPeriod() int { return s.Period + 1 }

func (s *RSIBand) Signals(closes []float64) []Signal {
	rsi := indicator.CalculateRSI(closes, s.Period)
	signals := make([]Signal, len(closes))
	for i, v := range rsi {
		switch {
		case math.IsNaN(v):
		case v < s.Oversold:
			signals[i] = Buy
		case v > s.Overbought:
			signals[i] = Sell
		}
	}
	return signals
}
