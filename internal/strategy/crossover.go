package strategy

import (
	"math"

	"github.com/amirphl/pantheon/internal/indicator"
)

// EMACrossover buys when the fast EMA crosses above the slow EMA and sells on
// the opposite cross.
type EMACrossover struct {
	Fast int
	Slow int
}

func NewEMACrossover(fast, slow int) *EMACrossover {
	return &EMACrossover{Fast: fast, Slow: slow}
}

func (s *EMACrossover) Name() string { return "ema-crossover" }

func (s *EMACrossover) WarmupPeriod() int { return s.Slow }

func (s *EMACrossover) Signals(closes []float64) []Signal {
	return crossSignals(
		indicator.CalculateEMA(closes, s.Fast),
		indicator.CalculateEMA(closes, s.Slow),
		len(closes),
	)
}

// MACDCrossover buys when the MACD line crosses above its signal line and sells
// on the opposite cross.
type MACDCrossover struct {
	Fast   int
	Slow   int
	Signal int
}

func NewMACDCrossover(fast, slow, signal int) *MACDCrossover {
	return &MACDCrossover{Fast: fast, Slow: slow, Signal: signal}
}

func (s *MACDCrossover) Name() string { return "macd-crossover" }

func (s *MACDCrossover) WarmupPeriod() int { return s.Slow }

func (s *MACDCrossover) Signals(closes []float64) []Signal {
	macd, sig := indicator.CalculateMACD(closes, s.Fast, s.Slow, s.Signal)
	return crossSignals(macd, sig, len(closes))
}

// crossSignals emits BUY where a crosses above b and SELL where it crosses below.
func crossSignals(a, b []float64, n int) []Signal {
	signals := make([]Signal, n)
	if len(a) < n || len(b) < n {
		return signals
	}
	for i := 1; i < n; i++ {
		switch {
		case crossover(a[i-1], a[i], b[i-1], b[i]):
			signals[i] = Buy
		case crossover(b[i-1], b[i], a[i-1], a[i]):
			signals[i] = Sell
		}
	}
	return signals
}

func crossover(prevA, curA, prevB, curB float64) bool {
	for _, v := range []float64{prevA, curA, prevB, curB} {
		if math.IsNaN(v) {
			return false
		}
	}
	return prevA < prevB && curA > curB
}
