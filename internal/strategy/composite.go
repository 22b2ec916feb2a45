package strategy

import (
	"math"

	"github.com/amirphl/pantheon/internal/indicator"
)

// DefaultRSIThreshold splits the RSI range between BUY and SELL regimes.
const DefaultRSIThreshold = 60

// Composite combines RSI and MACD: BUY when RSI is below the threshold while
// MACD is above its signal line, SELL when RSI is above the threshold while MACD
// is below its signal line.
type Composite struct {
	Params       indicator.Params
	RSIThreshold float64
}

func NewComposite(p indicator.Params) *Composite {
	return &Composite{Params: p, RSIThreshold: DefaultRSIThreshold}
}

func (s *Composite) Name() string { return "composite" }

func (s *Composite) WarmupPeriod() int {
	return max(s.Params.MACDLong, s.Params.RSIPeriod+1)
}

func (s *Composite) Signals(closes []float64) []Signal {
	return s.Generate(indicator.Compute(closes, s.Params))
}

// Generate classifies every date of an already computed indicator set.
func (s *Composite) Generate(set indicator.Set) []Signal {
	signals := make([]Signal, set.Len())
	for i := range signals {
		v := set.At(i)
		signals[i] = ClassifyAt(v.RSI, v.MACD, v.MACDSignal, s.RSIThreshold)
	}
	return signals
}

// Generate applies the default composite rule to an indicator set.
func Generate(set indicator.Set) []Signal {
	return (&Composite{RSIThreshold: DefaultRSIThreshold}).Generate(set)
}

// Classify applies the composite rule with the default RSI threshold.
func Classify(rsi, macd, macdSignal float64) Signal {
	return ClassifyAt(rsi, macd, macdSignal, DefaultRSIThreshold)
}

// ClassifyAt is a pure function of one date's values. Any undefined input holds.
func ClassifyAt(rsi, macd, macdSignal, threshold float64) Signal {
	if math.IsNaN(rsi) || math.IsNaN(macd) || math.IsNaN(macdSignal) {
		return Hold
	}
	switch {
	case rsi < threshold && macd > macdSignal:
		return Buy
	case rsi > threshold && macd < macdSignal:
		return Sell
	default:
		return Hold
	}
}
