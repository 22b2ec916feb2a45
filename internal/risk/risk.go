// Package risk gates trading signals by recent volatility and sizes approved
// trades as a fixed fraction of portfolio value.
package risk

import (
	"math"
	"strconv"

	"github.com/amirphl/pantheon/internal/strategy"
)

const (
	DefaultMaxRiskFraction = 0.02

	VolatilityCap     = 0.05 // volatility at which confidence reaches 0
	ConfidenceFloor   = 0.3  // trades below this confidence are rejected
	VolatilityWindow  = 14   // returns in the rolling standard deviation
	MinVolatilityBars = VolatilityWindow + 1

	ReasonLowConfidence   = "low confidence"
	ReasonNonPositiveSize = "non-positive position size"
)

// Evaluator approves or rejects candidate trades. It holds no state between calls.
type Evaluator struct {
	MaxRiskFraction float64
}

// NewEvaluator returns an evaluator risking maxRisk of portfolio value per trade.
// A non-positive maxRisk falls back to DefaultMaxRiskFraction.
func NewEvaluator(maxRisk float64) *Evaluator {
	if maxRisk <= 0 || math.IsNaN(maxRisk) {
		maxRisk = DefaultMaxRiskFraction
	}
	return &Evaluator{MaxRiskFraction: maxRisk}
}

// Evaluate decides whether a BUY/SELL signal at price becomes a trade.
// closes is the trailing close history up to and including the current day.
func (e *Evaluator) Evaluate(symbol string, closes []float64, action strategy.Signal, price, portfolioValue float64) Decision {
	confidence := Confidence(Volatility(closes))

	d := Decision{
		Symbol:     symbol,
		Action:     action,
		Confidence: confidence,
		Price:      price,
	}

	if confidence < ConfidenceFloor {
		d.Outcome = Rejected{Reason: ReasonLowConfidence}
		return d
	}

	size := PositionSize(e.MaxRiskFraction, portfolioValue)
	if size <= 0 {
		d.Outcome = Rejected{Reason: ReasonNonPositiveSize}
		return d
	}

	d.Outcome = Approved{PositionSize: size}
	return d
}

// PositionSize returns fraction * portfolioValue rounded to cents. Rounding
// works on the exact binary value of the float product, so 0.02 * 12119.25
// (stored just below 242.385) gives 242.38.
func PositionSize(fraction, portfolioValue float64) float64 {
	if math.IsNaN(fraction) || math.IsNaN(portfolioValue) || math.IsInf(portfolioValue, 0) {
		return 0
	}
	size, err := strconv.ParseFloat(strconv.FormatFloat(fraction*portfolioValue, 'f', 2, 64), 64)
	if err != nil {
		return 0
	}
	return size
}

// Volatility returns the sample standard deviation of the last VolatilityWindow
// daily percentage returns. Fewer than MinVolatilityBars closes, or a non-finite
// result, yields 0.
func Volatility(closes []float64) float64 {
	if len(closes) < MinVolatilityBars {
		return 0
	}

	window := closes[len(closes)-MinVolatilityBars:]
	returns := make([]float64, 0, VolatilityWindow)
	for i := 1; i < len(window); i++ {
		returns = append(returns, (window[i]-window[i-1])/window[i-1])
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	std := math.Sqrt(variance / float64(len(returns)-1))

	if math.IsNaN(std) || math.IsInf(std, 0) {
		return 0
	}
	return std
}

// Confidence maps volatility to [0, 1]: 0 volatility is 1, VolatilityCap or more is 0.
func Confidence(volatility float64) float64 {
	if volatility < 0 || math.IsNaN(volatility) {
		return 1
	}
	c := 1 - math.Min(volatility/VolatilityCap, 1)
	return math.Max(0, math.Min(1, c))
}
