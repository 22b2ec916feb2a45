package indicator

import (
	"errors"
	"math"
)

// CalculateRSI returns the relative strength index using a trailing simple mean
// of gains and losses over period deltas. Index i needs the deltas i-period+1..i,
// so the first period points are NaN. A window without losses reads as 100.
func CalculateRSI(prices []float64, period int) []float64 {
	if period <= 0 {
		return nil
	}
	rsi := nanSeries(len(prices))

	for i := period; i < len(prices); i++ {
		var gain, loss float64
		for j := i - period + 1; j <= i; j++ {
			change := prices[j] - prices[j-1]
			if change > 0 {
				gain += change
			} else {
				loss += -change
			}
		}
		rsi[i] = rsiFrom(gain/float64(period), loss/float64(period))
	}
	return rsi
}

// CalculateLastRSI returns the RSI of the most recent price.
func CalculateLastRSI(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) <= period {
		return 0, errors.New("insufficient data for RSI calculation")
	}
	rsi := CalculateRSI(prices[len(prices)-period-1:], period)
	return rsi[len(rsi)-1], nil
}

func rsiFrom(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	if math.IsInf(rs, 0) || math.IsNaN(rs) {
		return 100
	}
	return 100 - (100 / (1 + rs))
}
