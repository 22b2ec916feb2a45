package indicator

// CalculateEMA returns the exponential moving average with alpha = 2/(span+1),
// seeded with the first price. It is defined for every point.
func CalculateEMA(prices []float64, span int) []float64 {
	if span <= 0 {
		return nil
	}
	ema := make([]float64, len(prices))
	if len(prices) == 0 {
		return ema
	}

	alpha := 2.0 / float64(span+1)
	ema[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		ema[i] = prices[i]*alpha + ema[i-1]*(1-alpha)
	}
	return ema
}

// CalculateSMA returns the trailing simple moving average; the first period-1
// points are NaN.
func CalculateSMA(prices []float64, period int) []float64 {
	if period <= 0 {
		return nil
	}
	sma := nanSeries(len(prices))
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			sma[i] = sum / float64(period)
		}
	}
	return sma
}
