package indicator

// CalculateMACD returns the MACD line (EMA short - EMA long) and its signal line
// (EMA of the MACD line). Inputs shorter than long yield all-NaN series.
func CalculateMACD(prices []float64, short, long, signal int) ([]float64, []float64) {
	if short <= 0 || long <= 0 || signal <= 0 || len(prices) < long {
		return nanSeries(len(prices)), nanSeries(len(prices))
	}

	shortEMA := CalculateEMA(prices, short)
	longEMA := CalculateEMA(prices, long)

	macd := make([]float64, len(prices))
	for i := range prices {
		macd[i] = shortEMA[i] - longEMA[i]
	}
	return macd, CalculateEMA(macd, signal)
}
