package backtest

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirphl/pantheon/internal/candle"
	"github.com/amirphl/pantheon/internal/strategy"
)

var start = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

func makeBars(closes ...float64) []candle.Bar {
	bars := make([]candle.Bar, len(closes))
	for i, c := range closes {
		bars[i] = candle.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1000,
			Symbol:    "AAPL",
		}
	}
	return bars
}

func repeat(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

// randomWalk returns a deterministic series with roughly 1% daily moves.
func randomWalk(n int, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	price := 100.0
	for i := range out {
		price *= 1 + (r.Float64()-0.5)*0.02
		out[i] = price
	}
	return out
}

// scripted emits fixed signals on fixed days.
type scripted struct {
	warmup int
	at     map[int]strategy.Signal
}

func (s scripted) Name() string      { return "scripted" }
func (s scripted) WarmupPeriod() int { return s.warmup }

func (s scripted) Signals(closes []float64) []strategy.Signal {
	out := make([]strategy.Signal, len(closes))
	for i, sig := range s.at {
		if i < len(out) {
			out[i] = sig
		}
	}
	return out
}

func TestRunInsufficientHistory(t *testing.T) {
	tests := []struct {
		name string
		bars []candle.Bar
	}{
		{name: "Empty", bars: nil},
		{name: "Exactly lookback", bars: makeBars(repeat(DefaultMinHistory, 100)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewSimulator().Run(tt.bars, "AAPL", 10000)
			require.ErrorIs(t, err, ErrInsufficientHistory)

			assert.False(t, res.Summary.Completed)
			assert.Empty(t, res.Records)
			assert.Empty(t, res.Trades)
			assert.Equal(t, 10000.0, res.Summary.FinalValue)
			assert.NotEmpty(t, res.RunID)
		})
	}
}

func TestRunCompletesWithoutTrades(t *testing.T) {
	res, err := NewSimulator().Run(makeBars(repeat(60, 100)...), "AAPL", 10000)
	require.NoError(t, err)

	assert.True(t, res.Summary.Completed)
	assert.Len(t, res.Records, 60-DefaultMinHistory)
	assert.Empty(t, res.Trades)
	assert.Equal(t, 0, res.Summary.BuyCount+res.Summary.SellCount)
	assert.Equal(t, 10000.0, res.Summary.FinalValue)
	assert.Zero(t, res.Summary.TotalReturnPct)
	for _, r := range res.Records {
		assert.Equal(t, strategy.Hold, r.Action)
	}
}

func TestRunRejectsInvalidInput(t *testing.T) {
	bars := makeBars(repeat(60, 100)...)

	_, err := NewSimulator().Run(bars, "AAPL", 0)
	assert.ErrorIs(t, err, ErrInvalidCash)

	bars[10], bars[11] = bars[11], bars[10]
	_, err = NewSimulator().Run(bars, "AAPL", 10000)
	assert.ErrorIs(t, err, candle.ErrUnsorted)
}

func TestRunFlatThenJump(t *testing.T) {
	closes := append(repeat(20, 100), repeat(10, 150)...)
	sim := NewSimulator(
		WithStrategy(scripted{at: map[int]strategy.Signal{15: strategy.Buy}}),
		WithMinHistory(15),
	)

	res, err := sim.Run(makeBars(closes...), "AAPL", 10000)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)

	trade := res.Trades[0]
	assert.Equal(t, strategy.Buy, trade.Action)
	assert.Equal(t, int64(2), trade.Shares)
	assert.Equal(t, 100.0, trade.Price)
	assert.Equal(t, 200.0, trade.PositionSize)

	// Records are pre-trade snapshots.
	assert.Equal(t, strategy.Buy, res.Records[0].Action)
	assert.Equal(t, int64(0), res.Records[0].Quantity)
	assert.Equal(t, 10000.0, res.Records[0].Cash)

	next := res.Records[1]
	assert.Equal(t, int64(2), next.Quantity)
	assert.Equal(t, 9800.0, next.Cash)
	assert.Equal(t, 200.0, next.StockValue)
	assert.Equal(t, 10000.0, next.TotalValue)

	assert.Equal(t, 9800.0+2*150, res.Summary.FinalValue)
	assert.InDelta(t, 1.0, res.Summary.TotalReturnPct, 1e-9)
	assert.Equal(t, 1, res.Summary.BuyCount)
	assert.Equal(t, 1, res.Summary.Executed)
}

func TestRunCountsApprovedActions(t *testing.T) {
	sim := NewSimulator(WithStrategy(scripted{at: map[int]strategy.Signal{
		40: strategy.Buy,
		45: strategy.Sell,
		50: strategy.Sell, // nothing left to sell
	}}))

	res, err := sim.Run(makeBars(repeat(60, 100)...), "AAPL", 10000)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Summary.BuyCount)
	assert.Equal(t, 2, res.Summary.SellCount)
	assert.Equal(t, 2, res.Summary.Executed)
	assert.Len(t, res.Trades, 2)
	assert.Equal(t, strategy.Sell, res.Records[10].Action)
	assert.Equal(t, 10000.0, res.Summary.FinalValue)
}

func TestRunLeavesRejectedDaysAsHold(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
		if i%2 == 1 {
			closes[i] = 120
		}
	}
	always := map[int]strategy.Signal{}
	for i := range closes {
		always[i] = strategy.Buy
	}

	res, err := NewSimulator(WithStrategy(scripted{at: always})).Run(makeBars(closes...), "AAPL", 10000)
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
	assert.Zero(t, res.Summary.BuyCount)
	for _, r := range res.Records {
		assert.Equal(t, strategy.Hold, r.Action)
	}
}

func TestRunHasNoLookahead(t *testing.T) {
	bars := makeBars(randomWalk(160, 7)...)

	for _, name := range strategy.Names() {
		st, err := strategy.New(name, defaultParams())
		require.NoError(t, err)
		sim := NewSimulator(WithStrategy(st))

		for _, n := range []int{70, 100, 130, 159} {
			short, err := sim.Run(bars[:n], "AAPL", 10000)
			require.NoError(t, err)
			long, err := sim.Run(bars[:n+1], "AAPL", 10000)
			require.NoError(t, err)

			require.Len(t, long.Records, len(short.Records)+1, name)
			assert.Equal(t, short.Records, long.Records[:len(short.Records)], "%s n=%d", name, n)
		}
	}
}

func TestLedgerInvariantsHoldThroughRun(t *testing.T) {
	res, err := NewSimulator().Run(makeBars(randomWalk(300, 42)...), "AAPL", 10000)
	require.NoError(t, err)

	for _, r := range res.Records {
		assert.GreaterOrEqual(t, r.Cash, 0.0)
		assert.GreaterOrEqual(t, r.Quantity, int64(0))
		assert.InDelta(t, r.Cash+r.StockValue, r.TotalValue, 1e-6)
	}
}

func TestSummarizeDrawdown(t *testing.T) {
	records := []DailyRecord{
		{TotalValue: 100, Action: strategy.Buy},
		{TotalValue: 120},
		{TotalValue: 90, Action: strategy.Sell},
		{TotalValue: 110},
	}
	sum := summarize(100, 110, records, 2)

	assert.InDelta(t, 25.0, sum.MaxDrawdownPct, 1e-9)
	assert.InDelta(t, 10.0, sum.TotalReturnPct, 1e-9)
	assert.Equal(t, 1, sum.BuyCount)
	assert.Equal(t, 1, sum.SellCount)
	assert.Equal(t, 4, sum.Days)
	assert.True(t, sum.Completed)
}
