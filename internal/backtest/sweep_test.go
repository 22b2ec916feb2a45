package backtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirphl/pantheon/internal/indicator"
	"github.com/amirphl/pantheon/internal/risk"
	"github.com/amirphl/pantheon/internal/strategy"
)

func defaultParams() indicator.Params { return indicator.DefaultParams() }

func TestGrid(t *testing.T) {
	specs := Grid([]string{"composite", "rsi-band"}, []float64{0.01, 0.02}, defaultParams())
	require.Len(t, specs, 4)
	assert.Equal(t, RunSpec{Strategy: "composite", MaxRisk: 0.01, Params: defaultParams()}, specs[0])
	assert.Equal(t, "rsi-band@0.0200", specs[3].String())
}

func TestSweepMatchesSequentialRuns(t *testing.T) {
	bars := makeBars(randomWalk(200, 3)...)
	specs := Grid(strategy.Names(), []float64{0.01, 0.02, 0.05}, defaultParams())

	results, err := Sweep(context.Background(), bars, "AAPL", 10000, specs, 4)
	require.NoError(t, err)
	require.Len(t, results, len(specs))

	seen := map[string]bool{}
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, specs[i], r.Spec)
		assert.True(t, r.Result.Summary.Completed)
		assert.False(t, seen[r.Result.RunID], "run ids must be unique")
		seen[r.Result.RunID] = true

		st, err := strategy.New(r.Spec.Strategy, r.Spec.Params)
		require.NoError(t, err)
		want, err := NewSimulator(WithStrategy(st), WithEvaluator(risk.NewEvaluator(r.Spec.MaxRisk))).Run(bars, "AAPL", 10000)
		require.NoError(t, err)
		assert.Equal(t, want.Records, r.Result.Records, r.Spec.String())
		assert.Equal(t, want.Summary, r.Result.Summary, r.Spec.String())
	}
}

func TestSweepKeepsPerRunErrors(t *testing.T) {
	bars := makeBars(randomWalk(45, 1)...)

	// 45 bars cover the 40 bar floor but not the 50 bar EMA crossover warmup.
	results, err := Sweep(context.Background(), bars, "AAPL", 10000, []RunSpec{
		{Strategy: "composite", MaxRisk: 0.02},
		{Strategy: "ema-crossover", MaxRisk: 0.02},
	}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, ErrInsufficientHistory)
	assert.False(t, results[1].Result.Summary.Completed)
}

func TestSweepFailures(t *testing.T) {
	bars := makeBars(randomWalk(80, 1)...)

	_, err := Sweep(context.Background(), bars, "AAPL", 10000, []RunSpec{{Strategy: "martingale"}}, 1)
	assert.ErrorIs(t, err, strategy.ErrUnknownStrategy)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Sweep(ctx, bars, "AAPL", 10000, []RunSpec{{Strategy: "composite"}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
