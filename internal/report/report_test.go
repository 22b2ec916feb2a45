package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirphl/pantheon/internal/backtest"
	"github.com/amirphl/pantheon/internal/portfolio"
	"github.com/amirphl/pantheon/internal/strategy"
)

func sampleResult() backtest.Result {
	d1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	return backtest.Result{
		RunID:    "run-1",
		Symbol:   "AAPL",
		Strategy: "composite",
		MaxRisk:  0.02,
		Trades: []portfolio.Trade{
			{Time: d1, Symbol: "AAPL", Action: strategy.Buy, Shares: 2, Price: 100, ActualCost: 200, PositionSize: 200, Confidence: 1},
		},
		Records: []backtest.DailyRecord{
			{Date: d1, Ticker: "AAPL", Action: strategy.Buy, Quantity: 0, Price: 100, Cash: 10000, StockValue: 0, TotalValue: 10000},
			{Date: d2, Ticker: "AAPL", Action: strategy.Hold, Quantity: 2, Price: 150, Cash: 9800, StockValue: 300, TotalValue: 10100},
		},
		Summary: backtest.Summary{
			InitialValue:   10000,
			FinalValue:     10100,
			TotalReturnPct: 1,
			BuyCount:       1,
			Executed:       1,
			Days:           2,
			Completed:      true,
		},
	}
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "10000.00", Money(10000))
	assert.Equal(t, "0.10", Money(0.1))
	assert.Equal(t, "-3.46", Money(-3.456))
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	paths, err := WriteCSV(dir, sampleResult())
	require.NoError(t, err)
	require.Len(t, paths, 2)

	f, err := os.Open(filepath.Join(dir, "daily_records.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Ticker", "Action", "Quantity", "Price", "Cash", "Stock", "Total Value"}, rows[0])
	assert.Equal(t, []string{"2024-03-01", "AAPL", "BUY", "0", "100.00", "10000.00", "0.00", "10000.00"}, rows[1])
	assert.Equal(t, "HOLD", rows[2][2])

	data, err := os.ReadFile(filepath.Join(dir, "trades.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "1,2024-03-01,AAPL,BUY,2,100.00,200.00,200.00,1.0000")
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	_, err := WriteJSON(dir, sampleResult())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ResultFile))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "run-1", doc["run_id"])

	records := doc["records"].([]any)
	assert.Equal(t, "BUY", records[0].(map[string]any)["action"])
}

func TestWriteParquet(t *testing.T) {
	dir := t.TempDir()
	_, err := WriteParquet(dir, sampleResult())
	require.NoError(t, err)

	rows, err := parquet.ReadFile[recordRow](filepath.Join(dir, "daily_records.parquet"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "run-1", rows[1].RunID)
	assert.Equal(t, "2024-03-02", rows[1].Date)
	assert.Equal(t, int64(2), rows[1].Quantity)
	assert.Equal(t, 10100.0, rows[1].TotalValue)

	trades, err := parquet.ReadFile[tradeRow](filepath.Join(dir, "trades.parquet"))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "BUY", trades[0].Action)
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	paths, err := Write(dir, []string{"csv", "JSON", "parquet"}, sampleResult())
	require.NoError(t, err)
	assert.Len(t, paths, 5)
	for _, p := range paths {
		assert.FileExists(t, p)
	}

	_, err = Write(t.TempDir(), []string{"csv", "xml"}, sampleResult())
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(sampleResult())
	assert.Contains(t, out, "Performance Summary: AAPL (composite)")
	assert.Contains(t, out, "$10000.00")
	assert.Contains(t, out, "$10100.00")
	assert.Contains(t, out, "1.00%")
	assert.Contains(t, out, "(Buys: 1, Sells: 0)")
	assert.Contains(t, out, "2024-03-01")

	incomplete := backtest.Result{Symbol: "AAPL", Strategy: "composite", Summary: backtest.Summary{InitialValue: 10000, FinalValue: 10000}}
	assert.Contains(t, RenderSummary(incomplete), "Not enough data points")
}

func TestRenderSweep(t *testing.T) {
	ok := sampleResult()
	out := RenderSweep([]backtest.SweepResult{
		{Spec: backtest.RunSpec{Strategy: "composite", MaxRisk: 0.02}, Result: ok},
		{Spec: backtest.RunSpec{Strategy: "ema-crossover", MaxRisk: 0.02}, Err: errors.New("not enough price history")},
	})
	assert.Contains(t, out, "composite")
	assert.Contains(t, out, "10100.00")
	assert.Contains(t, out, "not enough price history")
}
