package report

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/amirphl/pantheon/internal/backtest"
)

type recordRow struct {
	RunID      string  `parquet:"run_id"`
	Date       string  `parquet:"date"`
	Ticker     string  `parquet:"ticker"`
	Action     string  `parquet:"action"`
	Quantity   int64   `parquet:"quantity"`
	Price      float64 `parquet:"price"`
	Cash       float64 `parquet:"cash"`
	StockValue float64 `parquet:"stock_value"`
	TotalValue float64 `parquet:"total_value"`
}

type tradeRow struct {
	RunID        string  `parquet:"run_id"`
	Date         string  `parquet:"date"`
	Symbol       string  `parquet:"symbol"`
	Action       string  `parquet:"action"`
	Shares       int64   `parquet:"shares"`
	Price        float64 `parquet:"price"`
	Amount       float64 `parquet:"amount"`
	PositionSize float64 `parquet:"position_size"`
	Confidence   float64 `parquet:"confidence"`
}

// WriteParquet saves the daily records and the trade log as Parquet files
// tagged with the run id, so files from several runs can be queried together.
func WriteParquet(dir string, res backtest.Result) ([]string, error) {
	records := make([]recordRow, len(res.Records))
	for i, r := range res.Records {
		records[i] = recordRow{
			RunID:      res.RunID,
			Date:       r.Date.Format(time.DateOnly),
			Ticker:     r.Ticker,
			Action:     r.Action.String(),
			Quantity:   r.Quantity,
			Price:      r.Price,
			Cash:       r.Cash,
			StockValue: r.StockValue,
			TotalValue: r.TotalValue,
		}
	}

	trades := make([]tradeRow, len(res.Trades))
	for i, t := range res.Trades {
		trades[i] = tradeRow{
			RunID:        res.RunID,
			Date:         t.Time.Format(time.DateOnly),
			Symbol:       t.Symbol,
			Action:       t.Action.String(),
			Shares:       t.Shares,
			Price:        t.Price,
			Amount:       t.ActualCost,
			PositionSize: t.PositionSize,
			Confidence:   t.Confidence,
		}
	}

	recordsPath := filepath.Join(dir, RecordsFile+".parquet")
	if err := parquet.WriteFile(recordsPath, records); err != nil {
		return nil, fmt.Errorf("error writing %s: %w", recordsPath, err)
	}
	tradesPath := filepath.Join(dir, TradesFile+".parquet")
	if err := parquet.WriteFile(tradesPath, trades); err != nil {
		return []string{recordsPath}, fmt.Errorf("error writing %s: %w", tradesPath, err)
	}
	return []string{recordsPath, tradesPath}, nil
}
