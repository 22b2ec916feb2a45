package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/amirphl/pantheon/internal/backtest"
)

const (
	RecordsFile = "daily_records"
	TradesFile  = "trades"
)

// WriteCSV saves the daily records and the trade log as CSV files.
func WriteCSV(dir string, res backtest.Result) ([]string, error) {
	recordRows := [][]string{{"Date", "Ticker", "Action", "Quantity", "Price", "Cash", "Stock", "Total Value"}}
	for _, r := range res.Records {
		recordRows = append(recordRows, []string{
			r.Date.Format(time.DateOnly),
			r.Ticker,
			r.Action.String(),
			strconv.FormatInt(r.Quantity, 10),
			Money(r.Price),
			Money(r.Cash),
			Money(r.StockValue),
			Money(r.TotalValue),
		})
	}

	tradeRows := [][]string{{"Trade#", "Date", "Symbol", "Action", "Shares", "Price", "Amount", "PositionSize", "Confidence"}}
	for i, t := range res.Trades {
		tradeRows = append(tradeRows, []string{
			strconv.Itoa(i + 1),
			t.Time.Format(time.DateOnly),
			t.Symbol,
			t.Action.String(),
			strconv.FormatInt(t.Shares, 10),
			Money(t.Price),
			Money(t.ActualCost),
			Money(t.PositionSize),
			fmt.Sprintf("%.4f", t.Confidence),
		})
	}

	recordsPath := filepath.Join(dir, RecordsFile+".csv")
	tradesPath := filepath.Join(dir, TradesFile+".csv")
	if err := saveCSV(recordsPath, recordRows); err != nil {
		return nil, err
	}
	if err := saveCSV(tradesPath, tradeRows); err != nil {
		return []string{recordsPath}, err
	}
	return []string{recordsPath, tradesPath}, nil
}

func saveCSV(filename string, rows [][]string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating CSV file %s: %w", filename, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("error writing to CSV file %s: %w", filename, err)
	}
	return nil
}
