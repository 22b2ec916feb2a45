// Package report writes simulation results to disk and renders them for the
// terminal.
package report

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/amirphl/pantheon/internal/backtest"
)

var ErrUnknownFormat = errors.New("unknown report format")

const (
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatParquet = "parquet"
)

// Write saves res in every requested format under dir and returns the files
// it created.
func Write(dir string, formats []string, res backtest.Result) ([]string, error) {
	for _, f := range formats {
		switch strings.ToLower(f) {
		case FormatCSV, FormatJSON, FormatParquet:
		default:
			return nil, fmt.Errorf("%q: %w", f, ErrUnknownFormat)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("Write | failed to create %s: %w", dir, err)
	}

	var written []string
	for _, f := range formats {
		var (
			paths []string
			err   error
		)
		switch strings.ToLower(f) {
		case FormatCSV:
			paths, err = WriteCSV(dir, res)
		case FormatJSON:
			paths, err = WriteJSON(dir, res)
		case FormatParquet:
			paths, err = WriteParquet(dir, res)
		}
		if err != nil {
			return written, err
		}
		written = append(written, paths...)
	}
	return written, nil
}

// Money formats an amount with exactly two decimals.
func Money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
