package candle

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

var ErrMissingColumn = errors.New("missing required column")

var requiredColumns = []string{"date", "open", "high", "low", "close", "volume"}

var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
	"01/02/2006",
}

// LoadCSV reads a daily price file from disk.
func LoadCSV(path, symbol string) ([]Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadCSV | open %s: %w", path, err)
	}
	defer f.Close()

	bars, err := ParseCSV(f, symbol)
	if err != nil {
		return nil, fmt.Errorf("LoadCSV | %s: %w", path, err)
	}
	return bars, nil
}

// ParseCSV reads a Date,Open,High,Low,Close,Volume table. Column order is taken
// from the header. Rows with an unparseable date or number are dropped and the
// result is sorted by date with duplicate dates removed.
func ParseCSV(r io.Reader, symbol string) ([]Bar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input: %w", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%q: %w", col, ErrMissingColumn)
		}
	}

	var bars []Bar
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		b, ok := parseRow(row, index)
		if !ok {
			continue
		}
		b.Symbol = symbol
		b.Source = "csv"
		bars = append(bars, b)
	}

	return SortAndDedup(bars), nil
}

func parseRow(row []string, index map[string]int) (Bar, bool) {
	field := func(name string) (string, bool) {
		i := index[name]
		if i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}

	raw, ok := field("date")
	if !ok {
		return Bar{}, false
	}
	ts, ok := parseDate(raw)
	if !ok {
		return Bar{}, false
	}

	var vals [5]float64
	for i, name := range requiredColumns[1:] {
		s, ok := field(name)
		if !ok || s == "" {
			return Bar{}, false
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Bar{}, false
		}
		vals[i] = v
	}

	b := Bar{
		Timestamp: ts,
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}
	if err := b.Validate(); err != nil {
		return Bar{}, false
	}
	return b, true
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
