// Package candle
package candle

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

var (
	ErrUnsorted  = errors.New("bars are not in strictly increasing date order")
	ErrEmptyBars = errors.New("no bars")
)

// Bar is one daily OHLCV price bar.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Symbol    string    `json:"symbol"`
	Source    string    `json:"source"`
}

// Date returns the bar's calendar date formatted as YYYY-MM-DD.
func (b Bar) Date() string {
	return b.Timestamp.Format(time.DateOnly)
}

// Validate checks if a bar has usable data
func (b *Bar) Validate() error {
	if b.Timestamp.IsZero() {
		return errors.New("bar timestamp is zero")
	}
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("bar fields must be finite numbers")
		}
	}
	if b.Close <= 0 {
		return errors.New("bar close price must be positive")
	}
	if b.Volume < 0 {
		return errors.New("bar volume cannot be negative")
	}
	return nil
}

// ValidateSeries checks every bar and enforces strictly increasing timestamps.
func ValidateSeries(bars []Bar) error {
	for i := range bars {
		if err := bars[i].Validate(); err != nil {
			return fmt.Errorf("invalid bar at index %d: %w", i, err)
		}
		if i > 0 && !bars[i].Timestamp.After(bars[i-1].Timestamp) {
			return fmt.Errorf("bar at index %d (%s) does not follow %s: %w",
				i, bars[i].Date(), bars[i-1].Date(), ErrUnsorted)
		}
	}
	return nil
}

// SortAndDedup orders bars by timestamp and keeps the first bar seen for each date.
func SortAndDedup(bars []Bar) []Bar {
	if len(bars) == 0 {
		return bars
	}
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})

	out := make([]Bar, 0, len(bars))
	seen := make(map[string]struct{}, len(bars))
	for _, b := range bars {
		key := b.Date()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, b)
	}
	return out
}

// Daily folds bars into one bar per UTC calendar date: first open, highest
// high, lowest low, last close and summed volume. Bars sharing an exact
// timestamp keep the first one seen. Daily input passes through unchanged
// apart from the timestamp being truncated to midnight UTC.
func Daily(bars []Bar) []Bar {
	if len(bars) == 0 {
		return bars
	}
	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	out := make([]Bar, 0, len(sorted))
	for i, b := range sorted {
		if i > 0 && b.Timestamp.Equal(sorted[i-1].Timestamp) {
			continue
		}
		day := DayOf(b.Timestamp)
		if n := len(out); n > 0 && out[n-1].Timestamp.Equal(day) {
			agg := &out[n-1]
			agg.High = math.Max(agg.High, b.High)
			agg.Low = math.Min(agg.Low, b.Low)
			agg.Close = b.Close
			agg.Volume += b.Volume
			continue
		}
		b.Timestamp = day
		out = append(out, b)
	}
	return out
}

// DayOf truncates t to midnight UTC of its calendar date.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Closes extracts the closing price column.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Between returns the bars with from <= timestamp < to. Zero bounds are open.
func Between(bars []Bar, from, to time.Time) []Bar {
	var out []Bar
	for _, b := range bars {
		if !from.IsZero() && b.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && !b.Timestamp.Before(to) {
			continue
		}
		out = append(out, b)
	}
	return out
}
