// Package feed loads daily price history from the configured source. Every
// source is read-only and returns bars sorted by date with duplicates removed.
package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/amirphl/pantheon/internal/candle"
	"github.com/amirphl/pantheon/internal/config"
)

var ErrUnknownSource = errors.New("unknown feed source")

// Source is the interface for all historical bar providers.
type Source interface {
	Name() string
	// Bars returns the bars of symbol with from <= timestamp < to. Zero bounds are open.
	Bars(ctx context.Context, symbol string, from, to time.Time) ([]candle.Bar, error)
}

// New builds the source named by cfg.Source.
func New(cfg config.Feed, db config.DB, log zerolog.Logger) (Source, error) {
	switch cfg.Source {
	case "csv":
		return NewCSVSource(cfg.CSVPath), nil
	case "postgres":
		src, err := OpenPostgres(db, cfg.Timeframe)
		if err != nil {
			return nil, err
		}
		return src, nil
	case "wallex":
		return NewWallexSource(cfg, log), nil
	case "yahoo":
		return NewYahooSource(cfg, log), nil
	default:
		return nil, fmt.Errorf("%q: %w", cfg.Source, ErrUnknownSource)
	}
}

// finalize folds bars into daily bars, trims to [from, to) and validates them.
// Intraday candles become one OHLCV bar per date.
func finalize(bars []candle.Bar, from, to time.Time) ([]candle.Bar, error) {
	bars = candle.Between(candle.Daily(bars), from, to)
	if err := candle.ValidateSeries(bars); err != nil {
		return nil, err
	}
	return bars, nil
}

// retry calls fn until it succeeds, attempts run out or ctx is done. The
// delay doubles after every failure and is capped at maxBackoff.
func retry(ctx context.Context, log zerolog.Logger, name string, attempts int, delay time.Duration, fn func() error) error {
	const maxBackoff = 5 * time.Minute

	if attempts <= 0 {
		attempts = 1
	}
	backoff := delay
	var lastErr error
	for i := 1; i <= attempts; i++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if i == attempts {
			break
		}
		log.Warn().Err(lastErr).Msgf("Feed | %s Retry attempt %d/%d failed. Backing off for %v", name, i, attempts, backoff)

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
	return fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}
