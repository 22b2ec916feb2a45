package feed

import (
	"context"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/rs/zerolog"

	"github.com/amirphl/pantheon/internal/candle"
	"github.com/amirphl/pantheon/internal/config"
)

type chartFetcher func(params *chart.Params) ([]finance.ChartBar, error)

// YahooSource reads daily bars from the Yahoo Finance chart API.
type YahooSource struct {
	fetch    chartFetcher
	attempts int
	delay    time.Duration
	log      zerolog.Logger
}

func NewYahooSource(cfg config.Feed, log zerolog.Logger) *YahooSource {
	return &YahooSource{
		fetch:    fetchChart,
		attempts: cfg.RetryAttempts,
		delay:    cfg.RetryDelay,
		log:      log,
	}
}

func (y *YahooSource) Name() string { return "yahoo" }

func (y *YahooSource) Bars(ctx context.Context, symbol string, from, to time.Time) ([]candle.Bar, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(-5, 0, 0)
	}

	var chartBars []finance.ChartBar
	err := retry(ctx, y.log, y.Name(), y.attempts, y.delay, func() error {
		var err error
		chartBars, err = y.fetch(&chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&from),
			End:      datetime.New(&to),
			Interval: datetime.OneDay,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("Bars | yahoo %s: %w", symbol, err)
	}

	bars := make([]candle.Bar, 0, len(chartBars))
	for _, cb := range chartBars {
		b := fromChartBar(cb, symbol)
		if err := b.Validate(); err != nil {
			continue
		}
		bars = append(bars, b)
	}

	y.log.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("Feed | Fetched yahoo chart")
	return finalize(bars, from, to)
}

func fetchChart(params *chart.Params) ([]finance.ChartBar, error) {
	iter := chart.Get(params)
	var bars []finance.ChartBar
	for iter.Next() {
		bars = append(bars, *iter.Bar())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get historical data for %s: %w", params.Symbol, err)
	}
	return bars, nil
}

func fromChartBar(cb finance.ChartBar, symbol string) candle.Bar {
	return candle.Bar{
		Timestamp: time.Unix(int64(cb.Timestamp), 0).UTC(),
		Open:      cb.Open.InexactFloat64(),
		High:      cb.High.InexactFloat64(),
		Low:       cb.Low.InexactFloat64(),
		Close:     cb.Close.InexactFloat64(),
		Volume:    float64(cb.Volume),
		Symbol:    symbol,
		Source:    "yahoo",
	}
}
