package feed

import (
	"context"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartBar(ts time.Time, price float64) finance.ChartBar {
	p := decimal.NewFromFloat(price)
	return finance.ChartBar{
		Timestamp: int(ts.Unix()),
		Open:      p,
		High:      p,
		Low:       p,
		Close:     p,
		AdjClose:  p,
		Volume:    1000,
	}
}

func TestYahooSourceBars(t *testing.T) {
	var got *chart.Params
	src := &YahooSource{
		attempts: 1,
		log:      zerolog.Nop(),
		fetch: func(p *chart.Params) ([]finance.ChartBar, error) {
			got = p
			return []finance.ChartBar{
				chartBar(day(2).Add(14*time.Hour+30*time.Minute), 185.64),
				chartBar(day(3).Add(14*time.Hour+30*time.Minute), 184.25),
				chartBar(day(4), 0), // halted day with no close
			}, nil
		},
	}

	bars, err := src.Bars(context.Background(), "AAPL", day(1), day(10))
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, datetime.OneDay, got.Interval)

	require.Len(t, bars, 2)
	assert.Equal(t, day(2), bars[0].Timestamp)
	assert.InDelta(t, 185.64, bars[0].Close, 1e-9)
	assert.Equal(t, 1000.0, bars[1].Volume)
	assert.Equal(t, "yahoo", bars[1].Source)
}
