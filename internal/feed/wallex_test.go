package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	wallex "github.com/wallexchange/wallex-go"
)

type fakeCandles struct {
	candles    []*wallex.Candle
	failures   int
	calls      int
	symbol     string
	resolution string
}

func (f *fakeCandles) Candles(symbol, resolution string, from, to time.Time) ([]*wallex.Candle, error) {
	f.calls++
	f.symbol, f.resolution = symbol, resolution
	if f.calls <= f.failures {
		return nil, errors.New("rate limited")
	}
	return f.candles, nil
}

func TestWallexSourceBars(t *testing.T) {
	fake := &fakeCandles{
		failures: 1,
		candles: []*wallex.Candle{
			{Timestamp: day(3).Add(3 * time.Hour), Open: "300", High: "300", Low: "300", Close: "300", Volume: "12.5"},
			{Timestamp: day(1), Open: "100", High: "100", Low: "100", Close: "100", Volume: "12.5"},
			{Timestamp: day(2), Open: "1", High: "1", Low: "1", Close: "not-a-number", Volume: "12.5"},
			{Timestamp: day(2).Add(time.Hour), Open: "200", High: "200", Low: "200", Close: "200", Volume: "12.5"},
		},
	}
	src := &WallexSource{client: fake, resolution: "1D", attempts: 2, delay: time.Millisecond, log: zerolog.Nop()}

	bars, err := src.Bars(context.Background(), "btc-usdt", day(1), day(10))
	require.NoError(t, err)

	assert.Equal(t, 2, fake.calls)
	assert.Equal(t, "BTCUSDT", fake.symbol)
	assert.Equal(t, "1D", fake.resolution)

	require.Len(t, bars, 3)
	assert.Equal(t, []float64{100, 200, 300}, []float64{bars[0].Close, bars[1].Close, bars[2].Close})
	assert.Equal(t, day(3), bars[2].Timestamp, "timestamps are truncated to the day")
	assert.Equal(t, 12.5, bars[0].Volume)
	assert.Equal(t, "wallex", bars[0].Source)
	assert.Equal(t, "btc-usdt", bars[0].Symbol)
}

func TestWallexSourceFoldsIntradayCandles(t *testing.T) {
	var candles []*wallex.Candle
	for i, c := range []string{"100", "110", "120", "130", "140", "150"} {
		candles = append(candles, &wallex.Candle{
			Timestamp: day(1).Add(time.Duration(i) * 4 * time.Hour),
			Open:      "95",
			High:      "160",
			Low:       "90",
			Close:     c,
			Volume:    "2",
		})
	}
	candles[2].High, candles[3].Low, candles[0].Open = "175", "80", "99"
	candles = append(candles, &wallex.Candle{Timestamp: day(2), Open: "150", High: "155", Low: "145", Close: "151", Volume: "3"})

	fake := &fakeCandles{candles: candles}
	src := &WallexSource{client: fake, resolution: Resolution("4h"), attempts: 1, delay: time.Millisecond, log: zerolog.Nop()}

	bars, err := src.Bars(context.Background(), "BTCUSDT", day(1), day(10))
	require.NoError(t, err)

	assert.Equal(t, "240", fake.resolution)
	require.Len(t, bars, 2)
	assert.Equal(t, day(1), bars[0].Timestamp)
	assert.Equal(t, 99.0, bars[0].Open)
	assert.Equal(t, 175.0, bars[0].High)
	assert.Equal(t, 80.0, bars[0].Low)
	assert.Equal(t, 150.0, bars[0].Close)
	assert.Equal(t, 12.0, bars[0].Volume)
	assert.Equal(t, 151.0, bars[1].Close)
}

func TestWallexSourceGivesUp(t *testing.T) {
	fake := &fakeCandles{failures: 5}
	src := &WallexSource{client: fake, resolution: "1D", attempts: 2, delay: time.Millisecond, log: zerolog.Nop()}

	_, err := src.Bars(context.Background(), "BTCUSDT", day(1), day(2))
	assert.Error(t, err)
	assert.Equal(t, 2, fake.calls)
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "BTCUSDT", NormalizeSymbol("btc-usdt"))
	assert.Equal(t, "ETHIRT", NormalizeSymbol("ETHIRT"))
}

func TestResolution(t *testing.T) {
	tests := map[string]string{
		"1d":  "1D",
		"1D":  "1D",
		"4h":  "240",
		"1h":  "60",
		"15m": "15",
		"1m":  "1",
	}
	for tf, want := range tests {
		assert.Equal(t, want, Resolution(tf), tf)
	}
}
