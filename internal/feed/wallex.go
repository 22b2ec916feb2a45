package feed

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	wallex "github.com/wallexchange/wallex-go"

	"github.com/amirphl/pantheon/internal/candle"
	"github.com/amirphl/pantheon/internal/config"
)

type candleClient interface {
	Candles(symbol, resolution string, from, to time.Time) ([]*wallex.Candle, error)
}

// WallexSource reads public candles from the Wallex exchange.
type WallexSource struct {
	client     candleClient
	resolution string
	attempts   int
	delay      time.Duration
	log        zerolog.Logger
}

func NewWallexSource(cfg config.Feed, log zerolog.Logger) *WallexSource {
	return &WallexSource{
		client:     wallex.New(wallex.ClientOptions{APIKey: cfg.WallexAPIKey}),
		resolution: Resolution(cfg.Timeframe),
		attempts:   cfg.RetryAttempts,
		delay:      cfg.RetryDelay,
		log:        log,
	}
}

func (w *WallexSource) Name() string { return "wallex" }

func (w *WallexSource) Bars(ctx context.Context, symbol string, from, to time.Time) ([]candle.Bar, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(-5, 0, 0)
	}

	var wallexCandles []*wallex.Candle
	err := retry(ctx, w.log, w.Name(), w.attempts, w.delay, func() error {
		var err error
		wallexCandles, err = w.client.Candles(NormalizeSymbol(symbol), w.resolution, from, to)
		if err != nil {
			return fmt.Errorf("fetching candles: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Bars | wallex %s: %w", symbol, err)
	}

	bars := make([]candle.Bar, 0, len(wallexCandles))
	for _, wc := range wallexCandles {
		b, ok := fromWallex(wc, symbol)
		if !ok {
			continue
		}
		bars = append(bars, b)
	}

	w.log.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("Feed | Fetched wallex candles")
	return finalize(bars, from, to)
}

func fromWallex(wc *wallex.Candle, symbol string) (candle.Bar, bool) {
	var vals [5]float64
	for i, n := range []string{string(wc.Open), string(wc.High), string(wc.Low), string(wc.Close), string(wc.Volume)} {
		v, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return candle.Bar{}, false
		}
		vals[i] = v
	}

	b := candle.Bar{
		Timestamp: wc.Timestamp.UTC(),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
		Symbol:    symbol,
		Source:    "wallex",
	}
	if err := b.Validate(); err != nil {
		return candle.Bar{}, false
	}
	return b, true
}

// NormalizeSymbol converts "btc-usdt" to "BTCUSDT".
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "-", ""))
}

// Resolution maps a timeframe such as 1d, 4h or 15m to the Wallex resolution.
func Resolution(timeframe string) string {
	switch {
	case strings.HasSuffix(timeframe, "d"), strings.HasSuffix(timeframe, "D"):
		return strings.ToUpper(timeframe)
	case strings.HasSuffix(timeframe, "h"):
		n, err := strconv.Atoi(strings.TrimSuffix(timeframe, "h"))
		if err != nil {
			return timeframe
		}
		return strconv.Itoa(n * 60)
	default:
		return strings.TrimSuffix(timeframe, "m")
	}
}
