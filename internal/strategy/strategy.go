// Package strategy turns indicator series into per-date trading signals.
package strategy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amirphl/pantheon/internal/indicator"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// Strategy is the interface for all signal generators.
type Strategy interface {
	Name() string
	WarmupPeriod() int                 // Returns the number of bars needed before signals are meaningful
	Signals(closes []float64) []Signal // One signal per close, computed without lookahead
}

// Signal is the categorical decision for one date.
type Signal int8

const (
	Hold Signal = 0
	Buy  Signal = 1
	Sell Signal = -1
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// IsTrade reports whether the signal asks for a BUY or a SELL.
func (s Signal) IsTrade() bool {
	return s == Buy || s == Sell
}

func (s Signal) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Signal) UnmarshalText(b []byte) error {
	v, err := ParseSignal(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSignal parses BUY, SELL or HOLD, case-insensitively.
func ParseSignal(s string) (Signal, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	case "HOLD", "":
		return Hold, nil
	default:
		return Hold, fmt.Errorf("invalid signal %q", s)
	}
}

// Names lists the strategies New understands.
func Names() []string {
	return []string{"composite", "ema-crossover", "macd-crossover", "rsi-band"}
}

// New creates a strategy by name using the given indicator periods.
func New(name string, p indicator.Params) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "composite":
		return NewComposite(p), nil
	case "ema-crossover", "ema":
		return NewEMACrossover(p.EMAFast, p.EMASlow), nil
	case "macd-crossover", "macd":
		return NewMACDCrossover(p.MACDShort, p.MACDLong, p.MACDSignal), nil
	case "rsi-band", "rsi":
		return NewRSIBand(p.RSIPeriod, 70, 30), nil
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownStrategy)
	}
}
