// Package portfolio keeps the cash and long-only positions of one simulated
// account and executes approved trades against them.
package portfolio

import (
	"math"
	"sort"
	"time"

	"github.com/amirphl/pantheon/internal/risk"
	"github.com/amirphl/pantheon/internal/strategy"
)

// Position is an open long holding. EntryPrice is the share-weighted average cost.
type Position struct {
	Symbol     string  `json:"symbol"`
	Shares     int64   `json:"shares"`
	EntryPrice float64 `json:"entry_price"`
}

// Trade is one executed BUY or SELL.
type Trade struct {
	Time         time.Time       `json:"time"`
	Symbol       string          `json:"symbol"`
	Action       strategy.Signal `json:"action"`
	Shares       int64           `json:"shares"`
	Price        float64         `json:"price"`
	ActualCost   float64         `json:"actual_cost"` // cost for BUY, proceeds for SELL
	PositionSize float64         `json:"position_size"`
	Confidence   float64         `json:"confidence"`
}

// Ledger owns the account state of a single run. It is not safe for concurrent
// use; parallel runs each need their own Ledger.
type Ledger struct {
	cash      float64
	positions map[string]Position
	trades    []Trade
}

func New(startingCash float64) *Ledger {
	return &Ledger{
		cash:      startingCash,
		positions: make(map[string]Position),
	}
}

// Execute applies an approved decision. It reports false, leaving the ledger
// untouched, when the decision was rejected or the trade cannot be filled.
func (l *Ledger) Execute(at time.Time, d risk.Decision) (Trade, bool) {
	approved, ok := d.Approved()
	if !ok {
		return Trade{}, false
	}
	switch d.Action {
	case strategy.Buy:
		return l.buy(at, d, approved.PositionSize)
	case strategy.Sell:
		return l.sell(at, d, approved.PositionSize)
	default:
		return Trade{}, false
	}
}

// buy spends at most size on whole shares. A size below one share is a no-op.
func (l *Ledger) buy(at time.Time, d risk.Decision, size float64) (Trade, bool) {
	if d.Price <= 0 || l.cash < size {
		return Trade{}, false
	}
	shares := int64(math.Floor(size / d.Price))
	if shares <= 0 {
		return Trade{}, false
	}

	cost := float64(shares) * d.Price
	pos, held := l.positions[d.Symbol]
	if held {
		total := pos.Shares + shares
		pos.EntryPrice = (float64(pos.Shares)*pos.EntryPrice + float64(shares)*d.Price) / float64(total)
		pos.Shares = total
	} else {
		pos = Position{Symbol: d.Symbol, Shares: shares, EntryPrice: d.Price}
	}
	l.positions[d.Symbol] = pos
	l.cash -= cost

	return l.record(at, d, shares, cost, size), true
}

// sell liquidates the whole position. Without an open position it is a no-op.
func (l *Ledger) sell(at time.Time, d risk.Decision, size float64) (Trade, bool) {
	pos, held := l.positions[d.Symbol]
	if !held {
		return Trade{}, false
	}

	proceeds := float64(pos.Shares) * d.Price
	l.cash += proceeds
	delete(l.positions, d.Symbol)

	return l.record(at, d, pos.Shares, proceeds, size), true
}

func (l *Ledger) record(at time.Time, d risk.Decision, shares int64, amount, size float64) Trade {
	t := Trade{
		Time:         at,
		Symbol:       d.Symbol,
		Action:       d.Action,
		Shares:       shares,
		Price:        d.Price,
		ActualCost:   amount,
		PositionSize: size,
		Confidence:   d.Confidence,
	}
	l.trades = append(l.trades, t)
	return t
}

// Value is cash plus open positions marked at prices. Symbols without a price
// contribute nothing.
func (l *Ledger) Value(prices map[string]float64) float64 {
	value := l.cash
	for symbol, pos := range l.positions {
		if price, ok := prices[symbol]; ok {
			value += float64(pos.Shares) * price
		}
	}
	return value
}

func (l *Ledger) Cash() float64 { return l.cash }

// Position returns the open position in symbol, if any.
func (l *Ledger) Position(symbol string) (Position, bool) {
	pos, ok := l.positions[symbol]
	return pos, ok
}

// Shares returns the number of shares held in symbol.
func (l *Ledger) Shares(symbol string) int64 {
	return l.positions[symbol].Shares
}

// Positions returns the open positions ordered by symbol.
func (l *Ledger) Positions() []Position {
	out := make([]Position, 0, len(l.positions))
	for _, pos := range l.positions {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Trades returns a copy of the trade log in execution order.
func (l *Ledger) Trades() []Trade {
	out := make([]Trade, len(l.trades))
	copy(out, l.trades)
	return out
}
