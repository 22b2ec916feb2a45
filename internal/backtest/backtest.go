// Package backtest replays a daily price series through the signal, risk and
// ledger pipeline and keeps one record per simulated day.
package backtest

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/amirphl/pantheon/internal/candle"
	"github.com/amirphl/pantheon/internal/indicator"
	"github.com/amirphl/pantheon/internal/portfolio"
	"github.com/amirphl/pantheon/internal/risk"
	"github.com/amirphl/pantheon/internal/strategy"
)

// DefaultMinHistory is the minimum number of bars seen before the first
// simulated day, independent of the strategy warmup.
const DefaultMinHistory = 40

var (
	ErrInsufficientHistory = errors.New("not enough price history")
	ErrInvalidCash         = errors.New("starting cash must be a positive number")
)

// DailyRecord is the pre-trade snapshot of one simulated day. Action is the
// signal that the risk evaluator approved, or HOLD.
type DailyRecord struct {
	Date       time.Time       `json:"date"`
	Ticker     string          `json:"ticker"`
	Action     strategy.Signal `json:"action"`
	Quantity   int64           `json:"quantity"` // shares held before the day's trade
	Price      float64         `json:"price"`
	Cash       float64         `json:"cash"`
	StockValue float64         `json:"stock_value"`
	TotalValue float64         `json:"total_value"`
}

// Summary holds the performance figures of a run.
type Summary struct {
	InitialValue   float64 `json:"initial_value"`
	FinalValue     float64 `json:"final_value"`
	TotalReturnPct float64 `json:"total_return_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	BuyCount       int     `json:"buy_count"`
	SellCount      int     `json:"sell_count"`
	Executed       int     `json:"executed"` // trades that actually filled
	Days           int     `json:"days"`
	Completed      bool    `json:"completed"` // false when the run stopped for lack of history
}

// Result is everything a run produces.
type Result struct {
	RunID    string            `json:"run_id"`
	Symbol   string            `json:"symbol"`
	Strategy string            `json:"strategy"`
	MaxRisk  float64           `json:"max_risk"`
	Trades   []portfolio.Trade `json:"trades"`
	Records  []DailyRecord     `json:"records"`
	Summary  Summary           `json:"summary"`
}

// Simulator drives one strategy and one risk evaluator over a bar series. A
// Simulator is reusable; every Run starts from a fresh Ledger.
type Simulator struct {
	Strategy   strategy.Strategy
	Evaluator  *risk.Evaluator
	MinHistory int
	Logger     zerolog.Logger
}

type Option func(*Simulator)

func WithStrategy(s strategy.Strategy) Option {
	return func(sim *Simulator) { sim.Strategy = s }
}

func WithEvaluator(e *risk.Evaluator) Option {
	return func(sim *Simulator) { sim.Evaluator = e }
}

func WithMinHistory(n int) Option {
	return func(sim *Simulator) { sim.MinHistory = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(sim *Simulator) { sim.Logger = l }
}

// NewSimulator defaults to the composite strategy, a 2% evaluator, a 40 bar
// history floor and a disabled logger.
func NewSimulator(opts ...Option) *Simulator {
	sim := &Simulator{
		Strategy:   strategy.NewComposite(indicator.DefaultParams()),
		Evaluator:  risk.NewEvaluator(risk.DefaultMaxRiskFraction),
		MinHistory: DefaultMinHistory,
		Logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(sim)
	}
	return sim
}

// Lookback is the index of the first simulated day.
func (s *Simulator) Lookback() int {
	return max(s.Strategy.WarmupPeriod(), s.MinHistory)
}

// Run simulates trading symbol over bars starting with startingCash.
//
// A series no longer than the lookback is not simulated: Run returns
// ErrInsufficientHistory together with a Result whose Summary is not Completed.
// A run that completes without trading returns a nil error and zero trades.
func (s *Simulator) Run(bars []candle.Bar, symbol string, startingCash float64) (Result, error) {
	res := Result{
		RunID:    uuid.NewString(),
		Symbol:   symbol,
		Strategy: s.Strategy.Name(),
		MaxRisk:  s.Evaluator.MaxRiskFraction,
		Summary: Summary{
			InitialValue: startingCash,
			FinalValue:   startingCash,
		},
	}
	log := s.Logger.With().Str("run_id", res.RunID).Str("symbol", symbol).Str("strategy", res.Strategy).Logger()

	if startingCash <= 0 || math.IsNaN(startingCash) || math.IsInf(startingCash, 0) {
		return res, fmt.Errorf("Run | %v: %w", startingCash, ErrInvalidCash)
	}
	if err := candle.ValidateSeries(bars); err != nil {
		return res, fmt.Errorf("Run | %w", err)
	}

	lookback := s.Lookback()
	if len(bars) <= lookback {
		log.Warn().Int("bars", len(bars)).Int("lookback", lookback).Msg("Run | Not enough data points, simulation skipped")
		return res, fmt.Errorf("Run | %d bars, need more than %d: %w", len(bars), lookback, ErrInsufficientHistory)
	}

	closes := candle.Closes(bars)
	signals := s.Strategy.Signals(closes)
	ledger := portfolio.New(startingCash)

	log.Info().Int("bars", len(bars)).Int("lookback", lookback).Float64("cash", startingCash).Msg("Run | Starting trading simulation")

	for t := lookback; t < len(bars); t++ {
		bar := bars[t]
		price := bar.Close
		sig := signals[t]

		value := ledger.Value(map[string]float64{symbol: price})
		shares := ledger.Shares(symbol)

		rec := DailyRecord{
			Date:       bar.Timestamp,
			Ticker:     symbol,
			Action:     strategy.Hold,
			Quantity:   shares,
			Price:      price,
			Cash:       ledger.Cash(),
			StockValue: float64(shares) * price,
			TotalValue: value,
		}

		if sig.IsTrade() {
			// The evaluator only ever sees history up to and including today.
			d := s.Evaluator.Evaluate(symbol, closes[:t+1], sig, price, value)
			if _, ok := d.Approved(); ok {
				rec.Action = sig
				if trade, filled := ledger.Execute(bar.Timestamp, d); filled {
					log.Info().
						Str("date", bar.Date()).
						Stringer("action", sig).
						Int64("shares", trade.Shares).
						Float64("price", price).
						Float64("confidence", d.Confidence).
						Msg("Run | Trade executed")
				} else {
					log.Debug().Str("date", bar.Date()).Stringer("action", sig).Msg("Run | Approved trade left state unchanged")
				}
			} else {
				log.Debug().
					Str("date", bar.Date()).
					Stringer("action", sig).
					Float64("confidence", d.Confidence).
					Str("reason", d.Reason()).
					Msg("Run | Trade rejected")
			}
		}

		res.Records = append(res.Records, rec)
	}

	res.Trades = ledger.Trades()
	finalValue := ledger.Value(map[string]float64{symbol: closes[len(closes)-1]})
	res.Summary = summarize(startingCash, finalValue, res.Records, len(res.Trades))

	log.Info().
		Float64("final_value", res.Summary.FinalValue).
		Float64("return_pct", res.Summary.TotalReturnPct).
		Int("buys", res.Summary.BuyCount).
		Int("sells", res.Summary.SellCount).
		Msg("Run | Simulation finished")

	return res, nil
}

// summarize computes return, drawdown and action counts of a completed run.
func summarize(initial, final float64, records []DailyRecord, executed int) Summary {
	sum := Summary{
		InitialValue: initial,
		FinalValue:   final,
		Executed:     executed,
		Days:         len(records),
		Completed:    true,
	}
	if initial > 0 {
		sum.TotalReturnPct = (final - initial) / initial * 100
	}

	peak := initial
	equity := make([]float64, 0, len(records)+1)
	for _, r := range records {
		equity = append(equity, r.TotalValue)
		switch r.Action {
		case strategy.Buy:
			sum.BuyCount++
		case strategy.Sell:
			sum.SellCount++
		}
	}
	equity = append(equity, final)

	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak * 100; dd > sum.MaxDrawdownPct {
				sum.MaxDrawdownPct = dd
			}
		}
	}
	return sum
}
