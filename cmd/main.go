package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/amirphl/pantheon/internal/backtest"
	"github.com/amirphl/pantheon/internal/candle"
	"github.com/amirphl/pantheon/internal/config"
	"github.com/amirphl/pantheon/internal/feed"
	"github.com/amirphl/pantheon/internal/logger"
	"github.com/amirphl/pantheon/internal/report"
	"github.com/amirphl/pantheon/internal/risk"
	"github.com/amirphl/pantheon/internal/strategy"
)

var version = "dev"

type app struct {
	cfgPath  string
	logLevel string
	cfg      config.Config
	log      zerolog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "pantheon",
		Short: "Replay daily prices through an indicator, risk and ledger pipeline",
		Long: `pantheon simulates a single-symbol trading strategy over historical daily bars.
Each day the strategy emits BUY, SELL or HOLD, the risk evaluator gates the signal
by recent volatility and the ledger executes approved trades at the close.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "Path to YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error or disabled")

	root.AddCommand(newSimulateCmd(a), newSweepCmd(a), newVersionCmd())
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}

// marketFlags are shared by simulate and sweep.
type marketFlags struct {
	symbol string
	cash   float64
	csv    string
	source string
	from   string
	to     string
	out    string
	format []string
}

func (f *marketFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.symbol, "symbol", "s", "", "Ticker symbol (default from config: AAPL)")
	cmd.Flags().Float64Var(&f.cash, "cash", 0, "Starting cash (default from config: 10000)")
	cmd.Flags().StringVar(&f.csv, "csv", "", "Read bars from this CSV file")
	cmd.Flags().StringVar(&f.source, "source", "", "Bar source: csv, postgres, wallex or yahoo")
	cmd.Flags().StringVar(&f.from, "from", "", "First date to load (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Load dates before this one (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Directory to write reports to")
	cmd.Flags().StringSliceVar(&f.format, "format", nil, "Report formats: csv, json, parquet")
}

// apply copies the flags that were set onto cfg.
func (f *marketFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("symbol") {
		cfg.Symbol = f.symbol
	}
	if flags.Changed("cash") {
		cfg.Cash = f.cash
	}
	if flags.Changed("source") {
		cfg.Feed.Source = f.source
	}
	if flags.Changed("csv") {
		cfg.Feed.Source = "csv"
		cfg.Feed.CSVPath = f.csv
	}
	if flags.Changed("from") {
		d, err := config.ParseDate(f.from)
		if err != nil {
			return err
		}
		cfg.From = d
	}
	if flags.Changed("to") {
		d, err := config.ParseDate(f.to)
		if err != nil {
			return err
		}
		cfg.To = d
	}
	if flags.Changed("out") {
		cfg.Report.Dir = f.out
	}
	if flags.Changed("format") {
		cfg.Report.Formats = f.format
	}
	return cfg.Validate()
}

func newSimulateCmd(a *app) *cobra.Command {
	var (
		mf           marketFlags
		strategyName string
		maxRisk      float64
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one simulation and print its performance summary",
		Example: `  pantheon simulate --csv CSV/aapl_clean.csv
  pantheon simulate --source yahoo --symbol MSFT --from 2020-01-01 --strategy rsi-band --out out --format csv,parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("strategy") {
				cfg.Strategy = strategyName
			}
			if cmd.Flags().Changed("risk") {
				cfg.MaxRisk = maxRisk
			}
			if err := mf.apply(cmd, &cfg); err != nil {
				return err
			}
			return runSimulate(cmd.Context(), cmd.OutOrStdout(), cfg, a.log)
		},
	}
	mf.register(cmd)
	cmd.Flags().StringVar(&strategyName, "strategy", "", "Strategy: composite, ema-crossover, macd-crossover or rsi-band")
	cmd.Flags().Float64Var(&maxRisk, "risk", 0, "Fraction of portfolio value risked per trade (default from config: 0.02)")
	return cmd
}

func runSimulate(ctx context.Context, out io.Writer, cfg config.Config, log zerolog.Logger) error {
	st, err := strategy.New(cfg.Strategy, cfg.Indicators)
	if err != nil {
		return err
	}

	bars, err := loadBars(ctx, cfg, log)
	if err != nil {
		return err
	}

	sim := backtest.NewSimulator(
		backtest.WithStrategy(st),
		backtest.WithEvaluator(risk.NewEvaluator(cfg.MaxRisk)),
		backtest.WithMinHistory(cfg.MinHistory),
		backtest.WithLogger(log),
	)
	res, err := sim.Run(bars, cfg.Symbol, cfg.Cash)
	if errors.Is(err, backtest.ErrInsufficientHistory) {
		fmt.Fprintln(out, report.RenderSummary(res))
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, report.RenderSummary(res))

	if cfg.Report.Dir != "" {
		paths, err := report.Write(cfg.Report.Dir, cfg.Report.Formats, res)
		if err != nil {
			return err
		}
		for _, p := range paths {
			log.Info().Str("path", p).Msg("main | Saved report")
		}
	}
	return nil
}

func newSweepCmd(a *app) *cobra.Command {
	var (
		mf         marketFlags
		risks      []float64
		strategies []string
		workers    int
	)

	cmd := &cobra.Command{
		Use:     "sweep",
		Short:   "Run every strategy and risk combination in parallel over the same bars",
		Example: `  pantheon sweep --csv CSV/aapl_clean.csv --risk 0.01,0.02,0.05 --strategies composite,rsi-band --workers 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("risk") {
				cfg.Sweep.Risks = risks
			}
			if cmd.Flags().Changed("strategies") {
				cfg.Sweep.Strategies = strategies
			}
			if cmd.Flags().Changed("workers") {
				cfg.Sweep.Workers = workers
			}
			if err := mf.apply(cmd, &cfg); err != nil {
				return err
			}
			return runSweep(cmd.Context(), cmd.OutOrStdout(), cfg, a.log)
		},
	}
	mf.register(cmd)
	cmd.Flags().Float64SliceVar(&risks, "risk", nil, "Risk fractions to try")
	cmd.Flags().StringSliceVar(&strategies, "strategies", nil, "Strategies to try")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent runs (0 uses every CPU)")
	return cmd
}

func runSweep(ctx context.Context, out io.Writer, cfg config.Config, log zerolog.Logger) error {
	bars, err := loadBars(ctx, cfg, log)
	if err != nil {
		return err
	}

	specs := backtest.Grid(cfg.Sweep.Strategies, cfg.Sweep.Risks, cfg.Indicators)
	start := time.Now()
	results, err := backtest.Sweep(ctx, bars, cfg.Symbol, cfg.Cash, specs, cfg.Sweep.Workers,
		backtest.WithMinHistory(cfg.MinHistory),
		backtest.WithLogger(log),
	)
	if err != nil {
		return err
	}
	log.Info().Int("runs", len(results)).Dur("elapsed", time.Since(start)).Msg("main | Sweep finished")

	fmt.Fprintln(out, report.RenderSweep(results))

	if cfg.Report.Dir == "" {
		return nil
	}
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		dir := filepath.Join(cfg.Report.Dir, fmt.Sprintf("%s_%.4f", r.Spec.Strategy, r.Spec.MaxRisk))
		if _, err := report.Write(dir, cfg.Report.Formats, r.Result); err != nil {
			return err
		}
	}
	log.Info().Str("dir", cfg.Report.Dir).Msg("main | Saved sweep reports")
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pantheon %s\n", version)
		},
	}
}

func loadBars(ctx context.Context, cfg config.Config, log zerolog.Logger) ([]candle.Bar, error) {
	src, err := feed.New(cfg.Feed, cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Feed.Timeout)
	defer cancel()

	bars, err := src.Bars(ctx, cfg.Symbol, cfg.From.Time, cfg.To.Time)
	if err != nil {
		return nil, fmt.Errorf("loadBars | %s: %w", src.Name(), err)
	}
	log.Info().
		Str("source", src.Name()).
		Str("symbol", cfg.Symbol).
		Int("bars", len(bars)).
		Msg("loadBars | Loaded bars")
	return bars, nil
}
