package backtest

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/amirphl/pantheon/internal/candle"
	"github.com/amirphl/pantheon/internal/indicator"
	"github.com/amirphl/pantheon/internal/risk"
	"github.com/amirphl/pantheon/internal/strategy"
)

// RunSpec is one point of a parameter sweep.
type RunSpec struct {
	Strategy string           `json:"strategy"`
	MaxRisk  float64          `json:"max_risk"`
	Params   indicator.Params `json:"params"`
}

func (r RunSpec) String() string {
	return fmt.Sprintf("%s@%.4f", r.Strategy, r.MaxRisk)
}

// SweepResult pairs a spec with its outcome. Err carries per-run failures such
// as ErrInsufficientHistory so one bad run does not hide the others.
type SweepResult struct {
	Spec   RunSpec `json:"spec"`
	Result Result  `json:"result"`
	Err    error   `json:"-"`
}

// Grid builds the cartesian product of strategy names and risk fractions.
func Grid(strategies []string, risks []float64, p indicator.Params) []RunSpec {
	specs := make([]RunSpec, 0, len(strategies)*len(risks))
	for _, name := range strategies {
		for _, r := range risks {
			specs = append(specs, RunSpec{Strategy: name, MaxRisk: r, Params: p})
		}
	}
	return specs
}

// Sweep runs every spec over the same bars with at most workers runs in
// flight. Each run gets its own strategy, evaluator and ledger; only the
// read-only bar slice is shared. Results keep the order of specs.
//
// Unknown strategy names and context cancellation abort the sweep. opts are
// applied to every simulator before the per-spec strategy and evaluator.
func Sweep(ctx context.Context, bars []candle.Bar, symbol string, cash float64, specs []RunSpec, workers int, opts ...Option) ([]SweepResult, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	specs = append([]RunSpec(nil), specs...)
	strats := make([]strategy.Strategy, len(specs))
	for i := range specs {
		if specs[i].Params == (indicator.Params{}) {
			specs[i].Params = indicator.DefaultParams()
		}
		st, err := strategy.New(specs[i].Strategy, specs[i].Params)
		if err != nil {
			return nil, fmt.Errorf("Sweep | run %d: %w", i, err)
		}
		strats[i] = st
	}

	results := make([]SweepResult, len(specs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, spec := range specs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			runOpts := append(append([]Option{}, opts...),
				WithStrategy(strats[i]),
				WithEvaluator(risk.NewEvaluator(spec.MaxRisk)),
			)
			res, err := NewSimulator(runOpts...).Run(bars, symbol, cash)
			results[i] = SweepResult{Spec: spec, Result: res, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("Sweep | %w", err)
	}
	return results, nil
}
