// Package optimizer solves gross-up targets: the gross income required to
// take home a given net income.
package optimizer

import (
	"fmt"
	"math"

	"github.com/iwvelando/qc-net-income/internal/config"
	"github.com/iwvelando/qc-net-income/pkg/format"
	"github.com/iwvelando/qc-net-income/pkg/optimization"
	"github.com/iwvelando/qc-net-income/pkg/taxengine"
	"go.uber.org/zap"
)

type Runner struct {
	logger  *zap.Logger
	conf    *config.Configuration
	catalog *taxengine.Catalog
}

// Result holds one summary per configured gross-up target, in order.
type Result struct {
	Summaries []optimization.Summary
}

// Empty indicates whether any targets were solved.
func (r Result) Empty() bool {
	return len(r.Summaries) == 0
}

// NewRunner constructs a Runner for the provided configuration.
func NewRunner(logger *zap.Logger, conf *config.Configuration) (*Runner, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog, err := conf.Catalog()
	if err != nil {
		return nil, err
	}

	return &Runner{logger: logger, conf: conf, catalog: catalog}, nil
}

// Run solves every gross-up target of the configuration.
func (r *Runner) Run() (*Result, error) {
	summaries := make([]optimization.Summary, 0, len(r.conf.GrossUp))

	for _, target := range r.conf.GrossUp {
		summary, err := r.Solve(target)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	return &Result{Summaries: summaries}, nil
}

// Solve resolves the target's tax year and solves it.
func (r *Runner) Solve(target config.GrossUpTarget) (optimization.Summary, error) {
	if err := target.Validate(); err != nil {
		return optimization.Summary{}, err
	}

	taxYear, err := r.catalog.Year(r.conf.ResolveYear(target.Year))
	if err != nil {
		return optimization.Summary{}, fmt.Errorf("gross-up %q: %w", target.Name, err)
	}

	summary, err := Solve(target, taxYear)
	if err != nil {
		return optimization.Summary{}, err
	}

	r.logger.Info("solved gross-up target",
		zap.String("op", "optimizer.Solve"),
		zap.String("target", summary.Name),
		zap.Int("year", summary.Year),
		zap.Float64("targetNet", summary.TargetNet),
		zap.Float64("grossIncome", summary.GrossIncome),
		zap.Float64("netIncome", summary.NetIncome),
		zap.Int("iterations", summary.Iterations),
		zap.Bool("converged", summary.Converged),
	)
	if !summary.Converged {
		r.logger.Warn("gross-up target did not converge",
			zap.String("op", "optimizer.Solve"),
			zap.String("target", summary.Name),
			zap.Strings("notes", summary.Notes),
		)
	}

	return summary, nil
}

// Solve finds, by bisection, the smallest gross income whose net income is at
// least target.TargetNet, to within target.Tolerance. Net income grows with
// gross income, so the search interval always brackets the answer.
func Solve(target config.GrossUpTarget, taxYear taxengine.TaxYear) (optimization.Summary, error) {
	if err := target.Validate(); err != nil {
		return optimization.Summary{}, err
	}

	summary := optimization.Summary{
		Name:      target.Name,
		Year:      taxYear.Year,
		TargetNet: target.TargetNet,
	}
	if target.TargetNet == 0 {
		summary.Converged = true
		return summary, nil
	}

	net := func(gross float64) (float64, error) {
		result, err := taxengine.Calculate(gross, taxYear)
		if err != nil {
			return 0, err
		}
		return result.NetIncome, nil
	}

	// Deductions are never negative, so the answer is at least the target.
	lower := target.TargetNet
	upper := doubled(target.TargetNet)
	iterations := 0

	upperNet, err := net(upper)
	if err != nil {
		return optimization.Summary{}, err
	}
	for upperNet < target.TargetNet {
		if iterations >= target.MaxIterations || upper == math.MaxFloat64 {
			summary.GrossIncome = upper
			summary.NetIncome = upperNet
			summary.Iterations = iterations
			summary.Notes = []string{fmt.Sprintf("no gross income up to %s reaches the target", format.Cents(upper))}
			return summary, nil
		}
		lower = upper
		upper = doubled(upper)
		iterations++
		if upperNet, err = net(upper); err != nil {
			return optimization.Summary{}, err
		}
	}

	stalled := false
	for iterations < target.MaxIterations && upper-lower > target.Tolerance {
		mid := lower + (upper-lower)/2
		// lower and upper are adjacent floats; the interval cannot shrink further.
		if mid == lower || mid == upper {
			stalled = true
			break
		}
		midNet, err := net(mid)
		if err != nil {
			return optimization.Summary{}, err
		}
		iterations++
		if midNet >= target.TargetNet {
			upper = mid
			upperNet = midNet
		} else {
			lower = mid
		}
	}

	summary.GrossIncome = upper
	summary.NetIncome = upperNet
	summary.Iterations = iterations
	summary.Converged = stalled || upper-lower <= target.Tolerance
	if stalled {
		summary.Notes = []string{fmt.Sprintf(
			"tolerance %g is finer than float64 resolution at %s; stopped at the closest value",
			target.Tolerance, format.Cents(upper),
		)}
	} else if !summary.Converged {
		summary.Notes = []string{fmt.Sprintf(
			"stopped after %d iterations with the answer between %s and %s",
			iterations, format.Cents(lower), format.Cents(upper),
		)}
	}
	return summary, nil
}

// doubled returns 2*v, saturating at math.MaxFloat64 instead of overflowing.
func doubled(v float64) float64 {
	if v > math.MaxFloat64/2 {
		return math.MaxFloat64
	}
	return 2 * v
}
