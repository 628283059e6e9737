// Package calculator evaluates the configured scenarios against the tax
// engine and compares them with each other.
package calculator

import (
	"fmt"

	"github.com/iwvelando/qc-net-income/internal/config"
	"github.com/iwvelando/qc-net-income/pkg/mathutil"
	"github.com/iwvelando/qc-net-income/pkg/taxengine"
	"go.uber.org/zap"
)

// ScenarioResult holds everything computed for one scenario.
type ScenarioResult struct {
	Name          string                 `json:"name"`
	Year          int                    `json:"year"`
	Result        taxengine.Result       `json:"result"`
	MarginalRate  float64                `json:"marginalRate"`
	EffectiveRate float64                `json:"effectiveRate"`
	Breakdown     taxengine.PayBreakdown `json:"breakdown"`

	// Deltas against the baseline, the first active scenario.
	Baseline    bool    `json:"baseline"`
	DeltaGross  float64 `json:"deltaGross"`
	DeltaNet    float64 `json:"deltaNet"`
	KeptPercent float64 `json:"keptPercent"`
}

// Evaluate processes every active scenario in conf.
func Evaluate(logger *zap.Logger, conf config.Configuration) ([]ScenarioResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog, err := conf.Catalog()
	if err != nil {
		return nil, err
	}

	var results []ScenarioResult
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "calculator.Evaluate"),
			)
			continue
		}

		year := conf.ResolveYear(scenario.Year)
		taxYear, err := catalog.Year(year)
		if err != nil {
			return results, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		result, err := EvaluateIncome(scenario.GrossIncome, taxYear, conf.ResolveHoursPerWeek(scenario.HoursPerWeek))
		if err != nil {
			return results, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}
		result.Name = scenario.Name

		if len(results) == 0 {
			result.Baseline = true
		} else {
			compare(&result, results[0])
		}

		logger.Debug("evaluated scenario",
			zap.String("op", "calculator.Evaluate"),
			zap.String("scenario", scenario.Name),
			zap.Int("year", year),
			zap.Float64("netIncome", result.Result.NetIncome),
		)
		results = append(results, result)
	}

	return results, nil
}

// EvaluateIncome computes the result, rates and pay breakdown of a single
// gross income for one tax year.
func EvaluateIncome(grossIncome float64, taxYear taxengine.TaxYear, hoursPerWeek float64) (ScenarioResult, error) {
	result, err := taxengine.Calculate(grossIncome, taxYear)
	if err != nil {
		return ScenarioResult{}, err
	}
	marginal, err := taxengine.MarginalRate(grossIncome, taxYear)
	if err != nil {
		return ScenarioResult{}, err
	}

	return ScenarioResult{
		Year:          taxYear.Year,
		Result:        result,
		MarginalRate:  marginal,
		EffectiveRate: taxengine.EffectiveRate(result),
		Breakdown:     taxengine.Breakdown(result, hoursPerWeek),
	}, nil
}

func compare(result *ScenarioResult, baseline ScenarioResult) {
	result.DeltaGross = result.Result.GrossIncome - baseline.Result.GrossIncome
	result.DeltaNet = result.Result.NetIncome - baseline.Result.NetIncome
	result.KeptPercent = mathutil.CalculatePercentage(result.DeltaNet, result.DeltaGross)
}
