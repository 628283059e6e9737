// Package taxengine computes Quebec net income from a gross annual salary:
// federal and provincial progressive income tax plus the QPP, QPIP and EI
// payroll contributions.
//
// Every function is pure. Tables are passed in explicitly as a TaxYear so
// several years can be used side by side without shared state.
package taxengine

import (
	"fmt"

	"github.com/iwvelando/qc-net-income/pkg/mathutil"
)

// ValidateIncome rejects negative, NaN and infinite incomes.
func ValidateIncome(income float64) error {
	if !mathutil.IsFinite(income) || income < 0 {
		return fmt.Errorf("%w, got %v", ErrInvalidIncome, income)
	}
	return nil
}

// ProgressiveTax computes the tax owed on income under a tiered schedule.
// Each bracket's rate applies only to the slice of income inside it, and an
// income sitting exactly on a bound is taxed entirely at the lower bracket.
func ProgressiveTax(income float64, schedule Schedule) float64 {
	var tax, previous float64
	for _, bracket := range schedule {
		slice := mathutil.Max(0, mathutil.Min(income, bracket.UpperBound)-previous)
		tax += mathutil.ApplyPercentage(slice, bracket.Rate)
		if income <= bracket.UpperBound {
			break
		}
		previous = bracket.UpperBound
	}
	return tax
}

// BracketRate returns the rate of the bracket that contains income, i.e. the
// rate applied to the next dollar earned.
func BracketRate(income float64, schedule Schedule) float64 {
	for _, bracket := range schedule {
		if income <= bracket.UpperBound {
			return bracket.Rate
		}
	}
	return schedule.TopRate()
}

// Contribution computes a capped flat-rate contribution. Nothing is owed at or
// below the exemption; earnings above the ceiling are not charged.
func Contribution(income float64, rule ContributionRule) float64 {
	insurable := mathutil.Min(income, rule.Ceiling) - rule.Exemption
	if insurable <= 0 {
		return 0
	}
	return mathutil.ApplyPercentage(insurable, rule.Rate)
}

// Calculate returns the full deduction breakdown for a gross annual income.
func Calculate(grossIncome float64, year TaxYear) (Result, error) {
	if err := ValidateIncome(grossIncome); err != nil {
		return Result{}, err
	}

	result := Result{
		Year:                year.Year,
		GrossIncome:         grossIncome,
		FederalTax:          ProgressiveTax(grossIncome, year.Federal),
		ProvincialTax:       ProgressiveTax(grossIncome, year.Provincial),
		Pension:             Contribution(grossIncome, year.Pension),
		ParentalInsurance:   Contribution(grossIncome, year.ParentalInsurance),
		EmploymentInsurance: Contribution(grossIncome, year.EmploymentInsurance),
	}
	// Same grouping as the helpers, so they sum to TotalDeductions exactly.
	result.TotalDeductions = result.IncomeTax() + result.Contributions()
	result.NetIncome = result.GrossIncome - result.TotalDeductions

	return result, nil
}

// MarginalRate returns the combined federal and provincial bracket rate, in
// percent, that applies to the next dollar above grossIncome.
func MarginalRate(grossIncome float64, year TaxYear) (float64, error) {
	if err := ValidateIncome(grossIncome); err != nil {
		return 0, err
	}
	return BracketRate(grossIncome, year.Federal) + BracketRate(grossIncome, year.Provincial), nil
}

// EffectiveRate is the share of gross income, in percent, lost to deductions.
func EffectiveRate(result Result) float64 {
	return mathutil.CalculatePercentage(result.TotalDeductions, result.GrossIncome)
}
