// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/qc-net-income/internal/calculator"
	"github.com/iwvelando/qc-net-income/pkg/taxengine"
)

// FindScenario finds a scenario by name in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindScenario(results []calculator.ScenarioResult, name string) *calculator.ScenarioResult {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// SampleTaxYear returns small round-number tables that are easy to check by
// hand: 75000 of income yields 12500 of federal tax and 2850 of pension.
func SampleTaxYear() taxengine.TaxYear {
	return taxengine.TaxYear{
		Year: 2099,
		Federal: taxengine.Schedule{
			{UpperBound: 50000, Rate: 15},
			{UpperBound: 100000, Rate: 20},
			{UpperBound: taxengine.Unbounded, Rate: 25},
		},
		Provincial: taxengine.Schedule{
			{UpperBound: 40000, Rate: 10},
			{UpperBound: taxengine.Unbounded, Rate: 20},
		},
		Pension:             taxengine.ContributionRule{Rate: 5, Exemption: 3000, Ceiling: 60000},
		ParentalInsurance:   taxengine.ContributionRule{Rate: 0.5, Ceiling: 80000},
		EmploymentInsurance: taxengine.ContributionRule{Rate: 1.5, Ceiling: 50000},
	}
}
