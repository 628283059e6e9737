package testutil

import (
	"fmt"
	"math"
	"testing"

	"github.com/iwvelando/qc-net-income/internal/calculator"
	"github.com/iwvelando/qc-net-income/pkg/taxengine"
)

func resultWithNet(name string, net float64) calculator.ScenarioResult {
	return calculator.ScenarioResult{
		Name:   name,
		Result: taxengine.Result{NetIncome: net},
	}
}

func TestFindScenario(t *testing.T) {
	results := []calculator.ScenarioResult{
		resultWithNet("Scenario A", 1000.00),
		resultWithNet("Scenario B", 2000.00),
		resultWithNet("Another Scenario", 3000.00),
	}

	tests := []struct {
		name        string
		searchName  string
		expectFound bool
		expectedNet float64
	}{
		{
			name:        "Find existing scenario A",
			searchName:  "Scenario A",
			expectFound: true,
			expectedNet: 1000.00,
		},
		{
			name:        "Find scenario with longer name",
			searchName:  "Another Scenario",
			expectFound: true,
			expectedNet: 3000.00,
		},
		{
			name:        "Search for non-existent scenario",
			searchName:  "Non-existent",
			expectFound: false,
		},
		{
			name:        "Case sensitive search",
			searchName:  "scenario a",
			expectFound: false,
		},
		{
			name:        "Partial name match",
			searchName:  "Scenario",
			expectFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindScenario(results, tt.searchName)

			if tt.expectFound {
				if result == nil {
					t.Errorf("FindScenario() expected to find scenario '%s' but got nil", tt.searchName)
					return
				}
				if result.Result.NetIncome != tt.expectedNet {
					t.Errorf("FindScenario() returned net %v, expected %v", result.Result.NetIncome, tt.expectedNet)
				}
			} else if result != nil {
				t.Errorf("FindScenario() expected nil for scenario '%s' but got '%s'", tt.searchName, result.Name)
			}
		})
	}
}

func TestFindScenarioNilResults(t *testing.T) {
	if result := FindScenario(nil, "Any Scenario"); result != nil {
		t.Errorf("FindScenario() with nil results should return nil, got %v", result)
	}
}

func TestFindScenarioReturnsFirstMatch(t *testing.T) {
	results := []calculator.ScenarioResult{
		resultWithNet("Duplicate", 1000.00),
		resultWithNet("Duplicate", 2000.00),
	}

	found := FindScenario(results, "Duplicate")
	if found == nil {
		t.Fatalf("FindScenario() returned nil")
	}
	if &results[0] != found {
		t.Errorf("FindScenario() should return pointer to first matching element")
	}
}

func TestFindScenarioLargeSlice(t *testing.T) {
	const numScenarios = 1000
	results := make([]calculator.ScenarioResult, numScenarios)
	for i := 0; i < numScenarios; i++ {
		results[i] = resultWithNet(fmt.Sprintf("Scenario %d", i), float64(i*100))
	}

	found := FindScenario(results, "Scenario 500")
	if found == nil {
		t.Fatalf("FindScenario() should find 'Scenario 500' in large slice")
	}
	if found.Result.NetIncome != 50000.00 {
		t.Errorf("FindScenario() returned wrong net: got %v", found.Result.NetIncome)
	}
}

func TestSampleTaxYearIsValid(t *testing.T) {
	year := SampleTaxYear()
	if err := year.Validate(); err != nil {
		t.Fatalf("SampleTaxYear() is invalid: %v", err)
	}

	result, err := taxengine.Calculate(75000, year)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if math.Abs(result.FederalTax-12500) > 1e-6 || math.Abs(result.Pension-2850) > 1e-6 {
		t.Errorf("Unexpected sample result: %+v", result)
	}
}
