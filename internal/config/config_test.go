package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/qc-net-income/pkg/taxengine"
)

const testConfigPath = "../../test/test_config.yaml"

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Test configuration",
			configPath: testConfigPath,
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	config, err := LoadConfiguration(testConfigPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.DefaultYear != 2025 {
		t.Errorf("Expected DefaultYear = 2025, got %d", config.DefaultYear)
	}
	if config.Output.Locale != "fr-CA" {
		t.Errorf("Expected locale fr-CA, got %s", config.Output.Locale)
	}
	if config.Output.HoursPerWeek != 37.5 {
		t.Errorf("Expected hoursPerWeek 37.5, got %v", config.Output.HoursPerWeek)
	}
	if config.Logging.Format != "console" {
		t.Errorf("Expected logging format console, got %s", config.Logging.Format)
	}

	if len(config.Scenarios) != 4 {
		t.Fatalf("Expected 4 scenarios, got %d", len(config.Scenarios))
	}
	first := config.Scenarios[0]
	if first.Name != "current job" || !first.Active || first.GrossIncome != 60000 || first.Year != 0 {
		t.Errorf("Unexpected first scenario: %+v", first)
	}
	if config.Scenarios[2].Year != 2024 {
		t.Errorf("Expected third scenario year 2024, got %d", config.Scenarios[2].Year)
	}
	if config.Scenarios[3].Active {
		t.Errorf("Expected fourth scenario to be inactive")
	}

	if len(config.GrossUp) != 2 {
		t.Fatalf("Expected 2 gross-up targets, got %d", len(config.GrossUp))
	}
	if config.GrossUp[1].Tolerance != 0.5 {
		t.Errorf("Expected tolerance 0.5, got %v", config.GrossUp[1].Tolerance)
	}

	if len(config.TaxYears) != 1 {
		t.Fatalf("Expected 1 tax year override, got %d", len(config.TaxYears))
	}
	federal := config.TaxYears[0].Federal
	if len(federal) != 3 || federal[0].UpTo == nil || *federal[0].UpTo != 50000 || federal[2].UpTo != nil {
		t.Errorf("Unexpected federal brackets: %+v", federal)
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	path := writeConfig(t, `scenarios:
  - name: only
    active: true
    grossIncome: 50000
`)

	config, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if config.DefaultYear != 2025 {
		t.Errorf("Expected default year 2025, got %d", config.DefaultYear)
	}
	if config.Output.Format != "pretty" {
		t.Errorf("Expected default output format pretty, got %s", config.Output.Format)
	}
	if config.Output.Locale != "fr-CA" {
		t.Errorf("Expected default locale fr-CA, got %s", config.Output.Locale)
	}
	if config.Output.HoursPerWeek != 40 {
		t.Errorf("Expected default hoursPerWeek 40, got %v", config.Output.HoursPerWeek)
	}
}

func TestLoadConfigurationEnvOverride(t *testing.T) {
	t.Setenv("QCTAX_OUTPUT_LOCALE", "en-CA")
	t.Setenv("QCTAX_DEFAULTYEAR", "2024")

	config, err := LoadConfiguration(testConfigPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if config.Output.Locale != "en-CA" {
		t.Errorf("Expected env override en-CA, got %s", config.Output.Locale)
	}
	if config.DefaultYear != 2024 {
		t.Errorf("Expected env override 2024, got %d", config.DefaultYear)
	}
}

func TestLoadConfigurationFromReader(t *testing.T) {
	yamlBody := "scenarios:\n  - name: a\n    active: true\n    grossIncome: 1000\n"
	jsonBody := `{"scenarios": [{"name": "a", "active": true, "grossIncome": 1000}]}`

	for name, body := range map[string]string{"yaml": yamlBody, "json": jsonBody} {
		t.Run(name, func(t *testing.T) {
			config, err := LoadConfigurationFromReader(strings.NewReader(body))
			if err != nil {
				t.Fatalf("LoadConfigurationFromReader() error = %v", err)
			}
			if len(config.Scenarios) != 1 || config.Scenarios[0].GrossIncome != 1000 {
				t.Errorf("Unexpected scenarios: %+v", config.Scenarios)
			}
		})
	}
}

func TestLoadConfigurationRejectsInvalidData(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		wantErr  error
	}{
		{
			name: "Negative income",
			contents: `scenarios:
  - name: bad
    active: true
    grossIncome: -100
`,
			wantErr: taxengine.ErrInvalidIncome,
		},
		{
			name: "Bounded top bracket",
			contents: `taxYears:
  - year: 2030
    federal:
      - upTo: 50000
        rate: 15
    provincial:
      - rate: 14
    qpp: {rate: 5, exemption: 3000, ceiling: 60000}
    qpip: {rate: 0.5, ceiling: 80000}
    ei: {rate: 1.5, ceiling: 50000}
`,
			wantErr: taxengine.ErrInvalidSchedule,
		},
		{
			name: "Exemption above ceiling",
			contents: `taxYears:
  - year: 2030
    federal:
      - rate: 15
    provincial:
      - rate: 14
    qpp: {rate: 5, exemption: 70000, ceiling: 60000}
    qpip: {rate: 0.5, ceiling: 80000}
    ei: {rate: 1.5, ceiling: 50000}
`,
			wantErr: taxengine.ErrInvalidContributionRule,
		},
		{
			name: "Negative gross-up target",
			contents: `grossUp:
  - name: bad
    targetNet: -1
`,
			wantErr: taxengine.ErrInvalidIncome,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfiguration(writeConfig(t, tt.contents))
			if err == nil {
				t.Fatal("LoadConfiguration() expected error but got none")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadConfiguration() error = %v, expected %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateOutputSettings(t *testing.T) {
	config := Default()
	config.Output.Format = "xml"
	if err := config.Validate(); err == nil {
		t.Error("Expected error for xml output format")
	}

	config = Default()
	config.Output.Locale = "not a locale!"
	if err := config.Validate(); err == nil {
		t.Error("Expected error for invalid locale")
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("Default configuration should be valid, got %v", err)
	}
}

func TestCatalogAppliesOverrides(t *testing.T) {
	config, err := LoadConfiguration(testConfigPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	catalog, err := config.Catalog()
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}

	years := catalog.Years()
	if len(years) != 3 || years[0] != 2024 || years[1] != 2025 || years[2] != 2099 {
		t.Fatalf("Unexpected years: %v", years)
	}

	custom, err := catalog.Year(2099)
	if err != nil {
		t.Fatalf("Year(2099) error = %v", err)
	}
	result, err := taxengine.Calculate(75000, custom)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if math.Abs(result.FederalTax-12500) > 1e-6 {
		t.Errorf("Expected federal tax 12500, got %v", result.FederalTax)
	}
	if math.Abs(result.Pension-2850) > 1e-6 {
		t.Errorf("Expected pension 2850, got %v", result.Pension)
	}
}

func TestResolveYearAndHours(t *testing.T) {
	config := &Configuration{}
	if got := config.ResolveYear(0); got != 2025 {
		t.Errorf("ResolveYear(0) on empty config = %d, expected 2025", got)
	}

	future, err := taxengine.DefaultCatalog().Year(2025)
	if err != nil {
		t.Fatalf("Year(2025) error = %v", err)
	}
	future.Year = 2099
	config.TaxYears = []TaxYearConfig{FromTaxYear(future)}
	if got := config.ResolveYear(0); got != 2099 {
		t.Errorf("ResolveYear(0) without a default = %d, expected latest year 2099", got)
	}

	config.DefaultYear = 2024
	if got := config.ResolveYear(0); got != 2024 {
		t.Errorf("ResolveYear(0) = %d, expected 2024", got)
	}
	if got := config.ResolveYear(2025); got != 2025 {
		t.Errorf("ResolveYear(2025) = %d, expected 2025", got)
	}

	if got := config.ResolveHoursPerWeek(0); got != 40 {
		t.Errorf("ResolveHoursPerWeek(0) = %v, expected 40", got)
	}
	config.Output.HoursPerWeek = 35
	if got := config.ResolveHoursPerWeek(0); got != 35 {
		t.Errorf("ResolveHoursPerWeek(0) = %v, expected 35", got)
	}
	if got := config.ResolveHoursPerWeek(20); got != 20 {
		t.Errorf("ResolveHoursPerWeek(20) = %v, expected 20", got)
	}
}
