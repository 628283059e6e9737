// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/qc-net-income/pkg/constants"
	"github.com/iwvelando/qc-net-income/pkg/format"
	"github.com/iwvelando/qc-net-income/pkg/taxengine"
	"github.com/iwvelando/qc-net-income/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for qc-net-income.
type Configuration struct {
	DefaultYear int             `yaml:"defaultYear,omitempty" mapstructure:"defaultYear"`
	TaxYears    []TaxYearConfig `yaml:"taxYears,omitempty" mapstructure:"taxYears"`
	Scenarios   []Scenario      `yaml:"scenarios,omitempty" mapstructure:"scenarios"`
	GrossUp     []GrossUpTarget `yaml:"grossUp,omitempty" mapstructure:"grossUp"`
	Logging     LoggingConfig   `yaml:"logging,omitempty" mapstructure:"logging"`
	Output      OutputConfig    `yaml:"output,omitempty" mapstructure:"output"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format       string  `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
	Locale       string  `yaml:"locale,omitempty" mapstructure:"locale"` // fr-CA, en-CA
	HoursPerWeek float64 `yaml:"hoursPerWeek,omitempty" mapstructure:"hoursPerWeek"`
}

// TaxYearConfig is a user-supplied set of tables. A year already built into
// the engine is replaced by it.
type TaxYearConfig struct {
	Year       int                `yaml:"year" mapstructure:"year"`
	Federal    []BracketConfig    `yaml:"federal" mapstructure:"federal"`
	Provincial []BracketConfig    `yaml:"provincial" mapstructure:"provincial"`
	QPP        ContributionConfig `yaml:"qpp" mapstructure:"qpp"`
	QPIP       ContributionConfig `yaml:"qpip" mapstructure:"qpip"`
	EI         ContributionConfig `yaml:"ei" mapstructure:"ei"`
}

// BracketConfig is one bracket; a missing upTo marks the unbounded top bracket.
type BracketConfig struct {
	UpTo *float64 `yaml:"upTo,omitempty" mapstructure:"upTo"`
	Rate float64  `yaml:"rate" mapstructure:"rate"` // percent
}

// ContributionConfig mirrors taxengine.ContributionRule.
type ContributionConfig struct {
	Rate      float64 `yaml:"rate" mapstructure:"rate"` // percent
	Exemption float64 `yaml:"exemption,omitempty" mapstructure:"exemption"`
	Ceiling   float64 `yaml:"ceiling" mapstructure:"ceiling"`
}

// Scenario is a named gross income to evaluate, e.g. a job offer.
type Scenario struct {
	Name         string  `yaml:"name" mapstructure:"name"`
	Active       bool    `yaml:"active" mapstructure:"active"`
	GrossIncome  float64 `yaml:"grossIncome" mapstructure:"grossIncome"`
	Year         int     `yaml:"year,omitempty" mapstructure:"year"`
	HoursPerWeek float64 `yaml:"hoursPerWeek,omitempty" mapstructure:"hoursPerWeek"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("defaultYear", constants.DefaultTaxYear)
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("output.locale", constants.DefaultLocale)
	v.SetDefault("output.hoursPerWeek", constants.DefaultHoursPerWeek)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML (or JSON) configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

// Default returns the configuration used when no file is given.
func Default() *Configuration {
	return &Configuration{
		DefaultYear: constants.DefaultTaxYear,
		Output: OutputConfig{
			Format:       constants.OutputFormatPretty,
			Locale:       constants.DefaultLocale,
			HoursPerWeek: constants.DefaultHoursPerWeek,
		},
	}
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Validate rejects configurations that cannot produce correct numbers:
// malformed tax tables, invalid incomes and unsupported output settings.
func (c *Configuration) Validate() error {
	var errs []error

	if _, err := c.Catalog(); err != nil {
		errs = append(errs, fmt.Errorf("tax years: %w", err))
	}

	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := format.NormalizeLocale(c.Output.Locale); err != nil {
		errs = append(errs, err)
	}
	if c.Output.HoursPerWeek < 0 {
		errs = append(errs, fmt.Errorf("output hoursPerWeek must not be negative, got %v", c.Output.HoursPerWeek))
	}

	for _, scenario := range c.Scenarios {
		if err := taxengine.ValidateIncome(scenario.GrossIncome); err != nil {
			errs = append(errs, fmt.Errorf("scenario %q: %w", scenario.Name, err))
		}
		if scenario.HoursPerWeek < 0 {
			errs = append(errs, fmt.Errorf("scenario %q: hoursPerWeek must not be negative", scenario.Name))
		}
	}
	for i := range c.GrossUp {
		if err := c.GrossUp[i].Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Catalog returns the built-in tax years with any configured years applied on top.
func (c *Configuration) Catalog() (*taxengine.Catalog, error) {
	if len(c.TaxYears) == 0 {
		return taxengine.DefaultCatalog(), nil
	}
	overrides := make([]taxengine.TaxYear, 0, len(c.TaxYears))
	for _, ty := range c.TaxYears {
		overrides = append(overrides, ty.ToTaxYear())
	}
	return taxengine.DefaultCatalog().With(overrides...)
}

// ResolveYear returns year, or the configured default when year is zero.
// Without a configured default it falls back to the latest catalog year.
func (c *Configuration) ResolveYear(year int) int {
	if year != 0 {
		return year
	}
	if c.DefaultYear != 0 {
		return c.DefaultYear
	}
	if catalog, err := c.Catalog(); err == nil {
		if latest, err := catalog.Latest(); err == nil {
			return latest.Year
		}
	}
	return constants.DefaultTaxYear
}

// ResolveHoursPerWeek returns hours, or the configured default when hours is zero.
func (c *Configuration) ResolveHoursPerWeek(hours float64) float64 {
	if hours > 0 {
		return hours
	}
	if c.Output.HoursPerWeek > 0 {
		return c.Output.HoursPerWeek
	}
	return constants.DefaultHoursPerWeek
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	catalog, err := c.Catalog()
	if err != nil {
		return []string{err.Error()}
	}
	known := make(map[int]bool)
	for _, year := range catalog.Years() {
		known[year] = true
	}

	if !known[c.ResolveYear(0)] {
		warnings = append(warnings, fmt.Sprintf("Default year %d has no tax tables", c.ResolveYear(0)))
	}

	active := 0
	seen := make(map[string]bool)
	for _, scenario := range c.Scenarios {
		if seen[scenario.Name] {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' is defined more than once", scenario.Name))
		}
		seen[scenario.Name] = true

		if !scenario.Active {
			continue
		}
		active++
		if year := c.ResolveYear(scenario.Year); !known[year] {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' uses tax year %d which has no tax tables", scenario.Name, year))
		}
		if scenario.GrossIncome == 0 {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' has a gross income of zero", scenario.Name))
		}
	}
	if len(c.Scenarios) > 0 && active == 0 {
		warnings = append(warnings, "No active scenarios - nothing will be computed")
	}

	for _, target := range c.GrossUp {
		if year := c.ResolveYear(target.Year); !known[year] {
			warnings = append(warnings, fmt.Sprintf("Gross-up '%s' uses tax year %d which has no tax tables", target.Name, year))
		}
	}

	return warnings
}
