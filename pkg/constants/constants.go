// Package constants provides shared constants for the qc-net-income application.
package constants

import "time"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// SemiMonthlyPeriodsPerYear is the number of semi-monthly pay periods in a year
	SemiMonthlyPeriodsPerYear = 24

	// BiweeklyPeriodsPerYear is the number of biweekly pay periods in a year
	BiweeklyPeriodsPerYear = 26

	// WeeksPerYear is the number of weekly pay periods in a year
	WeeksPerYear = 52

	// DefaultHoursPerWeek is used for the hourly breakdown when none is given
	DefaultHoursPerWeek = 40.0

	// CurrencyDecimalPlaces is the number of decimals shown for currency
	CurrencyDecimalPlaces = 2
)

// Tax year constants
const (
	// DefaultTaxYear is the tax year used when none is requested
	DefaultTaxYear = 2025
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable JSON output format
	OutputFormatJSON = "json"
)

// Locale constants
const (
	// LocaleEnglishCanada formats amounts as $1,234.56
	LocaleEnglishCanada = "en-CA"

	// LocaleFrenchCanada formats amounts as 1 234,56 $
	LocaleFrenchCanada = "fr-CA"

	// DefaultLocale is the locale used when none is configured
	DefaultLocale = LocaleFrenchCanada
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment overrides of config keys
	EnvPrefix = "QCTAX"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxRequestSizeBytes int64 = 256 * 1024

	// DefaultShutdownTimeout is how long in-flight requests get on shutdown
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultVersion is reported by the API when no build version is set
	DefaultVersion = "dev"
)

// Solver defaults
const (
	// DefaultSolverTolerance is the default gross-up tolerance (1 cent)
	DefaultSolverTolerance = 0.01

	// DefaultSolverMaxIterations bounds the gross-up bisection
	DefaultSolverMaxIterations = 100

	// MaxSolverIterations is the largest iteration limit a target may request
	MaxSolverIterations = 1000
)

// Validation constants
const (
	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)
