package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/qc-net-income/internal/calculator"
	"github.com/iwvelando/qc-net-income/internal/config"
	"github.com/iwvelando/qc-net-income/internal/optimizer"
	"github.com/iwvelando/qc-net-income/pkg/constants"
	"github.com/iwvelando/qc-net-income/pkg/format"
	"github.com/iwvelando/qc-net-income/pkg/optimization"
	"github.com/iwvelando/qc-net-income/pkg/output"
	"github.com/iwvelando/qc-net-income/pkg/taxengine"
	"github.com/iwvelando/qc-net-income/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newCalcCmd(opts *rootOptions) *cobra.Command {
	var (
		income string
		year   int
		hours  float64
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute taxes, contributions and net income for one gross income",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			outputFormat, err := opts.format(conf)
			if err != nil {
				return err
			}
			gross, err := validation.ParseIncome(income)
			if err != nil {
				return err
			}
			taxYear, err := yearFor(conf, year)
			if err != nil {
				return err
			}

			result, err := calculator.EvaluateIncome(gross, taxYear, conf.ResolveHoursPerWeek(hours))
			if err != nil {
				return err
			}
			result.Name = format.Currency(gross, conf.Output.Locale)
			result.Baseline = true

			logger.Debug("computed net income",
				zap.String("op", "main.calc"),
				zap.Int("year", result.Year),
				zap.Float64("netIncome", result.Result.NetIncome),
			)
			return writeResults(cmd.OutOrStdout(), outputFormat, conf.Output.Locale, []calculator.ScenarioResult{result})
		},
	}

	cmd.Flags().StringVar(&income, "income", "", "gross annual income, e.g. 75000 or \"75 000\"")
	cmd.Flags().IntVar(&year, "year", 0, "tax year (defaults to the configured default year)")
	cmd.Flags().Float64Var(&hours, "hours", 0, "hours worked per week for the hourly breakdown")
	_ = cmd.MarkFlagRequired("income")

	return cmd
}

func newMarginalCmd(opts *rootOptions) *cobra.Command {
	var (
		income string
		year   int
	)

	cmd := &cobra.Command{
		Use:   "marginal",
		Short: "Show the combined federal and provincial marginal rate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			outputFormat, err := opts.format(conf)
			if err != nil {
				return err
			}
			gross, err := validation.ParseIncome(income)
			if err != nil {
				return err
			}
			taxYear, err := yearFor(conf, year)
			if err != nil {
				return err
			}

			rate, err := taxengine.MarginalRate(gross, taxYear)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch outputFormat {
			case constants.OutputFormatJSON:
				return writeJSON(w, map[string]interface{}{
					"year":         taxYear.Year,
					"income":       gross,
					"marginalRate": rate,
				})
			case constants.OutputFormatCSV:
				_, err = fmt.Fprintf(w, "year,income,marginal rate\n%d,%s,%s\n", taxYear.Year, format.Cents(gross), format.Cents(rate))
				return err
			default:
				_, err = fmt.Fprintln(w, format.Percent(rate, conf.Output.Locale))
				return err
			}
		},
	}

	cmd.Flags().StringVar(&income, "income", "", "gross annual income")
	cmd.Flags().IntVar(&year, "year", 0, "tax year (defaults to the configured default year)")
	_ = cmd.MarkFlagRequired("income")

	return cmd
}

func newScenariosCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "Evaluate and compare the active scenarios of the configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			outputFormat, err := opts.format(conf)
			if err != nil {
				return err
			}

			results, err := calculator.Evaluate(logger, *conf)
			if err != nil {
				return fmt.Errorf("failed to evaluate scenarios: %w", err)
			}

			var summaries []optimization.Summary
			if len(conf.GrossUp) > 0 {
				runner, err := optimizer.NewRunner(logger, conf)
				if err != nil {
					return err
				}
				solved, err := runner.Run()
				if err != nil {
					return fmt.Errorf("gross-up failed: %w", err)
				}
				summaries = solved.Summaries
			}

			w := cmd.OutOrStdout()
			switch outputFormat {
			case constants.OutputFormatJSON:
				return writeJSON(w, map[string]interface{}{
					"scenarios": results,
					"grossUp":   summaries,
				})
			case constants.OutputFormatCSV:
				return output.CsvFormat(w, results)
			default:
				output.PrettyFormat(w, results, conf.Output.Locale)
				if len(summaries) > 0 {
					if len(results) > 0 {
						_, _ = fmt.Fprintln(w)
					}
					output.GrossUpFormat(w, summaries, conf.Output.Locale)
				}
				return nil
			}
		},
	}
}

func newGrossUpCmd(opts *rootOptions) *cobra.Command {
	var (
		net           string
		year          int
		tolerance     float64
		maxIterations int
	)

	cmd := &cobra.Command{
		Use:   "grossup",
		Short: "Find the gross income needed to take home a target net income",
		Long: "Find the gross income needed to take home a target net income. Without --net,\n" +
			"every grossUp target of the configuration is solved.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			outputFormat, err := opts.format(conf)
			if err != nil {
				return err
			}

			runner, err := optimizer.NewRunner(logger, conf)
			if err != nil {
				return err
			}

			var summaries []optimization.Summary
			if strings.TrimSpace(net) != "" {
				target, err := validation.ParseIncome(net)
				if err != nil {
					return err
				}
				summary, err := runner.Solve(config.GrossUpTarget{
					TargetNet:     target,
					Year:          year,
					Tolerance:     tolerance,
					MaxIterations: maxIterations,
				})
				if err != nil {
					return err
				}
				summaries = append(summaries, summary)
			} else {
				result, err := runner.Run()
				if err != nil {
					return err
				}
				if result.Empty() {
					return fmt.Errorf("no gross-up targets: pass --net or add grossUp entries to the configuration")
				}
				summaries = result.Summaries
			}

			w := cmd.OutOrStdout()
			switch outputFormat {
			case constants.OutputFormatJSON:
				return writeJSON(w, summaries)
			case constants.OutputFormatCSV:
				return output.GrossUpCsvFormat(w, summaries)
			default:
				output.GrossUpFormat(w, summaries, conf.Output.Locale)
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&net, "net", "", "target net annual income")
	cmd.Flags().IntVar(&year, "year", 0, "tax year (defaults to the configured default year)")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "acceptable error on the gross income (default 0.01)")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "bisection iteration limit (default 100)")

	return cmd
}

func newYearsCmd(opts *rootOptions) *cobra.Command {
	var (
		year   int
		export bool
	)

	cmd := &cobra.Command{
		Use:   "years",
		Short: "List supported tax years or show the tables of one year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			outputFormat, err := opts.format(conf)
			if err != nil {
				return err
			}
			catalog, err := conf.Catalog()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if year == 0 && !export {
				if outputFormat == constants.OutputFormatJSON {
					return writeJSON(w, map[string]interface{}{
						"defaultYear": conf.ResolveYear(0),
						"years":       catalog.Years(),
					})
				}
				for _, y := range catalog.Years() {
					marker := ""
					if y == conf.ResolveYear(0) && outputFormat == constants.OutputFormatPretty {
						marker = " (default)"
					}
					_, _ = fmt.Fprintf(w, "%d%s\n", y, marker)
				}
				return nil
			}

			taxYear, err := catalog.Year(conf.ResolveYear(year))
			if err != nil {
				return err
			}

			if export {
				payload := struct {
					TaxYears []config.TaxYearConfig `yaml:"taxYears"`
				}{TaxYears: []config.TaxYearConfig{config.FromTaxYear(taxYear)}}
				data, err := yaml.Marshal(payload)
				if err != nil {
					return fmt.Errorf("failed to encode tax year: %w", err)
				}
				_, err = w.Write(data)
				return err
			}

			if outputFormat == constants.OutputFormatJSON {
				return writeJSON(w, taxYear)
			}
			output.TaxYearFormat(w, taxYear, conf.Output.Locale)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "show the brackets and contribution rules of this year")
	cmd.Flags().BoolVar(&export, "export", false, "print the year as YAML ready to paste under taxYears")

	return cmd
}

func yearFor(conf *config.Configuration, year int) (taxengine.TaxYear, error) {
	catalog, err := conf.Catalog()
	if err != nil {
		return taxengine.TaxYear{}, err
	}
	return catalog.Year(conf.ResolveYear(year))
}

func writeResults(w io.Writer, outputFormat, locale string, results []calculator.ScenarioResult) error {
	switch outputFormat {
	case constants.OutputFormatJSON:
		return writeJSON(w, results)
	case constants.OutputFormatCSV:
		return output.CsvFormat(w, results)
	default:
		output.PrettyFormat(w, results, locale)
		return nil
	}
}

func writeJSON(w io.Writer, payload interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
