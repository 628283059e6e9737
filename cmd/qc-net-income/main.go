// Command qc-net-income computes Quebec net income, marginal rates and
// gross-up targets from the command line or over HTTP.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/iwvelando/qc-net-income/internal/config"
	"github.com/iwvelando/qc-net-income/pkg/constants"
	"github.com/iwvelando/qc-net-income/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = constants.DefaultVersion

type rootOptions struct {
	configPath   string
	logLevel     string
	outputFormat string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "qc-net-income",
		Short:         "Quebec net income and payroll deduction calculator",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json")

	rootCmd.AddCommand(
		newCalcCmd(opts),
		newMarginalCmd(opts),
		newScenariosCmd(opts),
		newGrossUpCmd(opts),
		newYearsCmd(opts),
		newServeCmd(opts),
	)

	return rootCmd
}

// loadConfiguration reads the configuration file. A missing file is only an
// error when the path was given explicitly.
func (o *rootOptions) loadConfiguration(cmd *cobra.Command) (*config.Configuration, error) {
	if _, err := os.Stat(o.configPath); errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.Default(), nil
	}
	return config.LoadConfiguration(o.configPath)
}

// setup loads the configuration and builds the logger, then reports any
// configuration warnings.
func (o *rootOptions) setup(cmd *cobra.Command) (*config.Configuration, *zap.Logger, error) {
	conf, err := o.loadConfiguration(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration at %s: %w", o.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, o.logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.setup"),
		)
	}
	return conf, logger, nil
}

// format returns the output format, with the CLI flag taking precedence over config.
func (o *rootOptions) format(conf *config.Configuration) (string, error) {
	outputFormat := conf.Output.Format
	if o.outputFormat != "" {
		outputFormat = o.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return "", err
	}
	return outputFormat, nil
}
