package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/qc-net-income/internal/config"
	"github.com/iwvelando/qc-net-income/internal/server"
	"github.com/iwvelando/qc-net-income/pkg/constants"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		serverConfigPath string
		address          string
		maxRequestSize   string
		envFile          string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculator as a JSON API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// QCTAX_* variables from the env file feed the configuration overrides.
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to load env file %s: %w", envFile, err)
			}

			conf, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			cfg, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				_ = logger.Sync()
				return err
			}
			if err := applyServeOverrides(cfg, address, maxRequestSize); err != nil {
				_ = logger.Sync()
				return err
			}
			if cfg.Version == constants.DefaultVersion {
				cfg.Version = version
			}

			// The server config may route logs elsewhere than the calculator config.
			if cfg.Logging != (config.LoggingConfig{}) && cfg.Logging != conf.Logging {
				_ = logger.Sync()
				logger, err = initializeLogger(cfg.Logging, opts.logLevel)
				if err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
			}
			defer func() { _ = logger.Sync() }()

			handler, err := server.NewHandler(logger, conf, cfg.RequestSizeBytes(), cfg.Version)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := server.Serve(ctx, logger, cfg, handler); err != nil {
				logger.Error("server stopped",
					zap.String("op", "main.serve"),
					zap.Error(err),
				)
				return err
			}
			logger.Info("server exited", zap.String("op", "main.serve"))
			return nil
		},
	}

	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override, e.g. :8080")
	cmd.Flags().StringVar(&maxRequestSize, "max-request-size", "", "request body limit override, e.g. 64K")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "file of KEY=value pairs loaded into the environment")

	return cmd
}

// applyServeOverrides applies the serve flags on top of the loaded server config.
func applyServeOverrides(cfg *server.Config, address, maxRequestSize string) error {
	if address != "" {
		cfg.Address = address
	}
	if maxRequestSize != "" {
		size, err := server.ParseSize(maxRequestSize)
		if err != nil {
			return fmt.Errorf("invalid --max-request-size: %w", err)
		}
		if size <= 0 {
			return fmt.Errorf("invalid --max-request-size: %s must be positive", maxRequestSize)
		}
		cfg.SetRequestSizeBytes(size)
	}
	return nil
}
