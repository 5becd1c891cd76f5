package main

import (
	"fmt"

	"github.com/befriend-app/befriend-backend/internal/config"
	"github.com/befriend-app/befriend-backend/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const app = "befriend"

var (
	// Used for flags.
	envFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "befriend matches students into friends and suggests things to do together",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "env file with configuration; environment variables take precedence")
}

// bootstrap loads the configuration and builds the process logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFile(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Logging.Format, cfg.Logging.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log.With(zap.String("app", app), zap.String("env", cfg.Server.Env)), nil
}
