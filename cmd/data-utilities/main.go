package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/config"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/connector"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// app carries the settings shared by every subcommand
type app struct {
	configPath string
	envFile    string
	logLevel   string

	cfg    *config.Config
	logger *logrus.Logger
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "data-utilities",
		Short: "Lineage, profiling and migration helpers for Teradata, Azure SQL and Databricks",
		Long: `Data Utilities

Resolve the view lineage of a database object, profile and quality-check
datasets, and generate source-to-target mappings, DDL and ETL scripts for
moving tables between Teradata, Azure SQL DB and Databricks.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Flags())
		},
	}

	// Define flags
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to config file (default: ~/.config/data-utilities/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&a.envFile, "env-file", "e", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVarP(&a.logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newConnectorCmd(a),
		newLineageCmd(a),
		newProfileCmd(a),
		newQualityCmd(a),
		newGenerateCmd(a),
		newServeCmd(a),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Println(err)
		os.Exit(1)
	}
}

// setup loads the environment and the configuration and configures logging
func (a *app) setup(flags *pflag.FlagSet) error {
	// Load environment variables first so DATAUTIL_* overrides reach the config
	bootstrap := utils.SetupLogging(a.logLevel)
	utils.LoadEnvironmentVariables(a.envFile, bootstrap)

	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.Load(a.configPath, flags)
	} else {
		cfg, err = config.LoadDefault(flags)
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.logger = utils.SetupLogging(cfg.LogLevel)
	a.cfg = cfg
	return nil
}

func (a *app) session() (*connector.Session, error) {
	session, err := connector.NewSession(a.cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}
	return session, nil
}
