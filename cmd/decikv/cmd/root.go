/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/decikv/decikv/pkg/config"
	"github.com/decikv/decikv/pkg/store"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "decikv",
	Short: "decikv - Atomic Decimal KV Store",
	Long: `decikv is a crash-safe key-value store for arbitrary-precision
decimal values with atomic read-modify-write updates.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := buildLogger(cfg.Logging.Level)
		if err != nil {
			return err
		}
		// Store in command context
		ctx := context.WithValue(cmd.Context(), "config", cfg)
		cmd.SetContext(context.WithValue(ctx, "logger", logger))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: OS-specific location)")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory for the store (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides config)")
}

// resolveConfig loads the config file when one exists, falls back to
// defaults otherwise, and lays persistent flag overrides on top.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.DefaultPath()
	}

	cfg := config.DefaultConfig()
	if config.Exists(configPath) {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
	}
	return cfg, nil
}

// buildLogger constructs the process logger at the configured level.
func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

// configFromContext returns the configuration resolved by the root command.
func configFromContext(cmd *cobra.Command) (*config.Config, bool) {
	cfg, ok := cmd.Context().Value("config").(*config.Config)
	return cfg, ok
}

// loggerFromContext returns the process logger, a nop logger when absent.
func loggerFromContext(cmd *cobra.Command) *zap.Logger {
	if logger, ok := cmd.Context().Value("logger").(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// openEngine opens the record engine on the configured data directory.
// Only commands that touch local records call this; eval, call, init and
// service never take the store lock.
func openEngine(cfg *config.Config) (*store.Engine, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	engine, err := store.NewEngine(store.Config{
		DataDir:          cfg.DataDir,
		MaxUpdateRetries: cfg.Storage.MaxUpdateRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	if err := engine.Open(); err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return engine, nil
}
