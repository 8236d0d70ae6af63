/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/decikv/decikv/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize decikv configuration",
	Long: `Initialize the decikv configuration file for local development.

This command will:
- Create the configuration directory
- Write a config file with secure defaults
- Generate the API key for the HTTP endpoint

Examples:
  decikv init
  decikv init --data-dir ./mydata
  decikv init --config ./custom-config.yaml --force`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		force, _ := cmd.Flags().GetBool("force")

		if configPath == "" {
			configPath = config.DefaultPath()
		}

		if config.Exists(configPath) && !force {
			cmd.Printf("Config already exists at %s. Use --force to reinitialize.\n", configPath)
			return
		}

		cmd.Printf("Initializing decikv...\n")

		cfg, err := config.Bootstrap(configPath, dataDir)
		if err != nil {
			cmd.Printf("Error bootstrapping config: %v\n", err)
			os.Exit(1)
		}

		cmd.Printf("✅ Configuration created at %s\n", configPath)
		cmd.Printf("Data directory: %s\n", cfg.DataDir)
		cmd.Printf("API key: %s\n", cfg.HTTP.APIKey)
		cmd.Printf("\nYou can now start the server with:\n")
		cmd.Printf("  decikv serve --config %s\n", configPath)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("force", false, "Force reinitialization even if a config already exists")
}
