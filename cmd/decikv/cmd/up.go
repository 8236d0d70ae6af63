/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/decikv/decikv/pkg/config"
)

// upCmd represents the up command
var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Bootstrap and start the decikv server",
	Long: `Bootstrap decikv by creating configuration and keys if they
don't exist, then start the HTTP and UDP servers. This is the
recommended way to get decikv running.

The command will:
- Create the configuration file with a secure API key if missing
- Open the record store
- Start the HTTP and UDP servers

Examples:
  decikv up
  decikv up --data-dir ./mydata --port 9000
  decikv up --config ./custom-config.yaml --print-keys`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		printKeys, _ := cmd.Flags().GetBool("print-keys")

		if configPath == "" {
			configPath = config.DefaultPath()
		}

		var cfg *config.Config
		var err error

		if config.Exists(configPath) {
			cfg, err = config.Load(configPath)
			if err != nil {
				cmd.Printf("Error loading existing config: %v\n", err)
				os.Exit(1)
			}
			cmd.Printf("✅ Loaded existing configuration from %s\n", configPath)
		} else {
			cmd.Printf("🔧 First run detected. Bootstrapping decikv...\n")

			dataDir, _ := cmd.Flags().GetString("data-dir")
			cfg, err = config.Bootstrap(configPath, dataDir)
			if err != nil {
				cmd.Printf("Error bootstrapping config: %v\n", err)
				os.Exit(1)
			}

			cmd.Printf("✅ Configuration created at %s\n", configPath)

			if printKeys {
				cmd.Printf("\n🔑 Generated Keys:\n")
				cmd.Printf("API Key: %s\n", cfg.HTTP.APIKey)
				cmd.Printf("\n⚠️  Store this key securely! It is also saved in %s\n", configPath)
			}
		}

		applyFlagOverrides(cmd, cfg)

		cmd.Printf("🚀 Starting decikv on %s:%d (udp %s:%d)\n",
			cfg.HTTP.Bind, cfg.HTTP.Port, cfg.UDP.Bind, cfg.UDP.Port)
		cmd.Printf("📁 Data directory: %s\n", cfg.DataDir)

		if err := runServers(cmd, cfg); err != nil {
			cmd.Printf("Error starting server: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(upCmd)

	upCmd.Flags().IntP("port", "p", 8080, "HTTP port to listen on")
	upCmd.Flags().String("bind", "127.0.0.1", "HTTP address to bind to")
	upCmd.Flags().Int("udp-port", 9999, "UDP port to listen on")
	upCmd.Flags().String("udp-bind", "127.0.0.1", "UDP address to bind to")
	upCmd.Flags().Bool("print-keys", false, "Print the generated API key to console")
}
