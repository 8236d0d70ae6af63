/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/decikv/decikv/pkg/api"
	"github.com/decikv/decikv/pkg/config"
	"github.com/decikv/decikv/pkg/rpc"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the decikv servers",
	Long: `Start the decikv HTTP and UDP servers on the resolved
configuration. Both transports share one engine and one dispatcher.

The HTTP server answers the protocol on POST /rpc next to /health and
a prometheus /metrics endpoint. The UDP server answers the same
protocol with checksum-framed datagrams.

Examples:
  decikv serve
  decikv serve --port 8080 --udp-port 9999
  decikv serve --api-key mysecretkey --data-dir ./mydata`,
	Run: func(cmd *cobra.Command, args []string) {
		// Get config from context
		cfg, ok := configFromContext(cmd)
		if !ok {
			cmd.Println("Error: config not found in context")
			return
		}

		applyFlagOverrides(cmd, cfg)

		if err := runServers(cmd, cfg); err != nil {
			cmd.Printf("Error starting server: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "HTTP port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "HTTP address to bind to")
	serveCmd.Flags().Int("udp-port", 9999, "UDP port to listen on")
	serveCmd.Flags().String("udp-bind", "127.0.0.1", "UDP address to bind to")
	serveCmd.Flags().String("api-key", "", "API key for the HTTP endpoint (empty disables auth)")
}

// applyFlagOverrides lays server flags over the resolved configuration.
// Only flags the user actually set are applied, so a config value never
// loses to a flag default.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
	}
	if cmd.Flags().Changed("port") {
		cfg.HTTP.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("bind") {
		cfg.HTTP.Bind, _ = cmd.Flags().GetString("bind")
	}
	if cmd.Flags().Changed("udp-port") {
		cfg.UDP.Port, _ = cmd.Flags().GetInt("udp-port")
	}
	if cmd.Flags().Changed("udp-bind") {
		cfg.UDP.Bind, _ = cmd.Flags().GetString("udp-bind")
	}
	if cmd.Flags().Changed("api-key") {
		cfg.HTTP.APIKey, _ = cmd.Flags().GetString("api-key")
	}
}

// runServers opens the engine and runs both transports until the HTTP
// listener fails. The UDP server runs in the background.
func runServers(cmd *cobra.Command, cfg *config.Config) error {
	logger := loggerFromContext(cmd)

	apiKey := cfg.HTTP.APIKey
	if apiKey == "auto" {
		// Placeholder from an unbootstrapped config. Serving without a
		// key would leave the endpoint open, so generate one for this run.
		generated, err := config.GenerateSecureKey(32)
		if err != nil {
			return fmt.Errorf("failed to generate api key: %w", err)
		}
		apiKey = generated
		cmd.Printf("🔑 Generated API key for this run: %s\n", apiKey)
		cmd.Printf("Run 'decikv init' to persist a key.\n")
	}

	engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	dispatcher := rpc.NewDispatcher(engine, rpc.Config{DivisionScale: cfg.Decimal.DivisionScale})
	metrics := api.NewMetrics()

	udpServer := api.NewUDPServer(dispatcher, api.UDPConfig{
		Bind:           cfg.UDP.Bind,
		Port:           cfg.UDP.Port,
		RequestTimeout: cfg.UDP.RequestTimeout(),
	}, metrics, logger)
	if err := udpServer.Start(); err != nil {
		return err
	}
	defer udpServer.Close()

	httpServer := api.NewServer(dispatcher, api.ServerConfig{
		Bind:   cfg.HTTP.Bind,
		Port:   cfg.HTTP.Port,
		APIKey: apiKey,
	}, metrics, logger)

	return httpServer.Start()
}
