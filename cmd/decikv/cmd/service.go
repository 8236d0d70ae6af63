/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/decikv/decikv/pkg/config"
)

const serviceUnit = "decikv.service"

// serviceCmd represents the service command
var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage decikv as a systemd service",
	Long: `Manage decikv as a systemd service. This command provides
native integration with systemd for production deployments.

The service will be installed with proper security settings and
automatic restart on failure.`,
}

// installServiceCmd represents the service install command
var installServiceCmd = &cobra.Command{
	Use:   "install",
	Short: "Install decikv as a systemd service",
	Long: `Install decikv as a systemd service with proper configuration.

This will:
- Create or use existing configuration
- Generate systemd unit file
- Enable and optionally start the service

Examples:
  decikv service install
  decikv service install --data-dir /var/lib/decikv --user decikv`,
	Run: func(cmd *cobra.Command, args []string) {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		configPath, _ := cmd.Flags().GetString("config")
		user, _ := cmd.Flags().GetString("user")
		startNow, _ := cmd.Flags().GetBool("start")

		if configPath == "" {
			configPath = config.DefaultPath()
		}

		// Check if running as root (required for systemd operations)
		if os.Geteuid() != 0 {
			cmd.Printf("Error: service install requires root privileges\n")
			cmd.Printf("Run with: sudo decikv service install\n")
			os.Exit(1)
		}

		cmd.Printf("🔧 Installing decikv systemd service...\n")

		var cfg *config.Config
		var err error

		if config.Exists(configPath) {
			cfg, err = config.Load(configPath)
			if err != nil {
				cmd.Printf("Error loading config: %v\n", err)
				os.Exit(1)
			}
			cmd.Printf("✅ Loaded existing configuration\n")
		} else {
			cfg, err = config.Bootstrap(configPath, dataDir)
			if err != nil {
				cmd.Printf("Error bootstrapping config: %v\n", err)
				os.Exit(1)
			}
			cmd.Printf("✅ Created new configuration at %s\n", configPath)
		}

		applyFlagOverrides(cmd, cfg)

		if err := config.Save(cfg, configPath); err != nil {
			cmd.Printf("Error saving config: %v\n", err)
			os.Exit(1)
		}

		if err := writeSystemdUnit(cfg, configPath, user); err != nil {
			cmd.Printf("Error creating systemd unit: %v\n", err)
			os.Exit(1)
		}

		if err := systemctl("daemon-reload"); err != nil {
			cmd.Printf("Error reloading systemd: %v\n", err)
			os.Exit(1)
		}

		if err := systemctl("enable", serviceUnit); err != nil {
			cmd.Printf("Error enabling service: %v\n", err)
			os.Exit(1)
		}

		cmd.Printf("✅ Service enabled successfully\n")

		if startNow {
			if err := systemctl("start", serviceUnit); err != nil {
				cmd.Printf("Error starting service: %v\n", err)
				os.Exit(1)
			}
			cmd.Printf("✅ Service started successfully\n")
		}

		cmd.Printf("\n🎉 decikv service installed!\n")
		cmd.Printf("Service: %s\n", serviceUnit)
		cmd.Printf("Config: %s\n", configPath)
		cmd.Printf("Data: %s\n", cfg.DataDir)
		cmd.Printf("HTTP port: %d\n", cfg.HTTP.Port)
		cmd.Printf("UDP port: %d\n", cfg.UDP.Port)

		if !startNow {
			cmd.Printf("\nTo start the service: sudo systemctl start %s\n", serviceUnit)
		}
		cmd.Printf("To check status: sudo systemctl status %s\n", serviceUnit)
		cmd.Printf("To view logs: sudo journalctl -u %s -f\n", serviceUnit)
	},
}

// logsServiceCmd represents the service logs command
var logsServiceCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show decikv service logs",
	Long: `Show decikv service logs using journalctl.

Examples:
  decikv service logs
  decikv service logs -f  # Follow logs`,
	Run: func(cmd *cobra.Command, args []string) {
		follow, _ := cmd.Flags().GetBool("follow")
		lines, _ := cmd.Flags().GetInt("lines")

		journalArgs := []string{"-u", serviceUnit}
		if follow {
			journalArgs = append(journalArgs, "-f")
		}
		if lines > 0 {
			journalArgs = append(journalArgs, fmt.Sprintf("-n%d", lines))
		}

		if err := runCommand("journalctl", journalArgs...); err != nil {
			cmd.Printf("Error getting service logs: %v\n", err)
			os.Exit(1)
		}
	},
}

// uninstallServiceCmd represents the service uninstall command
var uninstallServiceCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Uninstall the decikv service",
	Run: func(cmd *cobra.Command, args []string) {
		// Check if running as root
		if os.Geteuid() != 0 {
			cmd.Printf("Error: service uninstall requires root privileges\n")
			cmd.Printf("Run with: sudo decikv service uninstall\n")
			os.Exit(1)
		}

		cmd.Printf("🗑️  Uninstalling decikv service...\n")

		// Stop service first
		_ = systemctl("stop", serviceUnit) // Ignore errors if already stopped

		if err := systemctl("disable", serviceUnit); err != nil {
			cmd.Printf("Warning: could not disable service: %v\n", err)
		}

		unitPath := filepath.Join("/etc/systemd/system", serviceUnit)
		if _, err := os.Stat(unitPath); err == nil {
			if err := os.Remove(unitPath); err != nil {
				cmd.Printf("Error removing unit file: %v\n", err)
				os.Exit(1)
			}
		}

		if err := systemctl("daemon-reload"); err != nil {
			cmd.Printf("Error reloading systemd: %v\n", err)
			os.Exit(1)
		}

		cmd.Printf("✅ decikv service uninstalled\n")
		cmd.Printf("Note: Configuration and data files were not removed\n")
	},
}

func init() {
	rootCmd.AddCommand(serviceCmd)

	// Add subcommands
	serviceCmd.AddCommand(installServiceCmd)
	serviceCmd.AddCommand(controlCommand("start", "Start the decikv service", "decikv service started"))
	serviceCmd.AddCommand(controlCommand("stop", "Stop the decikv service", "decikv service stopped"))
	serviceCmd.AddCommand(controlCommand("restart", "Restart the decikv service", "decikv service restarted"))
	serviceCmd.AddCommand(controlCommand("status", "Show decikv service status", ""))
	serviceCmd.AddCommand(logsServiceCmd)
	serviceCmd.AddCommand(uninstallServiceCmd)

	// Install command flags
	installServiceCmd.Flags().String("user", "decikv", "User to run the service as")
	installServiceCmd.Flags().IntP("port", "p", 8080, "HTTP port for the service")
	installServiceCmd.Flags().Int("udp-port", 9999, "UDP port for the service")
	installServiceCmd.Flags().Bool("start", true, "Start the service after installation")

	// Logs command flags
	logsServiceCmd.Flags().BoolP("follow", "f", false, "Follow log output")
	logsServiceCmd.Flags().IntP("lines", "n", 0, "Number of lines to show")
}

// controlCommand builds a service subcommand that maps one systemctl verb
// onto the installed unit.
func controlCommand(verb, short, done string) *cobra.Command {
	return &cobra.Command{
		Use:   verb,
		Short: short,
		Run: func(cmd *cobra.Command, args []string) {
			if err := systemctl(verb, serviceUnit); err != nil {
				cmd.Printf("Error running systemctl %s: %v\n", verb, err)
				os.Exit(1)
			}
			if done != "" {
				cmd.Printf("✅ %s\n", done)
			}
		},
	}
}

// systemdUnit renders the unit file contents for the given configuration.
func systemdUnit(cfg *config.Config, configPath, user string) string {
	return fmt.Sprintf(`[Unit]
Description=decikv Server
After=network-online.target
Wants=network-online.target

[Service]
User=%s
Group=%s
ExecStart=/usr/local/bin/decikv up --config %s
Restart=on-failure
NoNewPrivileges=true
UMask=0077
ReadWritePaths=%s
ReadWritePaths=%s

[Install]
WantedBy=multi-user.target
`, user, user, configPath, cfg.DataDir, filepath.Dir(configPath))
}

// writeSystemdUnit writes the unit file under /etc/systemd/system.
func writeSystemdUnit(cfg *config.Config, configPath, user string) error {
	unitPath := filepath.Join("/etc/systemd/system", serviceUnit)
	return os.WriteFile(unitPath, []byte(systemdUnit(cfg, configPath, user)), 0600)
}

// systemctl runs one systemctl command.
func systemctl(args ...string) error {
	return runCommand("systemctl", args...)
}

// runCommand runs a system command and returns its error
func runCommand(command string, args ...string) error {
	cmd := exec.Command(command, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
