/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the decikv configuration
type Config struct {
	DataDir string  `yaml:"data_dir"`
	HTTP    HTTP    `yaml:"http"`
	UDP     UDP     `yaml:"udp"`
	Decimal Decimal `yaml:"decimal"`
	Storage Storage `yaml:"storage"`
	Logging Logging `yaml:"logging"`
}

// HTTP configures the REST transport
type HTTP struct {
	Bind   string `yaml:"bind"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

// UDP configures the datagram transport
type UDP struct {
	Bind             string `yaml:"bind"`
	Port             int    `yaml:"port"`
	RequestTimeoutMS int    `yaml:"request_timeout_ms"`
}

// RequestTimeout returns the per-request TTL as a duration.
func (u UDP) RequestTimeout() time.Duration {
	return time.Duration(u.RequestTimeoutMS) * time.Millisecond
}

// Decimal configures arithmetic defaults
type Decimal struct {
	DivisionScale int32 `yaml:"division_scale"`
}

// Storage configures the persistence layer
type Storage struct {
	MaxUpdateRetries int `yaml:"max_update_retries"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		HTTP: HTTP{
			Bind:   "127.0.0.1",
			Port:   8080,
			APIKey: "auto",
		},
		UDP: UDP{
			Bind:             "127.0.0.1",
			Port:             9999,
			RequestTimeoutMS: 5000,
		},
		Decimal: Decimal{
			DivisionScale: 16,
		},
		Storage: Storage{
			MaxUpdateRetries: 16,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load reads configuration from the specified path
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// Save writes the configuration to the specified path with secure permissions
func Save(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// Bootstrap creates a new configuration file with a generated API key
func Bootstrap(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.HTTP.APIKey = apiKey

	if err := Save(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// DefaultPath returns the default configuration path for the current platform
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./decikv.yaml"
	}

	// For Linux/macOS, use ~/.config/decikv/config.yaml
	configDir := filepath.Join(homeDir, ".config", "decikv")
	return filepath.Join(configDir, "config.yaml")
}

// Exists checks if a configuration file exists
func Exists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
