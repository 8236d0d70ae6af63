package config

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "./data", config.DataDir)
	assert.Equal(t, "127.0.0.1", config.HTTP.Bind)
	assert.Equal(t, 8080, config.HTTP.Port)
	assert.Equal(t, "auto", config.HTTP.APIKey)
	assert.Equal(t, "127.0.0.1", config.UDP.Bind)
	assert.Equal(t, 9999, config.UDP.Port)
	assert.Equal(t, 5000, config.UDP.RequestTimeoutMS)
	assert.Equal(t, int32(16), config.Decimal.DivisionScale)
	assert.Equal(t, 16, config.Storage.MaxUpdateRetries)
	assert.Equal(t, "info", config.Logging.Level)
}

func TestUDPRequestTimeout(t *testing.T) {
	udp := UDP{RequestTimeoutMS: 250}
	assert.Equal(t, 250*time.Millisecond, udp.RequestTimeout())
}

func TestGenerateSecureKey(t *testing.T) {
	t.Run("generate 32 byte key", func(t *testing.T) {
		key, err := GenerateSecureKey(32)
		require.NoError(t, err)
		assert.Len(t, key, 64) // 32 bytes = 64 hex characters

		// Verify it's valid hex
		_, err = hex.DecodeString(key)
		assert.NoError(t, err)
	})

	t.Run("generate different keys", func(t *testing.T) {
		key1, err := GenerateSecureKey(16)
		require.NoError(t, err)
		key2, err := GenerateSecureKey(16)
		require.NoError(t, err)

		assert.NotEqual(t, key1, key2)
	})
}

func TestLoad(t *testing.T) {
	t.Run("load existing config", func(t *testing.T) {
		tmpDir, err := os.MkdirTemp("", "decikv_config_test")
		require.NoError(t, err)
		defer os.RemoveAll(tmpDir)

		configPath := filepath.Join(tmpDir, "config.yaml")
		expectedConfig := &Config{
			DataDir: "/custom/data",
			HTTP: HTTP{
				Bind:   "0.0.0.0",
				Port:   9000,
				APIKey: "test-api-key",
			},
			UDP: UDP{
				Bind:             "0.0.0.0",
				Port:             9998,
				RequestTimeoutMS: 2500,
			},
			Decimal: Decimal{
				DivisionScale: 8,
			},
			Storage: Storage{
				MaxUpdateRetries: 32,
			},
			Logging: Logging{
				Level: "debug",
			},
		}

		err = Save(expectedConfig, configPath)
		require.NoError(t, err)

		loadedConfig, err := Load(configPath)
		require.NoError(t, err)
		assert.Equal(t, expectedConfig, loadedConfig)
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := Load("/non/existent/config.yaml")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "config file does not exist")
	})

	t.Run("load invalid yaml", func(t *testing.T) {
		tmpDir, err := os.MkdirTemp("", "decikv_config_test")
		require.NoError(t, err)
		defer os.RemoveAll(tmpDir)

		configPath := filepath.Join(tmpDir, "invalid.yaml")
		err = os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644)
		require.NoError(t, err)

		_, err = Load(configPath)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}

func TestSave(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "decikv_config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	config := DefaultConfig()

	err = Save(config, configPath)
	require.NoError(t, err)

	// Verify file exists
	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// Verify content
	loadedConfig, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, config, loadedConfig)
}

func TestBootstrap(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "decikv_config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	dataDir := "/custom/data/dir"

	config, err := Bootstrap(configPath, dataDir)
	require.NoError(t, err)

	// Verify config values
	assert.Equal(t, dataDir, config.DataDir)
	assert.Equal(t, 8080, config.HTTP.Port)
	assert.Equal(t, 9999, config.UDP.Port)
	assert.Equal(t, "info", config.Logging.Level)

	// Verify the API key was generated and is not "auto"
	assert.NotEqual(t, "auto", config.HTTP.APIKey)
	_, err = hex.DecodeString(config.HTTP.APIKey)
	assert.NoError(t, err)

	// Verify file was created
	assert.True(t, Exists(configPath))

	// Verify we can load it back
	loadedConfig, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, config, loadedConfig)
}

func TestDefaultPath(t *testing.T) {
	path := DefaultPath()
	assert.NotEmpty(t, path)
	assert.Contains(t, path, "decikv")
	assert.Contains(t, path, "config.yaml")
}

func TestExists(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "decikv_config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	existingPath := filepath.Join(tmpDir, "exists.yaml")
	nonExistentPath := filepath.Join(tmpDir, "does-not-exist.yaml")

	// Create a file
	err = os.WriteFile(existingPath, []byte("test"), 0644)
	require.NoError(t, err)

	assert.True(t, Exists(existingPath))
	assert.False(t, Exists(nonExistentPath))
}

func TestConfigYAMLMarshalling(t *testing.T) {
	config := &Config{
		DataDir: "/test/data",
		HTTP: HTTP{
			Bind:   "localhost",
			Port:   9999,
			APIKey: "api-key-123",
		},
		UDP: UDP{
			Bind:             "localhost",
			Port:             9090,
			RequestTimeoutMS: 1000,
		},
		Decimal: Decimal{
			DivisionScale: 4,
		},
		Storage: Storage{
			MaxUpdateRetries: 8,
		},
		Logging: Logging{
			Level: "warn",
		},
	}

	data, err := yaml.Marshal(config)
	require.NoError(t, err)

	var unmarshalled Config
	err = yaml.Unmarshal(data, &unmarshalled)
	require.NoError(t, err)

	assert.Equal(t, config, &unmarshalled)
}

func TestSaveErrorHandling(t *testing.T) {
	config := DefaultConfig()

	// Try to save to a directory that can't be created
	invalidPath := "/invalid/path/that/cannot/be/created/config.yaml"

	err := Save(config, invalidPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create config directory")
}
