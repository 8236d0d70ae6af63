package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decikv/decikv/pkg/config"
)

func TestInitBootstrap(t *testing.T) {
	// Create temporary directory for test
	tmpDir, err := os.MkdirTemp("", "decikv_init_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	dataDir := filepath.Join(tmpDir, "data")
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Run("successful initialization", func(t *testing.T) {
		cfg, err := config.Bootstrap(configPath, dataDir)
		require.NoError(t, err)

		assert.True(t, config.Exists(configPath))
		assert.Equal(t, dataDir, cfg.DataDir)
		assert.NotEmpty(t, cfg.HTTP.APIKey)
		assert.NotEqual(t, "auto", cfg.HTTP.APIKey)
	})

	t.Run("generated key survives reload", func(t *testing.T) {
		cfg, err := config.Bootstrap(configPath, dataDir)
		require.NoError(t, err)

		loaded, err := config.Load(configPath)
		require.NoError(t, err)
		assert.Equal(t, cfg.HTTP.APIKey, loaded.HTTP.APIKey)
	})

	t.Run("empty data dir keeps default", func(t *testing.T) {
		cfg, err := config.Bootstrap(filepath.Join(tmpDir, "other.yaml"), "")
		require.NoError(t, err)
		assert.Equal(t, "./data", cfg.DataDir)
	})

	t.Run("config path under a file", func(t *testing.T) {
		blocker := filepath.Join(tmpDir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

		_, err := config.Bootstrap(filepath.Join(blocker, "config.yaml"), dataDir)
		assert.Error(t, err)
	})
}

func TestInitKeyGeneration(t *testing.T) {
	t.Run("keys are unique", func(t *testing.T) {
		a, err := config.GenerateSecureKey(32)
		require.NoError(t, err)
		b, err := config.GenerateSecureKey(32)
		require.NoError(t, err)

		assert.Len(t, a, 64) // hex-encoded
		assert.NotEqual(t, a, b)
	})
}
