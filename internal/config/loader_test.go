package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	defaults := DefaultConfig()
	assert.Equal(t, defaults.LogLevel, cfg.LogLevel)
	assert.Equal(t, defaults.Pipeline.Policy, cfg.Pipeline.Policy)
	assert.Equal(t, defaults.Pipeline.ZBar.Binary, cfg.Pipeline.ZBar.Binary)
	assert.Equal(t, defaults.Server.Port, cfg.Server.Port)
}

func TestLoadWithFile(t *testing.T) {
	viper.Reset()

	content := `
log_level: debug
pipeline:
  family: qr
  policy: exhaustive
  timeout_ms: 2000
output:
  format: json
server:
  port: 9090
`
	path := filepath.Join(t.TempDir(), "symscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	loader := NewLoader()
	cfg, err := loader.LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "qr", cfg.Pipeline.Family)
	assert.Equal(t, "exhaustive", cfg.Pipeline.Policy)
	assert.Equal(t, 2000, cfg.Pipeline.TimeoutMS)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, path, loader.GetConfigFileUsed())
}

func TestLoadWithFileMissing(t *testing.T) {
	viper.Reset()

	_, err := NewLoader().LoadWithFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadWithFileInvalidValues(t *testing.T) {
	viper.Reset()

	content := "pipeline:\n  policy: guesswork\n"
	path := filepath.Join(t.TempDir(), "symscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := NewLoader().LoadWithFile(path)
	assert.Error(t, err)
}

func TestEnvironmentOverride(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())
	t.Setenv("SYMSCAN_LOG_LEVEL", "warn")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}
