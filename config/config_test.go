package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigFromFile_Defaults(t *testing.T) {
	t.Setenv("WEATHER_KEY", "test-key")

	cnf, err := NewConfigFromFile("nonexistent.yaml")
	require.NoError(t, err)

	assert.Equal(t, "forecast-cli", cnf.AppName)
	assert.Equal(t, "development", cnf.AppEnv)
	assert.Equal(t, "test-key", cnf.APIKey)
	assert.Equal(t, DefaultBaseURL, cnf.BaseURL)
	assert.Equal(t, "imperial", cnf.Units)
	assert.Equal(t, 10*time.Second, cnf.RequestTimeout)
	assert.Equal(t, 5, cnf.MaxAttempts)
	assert.Equal(t, time.Second, cnf.RetryDelay)
	assert.Equal(t, 30*time.Second, cnf.RetryMaxDelay)
	assert.Equal(t, "error", cnf.LogLevel)
	assert.Empty(t, cnf.SentryDSN)
}

func TestNewConfigFromFile_MissingKey(t *testing.T) {
	t.Setenv("WEATHER_KEY", "")

	_, err := NewConfigFromFile("nonexistent.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEATHER_KEY is required")
}

func TestNewConfigFromFile_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlData := `
app_name: from-yaml
weather_key: yaml-key
weather_units: metric
max_attempts: 3
retry_delay: 250ms
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o600))

	t.Setenv("WEATHER_KEY", "env-key")
	t.Setenv("MAX_ATTEMPTS", "7")

	cnf, err := NewConfigFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "from-yaml", cnf.AppName)
	assert.Equal(t, "metric", cnf.Units)
	assert.Equal(t, 250*time.Millisecond, cnf.RetryDelay)
	assert.Equal(t, "debug", cnf.LogLevel)

	// environment wins over the file
	assert.Equal(t, "env-key", cnf.APIKey)
	assert.Equal(t, 7, cnf.MaxAttempts)

	// untouched keys keep their defaults
	assert.Equal(t, DefaultBaseURL, cnf.BaseURL)
}

func TestNewConfigFromFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_attempts: [not an int"), 0o600))
	t.Setenv("WEATHER_KEY", "test-key")

	_, err := NewConfigFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML config")
}

func TestNewConfig_ConfigFileEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weather_key: file-key\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("WEATHER_KEY", "")
	require.NoError(t, os.Unsetenv("WEATHER_KEY"))

	cnf, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "file-key", cnf.APIKey)
}

func TestConfigValidation(t *testing.T) {
	valid := defaultConfig()
	valid.APIKey = "k"
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"blank key", func(c *Config) { c.APIKey = "   " }, "WEATHER_KEY is required"},
		{"no base url", func(c *Config) { c.BaseURL = "" }, "WEATHER_BASE_URL"},
		{"zero attempts", func(c *Config) { c.MaxAttempts = 0 }, "MAX_ATTEMPTS"},
		{"negative delay", func(c *Config) { c.RetryDelay = -time.Second }, "negative"},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, "REQUEST_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfigIsReportingEnv(t *testing.T) {
	c := defaultConfig()
	assert.False(t, c.IsReportingEnv())

	c.AppEnv = "prod"
	assert.True(t, c.IsReportingEnv())

	c.AppEnv = "dev"
	assert.True(t, c.IsReportingEnv())
}
