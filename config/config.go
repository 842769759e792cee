package config

import (
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = "config/config.yaml"
	DefaultBaseURL    = "http://api.openweathermap.org/data/2.5/forecast"
)

// Config holds the runtime settings. Values are layered: built-in defaults,
// then the optional YAML file, then environment variables.
type Config struct {
	AppName string `envconfig:"APP_NAME" yaml:"app_name"`
	AppEnv  string `envconfig:"APP_ENV" yaml:"app_env"`

	APIKey         string        `envconfig:"WEATHER_KEY" yaml:"weather_key,omitempty"`
	BaseURL        string        `envconfig:"WEATHER_BASE_URL" yaml:"weather_base_url"`
	Units          string        `envconfig:"WEATHER_UNITS" yaml:"weather_units"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" yaml:"request_timeout"`

	MaxAttempts   int           `envconfig:"MAX_ATTEMPTS" yaml:"max_attempts"`
	RetryDelay    time.Duration `envconfig:"RETRY_DELAY" yaml:"retry_delay"`
	RetryMaxDelay time.Duration `envconfig:"RETRY_MAX_DELAY" yaml:"retry_max_delay"`

	LogLevel  string `envconfig:"LOG_LEVEL" yaml:"log_level"`
	SentryDSN string `envconfig:"SENTRY_DSN" yaml:"sentry_dsn,omitempty"`
}

func defaultConfig() Config {
	return Config{
		AppName:        "forecast-cli",
		AppEnv:         "development",
		BaseURL:        DefaultBaseURL,
		Units:          "imperial",
		RequestTimeout: 10 * time.Second,
		MaxAttempts:    5,
		RetryDelay:     time.Second,
		RetryMaxDelay:  30 * time.Second,
		LogLevel:       "error",
	}
}

// NewConfig loads the configuration from the file named by CONFIG_FILE
// (config/config.yaml when unset) and the environment.
func NewConfig() (*Config, error) {
	path, ok := os.LookupEnv("CONFIG_FILE")
	if !ok || strings.TrimSpace(path) == "" {
		path = DefaultConfigFile
	}

	return NewConfigFromFile(path)
}

// NewConfigFromFile is NewConfig with an explicit YAML path. A missing file
// is not an error.
func NewConfigFromFile(path string) (*Config, error) {
	cnf := defaultConfig()

	// Read from YAML file first
	yamlData, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(yamlData, &cnf); err != nil {
			return nil, errors.Wrapf(err, "failed to parse YAML config %s", path)
		}
	case !os.IsNotExist(err):
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}

	// Override with environment variables
	if err := envconfig.Process("", &cnf); err != nil {
		return nil, errors.Wrap(err, "error environment variable parsing")
	}

	if err := cnf.Validate(); err != nil {
		return nil, err
	}

	return &cnf, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("WEATHER_KEY is required")
	}
	if c.BaseURL == "" {
		return errors.New("WEATHER_BASE_URL cannot be empty")
	}
	if c.MaxAttempts < 1 {
		return errors.Errorf("MAX_ATTEMPTS must be at least 1, got %d", c.MaxAttempts)
	}
	if c.RetryDelay < 0 || c.RetryMaxDelay < 0 {
		return errors.New("retry delays cannot be negative")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}

	return nil
}

// IsReportingEnv reports whether error events should leave the process.
func (c *Config) IsReportingEnv() bool {
	return c.AppEnv == "prod" || c.AppEnv == "dev"
}
