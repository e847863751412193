package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Auth     AuthConfig     `yaml:"auth" envconfig:"AUTH"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"output"`
	ChartsDir string `yaml:"charts_dir" envconfig:"CHARTS_DIR" default:"output/charts"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// PipelineConfig contains the fixed defaults for the end-to-end pipeline run
type PipelineConfig struct {
	InputFile     string `yaml:"input_file" envconfig:"INPUT_FILE" default:"data/deliveries.csv"`
	InputFormat   string `yaml:"input_format" envconfig:"INPUT_FORMAT" default:"csv"`
	OutputFile    string `yaml:"output_file" envconfig:"OUTPUT_FILE" default:"output/deliveries_cleaned.xlsx"`
	OutputFormat  string `yaml:"output_format" envconfig:"OUTPUT_FORMAT" default:"xlsx"`
	CleanStrategy string `yaml:"clean_strategy" envconfig:"CLEAN_STRATEGY" default:"auto"`
	Overwrite     bool   `yaml:"overwrite" envconfig:"OVERWRITE" default:"true"`
	Append        bool   `yaml:"append" envconfig:"APPEND" default:"false"`
	ChartsFile    string `yaml:"charts_file" envconfig:"CHARTS_FILE" default:"output/charts/overview.xlsx"`
}

// AuthConfig contains credential verification configuration
type AuthConfig struct {
	Enabled         bool   `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	CredentialsFile string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE" default:"credentials.yml"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process("TABLECLI", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		applyFileConfig(reflect.ValueOf(&cfg).Elem(), reflect.ValueOf(fileConfig).Elem(), "TABLECLI")
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyFileConfig copies non-zero file values into cfg for every leaf
// field whose environment variable is not actually set. envconfig has
// already filled cfg with defaults and environment values, so the
// resulting precedence is environment > file > default. Keys follow
// the envconfig naming: prefix plus the envconfig tag of each nesting
// level, joined with underscores.
func applyFileConfig(cfg, file reflect.Value, prefix string) {
	t := cfg.Type()
	for i := 0; i < t.NumField(); i++ {
		key := prefix + "_" + t.Field(i).Tag.Get("envconfig")
		cfgField := cfg.Field(i)
		fileField := file.Field(i)

		if cfgField.Kind() == reflect.Struct {
			applyFileConfig(cfgField, fileField, key)
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if !fileField.IsZero() {
			cfgField.Set(fileField)
		}
	}
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	switch c.Pipeline.CleanStrategy {
	case "auto", "drop":
	default:
		return fmt.Errorf("invalid clean strategy: %s", c.Pipeline.CleanStrategy)
	}

	switch c.Pipeline.OutputFormat {
	case "csv", "xlsx":
	default:
		return fmt.Errorf("invalid output format: %s", c.Pipeline.OutputFormat)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the config file path, honoring the override env var
func getConfigFilePath() string {
	if path := os.Getenv("TABLECLI_CONFIG_FILE"); path != "" {
		return path
	}
	return "tablecli.yml"
}

// GetDataDir returns the resolved data directory path
func (c *Config) GetDataDir() string {
	return resolveDir(c.Paths.DataDir)
}

// GetOutputDir returns the resolved output directory path
func (c *Config) GetOutputDir() string {
	return resolveDir(c.Paths.OutputDir)
}

// GetLogsDir returns the resolved logs directory path
func (c *Config) GetLogsDir() string {
	return resolveDir(c.Paths.LogsDir)
}

func resolveDir(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	wd, err := os.Getwd()
	if err != nil {
		return dir
	}
	return filepath.Join(wd, dir)
}
