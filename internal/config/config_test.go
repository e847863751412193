package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TABLECLI_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "auto", cfg.Pipeline.CleanStrategy)
	assert.Equal(t, "xlsx", cfg.Pipeline.OutputFormat)
	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.False(t, cfg.Auth.Enabled)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TABLECLI_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yml"))
	t.Setenv("TABLECLI_SERVER_PORT", "9090")
	t.Setenv("TABLECLI_PIPELINE_CLEAN_STRATEGY", "drop")
	t.Setenv("TABLECLI_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "drop", cfg.Pipeline.CleanStrategy)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "tablecli.yml")
	content := `
server:
  port: 3000
  read_timeout: 10s
  write_timeout: 10s
pipeline:
  input_file: data/orders.csv
  clean_strategy: drop
  output_format: csv
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))
	t.Setenv("TABLECLI_CONFIG_FILE", configFile)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "data/orders.csv", cfg.Pipeline.InputFile)
	assert.Equal(t, "drop", cfg.Pipeline.CleanStrategy)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "tablecli.yml")
	content := `
server:
  port: 3000
pipeline:
  clean_strategy: drop
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))
	t.Setenv("TABLECLI_CONFIG_FILE", configFile)
	t.Setenv("TABLECLI_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	// Env beats file, file beats default
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "drop", cfg.Pipeline.CleanStrategy)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_InvalidStrategy(t *testing.T) {
	t.Setenv("TABLECLI_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yml"))
	t.Setenv("TABLECLI_PIPELINE_CLEAN_STRATEGY", "mean")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid clean strategy")
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: -1, ReadTimeout: 1, WriteTimeout: 1},
		Pipeline: PipelineConfig{
			CleanStrategy: "auto",
			OutputFormat:  "csv",
		},
	}

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
}

func TestPaths_EnsureDirectories(t *testing.T) {
	base := t.TempDir()
	paths := &Paths{
		DataDir:   filepath.Join(base, "data"),
		OutputDir: filepath.Join(base, "output"),
		ChartsDir: filepath.Join(base, "output", "charts"),
		LogsDir:   filepath.Join(base, "logs"),
	}

	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.DataDir, paths.OutputDir, paths.ChartsDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestPaths_Getters(t *testing.T) {
	paths := NewPaths(PathsConfig{
		DataDir:   "/data",
		OutputDir: "/out",
		ChartsDir: "/out/charts",
		LogsDir:   "/logs",
	})

	assert.Equal(t, filepath.Join("/data", "input.csv"), paths.GetDataPath("input.csv"))
	assert.Equal(t, filepath.Join("/out", "cleaned.xlsx"), paths.GetOutputPath("cleaned.xlsx"))
	assert.Equal(t, filepath.Join("/out/charts", "overview.xlsx"), paths.GetChartPath("overview.xlsx"))
	assert.Equal(t, filepath.Join("/logs", "app.log"), paths.GetLogPath("app.log"))
}
