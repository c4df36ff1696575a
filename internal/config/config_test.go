package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/cpumon/internal/config"
	"codeberg.org/mutker/cpumon/internal/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cpumon.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
interval = 5
log_dir = "/var/log/cpumon"
flush_threshold = 10
window_size = 500
temperature_unit = "Fahrenheit"
log_level = "debug"
archive = true
archive_db = "/path/to/archive.db"
metrics_addr = ":9200"
width = 120
height = 40
`)

	// Set environment variable to point to the test config file
	t.Setenv("CPUMON_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Interval, "Expected Interval 5")
	assert.Equal(t, 5*time.Second, cfg.SampleInterval())
	assert.Equal(t, "/var/log/cpumon", cfg.LogDir)
	assert.Equal(t, 10, cfg.FlushThreshold)
	assert.Equal(t, 500, cfg.WindowSize)
	assert.Equal(t, "Fahrenheit", cfg.TemperatureUnit)
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
	assert.True(t, cfg.Archive, "Expected Archive true")
	assert.Equal(t, "/path/to/archive.db", cfg.ArchiveDB)
	assert.Equal(t, ":9200", cfg.MetricsAddr)
	assert.Equal(t, 120, cfg.Width)
	assert.Equal(t, 40, cfg.Height)
}

func TestLoadDefaults(t *testing.T) {
	// Ensure no config file is used
	t.Setenv("CPUMON_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultInterval, cfg.Interval)
	assert.Equal(t, config.DefaultLogDir, cfg.LogDir)
	assert.Equal(t, config.DefaultFlushThreshold, cfg.FlushThreshold)
	assert.Equal(t, config.DefaultWindowSize, cfg.WindowSize)
	assert.Equal(t, config.DefaultTemperatureUnit, cfg.TemperatureUnit)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel, "Expected default LogLevel info")
	assert.False(t, cfg.Archive)
	assert.Equal(t, filepath.Join(config.DefaultLogDir, "cpumon.db"), cfg.ArchiveDB)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	configPath := writeConfig(t, `
This is not a valid TOML file
`)
	t.Setenv("CPUMON_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := config.Load(config.WithConfigFile(filepath.Join(t.TempDir(), "absent.toml")))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestInvalidLogLevel(t *testing.T) {
	configPath := writeConfig(t, `
log_level = "invalid"
`)
	t.Setenv("CPUMON_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidLogLevel))
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"zero interval", []string{"--interval", "0"}, errors.ErrInvalidInterval},
		{"zero threshold", []string{"--flush-threshold", "0"}, errors.ErrInvalidThreshold},
		{"negative window", []string{"--window-size", "-1"}, errors.ErrInvalidWindow},
		{"tiny canvas", []string{"--width", "3"}, errors.ErrInvalidCanvas},
		{"empty log dir", []string{"--log-dir", ""}, errors.ErrMissingConfig},
	}

	t.Setenv("CPUMON_CONFIG", "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(config.WithArgs(tt.args))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), err.Error())
		})
	}
}

func TestLogLevelFlag(t *testing.T) {
	t.Setenv("CPUMON_CONFIG", "")

	cfg, err := config.Load(config.WithArgs([]string{"--log-level", "debug"}))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel to be set by flag")
}

func TestPrecedence(t *testing.T) {
	configPath := writeConfig(t, `
interval = 3
log_level = "error"
flush_threshold = 7
`)
	t.Setenv("CPUMON_CONFIG", configPath)
	t.Setenv("CPUMON_LOG_LEVEL", "warning")
	t.Setenv("CPUMON_FLUSH_THRESHOLD", "9")

	cfg, err := config.Load(config.WithArgs([]string{"--flush-threshold", "11"}))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Interval, "file beats defaults")
	assert.Equal(t, "warning", cfg.LogLevel, "env beats file")
	assert.Equal(t, 11, cfg.FlushThreshold, "flag beats env")
}

func TestEnvPrefix(t *testing.T) {
	t.Setenv("CPUMON_CONFIG", "")
	t.Setenv("THERMO_WINDOW_SIZE", "250")

	cfg, err := config.Load(config.WithEnvPrefix("THERMO"))
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.WindowSize)
}

func TestWithFlagSet(t *testing.T) {
	t.Setenv("CPUMON_CONFIG", "")

	fs := pflag.NewFlagSet("render", pflag.ContinueOnError)
	file := fs.String("file", "", "log file")

	cfg, err := config.Load(
		config.WithFlagSet(fs),
		config.WithArgs([]string{"--file", "today.csv", "--width", "80", "extra"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "today.csv", *file)
	assert.Equal(t, 80, cfg.Width)
	assert.Equal(t, []string{"extra"}, fs.Args())
}
