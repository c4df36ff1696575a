package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/cpumon/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultEnvPrefix       = "CPUMON"
	DefaultLogLevel        = string(LogLevelInfo)
	DefaultInterval        = 1
	DefaultLogDir          = "logs"
	DefaultFlushThreshold  = 1
	DefaultWindowSize      = 1000
	DefaultTemperatureUnit = "Celsius"
	DefaultArchiveBatch    = 50
	DefaultWidth           = 100
	DefaultHeight          = 30

	configName     = "cpumon"
	archiveDBName  = "cpumon.db"
	minCanvasCells = 10
)

type Config struct {
	Interval        int    `mapstructure:"interval"`
	LogDir          string `mapstructure:"log_dir"`
	FlushThreshold  int    `mapstructure:"flush_threshold"`
	WindowSize      int    `mapstructure:"window_size"`
	TemperatureUnit string `mapstructure:"temperature_unit"`
	LogLevel        string `mapstructure:"log_level"`
	Archive         bool   `mapstructure:"archive"`
	ArchiveDB       string `mapstructure:"archive_db"`
	ArchiveBatch    int    `mapstructure:"archive_batch"`
	MetricsAddr     string `mapstructure:"metrics_addr"`
	Width           int    `mapstructure:"width"`
	Height          int    `mapstructure:"height"`
}

// SampleInterval returns the configured sampling cadence.
func (c *Config) SampleInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// Load reads the configuration from defaults, the config file, the
// environment and command line flags, in increasing precedence.
func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	fs := o.flags
	if fs == nil {
		fs = pflag.NewFlagSet(configName, pflag.ContinueOnError)
	}
	configFlag := registerFlags(fs)

	if err := fs.Parse(o.args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}
	if err := bindFlags(v, fs); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	path := o.configPath
	if *configFlag != "" {
		path = *configFlag
	}
	if path == "" {
		path = os.Getenv(o.envPrefix + "_CONFIG")
	}

	if err := readConfigFile(v, path); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	if cfg.ArchiveDB == "" {
		cfg.ArchiveDB = filepath.Join(cfg.LogDir, archiveDBName)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.FlushThreshold <= 0 {
		return errFactory.WithData(errors.ErrInvalidThreshold, c.FlushThreshold)
	}
	if c.WindowSize <= 0 {
		return errFactory.WithData(errors.ErrInvalidWindow, c.WindowSize)
	}
	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if c.LogDir == "" {
		return errFactory.WithMessage(errors.ErrMissingConfig, "log_dir must not be empty")
	}
	if c.Width < minCanvasCells || c.Height < minCanvasCells {
		return errFactory.WithData(errors.ErrInvalidCanvas, struct {
			Width  int
			Height int
		}{c.Width, c.Height})
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("log_dir", DefaultLogDir)
	v.SetDefault("flush_threshold", DefaultFlushThreshold)
	v.SetDefault("window_size", DefaultWindowSize)
	v.SetDefault("temperature_unit", DefaultTemperatureUnit)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("archive", false)
	v.SetDefault("archive_db", "")
	v.SetDefault("archive_batch", DefaultArchiveBatch)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("width", DefaultWidth)
	v.SetDefault("height", DefaultHeight)
}

// flag name -> config key
var flagKeys = map[string]string{
	"interval":         "interval",
	"log-dir":          "log_dir",
	"flush-threshold":  "flush_threshold",
	"window-size":      "window_size",
	"temperature-unit": "temperature_unit",
	"log-level":        "log_level",
	"archive":          "archive",
	"archive-db":       "archive_db",
	"metrics-addr":     "metrics_addr",
	"width":            "width",
	"height":           "height",
}

func registerFlags(fs *pflag.FlagSet) *string {
	configPath := fs.String("config", "", "Path to the configuration file")
	fs.Int("interval", DefaultInterval, "Sampling interval in seconds")
	fs.String("log-dir", DefaultLogDir, "Directory holding the daily CSV logs")
	fs.Int("flush-threshold", DefaultFlushThreshold, "Number of buffered samples that triggers a flush")
	fs.Int("window-size", DefaultWindowSize, "Number of samples kept for live plotting")
	fs.String("temperature-unit", DefaultTemperatureUnit, "Unit recorded for samples that carry none")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.Bool("archive", false, "Mirror samples into the SQLite archive")
	fs.String("archive-db", "", "Path to the SQLite archive (default <log-dir>/cpumon.db)")
	fs.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	fs.Int("width", DefaultWidth, "Chart width in terminal cells")
	fs.Int("height", DefaultHeight, "Chart height in terminal cells")
	return configPath
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

func readConfigFile(v *viper.Viper, path string) error {
	errFactory := errors.New()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
		return nil
	}

	v.SetConfigName(configName)
	v.SetConfigType("toml")
	v.AddConfigPath("/etc")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	return nil
}
