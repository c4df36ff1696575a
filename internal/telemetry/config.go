package telemetry

import (
	"codeberg.org/mutker/cpumon/internal/errors"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644

	DefaultDir            = "logs"
	DefaultFlushThreshold = 1
	DefaultWindowSize     = 1000
)

// Config controls where the store writes and how much it keeps in memory.
type Config struct {
	// Dir holds one log file per calendar day.
	Dir string
	// FlushThreshold is the write-behind buffer length that triggers a flush.
	FlushThreshold int
	// WindowSize bounds the visualization window.
	WindowSize int
}

func DefaultConfig() Config {
	return Config{
		Dir:            DefaultDir,
		FlushThreshold: DefaultFlushThreshold,
		WindowSize:     DefaultWindowSize,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()
	if c.Dir == "" {
		return errFactory.New(ErrInvalidDir)
	}
	if c.FlushThreshold <= 0 {
		return errFactory.WithData(ErrInvalidConfig, struct {
			Field string
			Value int
		}{"flush_threshold", c.FlushThreshold})
	}
	if c.WindowSize <= 0 {
		return errFactory.WithData(ErrInvalidConfig, struct {
			Field string
			Value int
		}{"window_size", c.WindowSize})
	}
	return nil
}
