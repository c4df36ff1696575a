package archive

import (
	"context"
	"time"

	"codeberg.org/mutker/cpumon/internal/errors"
	"codeberg.org/mutker/cpumon/internal/logger"
	"codeberg.org/mutker/cpumon/internal/telemetry"
)

type noopArchive struct{}

// New returns the SQLite archive, or a no-op archive when it is disabled.
func New(cfg Config, log logger.Logger) (Archive, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		log.Debug().Msg("Archive disabled, using no-op archive")
		return noopArchive{}, nil
	}

	return NewRepository(cfg, log)
}

func (noopArchive) Record(context.Context, telemetry.SampleRecord) error { return nil }

func (noopArchive) Flush(context.Context) error { return nil }

func (noopArchive) Query(context.Context, time.Time, time.Time) ([]telemetry.SampleRecord, error) {
	return nil, nil
}

func (noopArchive) Count(context.Context) (int, error) { return 0, nil }

func (noopArchive) Close() error { return nil }

func (noopArchive) Enabled() bool { return false }
