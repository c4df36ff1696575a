package archive

import (
	"context"
	"path/filepath"

	"codeberg.org/mutker/cpumon/internal/errors"
	"codeberg.org/mutker/cpumon/internal/logger"
	"codeberg.org/mutker/cpumon/internal/telemetry"
)

// Import copies every day log in dir into the archive. Rows already
// archived are skipped, so importing twice is harmless. Malformed rows
// are counted and logged; the rest of their file is still imported.
func Import(ctx context.Context, a Archive, dir string, log logger.Logger) (ImportStats, error) {
	errFactory := errors.New()
	var stats ImportStats

	files, err := telemetry.ListLogFiles(dir)
	if err != nil {
		return stats, errFactory.Wrap(ErrImportFailed, err)
	}

	before, err := a.Count(ctx)
	if err != nil {
		return stats, errFactory.Wrap(ErrImportFailed, err)
	}

	for _, path := range files {
		records, err := telemetry.ReadLogFile(path)
		if err != nil {
			if !errors.HasCode(err, telemetry.ErrRecordFormat) {
				log.Warn().Err(err).Str("file", filepath.Base(path)).Msg("Skipping unreadable log file")
				continue
			}
			stats.Malformed += countRowErrors(err)
			log.Warn().Err(err).Str("file", filepath.Base(path)).Msg("Log file has malformed rows")
		}

		for _, rec := range records {
			if err := a.Record(ctx, rec); err != nil {
				return stats, errFactory.Wrap(ErrImportFailed, err)
			}
		}
		stats.Files++
		stats.Rows += len(records)

		log.Debug().
			Str("file", filepath.Base(path)).
			Int("rows", len(records)).
			Msg("Imported log file")
	}

	after, err := a.Count(ctx)
	if err != nil {
		return stats, errFactory.Wrap(ErrImportFailed, err)
	}
	stats.Inserted = after - before

	return stats, nil
}

func countRowErrors(err error) int {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return len(joined.Unwrap())
	}
	return 1
}
