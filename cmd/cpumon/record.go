package main

import (
	"context"
	"io"
	"os"
	"time"

	"codeberg.org/mutker/cpumon/internal/archive"
	"codeberg.org/mutker/cpumon/internal/config"
	"codeberg.org/mutker/cpumon/internal/errors"
	"codeberg.org/mutker/cpumon/internal/logger"
	"codeberg.org/mutker/cpumon/internal/observability"
	"codeberg.org/mutker/cpumon/internal/pid"
	"codeberg.org/mutker/cpumon/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

const shutdownTimeout = 5 * time.Second

func recordFlags(*pflag.FlagSet) {}

// runRecord ingests samples from stdin until EOF or a termination signal.
// The write-behind buffer is also flushed once per sampling interval.
func runRecord(ctx context.Context, cfg *config.Config, _ *pflag.FlagSet) error {
	return record(ctx, cfg, os.Stdin)
}

func record(ctx context.Context, cfg *config.Config, in io.Reader) error {
	errFactory := errors.New()

	if err := pid.Write(cfg.LogDir); err != nil {
		return err
	}
	defer func() {
		if err := pid.Remove(cfg.LogDir); err != nil {
			logger.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewStoreMetrics(reg)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}

	if cfg.MetricsAddr != "" {
		srv, err := observability.Listen(cfg.MetricsAddr, reg)
		if err != nil {
			return errFactory.Wrap(errors.ErrInitApp, err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				logger.Warn().Err(err).Msg("Failed to stop metrics server")
			}
		}()
	}

	store, err := telemetry.NewStore(telemetry.Config{
		Dir:            cfg.LogDir,
		FlushThreshold: cfg.FlushThreshold,
		WindowSize:     cfg.WindowSize,
	}, telemetry.WithObserver(metrics))
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}

	arch, err := archive.New(archiveConfig(cfg, cfg.Archive), logger.Default())
	if err != nil {
		store.Close()
		return errFactory.Wrap(errors.ErrInitApp, err)
	}

	logger.Info().
		Str("path", store.Path()).
		Bool("archive", arch.Enabled()).
		Msg("Recording samples from stdin")

	loopErr := ingestLoop(ctx, cfg, newSampleReader(in, cfg.TemperatureUnit), store, arch, metrics)

	var shutdownErrs []error
	if err := store.Close(); err != nil {
		shutdownErrs = append(shutdownErrs, err)
	}
	if err := arch.Close(); err != nil {
		shutdownErrs = append(shutdownErrs, err)
	}
	if err := errors.Join(shutdownErrs...); err != nil {
		return errors.Join(loopErr, errFactory.Wrap(errors.ErrShutdownFailed, err))
	}

	logger.Info().Msg("Exiting...")
	return loopErr
}

func ingestLoop(
	ctx context.Context,
	cfg *config.Config,
	reader *sampleReader,
	store *telemetry.Store,
	arch archive.Archive,
	metrics *observability.StoreMetrics,
) error {
	samples := make(chan telemetry.SampleRecord)
	readErr := make(chan error, 1)

	// samples is closed only on a clean end of input, so a read error is
	// never mistaken for one.
	go func() {
		for {
			rec, err := reader.Next()
			switch {
			case err == io.EOF:
				close(samples)
				return
			case errors.HasCode(err, errors.ErrDecodeSample):
				logger.Warn().Err(err).Msg("Skipping undecodable sample")
				continue
			case err != nil:
				readErr <- err
				return
			}

			select {
			case samples <- rec:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(cfg.SampleInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Received termination signal.")
			return nil
		case err := <-readErr:
			return errors.New().Wrap(errors.ErrMainLoop, err)
		case <-ticker.C:
			if err := store.Flush(); err != nil {
				logger.Warn().Err(err).Int("pending", store.Pending()).Msg("Periodic flush failed")
			}
		case rec, ok := <-samples:
			if !ok {
				logger.Info().Msg("Input closed")
				return nil
			}
			metrics.ObserveSample(rec)
			if err := store.Ingest(rec); err != nil {
				// The sample stays buffered; the next flush retries it.
				logger.Warn().Err(err).Int("pending", store.Pending()).Msg("Failed to persist sample")
			}
			if err := arch.Record(ctx, rec); err != nil {
				metrics.ArchiveFailed()
				logger.Debug().Err(err).Msg("Failed to archive sample")
			}
		}
	}
}

func archiveConfig(cfg *config.Config, enabled bool) archive.Config {
	ac := archive.DefaultConfig()
	ac.Enabled = enabled
	ac.DBPath = cfg.ArchiveDB
	ac.BatchSize = cfg.ArchiveBatch
	return ac
}
