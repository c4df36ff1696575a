package telemetry

import (
	"os"
	"path/filepath"
	"time"

	"codeberg.org/mutker/cpumon/internal/errors"
	"codeberg.org/mutker/cpumon/internal/logger"
)

// Store records samples into day-partitioned log files and keeps the most
// recent ones in memory for plotting.
//
// A Store is owned by a single goroutine; it does no locking of its own.
// Hosts sharing it across goroutines must serialize access.
type Store struct {
	cfg      Config
	now      func() time.Time
	observer Observer

	day    time.Time
	log    *logFile
	buffer []SampleRecord
	window *window
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces the wall clock used for day rotation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithObserver attaches an Observer to the store.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewStore creates the log directory if needed and opens today's log file.
func NewStore(cfg Config, opts ...Option) (*Store, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	s := &Store{
		cfg:      cfg,
		now:      time.Now,
		observer: noopObserver{},
		buffer:   make([]SampleRecord, 0, cfg.FlushThreshold),
		window:   newWindow(cfg.WindowSize),
	}
	for _, opt := range opts {
		opt(s)
	}

	today := s.now()
	lf, err := openLogFile(s.pathFor(today))
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err).WithData(struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "open_log",
			Path:  s.pathFor(today),
			Error: err.Error(),
		})
	}
	s.log = lf
	s.day = today

	logger.Debug().
		Str("path", lf.path).
		Int("flush_threshold", cfg.FlushThreshold).
		Int("window_size", cfg.WindowSize).
		Msg("Telemetry store opened")

	return s, nil
}

// Ingest records one sample. The sample always enters the visualization
// window; the returned error only concerns durable storage, and records
// that failed to persist stay buffered for the next flush.
func (s *Store) Ingest(rec SampleRecord) error {
	var rotateErr error
	if now := s.now(); !sameDay(now, s.day) {
		rotateErr = s.rotate(now)
	}

	s.window.push(rec)
	s.buffer = append(s.buffer, rec)
	s.observer.SampleIngested(s.window.len())

	if rotateErr != nil {
		return rotateErr
	}
	if len(s.buffer) >= s.cfg.FlushThreshold {
		return s.Flush()
	}
	return nil
}

// Flush writes every buffered record to the active log file and syncs it.
// A log file removed from disk is recreated, header included. On failure
// the buffer is left untouched. An empty buffer is a no-op.
func (s *Store) Flush() error {
	if len(s.buffer) == 0 {
		return nil
	}

	errFactory := errors.New()
	start := time.Now()

	if err := s.ensureFile(); err != nil {
		s.observer.FlushFailed(err)
		return errFactory.Wrap(ErrFlushFailed, err)
	}

	if err := s.log.write(s.buffer); err != nil {
		s.observer.FlushFailed(err)
		logger.Debug().Err(err).Int("pending", len(s.buffer)).Msg("Flush failed, keeping buffer")
		return errFactory.Wrap(ErrFlushFailed, err)
	}

	s.observer.Flushed(len(s.buffer), time.Since(start))
	s.buffer = s.buffer[:0]
	return nil
}

// ReadAll parses the active log file from disk. Buffered records that
// have not been flushed are not included.
func (s *Store) ReadAll() ([]SampleRecord, error) {
	return ReadLogFile(s.log.path)
}

// VisualizationWindow returns a copy of the most recent records, oldest
// first.
func (s *Store) VisualizationWindow() []SampleRecord {
	return s.window.snapshot()
}

// Path returns the active log file path.
func (s *Store) Path() string {
	return s.log.path
}

// Pending returns the number of buffered, unflushed records.
func (s *Store) Pending() int {
	return len(s.buffer)
}

// Close flushes the buffer and releases the log file.
func (s *Store) Close() error {
	errFactory := errors.New()

	flushErr := s.Flush()
	if err := s.log.close(); err != nil {
		return errors.Join(flushErr, errFactory.Wrap(ErrStorageClose, err))
	}
	return flushErr
}

// rotate flushes the buffer into the current file before switching to the
// file for now's day. On failure the current file stays active and the
// rotation is retried by the next Ingest.
func (s *Store) rotate(now time.Time) error {
	errFactory := errors.New()

	if err := s.Flush(); err != nil {
		return errFactory.Wrap(ErrRotationFailed, err)
	}

	next, err := openLogFile(s.pathFor(now))
	if err != nil {
		return errFactory.Wrap(ErrRotationFailed, err)
	}

	prev := s.log
	s.log = next
	s.day = now
	if err := prev.close(); err != nil {
		logger.Warn().Err(err).Str("path", prev.path).Msg("Failed to close rotated log file")
	}

	s.observer.Rotated(next.path)
	logger.Info().
		Str("from", prev.path).
		Str("to", next.path).
		Msg("Rotated telemetry log")

	return nil
}

// ensureFile reopens the active log file when it was removed externally
// or left closed by an earlier failure.
func (s *Store) ensureFile() error {
	_, err := os.Stat(s.log.path)
	switch {
	case err == nil && !s.log.closed:
		return nil
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return err
	}

	missing := err != nil
	if missing {
		logger.Warn().Str("path", s.log.path).Msg("Log file was deleted, recreating")
	}
	if cerr := s.log.close(); cerr != nil {
		logger.Debug().Err(cerr).Str("path", s.log.path).Msg("Failed to close stale log handle")
	}

	lf, err := openLogFile(s.log.path)
	if err != nil {
		return err
	}
	s.log = lf
	if missing {
		s.observer.FileRecreated(lf.path)
	}

	return nil
}

func (s *Store) pathFor(t time.Time) string {
	return filepath.Join(s.cfg.Dir, FileName(t))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
