package archive

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/cpumon/internal/errors"
	"codeberg.org/mutker/cpumon/internal/logger"
	"codeberg.org/mutker/cpumon/internal/telemetry"
	_ "github.com/mattn/go-sqlite3"
)

type repository struct {
	db            *sql.DB
	logger        logger.Logger
	cfg           Config
	mu            sync.Mutex
	buffer        []telemetry.SampleRecord
	closed        bool
	flushTicker   *time.Ticker
	shutdownChan  chan struct{}
	flushDoneChan chan struct{}
}

// NewRepository opens (creating if needed) the SQLite archive at
// cfg.DBPath and brings its schema up to date.
func NewRepository(cfg Config, log logger.Logger) (Archive, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err).WithData(struct {
			Phase string
			Path  string
		}{
			Phase: "create_directory",
			Path:  cfg.DBPath,
		})
	}

	dsn := cfg.DBPath + "?_journal=WAL&_auto_vacuum=2&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}
	// A single connection serialises writers and keeps WAL readers simple.
	db.SetMaxOpenConns(1)

	if err := ValidateAndUpdateSchema(db, cfg.backupDir(), log); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	log.Info().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Int("batch_size", cfg.batchSize()).
		Dur("batch_timeout", cfg.BatchTimeout).
		Msg("Archive repository initialized")

	repo := &repository{
		db:            db,
		logger:        log,
		cfg:           cfg,
		buffer:        make([]telemetry.SampleRecord, 0, cfg.batchSize()),
		shutdownChan:  make(chan struct{}),
		flushDoneChan: make(chan struct{}),
	}

	if cfg.batchSize() > 1 && cfg.BatchTimeout > 0 {
		repo.flushTicker = time.NewTicker(cfg.BatchTimeout)
		go repo.flusher()
	} else {
		close(repo.flushDoneChan)
	}

	return repo, nil
}

func (*repository) Enabled() bool {
	return true
}

func (r *repository) Record(ctx context.Context, rec telemetry.SampleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	errFactory := errors.New()
	if r.closed {
		return errFactory.New(ErrClosed)
	}
	if err := ctx.Err(); err != nil {
		return errFactory.Wrap(ErrOperationTimeout, err)
	}

	r.buffer = append(r.buffer, rec)
	if len(r.buffer) >= r.cfg.batchSize() {
		return r.flush(ctx)
	}
	return nil
}

func (r *repository) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flush(ctx)
}

func (r *repository) Query(ctx context.Context, from, to time.Time) ([]telemetry.SampleRecord, error) {
	errFactory := errors.New()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.flush(ctx); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, querySamplesSQL, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, errFactory.Wrap(ErrQueryFailed, err)
	}
	defer rows.Close()

	var out []telemetry.SampleRecord
	for rows.Next() {
		var (
			rec                telemetry.SampleRecord
			temp, usage, power float64
		)
		if err := rows.Scan(&rec.Timestamp, &rec.Unit, &temp, &usage, &power); err != nil {
			return nil, errFactory.Wrap(ErrQueryFailed, err)
		}
		rec.Temperature = float32(temp)
		rec.Usage = float32(usage)
		rec.PowerDraw = float32(power)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrQueryFailed, err)
	}

	return out, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.flush(ctx); err != nil {
		return 0, err
	}

	var n int
	if err := r.db.QueryRowContext(ctx, countSamplesSQL).Scan(&n); err != nil {
		return 0, errors.New().Wrap(ErrQueryFailed, err)
	}
	return n, nil
}

func (r *repository) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	// Signal the flusher goroutine to stop and wait for it
	close(r.shutdownChan)
	if r.flushTicker != nil {
		r.flushTicker.Stop()
	}
	<-r.flushDoneChan

	r.mu.Lock()
	flushErr := r.flush(context.Background())
	r.mu.Unlock()

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to checkpoint archive WAL")
	}

	if err := r.db.Close(); err != nil {
		return errors.Join(flushErr, errors.New().Wrap(ErrStorageClose, err))
	}

	r.logger.Info().Msg("Archive repository closed")

	return flushErr
}

func (r *repository) flusher() {
	defer close(r.flushDoneChan)

	for {
		select {
		case <-r.flushTicker.C:
			r.mu.Lock()
			if err := r.flush(context.Background()); err != nil {
				r.logger.Warn().Err(err).Int("pending", len(r.buffer)).Msg("Periodic archive flush failed")
			}
			r.mu.Unlock()
		case <-r.shutdownChan:
			return
		}
	}
}

// flush writes the buffer in one transaction. Callers hold r.mu. On
// failure the buffer is kept for the next attempt.
func (r *repository) flush(ctx context.Context) error {
	if len(r.buffer) == 0 {
		return nil
	}

	errFactory := errors.New()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSampleSQL)
	if err != nil {
		r.rollback(tx)
		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	defer stmt.Close()

	for _, rec := range r.buffer {
		if _, err := stmt.ExecContext(ctx,
			rec.Timestamp,
			capturedAt(rec.Timestamp),
			rec.Unit,
			float64(rec.Temperature),
			float64(rec.Usage),
			float64(rec.PowerDraw),
		); err != nil {
			r.rollback(tx)
			return errFactory.Wrap(ErrTransactionFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	r.logger.Debug().Int("records", len(r.buffer)).Msg("Flushed samples to archive")
	r.buffer = r.buffer[:0]

	return nil
}

func (r *repository) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		r.logger.Error().Err(err).Msg("Failed to roll back transaction")
	}
}

// capturedAt converts an RFC 3339 timestamp into Unix milliseconds.
// Unparseable timestamps are stored without a capture time and never
// match a range query.
func capturedAt(ts string) sql.NullInt64 {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}
