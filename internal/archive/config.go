package archive

import (
	"path/filepath"
	"time"

	"codeberg.org/mutker/cpumon/internal/errors"
)

const (
	defaultDirPerm      = 0o755
	defaultBatchSize    = 50
	defaultBatchTimeout = 5 * time.Second
	backupDirName       = "backups"
)

type Config struct {
	DBPath string
	// BatchSize is the number of buffered samples that triggers a write.
	BatchSize int
	// BatchTimeout bounds how long a partial batch stays buffered. Zero
	// disables the background flusher.
	BatchTimeout time.Duration
	// BackupDir receives a copy of the database before a schema change.
	// Empty means a "backups" directory next to DBPath.
	BackupDir string
	Enabled   bool
}

func DefaultConfig() Config {
	return Config{
		BatchSize:    defaultBatchSize,
		BatchTimeout: defaultBatchTimeout,
		Enabled:      false, // Disabled by default
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate DBPath if the archive is enabled
	if c.Enabled && c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.BatchSize < 0 || c.BatchTimeout < 0 {
		return errFactory.WithData(ErrInvalidConfig, struct {
			BatchSize    int
			BatchTimeout time.Duration
		}{c.BatchSize, c.BatchTimeout})
	}
	return nil
}

func (c Config) backupDir() string {
	if c.BackupDir != "" {
		return c.BackupDir
	}
	return filepath.Join(filepath.Dir(c.DBPath), backupDirName)
}

func (c Config) batchSize() int {
	if c.BatchSize <= 0 {
		return 1
	}
	return c.BatchSize
}
