package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codeberg.org/mutker/cpumon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

type recordingObserver struct {
	ingested  []int
	flushed   []int
	failures  []error
	rotated   []string
	recreated []string
}

func (o *recordingObserver) SampleIngested(n int) { o.ingested = append(o.ingested, n) }
func (o *recordingObserver) Flushed(rows int, _ time.Duration) { o.flushed = append(o.flushed, rows) }
func (o *recordingObserver) FlushFailed(err error) { o.failures = append(o.failures, err) }
func (o *recordingObserver) Rotated(path string) { o.rotated = append(o.rotated, path) }
func (o *recordingObserver) FileRecreated(path string) { o.recreated = append(o.recreated, path) }

func sample(i int) SampleRecord {
	return SampleRecord{
		Timestamp:   time.Date(2024, 3, 9, 12, 0, i, 0, time.UTC).Format(time.RFC3339),
		Unit:        "Celsius",
		Temperature: 40 + float32(i)/2,
		Usage:       float32(i),
		PowerDraw:   15.25,
	}
}

func newTestStore(t *testing.T, cfg Config, opts ...Option) (*Store, *fakeClock) {
	t.Helper()

	clock := &fakeClock{t: time.Date(2024, 3, 9, 23, 59, 0, 0, time.Local)}
	opts = append([]Option{WithClock(clock.now)}, opts...)

	s, err := NewStore(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, clock
}

func testConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.Dir = filepath.Join(t.TempDir(), "logs")
	return cfg
}

func countHeaders(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Count(string(data), strings.Join(Header, ";")+"\n")
}

func TestNewStore(t *testing.T) {
	cfg := testConfig(t)
	s, _ := newTestStore(t, cfg)

	assert.Equal(t, filepath.Join(cfg.Dir, "09-03-2024_cpu_logs.csv"), s.Path())
	assert.Equal(t, 1, countHeaders(t, s.Path()))

	records, err := s.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNewStoreInvalidConfig(t *testing.T) {
	_, err := NewStore(Config{Dir: t.TempDir(), FlushThreshold: 0, WindowSize: 10})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrInvalidConfig))
}

func TestNewStoreUnwritableDir(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "logs")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	cfg := DefaultConfig()
	cfg.Dir = blocker
	_, err := NewStore(cfg)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrStorageInit))
}

func TestIngestPersistsInOrder(t *testing.T) {
	s, _ := newTestStore(t, testConfig(t))

	var want []SampleRecord
	for i := 0; i < 20; i++ {
		rec := sample(i)
		want = append(want, rec)
		require.NoError(t, s.Ingest(rec))
	}

	got, err := s.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, countHeaders(t, s.Path()))
	assert.Zero(t, s.Pending())
}

func TestIngestWriteBehind(t *testing.T) {
	cfg := testConfig(t)
	cfg.FlushThreshold = 3
	s, _ := newTestStore(t, cfg)

	require.NoError(t, s.Ingest(sample(0)))
	require.NoError(t, s.Ingest(sample(1)))
	assert.Equal(t, 2, s.Pending())

	got, err := s.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, got, "nothing reaches disk below the threshold")

	require.NoError(t, s.Ingest(sample(2)))
	assert.Zero(t, s.Pending())

	got, err = s.ReadAll()
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestHeaderWrittenOnce(t *testing.T) {
	cfg := testConfig(t)
	clock := &fakeClock{t: time.Date(2024, 3, 9, 10, 0, 0, 0, time.Local)}

	s, err := NewStore(cfg, WithClock(clock.now))
	require.NoError(t, err)
	require.NoError(t, s.Ingest(sample(0)))
	require.NoError(t, s.Close())

	s, err = NewStore(cfg, WithClock(clock.now))
	require.NoError(t, err)
	require.NoError(t, s.Ingest(sample(1)))
	require.NoError(t, s.Close())

	assert.Equal(t, 1, countHeaders(t, s.Path()))
	got, err := ReadLogFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, []SampleRecord{sample(0), sample(1)}, got)
}

func TestVisualizationWindowBounded(t *testing.T) {
	cfg := testConfig(t)
	cfg.WindowSize = 4
	obs := &recordingObserver{}
	s, _ := newTestStore(t, cfg, WithObserver(obs))

	assert.Empty(t, s.VisualizationWindow())

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Ingest(sample(i)))
		assert.LessOrEqual(t, len(s.VisualizationWindow()), cfg.WindowSize)
	}

	assert.Equal(t, []SampleRecord{sample(6), sample(7), sample(8), sample(9)}, s.VisualizationWindow())
	assert.Equal(t, []int{1, 2, 3, 4, 4, 4, 4, 4, 4, 4}, obs.ingested)

	snap := s.VisualizationWindow()
	snap[0].Temperature = -1
	assert.Equal(t, sample(6), s.VisualizationWindow()[0], "snapshot is a copy")
}

func TestDayRotation(t *testing.T) {
	cfg := testConfig(t)
	cfg.FlushThreshold = 2
	obs := &recordingObserver{}
	s, clock := newTestStore(t, cfg, WithObserver(obs))
	first := s.Path()

	require.NoError(t, s.Ingest(sample(0)))
	assert.Equal(t, 1, s.Pending())

	clock.advance(2 * time.Minute)
	require.NoError(t, s.Ingest(sample(1)))

	second := s.Path()
	assert.Equal(t, filepath.Join(cfg.Dir, "10-03-2024_cpu_logs.csv"), second)
	assert.Equal(t, []string{second}, obs.rotated)

	old, err := ReadLogFile(first)
	require.NoError(t, err)
	assert.Equal(t, []SampleRecord{sample(0)}, old, "buffer flushed into the old day before rotating")

	require.NoError(t, s.Flush())
	current, err := s.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []SampleRecord{sample(1)}, current)
	assert.Equal(t, 1, countHeaders(t, second))

	files, err := ListLogFiles(cfg.Dir)
	require.NoError(t, err)
	assert.Equal(t, []string{first, second}, files)
}

func TestSkippedDaysProduceNoFile(t *testing.T) {
	cfg := testConfig(t)
	s, clock := newTestStore(t, cfg)

	require.NoError(t, s.Ingest(sample(0)))
	clock.advance(72 * time.Hour)
	require.NoError(t, s.Ingest(sample(1)))

	files, err := ListLogFiles(cfg.Dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "12-03-2024_cpu_logs.csv", filepath.Base(files[1]))
}

func TestDeletedFileRecreated(t *testing.T) {
	obs := &recordingObserver{}
	s, _ := newTestStore(t, testConfig(t), WithObserver(obs))

	require.NoError(t, s.Ingest(sample(0)))

	var want []string
	for i := 1; i <= 3; i++ {
		require.NoError(t, os.Remove(s.Path()))
		require.NoError(t, s.Ingest(sample(i)))
		want = append(want, s.Path())

		got, err := s.ReadAll()
		require.NoError(t, err)
		assert.Equal(t, []SampleRecord{sample(i)}, got, "after deletion %d", i)
		assert.Equal(t, 1, countHeaders(t, s.Path()), "after deletion %d", i)
	}

	require.NoError(t, s.Ingest(sample(4)))
	got, err := s.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []SampleRecord{sample(3), sample(4)}, got)
	assert.Equal(t, 1, countHeaders(t, s.Path()))
	assert.Equal(t, want, obs.recreated)
}

func TestFailedFlushKeepsRecords(t *testing.T) {
	cfg := testConfig(t)
	obs := &recordingObserver{}
	s, _ := newTestStore(t, cfg, WithObserver(obs))

	require.NoError(t, s.Ingest(sample(0)))

	// Replace the log directory with a regular file so reopening fails.
	require.NoError(t, os.RemoveAll(cfg.Dir))
	require.NoError(t, os.WriteFile(cfg.Dir, []byte("blocked"), 0o644))

	err := s.Ingest(sample(1))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrFlushFailed))

	err = s.Ingest(sample(2))
	require.Error(t, err)

	assert.Equal(t, 2, s.Pending())
	assert.Len(t, s.VisualizationWindow(), 3, "window updates even when persistence fails")
	assert.Len(t, obs.failures, 2)

	require.NoError(t, os.Remove(cfg.Dir))
	require.NoError(t, s.Flush())
	assert.Zero(t, s.Pending())

	got, err := s.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []SampleRecord{sample(1), sample(2)}, got)
}

func TestCloseFlushes(t *testing.T) {
	cfg := testConfig(t)
	cfg.FlushThreshold = 100
	clock := &fakeClock{t: time.Date(2024, 3, 9, 10, 0, 0, 0, time.Local)}

	s, err := NewStore(cfg, WithClock(clock.now))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Ingest(sample(i)))
	}
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")

	got, err := ReadLogFile(s.Path())
	require.NoError(t, err)
	assert.Len(t, got, 5)
}
