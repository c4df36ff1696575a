package telemetry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/cpumon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "09-03-2024_cpu_logs.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileName(t *testing.T) {
	day := time.Date(2024, 1, 5, 18, 30, 0, 0, time.Local)
	assert.Equal(t, "05-01-2024_cpu_logs.csv", FileName(day))

	parsed, ok := ParseFileName("/var/log/cpumon/05-01-2024_cpu_logs.csv")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.Local), parsed)

	for _, name := range []string{"notes.txt", "2024-01-05_cpu_logs.csv", "_cpu_logs.csv"} {
		_, ok := ParseFileName(name)
		assert.False(t, ok, name)
	}
}

func TestListLogFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"02-01-2025_cpu_logs.csv",
		"31-12-2024_cpu_logs.csv",
		"15-06-2024_cpu_logs.csv",
		"cpumon.db",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "01-01-2024_cpu_logs.csv"), 0o755))

	files, err := ListLogFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "15-06-2024_cpu_logs.csv"),
		filepath.Join(dir, "31-12-2024_cpu_logs.csv"),
		filepath.Join(dir, "02-01-2025_cpu_logs.csv"),
	}, files)

	_, err = ListLogFiles(filepath.Join(dir, "missing"))
	assert.True(t, errors.HasCode(err, ErrStorageAccess))
}

func TestReadLogFile(t *testing.T) {
	path := writeLog(t, "timestamp;temperature_unit;temperature;cpu_usage;power_draw\n"+
		"2024-03-09T12:00:00Z;Celsius;45.5;12;30.25\n"+
		"2024-03-09T12:00:01Z;Celsius;46;13.5;31\n")

	got, err := ReadLogFile(path)
	require.NoError(t, err)
	assert.Equal(t, []SampleRecord{
		{Timestamp: "2024-03-09T12:00:00Z", Unit: "Celsius", Temperature: 45.5, Usage: 12, PowerDraw: 30.25},
		{Timestamp: "2024-03-09T12:00:01Z", Unit: "Celsius", Temperature: 46, Usage: 13.5, PowerDraw: 31},
	}, got)
}

func TestReadLogFileMalformedRows(t *testing.T) {
	path := writeLog(t, "timestamp;temperature_unit;temperature;cpu_usage;power_draw\n"+
		"2024-03-09T12:00:00Z;Celsius;45.5;12;30\n"+
		"2024-03-09T12:00:01Z;Celsius;hot;13;31\n"+
		"2024-03-09T12:00:02Z;Celsius;47\n"+
		"2024-03-09T12:00:03Z;Celsius;48;14;32\n")

	got, err := ReadLogFile(path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrRecordFormat))
	assert.False(t, errors.HasCode(err, ErrStorageAccess))

	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 3, rowErr.Line)

	require.Len(t, got, 2)
	assert.Equal(t, "2024-03-09T12:00:00Z", got[0].Timestamp)
	assert.Equal(t, "2024-03-09T12:00:03Z", got[1].Timestamp)
}

func TestReadLogFileSchemaMismatch(t *testing.T) {
	path := writeLog(t, "time;temp\n1;2\n")

	got, err := ReadLogFile(path)
	assert.Nil(t, got)
	assert.True(t, errors.HasCode(err, ErrSchemaMismatch))
}

func TestReadLogFileEmptyAndMissing(t *testing.T) {
	got, err := ReadLogFile(writeLog(t, ""))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ReadLogFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, errors.HasCode(err, ErrStorageAccess))
}

func TestFloatFormatting(t *testing.T) {
	rec := SampleRecord{Timestamp: "t", Unit: "Fahrenheit", Temperature: 0.1, Usage: 100, PowerDraw: 12.345}
	assert.Equal(t, []string{"t", "Fahrenheit", "0.1", "100", "12.345"}, rec.row())

	back, err := parseRow(rec.row())
	require.NoError(t, err)
	assert.Equal(t, rec, back)
}
