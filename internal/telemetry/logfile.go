package telemetry

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"codeberg.org/mutker/cpumon/internal/errors"
)

const (
	fileDateLayout = "02-01-2006"
	fileSuffix     = "_cpu_logs.csv"
	delimiter      = ';'
)

// FileName returns the log file name for the calendar day of t.
func FileName(t time.Time) string {
	return t.Format(fileDateLayout) + fileSuffix
}

// ParseFileName extracts the calendar day encoded in a log file name.
func ParseFileName(name string) (time.Time, bool) {
	base, ok := strings.CutSuffix(filepath.Base(name), fileSuffix)
	if !ok {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(fileDateLayout, base, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// ListLogFiles returns the log files in dir ordered by day, oldest first.
func ListLogFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.New().Wrap(ErrStorageAccess, err)
	}

	type dated struct {
		path string
		day  time.Time
	}
	var files []dated
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if day, ok := ParseFileName(e.Name()); ok {
			files = append(files, dated{filepath.Join(dir, e.Name()), day})
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].day.Before(files[j].day) })

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

// logFile is an append-mode handle on one day's log.
type logFile struct {
	path   string
	file   *os.File
	writer *csv.Writer
	closed bool
}

// openLogFile opens path for appending, creating the parent directory and
// the file as needed. The header is written only to an empty file.
func openLogFile(path string) (*logFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerm); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, defaultFilePerm)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	lf := &logFile{path: path, file: f, writer: newWriter(f)}
	if info.Size() == 0 {
		if err := lf.writeRows([][]string{Header}); err != nil {
			f.Close()
			return nil, err
		}
	}

	return lf, nil
}

func newWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter
	return cw
}

func (l *logFile) write(records []SampleRecord) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = r.row()
	}
	return l.writeRows(rows)
}

// writeRows writes, flushes and syncs. A failed write leaves the writer
// reset so a later attempt starts from a clean buffer.
func (l *logFile) writeRows(rows [][]string) error {
	for _, row := range rows {
		if err := l.writer.Write(row); err != nil {
			l.writer = newWriter(l.file)
			return err
		}
	}

	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		l.writer = newWriter(l.file)
		return err
	}

	return l.file.Sync()
}

func (l *logFile) close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

// ReadLogFile parses a log file. Rows that fail to parse are reported as
// joined ErrRecordFormat errors while the remaining rows are still
// returned. A missing or different header is ErrSchemaMismatch.
func ReadLogFile(path string) ([]SampleRecord, error) {
	errFactory := errors.New()

	f, err := os.Open(path)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	if !slices.Equal(header, Header) {
		return nil, errFactory.WithData(ErrSchemaMismatch, strings.Join(header, string(delimiter)))
	}

	var (
		records []SampleRecord
		rowErrs []error
	)
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				rowErrs = append(rowErrs, errFactory.Wrap(ErrRecordFormat, &RowError{Line: parseErr.Line, Err: parseErr.Err}))
				continue
			}
			return records, errFactory.Wrap(ErrStorageAccess, err)
		}

		line, _ := r.FieldPos(0)
		rec, err := parseRow(fields)
		if err != nil {
			rowErrs = append(rowErrs, errFactory.Wrap(ErrRecordFormat, &RowError{Line: line, Err: err}))
			continue
		}
		records = append(records, rec)
	}

	return records, errors.Join(rowErrs...)
}
