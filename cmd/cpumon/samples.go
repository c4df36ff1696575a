package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"time"

	"codeberg.org/mutker/cpumon/internal/errors"
	"codeberg.org/mutker/cpumon/internal/telemetry"
)

const maxLineBytes = 64 * 1024

// sampleReader decodes one JSON sample per line, as emitted by an external
// sensor process.
type sampleReader struct {
	reader *bufio.Reader
	buf    []byte
	unit   string
	now    func() time.Time
	line   int
}

func newSampleReader(r io.Reader, defaultUnit string) *sampleReader {
	return &sampleReader{
		reader: bufio.NewReaderSize(r, 4096),
		unit:   defaultUnit,
		now:    time.Now,
	}
}

// Next returns the next sample, io.EOF at the end of input, or an
// ErrDecodeSample error for a line that could not be decoded or is longer
// than maxLineBytes. Decoding errors do not stop the reader.
func (r *sampleReader) Next() (telemetry.SampleRecord, error) {
	for {
		raw, tooLong, err := r.readLine()
		if err != nil {
			return telemetry.SampleRecord{}, err
		}
		r.line++

		if tooLong {
			return telemetry.SampleRecord{}, errors.New().Wrap(errors.ErrDecodeSample, &telemetry.RowError{Line: r.line, Err: bufio.ErrTooLong})
		}

		text := bytes.TrimSpace(raw)
		if len(text) == 0 {
			continue
		}

		var rec telemetry.SampleRecord
		if err := json.Unmarshal(text, &rec); err != nil {
			return telemetry.SampleRecord{}, errors.New().Wrap(errors.ErrDecodeSample, &telemetry.RowError{Line: r.line, Err: err})
		}
		if rec.Unit == "" {
			rec.Unit = r.unit
		}
		if rec.Timestamp == "" {
			rec.Timestamp = r.now().Format(time.RFC3339)
		}
		return rec, nil
	}
}

// readLine returns the next line including its newline. A line longer than
// maxLineBytes is consumed up to its newline and reported with tooLong set
// and no content. The last line may lack a newline.
func (r *sampleReader) readLine() (line []byte, tooLong bool, err error) {
	r.buf = r.buf[:0]
	for {
		chunk, err := r.reader.ReadSlice('\n')
		if !tooLong {
			r.buf = append(r.buf, chunk...)
			if n := len(bytes.TrimSuffix(r.buf, []byte{'\n'})); n > maxLineBytes {
				tooLong = true
				r.buf = r.buf[:0]
			}
		}

		switch {
		case err == nil:
			return r.buf, tooLong, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case err == io.EOF:
			if len(r.buf) == 0 && !tooLong {
				return nil, false, io.EOF
			}
			return r.buf, tooLong, nil
		default:
			return nil, false, err
		}
	}
}
