package telemetry

import (
	"fmt"
	"strconv"
)

// SampleRecord is one telemetry reading. Its fields map one to one onto
// the log columns, in order.
type SampleRecord struct {
	Timestamp   string  `json:"timestamp"`
	Unit        string  `json:"temperature_unit"`
	Temperature float32 `json:"temperature"`
	Usage       float32 `json:"cpu_usage"`
	PowerDraw   float32 `json:"power_draw"`
}

// Header is the column schema of every log file. Changing it invalidates
// existing logs.
var Header = []string{"timestamp", "temperature_unit", "temperature", "cpu_usage", "power_draw"}

func (r SampleRecord) row() []string {
	return []string{
		r.Timestamp,
		r.Unit,
		formatFloat(r.Temperature),
		formatFloat(r.Usage),
		formatFloat(r.PowerDraw),
	}
}

func parseRow(fields []string) (SampleRecord, error) {
	if len(fields) != len(Header) {
		return SampleRecord{}, fmt.Errorf("expected %d fields, got %d", len(Header), len(fields))
	}

	var (
		rec = SampleRecord{Timestamp: fields[0], Unit: fields[1]}
		err error
	)
	if rec.Temperature, err = parseFloat(Header[2], fields[2]); err != nil {
		return SampleRecord{}, err
	}
	if rec.Usage, err = parseFloat(Header[3], fields[3]); err != nil {
		return SampleRecord{}, err
	}
	if rec.PowerDraw, err = parseFloat(Header[4], fields[4]); err != nil {
		return SampleRecord{}, err
	}

	return rec, nil
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}

func parseFloat(column, s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", column, err)
	}
	return float32(f), nil
}
