package telemetry

import (
	"time"

	"codeberg.org/mutker/cpumon/internal/chart"
)

// Column selects which value of a record becomes a chart coordinate.
type Column int

const (
	// RowIndex is the position of the record in its sequence.
	RowIndex Column = iota
	// Timestamp is seconds elapsed since the first parseable timestamp.
	// Records whose timestamp does not parse fall back to their row index.
	Timestamp
	Temperature
	Usage
	PowerDraw
)

func (c Column) String() string {
	switch c {
	case RowIndex:
		return "index"
	case Timestamp:
		return "timestamp"
	case Temperature:
		return "temperature"
	case Usage:
		return "cpu_usage"
	case PowerDraw:
		return "power_draw"
	default:
		return "unknown"
	}
}

// ParseColumn maps a column name, as printed by String, back to a Column.
func ParseColumn(name string) (Column, bool) {
	for c := RowIndex; c <= PowerDraw; c++ {
		if c.String() == name {
			return c, true
		}
	}
	return 0, false
}

// SeriesFrom builds a chart series plotting column y against column x.
func SeriesFrom(records []SampleRecord, x, y Column, label string, color chart.Color) chart.Series {
	s := chart.NewSeries(label, color)
	if len(records) == 0 {
		return s
	}

	origin, hasOrigin := firstTimestamp(records)
	points := make([]chart.Point, len(records))
	for i, r := range records {
		points[i] = chart.Point{
			X: value(r, i, x, origin, hasOrigin),
			Y: value(r, i, y, origin, hasOrigin),
		}
	}
	s.AddPoints(points...)

	return s
}

// LoadSeries reads the log file at path and builds a series from it. Row
// errors are returned alongside a series built from the rows that parsed.
func LoadSeries(path string, x, y Column, label string, color chart.Color) (chart.Series, error) {
	records, err := ReadLogFile(path)
	if records == nil && err != nil {
		return chart.NewSeries(label, color), err
	}
	return SeriesFrom(records, x, y, label, color), err
}

func value(r SampleRecord, idx int, c Column, origin time.Time, hasOrigin bool) float64 {
	switch c {
	case Timestamp:
		if !hasOrigin {
			return float64(idx)
		}
		t, ok := parseTimestamp(r.Timestamp)
		if !ok {
			return float64(idx)
		}
		return t.Sub(origin).Seconds()
	case Temperature:
		return float64(r.Temperature)
	case Usage:
		return float64(r.Usage)
	case PowerDraw:
		return float64(r.PowerDraw)
	default:
		return float64(idx)
	}
}

func firstTimestamp(records []SampleRecord) (time.Time, bool) {
	for _, r := range records {
		if t, ok := parseTimestamp(r.Timestamp); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseTimestamp(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
