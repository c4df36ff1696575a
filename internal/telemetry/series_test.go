package telemetry

import (
	"testing"

	"codeberg.org/mutker/cpumon/internal/chart"
	"codeberg.org/mutker/cpumon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = chart.RGB(0xff, 0, 0)

func TestSeriesFrom(t *testing.T) {
	records := []SampleRecord{
		{Timestamp: "2024-03-09T12:00:00Z", Temperature: 40, Usage: 10, PowerDraw: 20},
		{Timestamp: "2024-03-09T12:00:02Z", Temperature: 41, Usage: 11, PowerDraw: 21},
		{Timestamp: "2024-03-09T12:00:05.5Z", Temperature: 42, Usage: 12, PowerDraw: 22},
	}

	tests := []struct {
		name string
		x, y Column
		want []chart.Point
	}{
		{"temperature by index", RowIndex, Temperature, []chart.Point{{X: 0, Y: 40}, {X: 1, Y: 41}, {X: 2, Y: 42}}},
		{"usage over time", Timestamp, Usage, []chart.Point{{X: 0, Y: 10}, {X: 2, Y: 11}, {X: 5.5, Y: 12}}},
		{"power against temperature", Temperature, PowerDraw, []chart.Point{{X: 40, Y: 20}, {X: 41, Y: 21}, {X: 42, Y: 22}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SeriesFrom(records, tt.x, tt.y, "cpu", red)
			assert.Equal(t, "cpu", s.Label)
			assert.Equal(t, red, s.Color)
			assert.Equal(t, tt.want, s.Points)
		})
	}
}

func TestSeriesFromUnparseableTimestamps(t *testing.T) {
	records := []SampleRecord{
		{Timestamp: "garbage", Temperature: 40},
		{Timestamp: "2024-03-09T12:00:10Z", Temperature: 41},
		{Timestamp: "later", Temperature: 42},
		{Timestamp: "2024-03-09T12:00:13Z", Temperature: 43},
	}

	s := SeriesFrom(records, Timestamp, Temperature, "cpu", red)
	xs := make([]float64, len(s.Points))
	for i, p := range s.Points {
		xs[i] = p.X
	}
	assert.Equal(t, []float64{0, 0, 2, 3}, xs)

	none := SeriesFrom([]SampleRecord{{Timestamp: "a"}, {Timestamp: "b"}}, Timestamp, Usage, "cpu", red)
	assert.Equal(t, 1.0, none.Points[1].X)
}

func TestSeriesFromEmpty(t *testing.T) {
	s := SeriesFrom(nil, RowIndex, Temperature, "cpu", red)
	assert.Empty(t, s.Points)
	assert.True(t, s.ShowLine)
}

func TestLoadSeries(t *testing.T) {
	path := writeLog(t, "timestamp;temperature_unit;temperature;cpu_usage;power_draw\n"+
		"2024-03-09T12:00:00Z;Celsius;45.5;12;30\n"+
		"bad;row\n"+
		"2024-03-09T12:00:01Z;Celsius;46;13;31\n")

	s, err := LoadSeries(path, Timestamp, Temperature, "temp", red)
	assert.True(t, errors.HasCode(err, ErrRecordFormat))
	assert.Equal(t, []chart.Point{{X: 0, Y: 45.5}, {X: 1, Y: 46}}, s.Points)

	_, err = LoadSeries(path+".missing", RowIndex, Usage, "usage", red)
	assert.True(t, errors.HasCode(err, ErrStorageAccess))
}

func TestParseColumn(t *testing.T) {
	for c := RowIndex; c <= PowerDraw; c++ {
		got, ok := ParseColumn(c.String())
		require.True(t, ok)
		assert.Equal(t, c, got)
	}
	_, ok := ParseColumn("voltage")
	assert.False(t, ok)
}
