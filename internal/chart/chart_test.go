package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartCache(t *testing.T) {
	c := New()
	assert.True(t, c.Dirty())

	first := c.Draw(testTarget)
	require.Len(t, first, 1)
	assert.False(t, c.Dirty())

	s := NewSeries("temp", RGB(0xff, 0, 0))
	s.AddPoints(Point{X: 0, Y: 1}, Point{X: 1, Y: 2})
	c.AddSeries(s)
	assert.True(t, c.Dirty())

	second := c.Draw(testTarget)
	assert.Greater(t, len(second), 1)
	assert.Equal(t, second, c.Draw(testTarget))
	assert.False(t, c.Dirty())

	// A different target re-renders without an explicit invalidation.
	moved := c.Draw(Rect{Width: 400, Height: 300})
	assert.NotEqual(t, second, moved)
}

func TestChartMutatorsInvalidate(t *testing.T) {
	mutators := map[string]func(*Chart){
		"SetXLabel":   func(c *Chart) { c.SetXLabel("t") },
		"SetYLabel":   func(c *Chart) { c.SetYLabel("v") },
		"SetXUnit":    func(c *Chart) { c.SetXUnit("s") },
		"SetYUnit":    func(c *Chart) { c.SetYUnit("%") },
		"SetBounds":   func(c *Chart) { c.SetBounds(0, 1, 0, 1) },
		"ClearBounds": func(c *Chart) { c.ClearBounds() },
		"ClearSeries": func(c *Chart) { c.ClearSeries() },
		"SetSeries":   func(c *Chart) { c.SetSeries(NewSeries("x", RGB(1, 1, 1))) },
		"Invalidate":  func(c *Chart) { c.Invalidate() },
	}

	for name, mutate := range mutators {
		t.Run(name, func(t *testing.T) {
			c := New()
			c.Draw(testTarget)
			require.False(t, c.Dirty())

			mutate(c)
			assert.True(t, c.Dirty())
		})
	}
}

func TestChartSetConfig(t *testing.T) {
	c := New()
	c.Draw(testTarget)

	c.SetConfig(DefaultConfig())
	assert.False(t, c.Dirty(), "equal config keeps the cache")

	cfg := DefaultConfig()
	cfg.ShowGrid = false
	c.SetConfig(cfg)
	assert.True(t, c.Dirty())
	assert.False(t, c.Config().ShowGrid)
}

func TestChartCopiesSeries(t *testing.T) {
	s := NewSeries("temp", RGB(0xff, 0, 0))
	s.AddPoint(0, 1)

	c := New()
	c.AddSeries(s)
	s.AddPoint(1, 2)
	s.Points[0].Y = 99

	got := c.Series()
	require.Len(t, got, 1)
	assert.Equal(t, []Point{{X: 0, Y: 1}}, got[0].Points)

	got[0].Points[0].Y = 42
	assert.Equal(t, 1.0, c.Series()[0].Points[0].Y)
}

func TestChartSetBounds(t *testing.T) {
	c := New()
	c.SetBounds(0, 10, -5, 5)

	cfg := c.Config()
	require.NotNil(t, cfg.XMin)
	assert.Equal(t, 10.0, *cfg.XMax)
	assert.Equal(t, -5.0, *cfg.YMin)

	c.ClearBounds()
	assert.Nil(t, c.Config().XMin)
}
