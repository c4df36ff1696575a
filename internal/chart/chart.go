package chart

import "slices"

// Chart keeps series and configuration between repaints and memoises the
// last rendered primitives. Every mutator marks the cache dirty; Draw
// re-renders only when the cache is dirty or the target changed.
type Chart struct {
	series []Series
	cfg    Config
	cache  drawCache
}

type drawCache struct {
	dirty  bool
	target Rect
	prims  []Primitive
}

func New() *Chart {
	return NewWithConfig(DefaultConfig())
}

func NewWithConfig(cfg Config) *Chart {
	return &Chart{
		cfg:   cfg,
		cache: drawCache{dirty: true},
	}
}

// AddSeries appends a copy of s.
func (c *Chart) AddSeries(s Series) {
	c.series = append(c.series, s.clone())
	c.Invalidate()
}

// SetSeries replaces all series with copies of the given ones.
func (c *Chart) SetSeries(series ...Series) {
	c.series = c.series[:0]
	for _, s := range series {
		c.series = append(c.series, s.clone())
	}
	c.Invalidate()
}

func (c *Chart) ClearSeries() {
	c.series = nil
	c.Invalidate()
}

// Series returns a copy of the chart's series.
func (c *Chart) Series() []Series {
	out := make([]Series, len(c.series))
	for i, s := range c.series {
		out[i] = s.clone()
	}
	return out
}

func (c *Chart) Config() Config {
	return c.cfg
}

// SetConfig replaces the configuration. An equal configuration keeps the
// cache.
func (c *Chart) SetConfig(cfg Config) {
	if c.cfg.Equal(cfg) {
		return
	}
	c.cfg = cfg
	c.Invalidate()
}

func (c *Chart) SetXLabel(label string) {
	c.cfg.XLabel = label
	c.Invalidate()
}

func (c *Chart) SetYLabel(label string) {
	c.cfg.YLabel = label
	c.Invalidate()
}

func (c *Chart) SetXUnit(unit string) {
	c.cfg.XUnit = unit
	c.Invalidate()
}

func (c *Chart) SetYUnit(unit string) {
	c.cfg.YUnit = unit
	c.Invalidate()
}

// SetBounds fixes both axes to the given ranges.
func (c *Chart) SetBounds(xMin, xMax, yMin, yMax float64) {
	c.cfg.XMin, c.cfg.XMax = Float(xMin), Float(xMax)
	c.cfg.YMin, c.cfg.YMax = Float(yMin), Float(yMax)
	c.Invalidate()
}

// ClearBounds returns both axes to auto scaling.
func (c *Chart) ClearBounds() {
	c.cfg.XMin, c.cfg.XMax, c.cfg.YMin, c.cfg.YMax = nil, nil, nil, nil
	c.Invalidate()
}

// Invalidate forces the next Draw to render again.
func (c *Chart) Invalidate() {
	c.cache.dirty = true
}

// Dirty reports whether the next Draw will render.
func (c *Chart) Dirty() bool {
	return c.cache.dirty
}

// Draw returns the primitives for target, rendering only when needed.
func (c *Chart) Draw(target Rect) []Primitive {
	if c.cache.dirty || c.cache.target != target {
		c.cache.prims = Render(c.series, c.cfg, target)
		c.cache.target = target
		c.cache.dirty = false
	}
	return slices.Clone(c.cache.prims)
}
