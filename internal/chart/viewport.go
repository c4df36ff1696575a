package chart

import "math"

// Rect is an axis-aligned rectangle in target coordinates, y growing
// downwards.
type Rect struct {
	X, Y, Width, Height float64
}

// Center returns the middle of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Viewport maps data coordinates into the usable part of a target
// rectangle.
type Viewport struct {
	Target  Rect
	Margins Margins
	Min     Point
	Max     Point
}

func NewViewport(target Rect, margins Margins, lo, hi Point) Viewport {
	return Viewport{Target: target, Margins: margins, Min: lo, Max: hi}
}

// Usable is the target reduced by the margins. Negative extents collapse
// to zero.
func (v Viewport) Usable() Rect {
	return Rect{
		X:      v.Target.X + v.Margins.Left,
		Y:      v.Target.Y + v.Margins.Top,
		Width:  math.Max(0, v.Target.Width-v.Margins.Left-v.Margins.Right),
		Height: math.Max(0, v.Target.Height-v.Margins.Top-v.Margins.Bottom),
	}
}

// Map converts a data point into target coordinates. The y axis is
// flipped. An axis whose data range is empty maps onto the usable
// rectangle's midline.
func (v Viewport) Map(p Point) Point {
	u := v.Usable()
	return Point{
		X: u.X + scale(p.X, v.Min.X, v.Max.X, 0.5)*u.Width,
		Y: u.Y + u.Height - scale(p.Y, v.Min.Y, v.Max.Y, 0.5)*u.Height,
	}
}

// scale returns the position of x within [lo, hi] as a fraction, or
// fallback when the range is empty or not finite.
func scale(x, lo, hi, fallback float64) float64 {
	span := hi - lo
	if span == 0 || !finite(span) {
		return fallback
	}
	return (x - lo) / span
}
