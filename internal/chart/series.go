package chart

import (
	"math"
	"slices"
)

// Point is a position in data space.
type Point struct {
	X, Y float64
}

// Series is a labelled, styled sequence of points.
type Series struct {
	Label       string
	Points      []Point
	Color       Color
	ShowLine    bool
	ShowPoints  bool
	LineWidth   float64
	PointRadius float64
}

const (
	defaultLineWidth   = 2.0
	defaultPointRadius = 3.0
)

// NewSeries returns an empty series drawn with lines and markers.
func NewSeries(label string, color Color) Series {
	return Series{
		Label:       label,
		Color:       color,
		ShowLine:    true,
		ShowPoints:  true,
		LineWidth:   defaultLineWidth,
		PointRadius: defaultPointRadius,
	}
}

func (s *Series) AddPoint(x, y float64) {
	s.Points = append(s.Points, Point{X: x, Y: y})
}

func (s *Series) AddPoints(points ...Point) {
	s.Points = append(s.Points, points...)
}

func (s *Series) Clear() {
	s.Points = s.Points[:0]
}

func (s Series) WithPoints(show bool) Series {
	s.ShowPoints = show
	return s
}

func (s Series) WithLine(show bool) Series {
	s.ShowLine = show
	return s
}

func (s Series) WithLineWidth(width float64) Series {
	s.LineWidth = width
	return s
}

func (s Series) WithPointRadius(radius float64) Series {
	s.PointRadius = radius
	return s
}

// Bounds returns the per-axis minimum and maximum of the series. Points
// with a NaN or infinite coordinate are ignored; ok is false when no point
// remains.
func (s Series) Bounds() (lo, hi Point, ok bool) {
	lo = Point{X: math.Inf(1), Y: math.Inf(1)}
	hi = Point{X: math.Inf(-1), Y: math.Inf(-1)}

	for _, p := range s.Points {
		if !finite(p.X) || !finite(p.Y) {
			continue
		}
		ok = true
		lo.X = math.Min(lo.X, p.X)
		lo.Y = math.Min(lo.Y, p.Y)
		hi.X = math.Max(hi.X, p.X)
		hi.Y = math.Max(hi.Y, p.Y)
	}

	if !ok {
		return Point{}, Point{}, false
	}
	return lo, hi, true
}

func (s Series) clone() Series {
	s.Points = slices.Clone(s.Points)
	return s
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finitePoint(p Point) bool {
	return finite(p.X) && finite(p.Y)
}
