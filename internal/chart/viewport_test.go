package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewportMapCorners(t *testing.T) {
	target := Rect{X: 10, Y: 20, Width: 400, Height: 300}
	m := Margins{Top: 5, Bottom: 85, Left: 65, Right: 30}
	vp := NewViewport(target, m, Point{X: 0, Y: 0}, Point{X: 100, Y: 50})

	u := vp.Usable()
	assert.Equal(t, Rect{X: 75, Y: 25, Width: 305, Height: 210}, u)

	tests := []struct {
		name string
		in   Point
		want Point
	}{
		{"bottom left", Point{X: 0, Y: 0}, Point{X: u.X, Y: u.Y + u.Height}},
		{"top right", Point{X: 100, Y: 50}, Point{X: u.X + u.Width, Y: u.Y}},
		{"top left", Point{X: 0, Y: 50}, Point{X: u.X, Y: u.Y}},
		{"bottom right", Point{X: 100, Y: 0}, Point{X: u.X + u.Width, Y: u.Y + u.Height}},
		{"centre", Point{X: 50, Y: 25}, Point{X: u.X + u.Width/2, Y: u.Y + u.Height/2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := vp.Map(tt.in)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}

func TestViewportZeroRange(t *testing.T) {
	target := Rect{Width: 200, Height: 200}
	vp := NewViewport(target, Margins{}, Point{X: 3, Y: 7}, Point{X: 3, Y: 7})

	got := vp.Map(Point{X: 3, Y: 7})
	assert.Equal(t, Point{X: 100, Y: 100}, got)
}

func TestViewportUsableClamped(t *testing.T) {
	vp := NewViewport(Rect{Width: 50, Height: 50}, DefaultConfig().Margins, Point{}, Point{X: 1, Y: 1})
	u := vp.Usable()
	assert.Zero(t, u.Width)
	assert.Zero(t, u.Height)
}
