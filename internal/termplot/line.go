package termplot

import (
	"math"

	"codeberg.org/mutker/cpumon/internal/chart"
)

const (
	markerRune = '●'
	gridRune   = '·'
	dotRune    = '•'
)

// line clips the segment to the canvas in cell space, then walks the cells
// between the clipped endpoints with Bresenham's algorithm. Segments with a
// non-finite endpoint are not drawn.
func (c *Canvas) line(p chart.Primitive) {
	x0, y0, x1, y1, ok := clip(
		p.From.X/c.cellW, p.From.Y/c.cellH,
		p.To.X/c.cellW, p.To.Y/c.cellH,
		float64(c.cols), float64(c.rows),
	)
	if !ok {
		return
	}

	from := pos{col: cellIndex(x0), row: cellIndex(y0)}
	to := pos{col: cellIndex(x1), row: cellIndex(y1)}
	r := lineRune(p.Role, to.col-from.col, to.row-from.row)

	dx, dy := abs(to.col-from.col), -abs(to.row-from.row)
	sx, sy := sign(to.col-from.col), sign(to.row-from.row)
	e := dx + dy

	cur := from
	for {
		c.set(cur, r, p.Color)
		if cur == to {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			cur.col += sx
		}
		if e2 <= dx {
			e += dx
			cur.row += sy
		}
	}
}

const (
	outLeft = 1 << iota
	outRight
	outTop
	outBottom
)

func outcode(x, y, w, h float64) int {
	code := 0
	switch {
	case x < 0:
		code |= outLeft
	case x > w:
		code |= outRight
	}
	switch {
	case y < 0:
		code |= outTop
	case y > h:
		code |= outBottom
	}
	return code
}

// clip trims the segment to [0, w] x [0, h] with the Cohen-Sutherland
// algorithm. ok is false when nothing of the segment is left or an endpoint
// is not finite.
func clip(x0, y0, x1, y1, w, h float64) (cx0, cy0, cx1, cy1 float64, ok bool) {
	// Each pass moves one endpoint onto an edge; four edges per endpoint.
	for range 8 {
		if !finite(x0) || !finite(y0) || !finite(x1) || !finite(y1) {
			return 0, 0, 0, 0, false
		}

		c0, c1 := outcode(x0, y0, w, h), outcode(x1, y1, w, h)
		switch {
		case c0|c1 == 0:
			return x0, y0, x1, y1, true
		case c0&c1 != 0:
			return 0, 0, 0, 0, false
		}

		out := c0
		if out == 0 {
			out = c1
		}

		var x, y float64
		switch {
		case out&outTop != 0:
			x, y = x0+(x1-x0)*(0-y0)/(y1-y0), 0
		case out&outBottom != 0:
			x, y = x0+(x1-x0)*(h-y0)/(y1-y0), h
		case out&outLeft != 0:
			x, y = 0, y0+(y1-y0)*(0-x0)/(x1-x0)
		default:
			x, y = w, y0+(y1-y0)*(w-x0)/(x1-x0)
		}

		if out == c0 {
			x0, y0 = x, y
		} else {
			x1, y1 = x, y
		}
	}
	return 0, 0, 0, 0, false
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// lineRune picks a box drawing rune for a segment's direction.
func lineRune(role chart.Role, dcol, drow int) rune {
	if role == chart.RoleGrid {
		return gridRune
	}
	switch {
	case dcol == 0 && drow == 0:
		return dotRune
	case drow == 0:
		return '─'
	case dcol == 0:
		return '│'
	case abs(drow)*2 < abs(dcol):
		return '─'
	case abs(dcol) < abs(drow)*2/3:
		return '│'
	case (dcol > 0) == (drow > 0):
		return '╲'
	default:
		return '╱'
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
