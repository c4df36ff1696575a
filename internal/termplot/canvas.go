// Package termplot rasterises chart primitives onto a character grid for
// terminal output.
package termplot

import (
	"math"
	"strings"

	"codeberg.org/mutker/cpumon/internal/chart"
	"github.com/charmbracelet/lipgloss"
)

// Default size of one character cell in chart target units.
const (
	DefaultCellWidth  = 8.0
	DefaultCellHeight = 16.0
)

type cell struct {
	r     rune
	fg    chart.Color
	bg    chart.Color
	hasFg bool
	hasBg bool
}

// Canvas is a fixed-size grid of coloured runes.
type Canvas struct {
	cols, rows int
	cellW      float64
	cellH      float64
	cells      []cell
}

// Option customises a Canvas.
type Option func(*Canvas)

// WithCellSize sets how many target units one cell covers.
func WithCellSize(w, h float64) Option {
	return func(c *Canvas) {
		if w > 0 && h > 0 {
			c.cellW, c.cellH = w, h
		}
	}
}

func New(cols, rows int, opts ...Option) *Canvas {
	cols, rows = max(cols, 0), max(rows, 0)
	c := &Canvas{
		cols:  cols,
		rows:  rows,
		cellW: DefaultCellWidth,
		cellH: DefaultCellHeight,
		cells: make([]cell, cols*rows),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Clear()
	return c
}

// Target is the chart rectangle covering the whole canvas.
func (c *Canvas) Target() chart.Rect {
	return chart.Rect{Width: float64(c.cols) * c.cellW, Height: float64(c.rows) * c.cellH}
}

func (c *Canvas) Size() (cols, rows int) {
	return c.cols, c.rows
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = cell{r: ' '}
	}
}

// Draw paints primitives in order; later ones cover earlier ones.
// Fully transparent primitives are skipped.
func (c *Canvas) Draw(prims []chart.Primitive) {
	for _, p := range prims {
		if p.Color.Transparent() {
			continue
		}
		switch p.Kind {
		case chart.KindFill:
			c.fill(p)
		case chart.KindLine:
			c.line(p)
		case chart.KindCircle:
			c.set(c.toCell(p.From), markerRune, p.Color)
		case chart.KindText:
			c.text(p)
		}
	}
}

// Plain returns the grid without colour, rows separated by newlines.
func (c *Canvas) Plain() string {
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < c.cols; col++ {
			b.WriteRune(c.at(col, row).r)
		}
	}
	return b.String()
}

// Render returns the grid styled with lipgloss, one style per run of
// equally coloured cells.
func (c *Canvas) Render() string {
	lines := make([]string, c.rows)
	for row := 0; row < c.rows; row++ {
		var (
			b   strings.Builder
			run strings.Builder
			cur cell
		)
		flush := func() {
			if run.Len() > 0 {
				b.WriteString(style(cur).Render(run.String()))
				run.Reset()
			}
		}
		for col := 0; col < c.cols; col++ {
			ce := c.at(col, row)
			if col > 0 && !sameStyle(ce, cur) {
				flush()
			}
			cur = ce
			run.WriteRune(ce.r)
		}
		flush()
		lines[row] = b.String()
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func style(ce cell) lipgloss.Style {
	s := lipgloss.NewStyle()
	if ce.hasFg {
		s = s.Foreground(lipgloss.Color(ce.fg.Hex()))
	}
	if ce.hasBg {
		s = s.Background(lipgloss.Color(ce.bg.Hex()))
	}
	return s
}

func sameStyle(a, b cell) bool {
	return a.hasFg == b.hasFg && a.hasBg == b.hasBg && a.fg == b.fg && a.bg == b.bg
}

type pos struct{ col, row int }

// toCell maps a pixel position to its cell. NaN lands outside the canvas
// and huge values are held to a range that converts to int safely.
func (c *Canvas) toCell(p chart.Point) pos {
	return pos{
		col: cellIndex(p.X / c.cellW),
		row: cellIndex(p.Y / c.cellH),
	}
}

const maxCellIndex = 1 << 30

func cellIndex(v float64) int {
	if math.IsNaN(v) {
		return -1
	}
	return int(math.Max(-maxCellIndex, math.Min(maxCellIndex, math.Floor(v))))
}

func (c *Canvas) inside(p pos) bool {
	return p.col >= 0 && p.col < c.cols && p.row >= 0 && p.row < c.rows
}

func (c *Canvas) at(col, row int) cell {
	return c.cells[row*c.cols+col]
}

func (c *Canvas) set(p pos, r rune, fg chart.Color) {
	if !c.inside(p) {
		return
	}
	ce := &c.cells[p.row*c.cols+p.col]
	ce.r = r
	ce.fg = fg
	ce.hasFg = true
}

func (c *Canvas) fill(p chart.Primitive) {
	from := c.toCell(chart.Point{X: p.Rect.X, Y: p.Rect.Y})
	to := c.toCell(chart.Point{X: p.Rect.X + p.Rect.Width, Y: p.Rect.Y + p.Rect.Height})
	for row := max(from.row, 0); row < min(to.row, c.rows); row++ {
		for col := max(from.col, 0); col < min(to.col, c.cols); col++ {
			ce := &c.cells[row*c.cols+col]
			ce.bg = p.Color
			ce.hasBg = true
		}
	}
}

func (c *Canvas) text(p chart.Primitive) {
	at := c.toCell(p.From)
	runes := []rune(p.Text)
	if p.Align == chart.AlignCenter {
		at.col -= len(runes) / 2
	}
	for i, r := range runes {
		c.set(pos{col: at.col + i, row: at.row}, r, p.Color)
	}
}

// DrawChart paints ch scaled to the whole canvas.
func (c *Canvas) DrawChart(ch *chart.Chart) {
	c.Draw(ch.Draw(c.Target()))
}
