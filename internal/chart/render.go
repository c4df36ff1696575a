package chart

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	noDataText = "No data available"

	axisWidth   = 2.0
	gridWidth   = 1.0
	tickLength  = 5.0
	xLabelDrop  = 20.0
	yLabelShift = 50.0

	titleTextSize  = 14.0
	labelTextSize  = 12.0
	noDataTextSize = 16.0

	legendInsetRight = 150.0
	legendTop        = 40.0
	legendRowHeight  = 25.0
	legendSwatch     = 30.0
	legendLabelGap   = 40.0

	yTitleInset = 15.0
)

// Render lays out series inside target and returns the draw instructions
// in painting order: background, grid, axes, each series (strokes then
// markers), legend. Without series the result is a single centred
// "No data available" text.
func Render(series []Series, cfg Config, target Rect) []Primitive {
	if len(series) == 0 {
		return []Primitive{
			text(RoleNoData, target.Center(), noDataText, cfg.TextColor, noDataTextSize, AlignCenter),
		}
	}

	lo, hi := CombinedBounds(series, cfg)
	r := renderer{
		cfg: cfg,
		vp:  NewViewport(target, cfg.Margins, lo, hi),
	}

	r.out = append(r.out, fill(RoleBackground, target, cfg.Background))
	if cfg.ShowGrid {
		r.grid()
	}
	r.axes()
	for i, s := range series {
		r.series(i, s)
	}
	if cfg.ShowLegend {
		r.legend(series)
	}

	return r.out
}

type renderer struct {
	cfg Config
	vp  Viewport
	out []Primitive
}

// tick returns the data value of tick i out of n on [lo, hi].
func tick(lo, hi float64, i, n int) float64 {
	return lo + (hi-lo)*float64(i)/float64(n)
}

func (r *renderer) grid() {
	n := r.cfg.divisions()
	lo, hi := r.vp.Min, r.vp.Max

	for i := 0; i <= n; i++ {
		x := tick(lo.X, hi.X, i, n)
		r.out = append(r.out, line(RoleGrid,
			r.vp.Map(Point{X: x, Y: hi.Y}),
			r.vp.Map(Point{X: x, Y: lo.Y}),
			r.cfg.GridColor, gridWidth))
	}
	for i := 0; i <= n; i++ {
		y := tick(lo.Y, hi.Y, i, n)
		r.out = append(r.out, line(RoleGrid,
			r.vp.Map(Point{X: lo.X, Y: y}),
			r.vp.Map(Point{X: hi.X, Y: y}),
			r.cfg.GridColor, gridWidth))
	}
}

func (r *renderer) axes() {
	lo, hi := r.vp.Min, r.vp.Max
	origin := r.vp.Map(lo)

	r.out = append(r.out,
		line(RoleAxis, origin, r.vp.Map(Point{X: hi.X, Y: lo.Y}), r.cfg.AxisColor, axisWidth),
		line(RoleAxis, origin, r.vp.Map(Point{X: lo.X, Y: hi.Y}), r.cfg.AxisColor, axisWidth),
	)

	n := r.cfg.divisions()
	seconds := isSecondsUnit(r.cfg.XUnit)

	for i := 0; i <= n; i++ {
		x := tick(lo.X, hi.X, i, n)
		pos := r.vp.Map(Point{X: x, Y: lo.Y})
		r.out = append(r.out,
			line(RoleTick, pos, Point{X: pos.X, Y: pos.Y + tickLength}, r.cfg.AxisColor, gridWidth),
			text(RoleTickLabel, Point{X: pos.X, Y: pos.Y + xLabelDrop},
				formatTick(x, r.cfg.XUnit, seconds), r.cfg.TextColor, labelTextSize, AlignCenter),
		)
	}

	for i := 0; i <= n; i++ {
		y := tick(lo.Y, hi.Y, i, n)
		pos := r.vp.Map(Point{X: lo.X, Y: y})
		r.out = append(r.out,
			line(RoleTick, pos, Point{X: pos.X - tickLength, Y: pos.Y}, r.cfg.AxisColor, gridWidth),
			text(RoleTickLabel, Point{X: pos.X - yLabelShift, Y: pos.Y},
				formatTick(y, r.cfg.YUnit, false), r.cfg.TextColor, labelTextSize, AlignLeft),
		)
	}

	t := r.vp.Target
	r.out = append(r.out,
		text(RoleAxisTitle,
			Point{X: t.X + t.Width/2, Y: t.Y + t.Height - r.cfg.Margins.Bottom/4},
			r.cfg.XLabel, r.cfg.TextColor, titleTextSize, AlignCenter),
		text(RoleAxisTitle,
			Point{X: t.X + yTitleInset, Y: t.Y + r.cfg.Margins.Top/2},
			r.cfg.YLabel, r.cfg.TextColor, titleTextSize, AlignLeft),
	)
}

func (r *renderer) series(idx int, s Series) {
	if len(s.Points) == 0 {
		return
	}

	screen := make([]Point, len(s.Points))
	for i, p := range s.Points {
		screen[i] = r.vp.Map(p)
	}

	// Points with a non-finite coordinate are neither stroked nor marked.
	if s.ShowLine {
		for i, ok := range connected(s.Points) {
			if !ok || !finitePoint(screen[i]) || !finitePoint(screen[i+1]) {
				continue
			}
			r.out = append(r.out,
				line(RoleSeriesLine, screen[i], screen[i+1], s.Color, s.LineWidth).forSeries(idx))
		}
	}

	if s.ShowPoints {
		for _, p := range screen {
			if !finitePoint(p) {
				continue
			}
			r.out = append(r.out,
				circle(RoleSeriesMarker, p, s.PointRadius, s.Color).forSeries(idx))
		}
	}
}

func (r *renderer) legend(series []Series) {
	t := r.vp.Target
	x := t.X + t.Width - legendInsetRight

	for i, s := range series {
		y := t.Y + legendTop + float64(i)*legendRowHeight
		r.out = append(r.out,
			line(RoleLegendSwatch, Point{X: x, Y: y}, Point{X: x + legendSwatch, Y: y}, s.Color, s.LineWidth).forSeries(i),
			text(RoleLegendLabel, Point{X: x + legendLabelGap, Y: y}, s.Label, r.cfg.TextColor, labelTextSize, AlignLeft).forSeries(i),
		)
	}
}

// formatTick renders an axis value. Second counters are truncated to
// whole seconds.
func formatTick(v float64, unit string, seconds bool) string {
	if seconds {
		return strconv.Itoa(int(v)) + "s"
	}
	return fmt.Sprintf("%.1f%s", v, unit)
}

func isSecondsUnit(unit string) bool {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "s", "sec", "secs", "second", "seconds":
		return true
	default:
		return false
	}
}
