package chart

import "math"

const boundsPadding = 0.05

// CombinedBounds returns the data range shared by all series. Manual
// bounds in cfg win per axis and per side. Auto-computed sides are padded
// by 5% of the range. Without any finite point the range falls back to
// [0, 1] on both axes.
func CombinedBounds(series []Series, cfg Config) (lo, hi Point) {
	lo = Point{X: math.Inf(1), Y: math.Inf(1)}
	hi = Point{X: math.Inf(-1), Y: math.Inf(-1)}

	found := false
	for _, s := range series {
		sLo, sHi, ok := s.Bounds()
		if !ok {
			continue
		}
		found = true
		lo.X = math.Min(lo.X, sLo.X)
		lo.Y = math.Min(lo.Y, sLo.Y)
		hi.X = math.Max(hi.X, sHi.X)
		hi.Y = math.Max(hi.Y, sHi.Y)
	}

	if !found {
		lo, hi = Point{X: 0, Y: 0}, Point{X: 1, Y: 1}
	}

	lo.X, hi.X = axisBounds(lo.X, hi.X, cfg.XMin, cfg.XMax, found)
	lo.Y, hi.Y = axisBounds(lo.Y, hi.Y, cfg.YMin, cfg.YMax, found)

	return lo, hi
}

func axisBounds(lo, hi float64, manualLo, manualHi *float64, pad bool) (float64, float64) {
	loSet := manualLo != nil && finite(*manualLo)
	hiSet := manualHi != nil && finite(*manualHi)

	if loSet {
		lo = *manualLo
	}
	if hiSet {
		hi = *manualHi
	}

	if pad {
		p := (hi - lo) * boundsPadding
		if !loSet {
			lo -= p
		}
		if !hiSet {
			hi += p
		}
	}

	return lo, hi
}
