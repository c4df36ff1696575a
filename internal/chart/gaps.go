package chart

import "math"

const (
	gapFactor   = 3.0
	fallbackGap = 1.0
)

// connected reports, for each consecutive pair of points, whether the
// segment between them should be stroked. A segment is dropped when its x
// distance exceeds three times the expected sampling interval, which hides
// the jump a rolling buffer leaves behind after missed samples.
//
// The expected interval is the most recent positive interval that was
// itself drawn. Until one has been seen it is the interval between the
// second and third point, when there are at least three points and that
// interval is positive, and 1 otherwise. Two consecutive dropped intervals
// of the same length mean the sampling rate changed: the second one is
// drawn and becomes the expected interval. This is a heuristic; irregular
// sampling can make it drop or keep segments it should not.
func connected(points []Point) []bool {
	if len(points) < 2 {
		return nil
	}

	expected := fallbackGap
	if len(points) > 2 {
		if d := math.Abs(points[2].X - points[1].X); d > 0 && finite(d) {
			expected = d
		}
	}

	var pending float64
	out := make([]bool, len(points)-1)
	for i := range out {
		gap := math.Abs(points[i+1].X - points[i].X)
		ok := gap <= gapFactor*expected
		if !ok && pending > 0 && sameInterval(gap, pending) {
			ok = true
		}

		out[i] = ok
		switch {
		case !ok:
			pending = gap
		case gap > 0:
			expected, pending = gap, 0
		default:
			pending = 0
		}
	}
	return out
}

const intervalTolerance = 1e-6

func sameInterval(a, b float64) bool {
	if !finite(a) || !finite(b) {
		return false
	}
	return math.Abs(a-b) <= intervalTolerance*math.Max(a, b)
}
