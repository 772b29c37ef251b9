package dotosu

import (
	"math"
	"slices"

	"maptools/mathutil"
)

// Timing owns the ordered timing points of a beatmap. Every structural change bumps
// Revision so cached timing contexts can tell they are stale.
type Timing struct {
	points           []*TimingPoint
	SliderMultiplier float64
	revision         uint64
}

func NewTiming(sliderMultiplier float64, points ...*TimingPoint) *Timing {
	t := &Timing{SliderMultiplier: sliderMultiplier, points: append([]*TimingPoint(nil), points...)}
	t.Sort()
	return t
}

// Points returns the ordered points. Mutating a point's Offset requires calling Sort.
func (t *Timing) Points() []*TimingPoint { return t.points }

func (t *Timing) Len() int { return len(t.points) }

func (t *Timing) Revision() uint64 { return t.revision }

// Touch marks the sequence as changed after in-place edits of its points.
func (t *Timing) Touch() { t.revision++ }

// Sort orders points by offset with redlines before greenlines on equal offsets.
// The sort is stable so greenlines keep their relative order.
func (t *Timing) Sort() {
	slices.SortStableFunc(t.points, func(a, b *TimingPoint) int {
		if a.Offset != b.Offset {
			if a.Offset < b.Offset {
				return -1
			}
			return 1
		}
		if a.Uninherited != b.Uninherited {
			if a.Uninherited {
				return -1
			}
			return 1
		}
		return 0
	})
	t.revision++
}

func (t *Timing) Add(tp *TimingPoint) {
	t.points = append(t.points, tp)
	t.Sort()
}

func (t *Timing) AddRange(tps []*TimingPoint) {
	t.points = append(t.points, tps...)
	t.Sort()
}

// Remove deletes tp by identity and reports whether it was present.
func (t *Timing) Remove(tp *TimingPoint) bool {
	i := slices.Index(t.points, tp)
	if i < 0 {
		return false
	}
	t.points = slices.Delete(t.points, i, i+1)
	t.revision++
	return true
}

// RemoveWhere deletes every point matching pred and returns how many were removed.
func (t *Timing) RemoveWhere(pred func(*TimingPoint) bool) int {
	n := len(t.points)
	t.points = slices.DeleteFunc(t.points, pred)
	if removed := n - len(t.points); removed > 0 {
		t.revision++
		return removed
	}
	return 0
}

func (t *Timing) Clear() {
	t.points = nil
	t.revision++
}

// Offset moves every point by delta.
func (t *Timing) Offset(delta float64) {
	for _, tp := range t.points {
		tp.Offset += delta
	}
	t.revision++
}

// Clone returns a deep copy with a fresh revision history.
func (t *Timing) Clone() *Timing {
	c := &Timing{SliderMultiplier: t.SliderMultiplier, points: make([]*TimingPoint, len(t.points))}
	for i, tp := range t.points {
		c.points[i] = tp.Copy()
	}
	return c
}

func active(tp *TimingPoint, time float64) bool {
	return !mathutil.DefinitelyBigger(tp.Offset, time, mathutil.DoubleEpsilon)
}

// GetTimingPointAtTime returns the last point at or before time, or the first point
// when time precedes them all.
func (t *Timing) GetTimingPointAtTime(time float64) *TimingPoint {
	if len(t.points) == 0 {
		return nil
	}
	last := t.points[0]
	for _, tp := range t.points {
		if !active(tp, time) {
			break
		}
		last = tp
	}
	return last
}

// GetRedlineAtTime returns the active redline, or the first redline when time
// precedes them all.
func (t *Timing) GetRedlineAtTime(time float64) *TimingPoint {
	var first, last *TimingPoint
	for _, tp := range t.points {
		if !tp.Uninherited {
			continue
		}
		if first == nil {
			first = tp
		}
		if !active(tp, time) {
			break
		}
		last = tp
	}
	if last == nil {
		return first
	}
	return last
}

// GetGreenlineAtTime returns the last greenline at or before time, or nil.
func (t *Timing) GetGreenlineAtTime(time float64) *TimingPoint {
	var last *TimingPoint
	for _, tp := range t.points {
		if !active(tp, time) {
			break
		}
		if !tp.Uninherited {
			last = tp
		}
	}
	return last
}

// GetNextRedline returns the first redline strictly after time, or nil.
func (t *Timing) GetNextRedline(time float64) *TimingPoint {
	for _, tp := range t.points {
		if tp.Uninherited && mathutil.DefinitelyBigger(tp.Offset, time, mathutil.DoubleEpsilon) {
			return tp
		}
	}
	return nil
}

// GetSvAtTime returns the slider velocity multiplier at time. A redline resets it to 1.
func (t *Timing) GetSvAtTime(time float64) float64 {
	mpb := -100.0
	for _, tp := range t.points {
		if !active(tp, time) {
			break
		}
		if tp.Uninherited || math.IsNaN(tp.MpB) {
			mpb = -100
		} else {
			mpb = tp.MpB
		}
	}
	return -100 / mathutil.Clamp(mpb, -1000, -10)
}

func (t *Timing) GetMpBAtTime(time float64) float64 {
	if r := t.GetRedlineAtTime(time); r != nil {
		return r.MpB
	}
	return 500
}

func (t *Timing) GetBpmAtTime(time float64) float64 { return 60000 / t.GetMpBAtTime(time) }

// GetSliderVelocityAtTime returns the slider speed in osu! pixels per millisecond.
func (t *Timing) GetSliderVelocityAtTime(time float64) float64 {
	return 100 * t.SliderMultiplier * t.GetSvAtTime(time) / t.GetMpBAtTime(time)
}

// GetBeatLength counts the beats between from and to, following tempo changes.
func (t *Timing) GetBeatLength(from, to float64) float64 {
	if to < from {
		return -t.GetBeatLength(to, from)
	}
	beats := 0.0
	cur := from
	for cur < to {
		mpb := t.GetMpBAtTime(cur)
		end := to
		if next := t.GetNextRedline(cur); next != nil && next.Offset < to {
			end = next.Offset
		}
		beats += (end - cur) / mpb
		cur = end
	}
	return beats
}

// GetTimingPointsInRange returns the points with offsets between start and end.
// With inclusive false both bounds are excluded.
func (t *Timing) GetTimingPointsInRange(start, end float64, inclusive bool) []*TimingPoint {
	var out []*TimingPoint
	for _, tp := range t.points {
		in := tp.Offset > start && tp.Offset < end
		if inclusive {
			in = tp.Offset >= start && tp.Offset <= end
		}
		if in {
			out = append(out, tp)
		}
	}
	return out
}

// Resnap moves time to the nearest tick of any of the beat divisors, never past the
// next redline.
func (t *Timing) Resnap(time float64, divisors ...int) float64 {
	redline := t.GetRedlineAtTime(time)
	if redline == nil || len(divisors) == 0 {
		return time
	}
	best := time
	bestDist := math.Inf(1)
	for _, d := range divisors {
		step := redline.MpB / float64(d)
		snapped := redline.Offset + math.Round((time-redline.Offset)/step)*step
		if dist := math.Abs(snapped - time); dist < bestDist {
			best, bestDist = snapped, dist
		}
	}
	if next := t.GetNextRedline(time); next != nil && best >= next.Offset {
		best = next.Offset
	}
	return best
}
