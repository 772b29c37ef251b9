package dotosu

import (
	"errors"
	"math"
	"slices"

	"maptools/mathutil"
)

var (
	ErrEmptyPattern = errors.New("pattern has no hit objects")
	ErrNoRedline    = errors.New("pattern has no redline")
)

// NewPattern builds a standalone pattern beatmap from loose hit objects and the
// timing points that govern them. Everything is copied.
func NewPattern(objects []HitObject, points []*TimingPoint, globalSv float64) (*Beatmap, error) {
	if len(objects) == 0 {
		return nil, ErrEmptyPattern
	}
	copies := make([]*TimingPoint, len(points))
	for i, tp := range points {
		copies[i] = tp.Copy()
	}
	pb := New()
	pb.Timing = NewTiming(globalSv, copies...)
	pb.Difficulty.SetSliderMultiplier(globalSv)
	if pb.Timing.GetRedlineAtTime(0) == nil {
		return nil, ErrNoRedline
	}
	for _, ho := range objects {
		pb.HitObjects = append(pb.HitObjects, ho.Clone())
	}
	pb.SortHitObjects()
	pb.GiveObjectsTimingContext()
	return pb, nil
}

// MakePattern captures the hit objects of b starting in [start, end] together with
// the redline and greenline active at start and every timing point up to the end
// of the last captured object.
func MakePattern(b *Beatmap, start, end float64) (*Beatmap, error) {
	b.ensureTimingContext()
	var objects []HitObject
	objectsEnd := start
	for _, ho := range b.HitObjects {
		t := ho.Base().StartTime
		if mathutil.AlmostBigger(t, start, mathutil.DoubleEpsilon) && mathutil.AlmostSmaller(t, end, mathutil.DoubleEpsilon) {
			objects = append(objects, ho)
			objectsEnd = math.Max(objectsEnd, ho.EndTime())
		}
	}
	if len(objects) == 0 {
		return nil, ErrEmptyPattern
	}

	var points []*TimingPoint
	red := b.Timing.GetRedlineAtTime(start)
	if red == nil {
		return nil, ErrNoRedline
	}
	points = append(points, red)
	if g := b.Timing.GetGreenlineAtTime(start); g != nil && g.Offset >= red.Offset {
		points = append(points, g)
	}
	for _, tp := range b.Timing.GetTimingPointsInRange(start, objectsEnd, true) {
		if !slices.Contains(points, tp) {
			points = append(points, tp)
		}
	}

	pb, err := NewPattern(objects, points, b.Timing.SliderMultiplier)
	if err != nil {
		return nil, err
	}
	pb.General = General{b.General.clone()}
	pb.Difficulty = Difficulty{b.Difficulty.clone()}
	pb.Metadata = Metadata{b.Metadata.clone()}
	return pb, nil
}

// PatternOverwriteMode decides which destination objects make room for a pattern.
type PatternOverwriteMode int

const (
	// NoOverwrite keeps every destination object.
	NoOverwrite PatternOverwriteMode = iota
	// MinimalOverwrite removes destination objects that overlap a pattern object.
	MinimalOverwrite
	// CompleteOverwrite removes destination objects anywhere in the pattern's time span.
	CompleteOverwrite
)

// TimingOverwriteMode decides whose timing governs the placed pattern.
type TimingOverwriteMode int

const (
	// PatternTimingOnly replaces the destination timing inside the pattern's span
	// with the pattern's own and restores the destination state after it.
	PatternTimingOnly TimingOverwriteMode = iota
	// DestinationTimingOnly keeps the destination timing untouched and fits the
	// pattern onto it.
	DestinationTimingOnly
)

// PatternPlacer copies a pattern beatmap into a destination beatmap.
type PatternPlacer struct {
	PatternOverwriteMode PatternOverwriteMode
	TimingOverwriteMode  TimingOverwriteMode
	// Padding widens the overwritten range on both sides, in ms.
	Padding float64
	// IncludeHitsounds carries the pattern's sample set, index and volume over.
	IncludeHitsounds bool
	IncludeKiai      bool
	// ScaleToNewTiming keeps distances in beats instead of milliseconds. Only
	// meaningful with DestinationTimingOnly.
	ScaleToNewTiming bool
	SnapToNewTiming  bool
	BeatDivisors     []int
	// FixSv adds greenlines so every slider keeps its intended duration under the
	// destination's global slider multiplier and tempo.
	FixSv bool
}

type placement struct {
	ho       HitObject
	start    float64
	duration float64
}

// PlaceAtTime puts the first object of pattern at time in dst. The pattern itself
// is not modified.
func (p *PatternPlacer) PlaceAtTime(pattern, dst *Beatmap, time float64) error {
	if len(pattern.HitObjects) == 0 {
		return ErrEmptyPattern
	}
	if pattern.Timing.GetRedlineAtTime(0) == nil {
		return ErrNoRedline
	}
	src := pattern.DeepClone()
	src.SortHitObjects()
	src.OffsetTime(time - src.GetHitObjectStartTime())
	dst.ensureTimingContext()
	orig := dst.Timing.Clone()

	placed := p.plan(src, orig, time)
	spanStart, spanEnd := math.Inf(1), math.Inf(-1)
	for _, pl := range placed {
		spanStart = math.Min(spanStart, pl.start)
		spanEnd = math.Max(spanEnd, pl.start+pl.duration)
	}
	p.removeOverwritten(dst, placed, spanStart, spanEnd)

	if p.TimingOverwriteMode == PatternTimingOnly {
		p.replaceTiming(src, dst, orig, spanStart, spanEnd)
	} else {
		p.copyPointFields(placed, dst)
	}
	if p.FixSv {
		fixSliderVelocities(placed, dst.Timing)
	}
	if p.TimingOverwriteMode == DestinationTimingOnly {
		restoreState(dst.Timing, orig, spanEnd)
	}

	for _, pl := range placed {
		pl.ho.MoveTime(pl.start - pl.ho.Base().StartTime)
		switch o := pl.ho.(type) {
		case *Spinner:
			o.End = pl.start + pl.duration
		case *HoldNote:
			o.End = pl.start + pl.duration
		}
		dst.HitObjects = append(dst.HitObjects, pl.ho)
	}
	dst.SortHitObjects()
	dst.GiveObjectsTimingContext()
	return nil
}

// plan works out where every pattern object lands and how long it should last.
func (p *PatternPlacer) plan(src *Beatmap, orig *Timing, time float64) []placement {
	ref := src.Timing
	if p.TimingOverwriteMode == DestinationTimingOnly {
		ref = orig
	}
	snap := func(t float64) float64 {
		if !p.SnapToNewTiming || len(p.BeatDivisors) == 0 {
			return t
		}
		return ref.Resnap(t, p.BeatDivisors...)
	}

	placed := make([]placement, 0, len(src.HitObjects))
	for _, ho := range src.HitObjects {
		start := ho.Base().StartTime
		end := ho.EndTime()
		if p.TimingOverwriteMode == DestinationTimingOnly && p.ScaleToNewTiming {
			beats := src.Timing.GetBeatLength(time, start)
			length := src.Timing.GetBeatLength(start, end)
			start = timeAfterBeats(orig, time, beats)
			end = timeAfterBeats(orig, start, length)
		}
		start = snap(start)
		if ho.Duration() > 0 {
			end = math.Max(snap(end), start)
		} else {
			end = start
		}
		placed = append(placed, placement{ho: ho, start: start, duration: end - start})
	}
	return placed
}

// timeAfterBeats walks beats forward from time, following tempo changes.
func timeAfterBeats(t *Timing, from, beats float64) float64 {
	cur := from
	for {
		mpb := t.GetMpBAtTime(cur)
		next := t.GetNextRedline(cur)
		if next == nil {
			return cur + beats*mpb
		}
		span := (next.Offset - cur) / mpb
		if span >= beats {
			return cur + beats*mpb
		}
		beats -= span
		cur = next.Offset
	}
}

func (p *PatternPlacer) removeOverwritten(dst *Beatmap, placed []placement, spanStart, spanEnd float64) {
	overlaps := func(ho HitObject, from, to float64) bool {
		return ho.EndTime()+p.Padding >= from && ho.Base().StartTime-p.Padding <= to
	}
	switch p.PatternOverwriteMode {
	case MinimalOverwrite:
		dst.HitObjects = slices.DeleteFunc(dst.HitObjects, func(ho HitObject) bool {
			return slices.ContainsFunc(placed, func(pl placement) bool {
				return overlaps(ho, pl.start, pl.start+pl.duration)
			})
		})
	case CompleteOverwrite:
		dst.HitObjects = slices.DeleteFunc(dst.HitObjects, func(ho HitObject) bool {
			return overlaps(ho, spanStart, spanEnd)
		})
	}
}

// replaceTiming swaps the destination points in [start, end) for the pattern's and
// puts the destination state back from end on. A displaced destination redline
// comes back on its own beat grid so later objects stay snapped.
func (p *PatternPlacer) replaceTiming(src, dst *Beatmap, orig *Timing, start, end float64) {
	dst.Timing.RemoveWhere(func(tp *TimingPoint) bool {
		return tp.Offset >= start && tp.Offset < end
	})

	var points []*TimingPoint
	red := src.Timing.GetRedlineAtTime(start)
	r := red.Copy()
	r.Offset = start
	points = append(points, r)
	if g := src.Timing.GetGreenlineAtTime(start); g != nil && g.Offset >= red.Offset {
		c := g.Copy()
		c.Offset = start
		points = append(points, c)
	}
	for _, tp := range src.Timing.GetTimingPointsInRange(start, end, false) {
		points = append(points, tp.Copy())
	}
	for _, tp := range points {
		at := orig.GetTimingPointAtTime(tp.Offset)
		if at == nil {
			continue
		}
		if !p.IncludeHitsounds {
			tp.SampleSet, tp.SampleIndex, tp.Volume = at.SampleSet, at.SampleIndex, at.Volume
		}
		if !p.IncludeKiai {
			tp.Kiai = at.Kiai
		}
	}
	dst.Timing.AddRange(points)

	restoreState(dst.Timing, orig, end)
	after := orig.GetRedlineAtTime(end)
	if after == nil || after.Offset >= end || after.MpB <= 0 {
		return
	}
	off := after.Offset + math.Ceil((end-after.Offset)/after.MpB)*after.MpB
	if next := orig.GetNextRedline(end - mathutil.DoubleEpsilon); next != nil && next.Offset <= off {
		return
	}
	if math.Abs(off-end) <= DefaultFuzzyness {
		off = end
	}
	back := after.Copy()
	back.Offset = off
	cc := NewControlChange(back)
	cc.MpB, cc.Meter, cc.Uninherited = true, true, true
	cc.AddChange(dst.Timing, false)
	restoreState(dst.Timing, orig, off)
}

// copyPointFields applies the pattern's hitsound and kiai state at every object's
// new start time.
func (p *PatternPlacer) copyPointFields(placed []placement, dst *Beatmap) {
	if !p.IncludeHitsounds && !p.IncludeKiai {
		return
	}
	for _, pl := range placed {
		tc := pl.ho.Base().Timing
		if tc == nil || tc.HitsoundTimingPoint == nil {
			continue
		}
		tp := tc.HitsoundTimingPoint.Copy()
		tp.Offset = pl.start
		tp.Kiai = tc.TimingPoint.Kiai
		cc := NewControlChange(tp)
		cc.SampleSet, cc.Index, cc.Volume = p.IncludeHitsounds, p.IncludeHitsounds, p.IncludeHitsounds
		cc.Kiai = p.IncludeKiai
		cc.AddChange(dst.Timing, false)
	}
}

// fixSliderVelocities sets the slider velocity at each placed slider so it lasts
// its planned duration.
func fixSliderVelocities(placed []placement, timing *Timing) {
	for _, pl := range placed {
		s, ok := pl.ho.(*Slider)
		if !ok || pl.duration <= 0 {
			continue
		}
		mpb := timing.GetMpBAtTime(pl.start)
		sv := s.PixelLength * float64(s.RepeatCount) * mpb / (100 * timing.SliderMultiplier * pl.duration)
		cc := NewControlChange(NewGreenline(pl.start, mathutil.Clamp(sv, 0.1, 10)))
		cc.MpB = true
		cc.AddChange(timing, false)
	}
}

// restoreState makes the slider velocity, hitsounds and kiai at time match orig.
func restoreState(timing, orig *Timing, time float64) {
	at := orig.GetTimingPointAtTime(time)
	if at == nil {
		return
	}
	tp := NewGreenline(time, orig.GetSvAtTime(time))
	tp.SampleSet, tp.SampleIndex, tp.Volume, tp.Kiai = at.SampleSet, at.SampleIndex, at.Volume, at.Kiai
	cc := NewControlChange(tp)
	cc.MpB, cc.SampleSet, cc.Index, cc.Volume, cc.Kiai = true, true, true, true, true
	cc.AddChange(timing, false)
}
