package dotosu

import (
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// TimelineKind is the audible event a timeline object stands for.
type TimelineKind int

const (
	KindCircle TimelineKind = iota
	KindSliderHead
	KindSliderRepeat
	KindSliderTail
	KindSliderTick
	KindSpinnerHead
	KindSpinnerTail
	KindHoldNoteHead
	KindHoldNoteTail
)

func (k TimelineKind) String() string {
	switch k {
	case KindSliderHead:
		return "slider head"
	case KindSliderRepeat:
		return "slider repeat"
	case KindSliderTail:
		return "slider tail"
	case KindSliderTick:
		return "slider tick"
	case KindSpinnerHead:
		return "spinner head"
	case KindSpinnerTail:
		return "spinner tail"
	case KindHoldNoteHead:
		return "hold note head"
	case KindHoldNoteTail:
		return "hold note tail"
	}
	return "circle"
}

// minTickDistanceFromEnd keeps ticks out of the last moments of a span.
const minTickDistanceFromEnd = 10

// TimelineObject is one point in time where a hit object can play samples.
type TimelineObject struct {
	Origin    HitObject
	Time      float64
	Hitsounds HitSampleInfo
	Kind      TimelineKind
	// NodeIndex is the slider node, 0 for the head. Unused for other kinds.
	NodeIndex int
	// Timing is set by Timeline.GiveTimingContext.
	Timing *TimingContext
	// Copied marks objects that already received hitsounds during a copy.
	Copied bool

	// rel is the offset from the origin's start time, used for ticks.
	rel float64
}

// HasHitsound reports whether the object plays hitsound samples.
func (t *TimelineObject) HasHitsound() bool {
	switch t.Kind {
	case KindSliderTick, KindSpinnerHead, KindHoldNoteTail:
		return false
	}
	return true
}

// CanCustoms reports whether the object's own custom index, volume and filename apply.
func (t *TimelineObject) CanCustoms() bool {
	switch t.Kind {
	case KindSliderTick, KindSpinnerHead, KindHoldNoteHead, KindHoldNoteTail:
		return false
	}
	return true
}

func (t *TimelineObject) UsesFilename() bool {
	return t.Hitsounds.Filename != "" && t.CanCustoms()
}

// HitsoundTimingPoint is the timing point the object plays with.
func (t *TimelineObject) HitsoundTimingPoint() *TimingPoint {
	if t.Timing == nil || t.Timing.HitsoundTimingPoint == nil {
		panic(&MissingContextError{Kind: ContextTiming})
	}
	return t.Timing.HitsoundTimingPoint
}

// The Feno values resolve what actually plays, falling back to the hitsound timing point.
// They panic with a *MissingContextError before GiveTimingContext.

func (t *TimelineObject) FenoSampleSet() SampleSet {
	if t.Hitsounds.SampleSet == SampleSetNone {
		return t.HitsoundTimingPoint().SampleSet
	}
	return t.Hitsounds.SampleSet
}

func (t *TimelineObject) FenoAdditionSet() SampleSet {
	if t.Hitsounds.AdditionSet == SampleSetNone {
		return t.FenoSampleSet()
	}
	return t.Hitsounds.AdditionSet
}

func (t *TimelineObject) FenoCustomIndex() int {
	if t.Hitsounds.CustomIndex == 0 || !t.CanCustoms() {
		return t.HitsoundTimingPoint().SampleIndex
	}
	return t.Hitsounds.CustomIndex
}

func (t *TimelineObject) FenoSampleVolume() int {
	if t.Hitsounds.Volume == 0 || !t.CanCustoms() {
		return t.HitsoundTimingPoint().Volume
	}
	return t.Hitsounds.Volume
}

// Hitsound returns the first active sound, normal when none is.
func (t *TimelineObject) Hitsound() Hitsound {
	switch {
	case t.Hitsounds.Normal:
		return HitsoundNormal
	case t.Hitsounds.Whistle:
		return HitsoundWhistle
	case t.Hitsounds.Finish:
		return HitsoundFinish
	case t.Hitsounds.Clap:
		return HitsoundClap
	}
	return HitsoundNormal
}

// PlaysNormal reports whether the normal sample plays. Outside mania it always does;
// in mania only when set explicitly or when no addition is set.
func (t *TimelineObject) PlaysNormal(mode GameMode) bool {
	h := t.Hitsounds
	return mode != ModeMania || h.Normal || !(h.Whistle || h.Finish || h.Clap)
}

// PlayingHitsound is one sample a timeline object plays.
type PlayingHitsound struct {
	SampleSet SampleSet
	Hitsound  Hitsound
	Index     int
}

func (t *TimelineObject) GetPlayingHitsounds(mode GameMode) []PlayingHitsound {
	var out []PlayingHitsound
	index := t.FenoCustomIndex()
	if t.PlaysNormal(mode) {
		out = append(out, PlayingHitsound{t.FenoSampleSet(), HitsoundNormal, index})
	}
	add := t.FenoAdditionSet()
	if t.Hitsounds.Whistle {
		out = append(out, PlayingHitsound{add, HitsoundWhistle, index})
	}
	if t.Hitsounds.Finish {
		out = append(out, PlayingHitsound{add, HitsoundFinish, index})
	}
	if t.Hitsounds.Clap {
		out = append(out, PlayingHitsound{add, HitsoundClap, index})
	}
	return out
}

// GetPlayingFilenames lists the extensionless sample names the object plays.
// A filename override replaces everything. With index 0 the skin defaults play,
// which are only listed when includeDefaults is set.
func (t *TimelineObject) GetPlayingFilenames(mode GameMode, includeDefaults bool) []string {
	if t.UsesFilename() {
		return []string{t.Hitsounds.Filename}
	}
	index := t.FenoCustomIndex()
	if index == 0 && !includeDefaults {
		return nil
	}
	var out []string
	for _, p := range t.GetPlayingHitsounds(mode) {
		out = append(out, SampleFileName(p.SampleSet, p.Hitsound, p.Index, mode))
	}
	return out
}

// SampleFileName builds a sample name like "soft-hitwhistle2". Index 0 names the
// skin default and index 1 has no suffix.
func SampleFileName(set SampleSet, hs Hitsound, index int, mode GameMode) string {
	var sb strings.Builder
	if mode == ModeTaiko {
		sb.WriteString("taiko-")
	}
	sb.WriteString(strings.ToLower(set.String()))
	sb.WriteString("-hit")
	sb.WriteString(hs.String())
	switch index {
	case 0:
		sb.WriteString("-default")
	case 1:
	default:
		sb.WriteString(strconv.Itoa(index))
	}
	return sb.String()
}

// HitsoundsToOrigin writes the object's hitsounds back into its hit object.
func (t *TimelineObject) HitsoundsToOrigin() {
	if t.Origin == nil {
		return
	}
	base := t.Origin.Base()
	switch t.Kind {
	case KindCircle, KindSpinnerTail, KindHoldNoteHead:
		base.Hitsounds = t.Hitsounds
	case KindSliderHead, KindSliderRepeat, KindSliderTail:
		s := t.Origin.(*Slider)
		s.SetNodeHitsounds(t.NodeIndex, t.Hitsounds)
		if t.Kind == KindSliderHead {
			s.Hitsounds.CustomIndex = t.Hitsounds.CustomIndex
			s.Hitsounds.Volume = t.Hitsounds.Volume
			s.Hitsounds.Filename = t.Hitsounds.Filename
		}
	}
}

func (t *TimelineObject) ResetHitsounds() { t.Hitsounds = HitSampleInfo{} }

// Copy returns a shallow copy sharing Origin and Timing.
func (t *TimelineObject) Copy() *TimelineObject {
	c := *t
	return &c
}

func (t *TimelineObject) String() string {
	return strconv.FormatFloat(t.Time, 'f', -1, 64) + " " + t.Kind.String() + " " + t.Hitsounds.extras()
}

// timelineObjects builds the timeline objects of one hit object.
// Sliders need a timing context for node and tick times.
func timelineObjects(ho HitObject, tickRate float64) []*TimelineObject {
	base := ho.Base()
	mk := func(kind TimelineKind, time float64, hs HitSampleInfo, node int) *TimelineObject {
		return &TimelineObject{Origin: ho, Time: time, Hitsounds: hs, Kind: kind, NodeIndex: node, rel: time - base.StartTime}
	}
	switch o := ho.(type) {
	case *HitCircle:
		return []*TimelineObject{mk(KindCircle, o.StartTime, o.Hitsounds, 0)}
	case *Spinner:
		return []*TimelineObject{
			mk(KindSpinnerHead, o.StartTime, HitSampleInfo{}, 0),
			mk(KindSpinnerTail, o.End, o.Hitsounds, 0),
		}
	case *HoldNote:
		return []*TimelineObject{
			mk(KindHoldNoteHead, o.StartTime, o.Hitsounds, 0),
			mk(KindHoldNoteTail, o.End, HitSampleInfo{}, 0),
		}
	case *Slider:
		return sliderTimelineObjects(o, tickRate, mk)
	}
	return nil
}

func sliderTimelineObjects(s *Slider, tickRate float64, mk func(TimelineKind, float64, HitSampleInfo, int) *TimelineObject) []*TimelineObject {
	span := s.SpanDuration()
	body := HitSampleInfo{SampleSet: s.Hitsounds.SampleSet, AdditionSet: s.Hitsounds.AdditionSet}

	var tickTimes []float64
	if tc := s.Timing; tc != nil && tc.UninheritedTimingPoint != nil && tickRate > 0 {
		spacing := tc.UninheritedTimingPoint.MpB / tickRate
		if spacing > 0 && !math.IsInf(spacing, 0) {
			for t := spacing; t < span-minTickDistanceFromEnd; t += spacing {
				tickTimes = append(tickTimes, t)
			}
		}
	}

	var out []*TimelineObject
	for node := 0; node <= s.RepeatCount; node++ {
		kind := KindSliderRepeat
		switch node {
		case 0:
			kind = KindSliderHead
		case s.RepeatCount:
			kind = KindSliderTail
		}
		out = append(out, mk(kind, sliderNodeTime(s.StartTime, span, node), s.NodeHitsounds(node), node))
		if node == s.RepeatCount {
			break
		}
		spanStart := s.StartTime + span*float64(node)
		for i := range tickTimes {
			// Reversed spans meet the ticks in the opposite order.
			t := tickTimes[i]
			if node%2 == 1 {
				t = span - tickTimes[len(tickTimes)-1-i]
			}
			out = append(out, mk(KindSliderTick, spanStart+t, body, node))
		}
	}
	return out
}

func sliderNodeTime(start, span float64, node int) float64 {
	if node == 0 {
		return start
	}
	return math.Floor(start + span*float64(node))
}

// UpdateTimelineObjectTimes recomputes the times of ho's timeline objects after ho
// was moved or its timing changed.
func (c *TimelineContext) UpdateTimelineObjectTimes(ho HitObject) {
	base := ho.Base()
	for _, tlo := range c.TimelineObjects {
		switch tlo.Kind {
		case KindCircle, KindSpinnerHead, KindHoldNoteHead, KindSliderHead:
			tlo.Time = base.StartTime
		case KindSpinnerTail, KindHoldNoteTail:
			tlo.Time = ho.EndTime()
		case KindSliderRepeat, KindSliderTail:
			s := ho.(*Slider)
			tlo.Time = sliderNodeTime(s.StartTime, s.SpanDuration(), tlo.NodeIndex)
		case KindSliderTick:
			tlo.Time = base.StartTime + tlo.rel
		}
	}
}

// Timeline is every timeline object of a beatmap in time order.
type Timeline struct {
	TimelineObjects []*TimelineObject
}

// NewTimeline builds the timeline of objects and stores each object's share in its
// timeline context. Sliders must have a timing context.
func NewTimeline(objects []HitObject, tickRate float64) *Timeline {
	tl := &Timeline{}
	for _, ho := range objects {
		tlos := timelineObjects(ho, tickRate)
		ho.Base().Timeline = &TimelineContext{TimelineObjects: tlos}
		tl.TimelineObjects = append(tl.TimelineObjects, tlos...)
	}
	slices.SortStableFunc(tl.TimelineObjects, func(a, b *TimelineObject) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})
	return tl
}

// GiveTimingContext resolves the timing points every object plays with.
func (tl *Timeline) GiveTimingContext(t *Timing) {
	for _, tlo := range tl.TimelineObjects {
		tlo.Timing = &TimingContext{
			GlobalSliderMultiplier: t.SliderMultiplier,
			SliderVelocity:         t.GetSvAtTime(tlo.Time),
			TimingPoint:            t.GetTimingPointAtTime(tlo.Time),
			HitsoundTimingPoint:    t.GetTimingPointAtTime(tlo.Time + 5),
			UninheritedTimingPoint: t.GetRedlineAtTime(tlo.Time),
			Revision:               t.Revision(),
		}
	}
}

// GetNearestTlo returns the object closest to time, or nil. With hasHitsoundOnly,
// objects that play no hitsounds are skipped. Ties go to the earlier object.
func (tl *Timeline) GetNearestTlo(time float64, hasHitsoundOnly bool) *TimelineObject {
	objs := tl.TimelineObjects
	i := sort.Search(len(objs), func(i int) bool { return objs[i].Time >= time })

	var before, after *TimelineObject
	for j := i - 1; j >= 0; j-- {
		if !hasHitsoundOnly || objs[j].HasHitsound() {
			before = objs[j]
			break
		}
	}
	for j := i; j < len(objs); j++ {
		if !hasHitsoundOnly || objs[j].HasHitsound() {
			after = objs[j]
			break
		}
	}
	switch {
	case before == nil:
		return after
	case after == nil:
		return before
	case time-before.Time <= after.Time-time:
		return before
	}
	return after
}

// InRange returns the objects with |Time - time| <= leniency.
func (tl *Timeline) InRange(time, leniency float64) []*TimelineObject {
	var out []*TimelineObject
	for _, tlo := range tl.TimelineObjects {
		if math.Abs(tlo.Time-time) <= leniency {
			out = append(out, tlo)
		}
	}
	return out
}

// GetTimeline builds the timeline with current timing. Later changes to the beatmap
// are not synchronised.
func (b *Beatmap) GetTimeline() *Timeline {
	b.ensureTimingContext()
	tl := NewTimeline(b.HitObjects, b.Difficulty.SliderTickRate())
	tl.GiveTimingContext(b.Timing)
	return tl
}
