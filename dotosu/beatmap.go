package dotosu

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"maptools/mathutil"
)

const (
	LATEST_VERSION              = 14
	EARLY_VERSION_TIMING_OFFSET = 24
)

// fileLayout remembers the byte-level details of the decoded text.
type fileLayout struct {
	bom             bool
	crlf            bool
	trailingNewline bool
	hasEditor       bool
}

// Beatmap is a decoded .osu file.
type Beatmap struct {
	FormatVersion int
	General       General
	Editor        Editor
	Metadata      Metadata
	Difficulty    Difficulty

	ComboColours   []ComboColour
	SpecialColours []SpecialColour

	Timing     *Timing
	Storyboard *Storyboard
	HitObjects []HitObject

	// Set is the containing beatmap set, when known.
	Set BeatmapSet

	layout fileLayout
}

// New returns an empty beatmap in the latest format.
func New() *Beatmap {
	b := &Beatmap{
		FormatVersion: LATEST_VERSION,
		Timing:        NewTiming(1.4),
		Storyboard:    &Storyboard{},
		layout:        fileLayout{crlf: true, hasEditor: true},
	}
	b.Difficulty.SetSliderMultiplier(1.4)
	return b
}

// SetSliderMultiplier keeps [Difficulty] and the timing in sync.
func (b *Beatmap) SetSliderMultiplier(v float64) {
	b.Difficulty.SetSliderMultiplier(v)
	b.Timing.SliderMultiplier = v
	b.Timing.Touch()
}

// Clone returns a shallow copy sharing timing, storyboard and hit objects.
func (b *Beatmap) Clone() *Beatmap {
	c := *b
	c.HitObjects = slices.Clone(b.HitObjects)
	return &c
}

// DeepClone returns a fully independent copy. Timing contexts are rebuilt against
// the cloned timing.
func (b *Beatmap) DeepClone() *Beatmap {
	c := *b
	c.General = General{b.General.clone()}
	c.Editor = Editor{b.Editor.clone()}
	c.Metadata = Metadata{b.Metadata.clone()}
	c.Difficulty = Difficulty{b.Difficulty.clone()}
	c.ComboColours = slices.Clone(b.ComboColours)
	c.SpecialColours = slices.Clone(b.SpecialColours)
	c.Timing = b.Timing.Clone()
	c.Storyboard = b.Storyboard.Clone()
	c.HitObjects = make([]HitObject, len(b.HitObjects))
	hadTiming := false
	for i, ho := range b.HitObjects {
		c.HitObjects[i] = ho.Clone()
		hadTiming = hadTiming || ho.Base().Timing != nil
	}
	if hadTiming {
		c.GiveObjectsTimingContext()
	}
	return &c
}

// SortHitObjects orders objects by time, new combos first on ties.
func (b *Beatmap) SortHitObjects() {
	slices.SortStableFunc(b.HitObjects, Compare)
}

// GiveObjectsTimingContext attaches a fresh timing context to every hit object.
func (b *Beatmap) GiveObjectsTimingContext() {
	for _, ho := range b.HitObjects {
		b.giveTimingContext(ho)
	}
}

func (b *Beatmap) giveTimingContext(ho HitObject) {
	base := ho.Base()
	t := b.Timing
	tc := &TimingContext{
		GlobalSliderMultiplier: t.SliderMultiplier,
		SliderVelocity:         t.GetSvAtTime(base.StartTime),
		TimingPoint:            t.GetTimingPointAtTime(base.StartTime),
		HitsoundTimingPoint:    t.GetTimingPointAtTime(base.StartTime + 5),
		UninheritedTimingPoint: t.GetRedlineAtTime(base.StartTime),
		Revision:               t.Revision(),
	}
	base.Timing = tc
	if tc.UninheritedTimingPoint == nil {
		return
	}
	tc.BodyHitsounds = t.GetTimingPointsInRange(base.StartTime, ho.EndTime(), false)
}

// ensureTimingContext attaches timing contexts where missing or stale.
func (b *Beatmap) ensureTimingContext() {
	for _, ho := range b.HitObjects {
		if tc := ho.Base().Timing; tc == nil || tc.Stale(b.Timing) {
			b.giveTimingContext(ho)
		}
	}
}

// CalculateEndPositions recomputes every slider's cached curve.
func (b *Beatmap) CalculateEndPositions() {
	for _, ho := range b.HitObjects {
		if s, ok := ho.(*Slider); ok {
			s.Path()
		}
	}
}

// GetHitObjectsWithRangeInRange returns objects whose [start, end] overlaps [start, end].
func (b *Beatmap) GetHitObjectsWithRangeInRange(start, end float64) []HitObject {
	var out []HitObject
	for _, ho := range b.HitObjects {
		if ho.EndTime() >= start && ho.Base().StartTime <= end {
			out = append(out, ho)
		}
	}
	return out
}

// GetBookmarkedObjects returns the objects between the first and last bookmark.
func (b *Beatmap) GetBookmarkedObjects() []HitObject {
	marks := b.Editor.Bookmarks()
	if len(marks) == 0 {
		return nil
	}
	lo, hi := slices.Min(marks), slices.Max(marks)
	var out []HitObject
	for _, ho := range b.HitObjects {
		t := ho.Base().StartTime
		if mathutil.AlmostBigger(t, lo, mathutil.DoubleEpsilon) && mathutil.AlmostSmaller(t, hi, mathutil.DoubleEpsilon) {
			out = append(out, ho)
		}
	}
	return out
}

// OffsetTime moves everything timed in the beatmap by delta.
func (b *Beatmap) OffsetTime(delta float64) {
	b.Timing.Offset(delta)
	for _, ho := range b.HitObjects {
		ho.MoveTime(delta)
	}
	b.Storyboard.shiftTimes(delta)
	if marks := b.Editor.Bookmarks(); len(marks) > 0 {
		for i := range marks {
			marks[i] += delta
		}
		b.Editor.SetBookmarks(marks)
	}
	if p := b.General.PreviewTime(); p != -1 {
		b.General.SetInt("PreviewTime", int(math.Round(float64(p)+delta)))
	}
	b.GiveObjectsTimingContext()
}

func (b *Beatmap) GetHitObjectStartTime() float64 {
	if len(b.HitObjects) == 0 {
		return 0
	}
	return b.HitObjects[0].Base().StartTime
}

func (b *Beatmap) GetHitObjectEndTime() float64 {
	end := 0.0
	for _, ho := range b.HitObjects {
		end = math.Max(end, ho.EndTime())
	}
	return end
}

// GetLeadInTime is how long before time 0 the game must start for the first hit
// object and storyboard event to be visible.
func (b *Beatmap) GetLeadInTime() float64 {
	leadIn := float64(b.General.AudioLeadIn())
	if len(b.HitObjects) > 0 {
		approach := b.Difficulty.ApproachTime()
		leadIn = math.Max(leadIn, approach-b.GetHitObjectStartTime())
	}
	if t, ok := b.Storyboard.EarliestEventTime(); ok {
		leadIn = math.Max(leadIn, -t)
	}
	return math.Max(leadIn, 0)
}

func (b *Beatmap) GetMapStartTime() float64 { return -b.GetLeadInTime() }

func (b *Beatmap) GetMapEndTime() float64 { return b.GetHitObjectEndTime() }

// GetAutoFailCheckTime is when the game checks for a failed play, 200 ms after the last object.
func (b *Beatmap) GetAutoFailCheckTime() float64 { return b.GetHitObjectEndTime() + 200 }

// GetFileName is the canonical file name: "Artist - Title (Creator) [Version].osu".
func (b *Beatmap) GetFileName() string {
	name := fmt.Sprintf("%s - %s (%s) [%s].osu", b.Metadata.Artist(), b.Metadata.Title(), b.Metadata.Creator(), b.Metadata.Version())
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`<>:"/\|?*`, r) || r < 32 {
			return -1
		}
		return r
	}, name)
}

// RelativePath resolves the path of b inside its set.
func (b *Beatmap) RelativePath() (string, bool) {
	if b.Set == nil {
		return "", false
	}
	return b.Set.RelativePath(b)
}

// Breaks returns the break periods of the storyboard.
func (b *Beatmap) Breaks() []*Break { return b.Storyboard.BreakPeriods }
