// Package hitsoundcopy copies hitsounds between beatmaps of the same song.
package hitsoundcopy

import (
	"context"
	"math"
	"path"
	"slices"
	"strings"

	"maptools/beatmapset"
	"maptools/dotosu"
	"maptools/samples"
)

type Options struct {
	// TemporalLeniency is the largest distance in ms between two notes that copy hitsounds.
	TemporalLeniency float64
	// CopyHitsounds copies the hitsounds of circles, slider heads, repeats and tails and spinner ends.
	CopyHitsounds bool
	// CopyBodyHitsounds copies the sounds of slider bodies and the greenlines inside them.
	CopyBodyHitsounds bool
	CopySampleSets    bool
	CopyVolumes       bool
	// AlwaysPreserve5Volume keeps muted (5% volume) objects of the destination muted.
	AlwaysPreserve5Volume bool
	// StoryboardedSamples makes CopyBasic and CopySmart also copy the storyboard
	// sound samples.
	StoryboardedSamples bool
	// IgnoreHitsoundSatisfiedSamples skips storyboard samples a hitsound already plays.
	// It needs the destination's beatmap set.
	IgnoreHitsoundSatisfiedSamples bool
}

func DefaultOptions() Options {
	return Options{
		TemporalLeniency:               5,
		CopyHitsounds:                  true,
		CopyBodyHitsounds:              true,
		CopySampleSets:                 true,
		CopyVolumes:                    true,
		AlwaysPreserve5Volume:          true,
		IgnoreHitsoundSatisfiedSamples: true,
	}
}

// Copier copies hitsounds with fixed options.
type Copier struct {
	Options
	// Cache speeds up sample hashing for IgnoreHitsoundSatisfiedSamples.
	Cache *samples.SQLiteHashCache
}

func New(opts Options) *Copier { return &Copier{Options: opts} }

func (c *Copier) change(tp *dotosu.TimingPoint, sampleSet, index, volume bool) dotosu.ControlChange {
	cc := dotosu.NewControlChange(tp)
	cc.SampleSet, cc.Index, cc.Volume = sampleSet, index, volume
	return cc
}

func (c *Copier) near(a, b float64) bool {
	return math.Abs(math.Round(a)-math.Round(b)) <= c.TemporalLeniency
}

// CopyBasic replaces every hitsound of dst with the hitsounds of src. Sample sets,
// indices and volumes come over as greenlines. It returns the timeline of dst with
// Copied set on every object that received hitsounds.
func (c *Copier) CopyBasic(ctx context.Context, src, dst *dotosu.Beatmap) (*dotosu.Timeline, error) {
	tlTo := dst.GetTimeline()
	tlFrom := src.GetTimeline()

	var muteTimes map[float64]bool
	if c.CopyVolumes && c.AlwaysPreserve5Volume {
		muteTimes = map[float64]bool{}
	}

	if c.CopyHitsounds {
		for _, ho := range dst.HitObjects {
			ho.ResetHitsounds()
		}
		for _, from := range tlFrom.TimelineObjects {
			to := tlTo.GetNearestTlo(from.Time, true)
			if to != nil && c.near(from.Time, to.Time) {
				c.copyTlo(from, to)
			}
		}
	}

	if muteTimes != nil {
		for _, to := range tlTo.TimelineObjects {
			if !to.Copied && to.Hitsounds.Volume == 0 && to.FenoSampleVolume() == 5 {
				muteTimes[to.Time] = true
			}
		}
	}

	changes := make([]dotosu.ControlChange, 0, src.Timing.Len())
	for _, tp := range src.Timing.Points() {
		changes = append(changes, c.change(tp.Copy(), c.CopySampleSets, c.CopySampleSets, c.CopyVolumes))
	}
	dotosu.ApplyChanges(dst.Timing, changes, true)

	if muteTimes != nil {
		tlTo.GiveTimingContext(dst.Timing)
		var mute []dotosu.ControlChange
		for _, to := range tlTo.TimelineObjects {
			// Objects with their own volume keep it.
			if to.Hitsounds.Volume != 0 {
				continue
			}
			tp := to.HitsoundTimingPoint().Copy()
			tp.Offset = to.Time
			if muteTimes[to.Time] {
				tp.Volume = 5
			} else {
				tp.Volume = to.FenoSampleVolume()
			}
			mute = append(mute, c.change(tp, false, false, true))
		}
		dotosu.ApplyChanges(dst.Timing, mute, false)
	}

	if c.StoryboardedSamples {
		if err := c.copyStoryboardedSamples(ctx, src, dst, tlTo, true); err != nil {
			return tlTo, err
		}
	}
	return tlTo, nil
}

// CopySmart copies only the hitsounds src defines. Objects of dst that receive
// nothing keep the sound they play now: greenlines are added to hold their sample
// set and index when the copied greenlines would change what they play.
func (c *Copier) CopySmart(ctx context.Context, src, dst *dotosu.Beatmap) (*dotosu.Timeline, error) {
	tlTo := dst.GetTimeline()
	tlFrom := src.GetTimeline()
	mode := dst.General.Mode()

	dup, dir, err := c.analyzeSet(ctx, dst)
	if err != nil {
		return nil, err
	}

	var changes []dotosu.ControlChange
	if c.CopyHitsounds {
		for _, from := range tlFrom.TimelineObjects {
			to := tlTo.GetNearestTlo(from.Time, true)
			if to == nil || !c.near(from.Time, to.Time) {
				continue
			}
			c.copyTlo(from, to)
			tp := from.HitsoundTimingPoint().Copy()
			tp.Offset = to.Time
			changes = append(changes, c.change(tp, c.CopySampleSets, c.CopySampleSets, c.CopyVolumes))
		}
	}

	if c.CopyBodyHitsounds {
		changes = append(changes, c.bodyChanges(src, dst)...)
	}

	for _, to := range tlTo.TimelineObjects {
		if to.Copied {
			continue
		}
		tp := to.HitsoundTimingPoint().Copy()
		holdSampleSet := c.CopySampleSets && to.Hitsounds.SampleSet == dotosu.SampleSetNone
		holdIndex := c.CopySampleSets && !(to.CanCustoms() && to.Hitsounds.CustomIndex != 0)

		if holdSampleSet || holdIndex {
			native := firstPlayingFilenames(to, mode, dir, dup, true)

			if holdSampleSet {
				oldSet := to.FenoSampleSet()
				newSet := oldSet
				latest := math.Inf(-1)
				for _, cc := range changes {
					if cc.SampleSet && cc.Point.Offset <= to.Time && cc.Point.Offset >= latest {
						newSet = cc.Point.SampleSet
						latest = cc.Point.Offset
					}
				}
				tp.SampleSet = newSet
				to.Timing.HitsoundTimingPoint = tp
				if !slices.Equal(native, firstPlayingFilenames(to, mode, dir, dup, true)) {
					tp.SampleSet = oldSet
				}
			}

			if holdIndex {
				oldIndex := to.FenoCustomIndex()
				newIndex := oldIndex
				latest := math.Inf(-1)
				for _, cc := range changes {
					if cc.Index && cc.Point.Offset <= to.Time && cc.Point.Offset >= latest {
						newIndex = cc.Point.SampleIndex
						latest = cc.Point.Offset
					}
				}
				tp.SampleIndex = newIndex
				to.Timing.HitsoundTimingPoint = tp
				if !slices.Equal(native, firstPlayingFilenames(to, mode, dir, dup, true)) {
					tp.SampleIndex = oldIndex
				}
			}
			to.Timing.HitsoundTimingPoint = tp
		}

		tp.Offset = to.Time
		changes = append(changes, c.change(tp, holdSampleSet, holdIndex, c.CopyVolumes))
	}

	dotosu.ApplyChanges(dst.Timing, changes, false)

	if c.StoryboardedSamples {
		if err := c.copyStoryboardedSamples(ctx, src, dst, tlTo, true); err != nil {
			return tlTo, err
		}
	}
	return tlTo, nil
}

// bodyChanges removes the greenlines of dst inside bodies both maps share and
// returns changes recreating the ones of src there.
func (c *Copier) bodyChanges(src, dst *dotosu.Beatmap) []dotosu.ControlChange {
	inBody := func(b *dotosu.Beatmap, t float64) bool {
		for _, ho := range b.HitObjects {
			if ho.Base().StartTime < t && ho.EndTime() > t {
				return true
			}
		}
		return false
	}

	var stale []*dotosu.TimingPoint
	for _, ho := range dst.HitObjects {
		tc := ho.Base().Timing
		if tc == nil {
			continue
		}
		for _, tp := range tc.BodyHitsounds {
			if !tp.Uninherited && inBody(src, tp.Offset) {
				stale = append(stale, tp)
			}
		}
	}
	for _, tp := range stale {
		dst.Timing.Remove(tp)
	}

	var out []dotosu.ControlChange
	for _, ho := range src.HitObjects {
		tc := ho.Base().Timing
		if tc == nil {
			continue
		}
		for _, tp := range tc.BodyHitsounds {
			if inBody(dst, tp.Offset) {
				out = append(out, c.change(tp.Copy(), c.CopySampleSets, c.CopySampleSets, c.CopyVolumes))
			}
		}
	}
	return out
}

// copyTlo copies the hitsounds of from onto to and writes them to its hit object.
func (c *Copier) copyTlo(from, to *dotosu.TimelineObject) {
	h := &to.Hitsounds
	h.SampleSet = from.Hitsounds.SampleSet
	h.AdditionSet = from.Hitsounds.AdditionSet
	h.Normal = from.Hitsounds.Normal
	h.Whistle = from.Hitsounds.Whistle
	h.Finish = from.Hitsounds.Finish
	h.Clap = from.Hitsounds.Clap

	if to.CanCustoms() {
		h.CustomIndex = from.Hitsounds.CustomIndex
		h.Volume = from.Hitsounds.Volume
		h.Filename = from.Hitsounds.Filename
	}

	if c.CopyBodyHitsounds && to.Kind == dotosu.KindSliderHead && from.Kind == dotosu.KindSliderHead {
		body := from.Origin.Base().Hitsounds
		dstBody := &to.Origin.Base().Hitsounds
		dstBody.Normal, dstBody.Whistle, dstBody.Finish, dstBody.Clap = body.Normal, body.Whistle, body.Finish, body.Clap
		dstBody.SampleSet = body.SampleSet
		dstBody.AdditionSet = body.AdditionSet
	}

	to.HitsoundsToOrigin()
	to.Copied = true
}

// CopyStoryboardedSamples adds the storyboard sound samples of src that dst lacks.
// With IgnoreHitsoundSatisfiedSamples and a beatmap set on dst, samples whose
// content a nearby hitsound already plays are skipped.
func (c *Copier) CopyStoryboardedSamples(ctx context.Context, src, dst *dotosu.Beatmap, removeOld bool) error {
	return c.copyStoryboardedSamples(ctx, src, dst, dst.GetTimeline(), removeOld)
}

func (c *Copier) copyStoryboardedSamples(ctx context.Context, src, dst *dotosu.Beatmap, tl *dotosu.Timeline, removeOld bool) error {
	if removeOld {
		dst.Storyboard.SoundSamples = nil
	}
	dst.GiveObjectsTimingContext()
	tl.GiveTimingContext(dst.Timing)

	dup, dir, err := c.analyzeSet(ctx, dst)
	if err != nil {
		return err
	}
	mode := dst.General.Mode()

	present := map[sampleKey]bool{}
	for _, s := range dst.Storyboard.SoundSamples {
		present[keyOf(s)] = true
	}

	for _, s := range src.Storyboard.SoundSamples {
		if present[keyOf(s)] {
			continue
		}
		if dup != nil {
			here := map[string]bool{}
			for _, tlo := range tl.InRange(s.StartTime, c.TemporalLeniency) {
				for _, name := range firstPlayingFilenames(tlo, mode, dir, dup, false) {
					here[name] = true
				}
			}
			if here[dup.Resolve(path.Join(dir, s.FilePath))] {
				continue
			}
		}
		cp := *s
		dst.Storyboard.SoundSamples = append(dst.Storyboard.SoundSamples, &cp)
		present[keyOf(s)] = true
	}

	slices.SortStableFunc(dst.Storyboard.SoundSamples, func(a, b *dotosu.StoryboardSoundSample) int {
		switch {
		case a.StartTime < b.StartTime:
			return -1
		case a.StartTime > b.StartTime:
			return 1
		}
		return 0
	})
	return nil
}

type sampleKey struct {
	time   float64
	layer  int
	path   string
	volume int
}

func keyOf(s *dotosu.StoryboardSoundSample) sampleKey {
	return sampleKey{s.StartTime, s.Layer, samples.Key(s.FilePath), s.Volume}
}

// analyzeSet maps the sound files of dst's set to their first duplicates. It returns
// a nil map when there is no set or the option is off.
func (c *Copier) analyzeSet(ctx context.Context, dst *dotosu.Beatmap) (samples.DuplicateMap, string, error) {
	if dst.Set == nil || !c.IgnoreHitsoundSatisfiedSamples {
		return nil, "", nil
	}
	var sounds []dotosu.FileSource
	for _, f := range dst.Set.Files() {
		if beatmapset.IsSoundFile(strings.ToLower(path.Ext(f.Name()))) {
			sounds = append(sounds, f)
		}
	}
	dup, _, err := samples.AnalyzeSamples(ctx, sounds, c.Cache)
	if err != nil {
		return nil, "", err
	}
	dir := ""
	if rel, ok := dst.RelativePath(); ok {
		if d := path.Dir(rel); d != "." {
			dir = d
		}
	}
	return dup, dir, nil
}

// firstPlayingFilenames lists the samples tlo plays as keys of their first
// duplicate. Custom indices without a file in the set fall back to the skin
// default, which is listed only with includeDefaults.
func firstPlayingFilenames(tlo *dotosu.TimelineObject, mode dotosu.GameMode, dir string, dup samples.DuplicateMap, includeDefaults bool) []string {
	if tlo.UsesFilename() {
		return []string{dup.Resolve(path.Join(dir, tlo.Hitsounds.Filename))}
	}
	var out []string
	for _, p := range tlo.GetPlayingHitsounds(mode) {
		index := p.Index
		if index != 0 && dup != nil {
			if _, ok := dup.Original(path.Join(dir, dotosu.SampleFileName(p.SampleSet, p.Hitsound, index, mode))); !ok {
				index = 0
			}
		}
		if index == 0 {
			if includeDefaults {
				out = append(out, dotosu.SampleFileName(p.SampleSet, p.Hitsound, 0, mode))
			}
			continue
		}
		out = append(out, dup.Resolve(path.Join(dir, dotosu.SampleFileName(p.SampleSet, p.Hitsound, index, mode))))
	}
	return out
}
