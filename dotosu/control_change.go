package dotosu

import (
	"math"
	"slices"
)

// ControlChange merges the selected fields of Point into the timing point at the
// same offset, creating a redline or greenline there when needed.
type ControlChange struct {
	Point            *TimingPoint
	MpB              bool
	Meter            bool
	SampleSet        bool
	Index            bool
	Volume           bool
	Uninherited      bool
	Kiai             bool
	OmitFirstBarLine bool
	// Fuzzyness is the distance in ms within which points count as coincident.
	Fuzzyness float64
}

const DefaultFuzzyness = 2

// NewControlChange targets tp with DefaultFuzzyness. No fields are selected and
// the change applies to greenlines until Uninherited is set.
func NewControlChange(tp *TimingPoint) ControlChange {
	return ControlChange{Point: tp, Fuzzyness: DefaultFuzzyness}
}

// AddChange applies c to timing. With allAfter, sample set, index, volume and kiai are
// also copied onto every later point.
func (c ControlChange) AddChange(timing *Timing, allAfter bool) {
	var adding, prev *TimingPoint
	var on []*TimingPoint
	onHasRed, onHasGreen := false, false

	for _, tp := range timing.points {
		if tp == nil {
			continue
		}
		if tp.Offset < c.Point.Offset && (prev == nil || tp.Offset >= prev.Offset) {
			prev = tp
		}
		if math.Abs(tp.Offset-c.Point.Offset) <= c.Fuzzyness {
			on = append(on, tp)
			onHasRed = tp.Uninherited || onHasRed
			onHasGreen = !tp.Uninherited || onHasGreen
		}
	}

	if len(on) > 0 {
		prev = on[len(on)-1]
	}

	if c.Uninherited && !onHasRed {
		if prev == nil {
			adding = c.Point.Copy()
		} else {
			adding = prev.Copy()
			adding.Offset = c.Point.Offset
		}
		adding.Uninherited = true
		on = append(on, adding)
	}
	if !c.Uninherited && (len(on) == 0 || (c.MpB && !onHasGreen)) {
		if prev == nil {
			adding = c.Point.Copy()
			adding.Uninherited = false
		} else {
			adding = prev.Copy()
			adding.Offset = c.Point.Offset
			adding.Uninherited = false
			if prev.Uninherited {
				adding.MpB = -100
			}
		}
		on = append(on, adding)
	}

	for _, tp := range on {
		if c.MpB && c.Uninherited == tp.Uninherited {
			tp.MpB = c.Point.MpB
		}
		if c.Meter && c.Uninherited && tp.Uninherited {
			tp.Meter = c.Point.Meter
		}
		if c.SampleSet {
			tp.SampleSet = c.Point.SampleSet
		}
		if c.Index {
			tp.SampleIndex = c.Point.SampleIndex
		}
		if c.Volume {
			tp.Volume = c.Point.Volume
		}
		if c.Kiai {
			tp.Kiai = c.Point.Kiai
		}
		if c.OmitFirstBarLine && c.Uninherited && tp.Uninherited {
			tp.OmitFirstBarLine = c.Point.OmitFirstBarLine
		}
	}

	if adding != nil && (prev == nil || !adding.SameEffect(prev) || c.Uninherited) {
		timing.Add(adding)
	}

	if allAfter {
		for _, tp := range timing.points {
			if tp.Offset <= c.Point.Offset {
				continue
			}
			if c.SampleSet {
				tp.SampleSet = c.Point.SampleSet
			}
			if c.Index {
				tp.SampleIndex = c.Point.SampleIndex
			}
			if c.Volume {
				tp.Volume = c.Point.Volume
			}
			if c.Kiai {
				tp.Kiai = c.Point.Kiai
			}
		}
	}
	timing.Touch()
}

// ApplyChanges applies changes in ascending offset order.
func ApplyChanges(timing *Timing, changes []ControlChange, allAfter bool) {
	sorted := slices.Clone(changes)
	slices.SortStableFunc(sorted, func(a, b ControlChange) int {
		switch {
		case a.Point.Offset < b.Point.Offset:
			return -1
		case a.Point.Offset > b.Point.Offset:
			return 1
		}
		return 0
	})
	for _, c := range sorted {
		c.AddChange(timing, allAfter)
	}
}
