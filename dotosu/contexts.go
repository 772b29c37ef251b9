package dotosu

import (
	"slices"

	"maptools/mathutil"
)

// Contexts holds the derived state passes attach to a hit object. Each slot is nil
// until its pass has run.
type Contexts struct {
	Stacking *StackingContext
	Combo    *ComboContext
	Timing   *TimingContext
	Timeline *TimelineContext
}

// StackingContext places an object on a stack. Stacks grow toward the top left, so the
// rendered position is Pos - StackCount*StackVector.
type StackingContext struct {
	StackCount  int
	StackVector mathutil.Vector2
}

func (c *StackingContext) Offset() mathutil.Vector2 {
	return c.StackVector.Scale(-float64(c.StackCount))
}

type ComboContext struct {
	ActualNewCombo bool
	ComboIndex     int
	ColourIndex    int
	Colour         ComboColour
}

// TimingContext caches the timing state at a hit object.
type TimingContext struct {
	GlobalSliderMultiplier float64
	SliderVelocity         float64
	TimingPoint            *TimingPoint
	// HitsoundTimingPoint is the point 5 ms after the object, so a greenline placed
	// just after it still applies.
	HitsoundTimingPoint    *TimingPoint
	UninheritedTimingPoint *TimingPoint
	BodyHitsounds          []*TimingPoint
	Revision               uint64
}

// Stale reports whether t changed after the context was computed.
func (c *TimingContext) Stale(t *Timing) bool { return c.Revision != t.Revision() }

type TimelineContext struct {
	TimelineObjects []*TimelineObject
}

// Has reports whether the slot for kind is filled.
func (c *Contexts) Has(kind ContextKind) bool {
	switch kind {
	case ContextStacking:
		return c.Stacking != nil
	case ContextCombo:
		return c.Combo != nil
	case ContextTiming:
		return c.Timing != nil
	case ContextTimeline:
		return c.Timeline != nil
	}
	return false
}

// Require returns a *MissingContextError when the slot for kind is empty.
func (c *Contexts) Require(kind ContextKind) error {
	if !c.Has(kind) {
		return &MissingContextError{Kind: kind}
	}
	return nil
}

func (c *Contexts) Remove(kind ContextKind) {
	switch kind {
	case ContextStacking:
		c.Stacking = nil
	case ContextCombo:
		c.Combo = nil
	case ContextTiming:
		c.Timing = nil
	case ContextTimeline:
		c.Timeline = nil
	}
}

func (c *Contexts) mustTiming() *TimingContext {
	if c.Timing == nil {
		panic(&MissingContextError{Kind: ContextTiming})
	}
	return c.Timing
}

// clone copies every slot. Timeline objects are copied and pointed at origin.
func (c Contexts) clone(origin HitObject) Contexts {
	out := Contexts{}
	if c.Stacking != nil {
		s := *c.Stacking
		out.Stacking = &s
	}
	if c.Combo != nil {
		cc := *c.Combo
		out.Combo = &cc
	}
	if c.Timing != nil {
		t := *c.Timing
		t.BodyHitsounds = slices.Clone(t.BodyHitsounds)
		out.Timing = &t
	}
	if c.Timeline != nil {
		tl := &TimelineContext{TimelineObjects: make([]*TimelineObject, len(c.Timeline.TimelineObjects))}
		for i, tlo := range c.Timeline.TimelineObjects {
			copied := tlo.Copy()
			copied.Origin = origin
			tl.TimelineObjects[i] = copied
		}
		out.Timeline = tl
	}
	return out
}
