package dotosu

import (
	"math"

	"maptools/mathutil"
)

// STACK_LENIENCE is the distance in osu! pixels under which objects stack.
const STACK_LENIENCE = 3

type StackingOptions struct {
	// Rounded rounds the stack offset to whole pixels.
	Rounded bool
}

func (b *Beatmap) stackVector(rounded bool) mathutil.Vector2 {
	offset := b.Difficulty.StackOffset()
	if rounded {
		offset = math.Round(offset)
	}
	return mathutil.V(offset, offset)
}

func (b *Beatmap) stackThreshold() float64 {
	return float64(float32(b.Difficulty.ApproachTime() * b.General.StackLeniency()))
}

func (b *Beatmap) resetStacking(ho HitObject, vec mathutil.Vector2) {
	ho.Base().Stacking = &StackingContext{StackVector: vec}
}

func stacks(a, b mathutil.Vector2) bool {
	return mathutil.Distance(a, b) < STACK_LENIENCE
}

// UpdateStackingAll runs UpdateStacking over every hit object.
func (b *Beatmap) UpdateStackingAll(opts StackingOptions) {
	b.UpdateStacking(0, len(b.HitObjects)-1, opts)
}

// UpdateStacking assigns stack counts to the objects in [startIndex, endIndex].
// Format versions before 6 use the old algorithm over the whole beatmap.
func (b *Beatmap) UpdateStacking(startIndex, endIndex int, opts StackingOptions) {
	if len(b.HitObjects) == 0 {
		return
	}
	b.ensureTimingContext()
	if b.FormatVersion < 6 {
		b.updateStackingOld(opts)
		return
	}

	objects := b.HitObjects
	vec := b.stackVector(opts.Rounded)
	threshold := b.stackThreshold()

	for i, ho := range objects {
		if (i >= startIndex && i <= endIndex) || ho.Base().Stacking == nil {
			b.resetStacking(ho, vec)
		} else {
			ho.Base().Stacking.StackVector = vec
		}
	}

	// Extend the end index to include objects that stack onto the range.
	extendedEndIndex := endIndex
	if endIndex < len(objects)-1 {
		for i := endIndex; i >= startIndex; i-- {
			stackBaseIndex := i
			for n := stackBaseIndex + 1; n < len(objects); n++ {
				base := objects[stackBaseIndex]
				if base.Type() == TypeSpinner {
					break
				}
				objN := objects[n]
				if objN.Type() == TypeSpinner {
					continue
				}
				if objN.Base().StartTime-base.EndTime() > threshold {
					break
				}
				if stacks(base.Base().Pos, objN.Base().Pos) ||
					(base.Type() == TypeSlider && stacks(base.EndPos(), objN.Base().Pos)) {
					stackBaseIndex = n
					objN.Base().Stacking.StackCount = 0
				}
			}
			if stackBaseIndex > extendedEndIndex {
				extendedEndIndex = stackBaseIndex
				if extendedEndIndex == len(objects)-1 {
					break
				}
			}
		}
	}

	extendedStartIndex := startIndex
	for i := extendedEndIndex; i > startIndex; i-- {
		n := i
		objI := objects[i]
		if objI.Base().Stacking.StackCount != 0 || objI.Type() == TypeSpinner {
			continue
		}

		switch objI.Type() {
		case TypeCircle:
			for n--; n >= 0; n-- {
				objN := objects[n]
				if objN.Type() == TypeSpinner {
					continue
				}
				if objI.Base().StartTime-objN.EndTime() > threshold {
					break
				}
				if n < extendedStartIndex {
					b.resetStacking(objN, vec)
					extendedStartIndex = n
				}

				// A circle under a slider end pushes the objects between them down.
				if objN.Type() == TypeSlider && stacks(objN.EndPos(), objI.Base().Pos) {
					offset := objI.Base().Stacking.StackCount - objN.Base().Stacking.StackCount + 1
					for j := n + 1; j <= i; j++ {
						objJ := objects[j]
						if stacks(objN.EndPos(), objJ.Base().Pos) {
							objJ.Base().Stacking.StackCount -= offset
						}
					}
					break
				}
				if stacks(objN.Base().Pos, objI.Base().Pos) {
					objN.Base().Stacking.StackCount = objI.Base().Stacking.StackCount + 1
					objI = objN
				}
			}

		case TypeSlider:
			for n--; n >= startIndex; n-- {
				objN := objects[n]
				if objN.Type() == TypeSpinner {
					continue
				}
				if objI.Base().StartTime-objN.Base().StartTime > threshold {
					break
				}
				if stacks(objN.EndPos(), objI.Base().Pos) {
					objN.Base().Stacking.StackCount = objI.Base().Stacking.StackCount + 1
					objI = objN
				}
			}
		}
	}
}

// updateStackingOld is the stacking used by format versions before 6.
func (b *Beatmap) updateStackingOld(opts StackingOptions) {
	objects := b.HitObjects
	vec := b.stackVector(opts.Rounded)
	threshold := b.stackThreshold()
	for _, ho := range objects {
		b.resetStacking(ho, vec)
	}

	for i, curr := range objects {
		if curr.Base().Stacking.StackCount != 0 && curr.Type() != TypeSlider {
			continue
		}
		startTime := curr.EndTime()
		sliderStack := 0
		for j := i + 1; j < len(objects); j++ {
			objJ := objects[j]
			if objJ.Base().StartTime-threshold > startTime {
				break
			}
			if objJ.Type() == TypeSpinner {
				continue
			}
			switch {
			case stacks(objJ.Base().Pos, curr.Base().Pos):
				curr.Base().Stacking.StackCount++
				startTime = objJ.EndTime()
			case stacks(objJ.Base().Pos, curr.EndPos()):
				sliderStack++
				objJ.Base().Stacking.StackCount -= sliderStack
				startTime = objJ.EndTime()
			}
		}
	}
}
