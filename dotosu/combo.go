package dotosu

// endTimeOrStart avoids requiring timing contexts for sliders that have none yet.
func endTimeOrStart(ho HitObject) float64 {
	if s, ok := ho.(*Slider); ok && s.Timing == nil {
		return s.StartTime
	}
	return ho.EndTime()
}

// IsActualNewCombo reports whether ho starts a combo in game, which also happens
// without the new combo flag around spinners and breaks.
func IsActualNewCombo(ho, prev HitObject, breaks []*Break) bool {
	if ho.Base().NewCombo || ho.Type() == TypeSpinner || prev == nil || prev.Type() == TypeSpinner {
		return true
	}
	prevEnd := endTimeOrStart(prev)
	start := ho.Base().StartTime
	for _, br := range breaks {
		if br.EndTime > prevEnd && br.EndTime <= start {
			return true
		}
	}
	return false
}

func mod(x, m int) int {
	r := x % m
	if r < 0 {
		r += m
	}
	return r
}

// Palette returns the combo colours, or the default palette when none are defined.
func (b *Beatmap) Palette() []ComboColour {
	if len(b.ComboColours) > 0 {
		return b.ComboColours
	}
	return DefaultComboColours()
}

// CalculateHitObjectComboStuff attaches a combo context to every hit object.
func (b *Beatmap) CalculateHitObjectComboStuff() {
	colours := b.Palette()
	breaks := b.Breaks()
	colourIndex := 0
	comboIndex := 0

	var prev HitObject
	for _, ho := range b.HitObjects {
		base := ho.Base()
		newCombo := IsActualNewCombo(ho, prev, breaks)
		if newCombo {
			colourIndex = mod(colourIndex+base.ComboIncrement()+base.ComboSkip, len(colours))
			comboIndex = 1
		} else {
			comboIndex++
		}
		base.Combo = &ComboContext{
			ActualNewCombo: newCombo,
			ComboIndex:     comboIndex,
			ColourIndex:    colourIndex,
			Colour:         colours[colourIndex],
		}
		prev = ho
	}
}

// FixComboSkip sets ComboSkip on every new combo so that the colour indices stored
// in the combo contexts are reproduced with the current palette.
func (b *Beatmap) FixComboSkip() error {
	colours := b.Palette()
	colourIndex := 0
	for _, ho := range b.HitObjects {
		base := ho.Base()
		if err := base.Require(ContextCombo); err != nil {
			return err
		}
		if !base.Combo.ActualNewCombo {
			continue
		}
		next := mod(colourIndex+base.ComboIncrement(), len(colours))
		wanted := mod(base.Combo.ColourIndex, len(colours))
		diff := wanted - next
		switch {
		case diff > 0:
			base.ComboSkip = diff
		case diff < 0:
			base.ComboSkip = len(colours) + diff
		default:
			base.ComboSkip = 0
		}
		colourIndex = mod(colourIndex+base.ComboIncrement()+base.ComboSkip, len(colours))
	}
	return nil
}
