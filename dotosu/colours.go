package dotosu

import (
	"fmt"
	"strconv"
	"strings"
)

type ComboColour struct {
	R, G, B uint8
}

func (c ComboColour) String() string { return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B) }

func ParseComboColour(s string) (ComboColour, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 3 {
		return ComboColour{}, fmt.Errorf("colour %q: expected r,g,b", s)
	}
	var rgb [3]uint8
	for i := range rgb {
		n, err := strconv.ParseUint(strings.TrimSpace(parts[i]), 10, 8)
		if err != nil {
			return ComboColour{}, fmt.Errorf("colour %q: %w", s, err)
		}
		rgb[i] = uint8(n)
	}
	return ComboColour{rgb[0], rgb[1], rgb[2]}, nil
}

// DefaultComboColours is used when a beatmap defines no combo colours.
func DefaultComboColours() []ComboColour {
	return []ComboColour{
		{255, 192, 0},
		{0, 202, 0},
		{18, 124, 255},
		{242, 24, 57},
		{255, 128, 255},
		{128, 255, 255},
		{255, 128, 64},
		{192, 192, 192},
	}
}

// SpecialColour is a named colour such as SliderTrackOverride or SliderBorder.
type SpecialColour struct {
	Name   string
	Colour ComboColour
}

func decodeColours(b *Beatmap, lines []string) error {
	for _, line := range lines {
		k, v := splitKeyVal(line)
		c, err := ParseComboColour(v)
		if err != nil {
			return parseErr(line, "invalid colour", err)
		}
		if strings.HasPrefix(k, "Combo") {
			if _, err := strconv.Atoi(k[len("Combo"):]); err == nil {
				b.ComboColours = append(b.ComboColours, c)
				continue
			}
		}
		b.SpecialColours = append(b.SpecialColours, SpecialColour{Name: k, Colour: c})
	}
	return nil
}

func encodeColours(b *Beatmap) []string {
	var out []string
	for i, c := range b.ComboColours {
		out = append(out, fmt.Sprintf("Combo%d : %s", i+1, c))
	}
	for _, s := range b.SpecialColours {
		out = append(out, fmt.Sprintf("%s : %s", s.Name, s.Colour))
	}
	return out
}
