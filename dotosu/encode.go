package dotosu

import (
	"io"
	"strconv"
	"strings"
)

type EncodeOptions struct {
	// FloatPrecision writes times with their fractional part instead of rounding them.
	FloatPrecision bool
}

// Encode serialises b. A beatmap decoded and encoded without changes yields the
// original text.
func Encode(b *Beatmap, opts EncodeOptions) string {
	if b.FormatVersion < 5 {
		c := b.DeepClone()
		c.shiftLegacyTimes(-EARLY_VERSION_TIMING_OFFSET)
		b = c
	}

	lines := []string{"osu file format v" + strconv.Itoa(b.FormatVersion), ""}
	section := func(header string, body []string) {
		lines = append(lines, header)
		lines = append(lines, body...)
		lines = append(lines, "")
	}

	section("[General]", b.General.lines(": "))
	if b.layout.hasEditor || b.Editor.Len() > 0 {
		section("[Editor]", b.Editor.lines(": "))
	}
	section("[Metadata]", b.Metadata.lines(":"))
	section("[Difficulty]", b.Difficulty.lines(":"))
	section("[Events]", b.Storyboard.Lines())

	timing := make([]string, 0, b.Timing.Len())
	for _, tp := range b.Timing.points {
		timing = append(timing, tp.Line(opts.FloatPrecision))
	}
	section("[TimingPoints]", timing)
	// The game leaves an extra blank line after the timing points.
	lines = append(lines, "")

	if len(b.ComboColours) > 0 || len(b.SpecialColours) > 0 {
		section("[Colours]", encodeColours(b))
	}

	lines = append(lines, "[HitObjects]")
	for _, ho := range b.HitObjects {
		lines = append(lines, ho.Line(opts.FloatPrecision))
	}

	nl := "\n"
	if b.layout.crlf {
		nl = "\r\n"
	}
	var sb strings.Builder
	if b.layout.bom {
		sb.WriteString(utf8BOM)
	}
	sb.WriteString(strings.Join(lines, nl))
	if b.layout.trailingNewline {
		sb.WriteString(nl)
	}
	return sb.String()
}

// EncodeTo writes the encoded beatmap to w.
func EncodeTo(w io.Writer, b *Beatmap, opts EncodeOptions) error {
	_, err := io.WriteString(w, Encode(b, opts))
	return err
}
