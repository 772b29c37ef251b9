package dotosu

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

const utf8BOM = "\uFEFF"

// splitLines splits text into lines without line terminators and records how the
// text was laid out.
func splitLines(text string) ([]string, fileLayout) {
	var layout fileLayout
	if strings.HasPrefix(text, utf8BOM) {
		layout.bom = true
		text = text[len(utf8BOM):]
	}
	layout.crlf = strings.Contains(text, "\r\n")
	layout.trailingNewline = strings.HasSuffix(text, "\n")
	if layout.trailingNewline {
		text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines, layout
}

func parseHeader(line string) (int, error) {
	const prefix = "osu file format v"
	if !strings.HasPrefix(line, prefix) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHeader, line)
	}
	v, err := strconv.Atoi(strings.TrimSpace(line[len(prefix):]))
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidHeader, line, err)
	}
	return v, nil
}

// Decode parses the text of a .osu file. The returned beatmap has sorted hit objects
// with timing and combo contexts attached.
func Decode(text string) (*Beatmap, error) {
	lines, layout := splitLines(text)
	if len(lines) == 0 {
		return nil, ErrInvalidHeader
	}
	version, err := parseHeader(strings.TrimSpace(lines[0]))
	if err != nil {
		return nil, err
	}

	b := &Beatmap{FormatVersion: version}
	layout.hasEditor = hasCategory(lines, "[Editor]")
	b.layout = layout

	b.General = General{decodeSection(GetCategoryLines(lines, "[General]"))}
	b.Editor = Editor{decodeSection(GetCategoryLines(lines, "[Editor]"))}
	b.Metadata = Metadata{decodeSection(GetCategoryLines(lines, "[Metadata]"))}
	b.Difficulty = Difficulty{decodeSection(GetCategoryLines(lines, "[Difficulty]"))}

	if b.Storyboard, err = DecodeStoryboard(lines); err != nil {
		return nil, err
	}

	var points []*TimingPoint
	for _, line := range GetCategoryLines(lines, "[TimingPoints]") {
		tp, err := ParseTimingPoint(line)
		if err != nil {
			return nil, err
		}
		points = append(points, tp)
	}
	b.Timing = NewTiming(b.Difficulty.SliderMultiplier(), points...)

	if err := decodeColours(b, GetCategoryLines(lines, "[Colours]")); err != nil {
		return nil, err
	}

	for _, line := range GetCategoryLines(lines, "[HitObjects]") {
		ho, err := ParseHitObject(line)
		if err != nil {
			return nil, err
		}
		b.HitObjects = append(b.HitObjects, ho)
	}

	if version < 5 {
		b.shiftLegacyTimes(EARLY_VERSION_TIMING_OFFSET)
	}

	b.SortHitObjects()
	if b.Timing.Len() > 0 {
		b.GiveObjectsTimingContext()
	}
	b.CalculateHitObjectComboStuff()
	return b, nil
}

// shiftLegacyTimes applies the audio offset old format versions were written with.
func (b *Beatmap) shiftLegacyTimes(delta float64) {
	for _, tp := range b.Timing.points {
		tp.Offset += delta
	}
	b.Timing.Touch()
	for _, ho := range b.HitObjects {
		ho.MoveTime(delta)
	}
	for _, br := range b.Storyboard.BreakPeriods {
		br.StartTime += delta
		br.EndTime += delta
	}
}

// DecodeReader decodes everything r yields.
func DecodeReader(r io.Reader) (*Beatmap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(string(data))
}

// DecodeSource reads src fully and decodes it.
func DecodeSource(src FileSource) (*Beatmap, error) {
	data, err := ReadAll(src)
	if err != nil {
		return nil, err
	}
	b, err := Decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src.Name(), err)
	}
	return b, nil
}
