package dotosu

import (
	"math"
	"strconv"
	"strings"
)

type GameMode int

const (
	ModeStandard GameMode = iota
	ModeTaiko
	ModeCatch
	ModeMania
)

type SampleSet int

const (
	SampleSetNone SampleSet = iota
	SampleSetNormal
	SampleSetSoft
	SampleSetDrum
)

func (s SampleSet) String() string {
	switch s {
	case SampleSetNormal:
		return "Normal"
	case SampleSetSoft:
		return "Soft"
	case SampleSetDrum:
		return "Drum"
	}
	return "None"
}

// ParseSampleSet accepts the numeric form used in hit objects and timing points as
// well as the names used in [General].
func ParseSampleSet(s string) (SampleSet, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "all":
		return SampleSetNone, nil
	case "normal":
		return SampleSetNormal, nil
	case "soft":
		return SampleSetSoft, nil
	case "drum":
		return SampleSetDrum, nil
	}
	n, err := parseInt(s)
	if err != nil {
		return SampleSetNone, err
	}
	if n < 0 || n > int(SampleSetDrum) {
		return SampleSetNone, strconv.ErrRange
	}
	return SampleSet(n), nil
}

// General is the [General] section.
type General struct{ Section }

func (g *General) AudioFilename() string     { return g.Value("AudioFilename", "") }
func (g *General) AudioLeadIn() int          { return g.Int("AudioLeadIn", 0) }
func (g *General) PreviewTime() int          { return g.Int("PreviewTime", -1) }
func (g *General) StackLeniency() float64    { return g.Float("StackLeniency", 0.7) }
func (g *General) Mode() GameMode            { return GameMode(g.Int("Mode", 0)) }
func (g *General) SetAudioFilename(s string) { g.Set("AudioFilename", s) }
func (g *General) SetMode(m GameMode)        { g.SetInt("Mode", int(m)) }

func (g *General) SampleSet() SampleSet {
	s, err := ParseSampleSet(g.Value("SampleSet", "Normal"))
	if err != nil {
		return SampleSetNormal
	}
	return s
}

// Editor is the [Editor] section.
type Editor struct{ Section }

// Bookmarks are stored as a comma separated list of times.
func (e *Editor) Bookmarks() []float64 {
	v, ok := e.Get("Bookmarks")
	if !ok || v == "" {
		return nil
	}
	var out []float64
	for _, p := range strings.Split(v, ",") {
		if f, err := parseFloat(p); err == nil {
			out = append(out, f)
		}
	}
	return out
}

func (e *Editor) SetBookmarks(times []float64) {
	parts := make([]string, len(times))
	for i, t := range times {
		parts[i] = formatRound(t)
	}
	e.Set("Bookmarks", strings.Join(parts, ","))
}

func (e *Editor) DistanceSpacing() float64 { return e.Float("DistanceSpacing", 1) }
func (e *Editor) BeatDivisor() int         { return e.Int("BeatDivisor", 4) }
func (e *Editor) GridSize() int            { return e.Int("GridSize", 4) }
func (e *Editor) TimelineZoom() float64    { return e.Float("TimelineZoom", 1) }

// Metadata is the [Metadata] section.
type Metadata struct{ Section }

func (m *Metadata) Title() string     { return m.Value("Title", "") }
func (m *Metadata) Artist() string    { return m.Value("Artist", "") }
func (m *Metadata) Creator() string   { return m.Value("Creator", "") }
func (m *Metadata) Version() string   { return m.Value("Version", "") }
func (m *Metadata) Tags() string      { return m.Value("Tags", "") }
func (m *Metadata) BeatmapID() int    { return m.Int("BeatmapID", 0) }
func (m *Metadata) BeatmapSetID() int { return m.Int("BeatmapSetID", -1) }

// Difficulty is the [Difficulty] section.
type Difficulty struct{ Section }

func (d *Difficulty) HPDrainRate() float64       { return d.Float("HPDrainRate", 5) }
func (d *Difficulty) CircleSize() float64        { return d.Float("CircleSize", 5) }
func (d *Difficulty) OverallDifficulty() float64 { return d.Float("OverallDifficulty", 5) }
func (d *Difficulty) SliderMultiplier() float64  { return d.Float("SliderMultiplier", 1.4) }
func (d *Difficulty) SliderTickRate() float64    { return d.Float("SliderTickRate", 1) }

// ApproachRate falls back to OverallDifficulty for maps older than the AR setting.
func (d *Difficulty) ApproachRate() float64 {
	return d.Float("ApproachRate", d.OverallDifficulty())
}

func (d *Difficulty) SetCircleSize(v float64)       { d.SetFloat("CircleSize", v) }
func (d *Difficulty) SetApproachRate(v float64)     { d.SetFloat("ApproachRate", v) }
func (d *Difficulty) SetSliderMultiplier(v float64) { d.SetFloat("SliderMultiplier", v) }

// DifficultyRange maps a 0-10 difficulty value onto min, mid and max at 0, 5 and 10.
func DifficultyRange(difficulty, min, mid, max float64) float64 {
	if difficulty > 5 {
		return mid + (max-mid)*(difficulty-5)/5
	}
	if difficulty < 5 {
		return mid - (mid-min)*(5-difficulty)/5
	}
	return mid
}

// ApproachTime is the preempt time in milliseconds.
func (d *Difficulty) ApproachTime() float64 {
	return DifficultyRange(d.ApproachRate(), 1800, 1200, 450)
}

func (d *Difficulty) HitObjectRadius() float64 { return (109 - 9*d.CircleSize()) / 2 }

func (d *Difficulty) StackOffset() float64 { return d.HitObjectRadius() / 10 }

func (d *Difficulty) HitWindow300() float64 { return 80 - 6*d.OverallDifficulty() }
func (d *Difficulty) HitWindow100() float64 { return 140 - 8*d.OverallDifficulty() }
func (d *Difficulty) HitWindow50() float64  { return 200 - 10*d.OverallDifficulty() }

// ApproachRateFromTime inverts ApproachTime.
func ApproachRateFromTime(preempt float64) float64 {
	if preempt > 1200 {
		return 5 - (preempt-1200)/120
	}
	return 5 + (1200-preempt)/150
}

// maxManiaKeyCount bounds CircleSize in mania.
const maxManiaKeyCount = 18

// ManiaKeyCount is the column count of a mania beatmap.
func (d *Difficulty) ManiaKeyCount() int {
	return int(math.Round(math.Max(1, math.Min(d.CircleSize(), maxManiaKeyCount))))
}
