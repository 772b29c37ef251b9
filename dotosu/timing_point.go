package dotosu

import (
	"math"
	"strconv"
	"strings"
)

const (
	effectKiai             = 1
	effectOmitFirstBarLine = 8
)

// TimingPoint is a redline (Uninherited) or a greenline.
// A greenline's MpB is negative and encodes a slider velocity multiplier of -100/MpB.
type TimingPoint struct {
	Offset           float64
	MpB              float64
	Meter            int
	SampleSet        SampleSet
	SampleIndex      int
	Volume           int
	Uninherited      bool
	Kiai             bool
	OmitFirstBarLine bool
}

func NewRedline(offset, mpb float64, meter int) *TimingPoint {
	return &TimingPoint{Offset: offset, MpB: mpb, Meter: meter, SampleSet: SampleSetNormal, Volume: 100, Uninherited: true}
}

func NewGreenline(offset, svMultiplier float64) *TimingPoint {
	return &TimingPoint{Offset: offset, MpB: -100 / svMultiplier, Meter: 4, SampleSet: SampleSetNormal, Volume: 100}
}

func (tp *TimingPoint) Copy() *TimingPoint {
	c := *tp
	return &c
}

// SvMultiplier is the slider velocity multiplier of a greenline, 1 for redlines.
func (tp *TimingPoint) SvMultiplier() float64 {
	if tp.Uninherited || tp.MpB >= 0 || math.IsNaN(tp.MpB) {
		return 1
	}
	return -100 / tp.MpB
}

func (tp *TimingPoint) BPM() float64 { return 60000 / tp.MpB }

// SameEffect reports whether adding tp right after other would change nothing audible
// or visible.
func (tp *TimingPoint) SameEffect(other *TimingPoint) bool {
	same := tp.SampleSet == other.SampleSet &&
		tp.SampleIndex == other.SampleIndex &&
		tp.Volume == other.Volume &&
		tp.Kiai == other.Kiai
	if !same {
		return false
	}
	switch {
	case tp.Uninherited:
		return false
	case other.Uninherited:
		return tp.MpB == -100
	default:
		return tp.MpB == other.MpB
	}
}

func (tp *TimingPoint) effects() int {
	e := 0
	if tp.Kiai {
		e |= effectKiai
	}
	if tp.OmitFirstBarLine {
		e |= effectOmitFirstBarLine
	}
	return e
}

// Line serialises tp as a [TimingPoints] line.
func (tp *TimingPoint) Line(floatPrecision bool) string {
	uninherited := "0"
	if tp.Uninherited {
		uninherited = "1"
	}
	return strings.Join([]string{
		formatTime(tp.Offset, floatPrecision),
		formatFloat(tp.MpB),
		strconv.Itoa(tp.Meter),
		strconv.Itoa(int(tp.SampleSet)),
		strconv.Itoa(tp.SampleIndex),
		strconv.Itoa(tp.Volume),
		uninherited,
		strconv.Itoa(tp.effects()),
	}, ",")
}

// ParseTimingPoint reads a [TimingPoints] line. Fields missing in old formats take their defaults.
func ParseTimingPoint(line string) (*TimingPoint, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 2 {
		return nil, parseErr(line, "timing point needs at least 2 fields", nil)
	}
	tp := &TimingPoint{Meter: 4, SampleSet: SampleSetNormal, Volume: 100, Uninherited: true}

	var err error
	if tp.Offset, err = parseFloat(parts[0]); err != nil {
		return nil, parseErr(line, "invalid offset", err)
	}
	if tp.MpB, err = parseFloat(parts[1]); err != nil {
		return nil, parseErr(line, "invalid beat length", err)
	}
	if len(parts) > 2 {
		if tp.Meter, err = intOr(parts[2], 4); err != nil {
			return nil, parseErr(line, "invalid meter", err)
		}
	}
	if len(parts) > 3 {
		if tp.SampleSet, err = ParseSampleSet(parts[3]); err != nil {
			return nil, parseErr(line, "invalid sample set", err)
		}
	}
	if len(parts) > 4 {
		if tp.SampleIndex, err = intOr(parts[4], 0); err != nil {
			return nil, parseErr(line, "invalid sample index", err)
		}
	}
	if len(parts) > 5 {
		v, err := parseFloat(parts[5])
		if err != nil {
			return nil, parseErr(line, "invalid volume", err)
		}
		tp.Volume = int(math.Round(v))
	}
	if len(parts) > 6 {
		tp.Uninherited = strings.TrimSpace(parts[6]) == "1"
	} else {
		tp.Uninherited = tp.MpB >= 0
	}
	if len(parts) > 7 {
		e, err := intOr(parts[7], 0)
		if err != nil {
			return nil, parseErr(line, "invalid effects", err)
		}
		tp.Kiai = e&effectKiai != 0
		tp.OmitFirstBarLine = e&effectOmitFirstBarLine != 0
	}
	return tp, nil
}
