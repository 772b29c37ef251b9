package dotosu

import (
	"strconv"
	"strings"
)

// Hitsound is one of the four sounds a hit can play.
type Hitsound int

const (
	HitsoundNormal Hitsound = iota
	HitsoundWhistle
	HitsoundFinish
	HitsoundClap
)

func (h Hitsound) String() string {
	switch h {
	case HitsoundWhistle:
		return "whistle"
	case HitsoundFinish:
		return "finish"
	case HitsoundClap:
		return "clap"
	}
	return "normal"
}

// HitsoundFlags is the bit field written in hit object lines.
type HitsoundFlags int

const (
	FlagNormal  HitsoundFlags = 1 << iota // 1
	FlagWhistle                           // 2
	FlagFinish                            // 4
	FlagClap                              // 8
)

// HitSampleInfo is everything that decides which samples a hit plays.
type HitSampleInfo struct {
	Normal, Whistle, Finish, Clap bool

	SampleSet   SampleSet
	AdditionSet SampleSet
	CustomIndex int
	Volume      int
	Filename    string
}

func (h HitSampleInfo) Flags() HitsoundFlags {
	var f HitsoundFlags
	if h.Normal {
		f |= FlagNormal
	}
	if h.Whistle {
		f |= FlagWhistle
	}
	if h.Finish {
		f |= FlagFinish
	}
	if h.Clap {
		f |= FlagClap
	}
	return f
}

func (h *HitSampleInfo) SetFlags(f HitsoundFlags) {
	h.Normal = f&FlagNormal != 0
	h.Whistle = f&FlagWhistle != 0
	h.Finish = f&FlagFinish != 0
	h.Clap = f&FlagClap != 0
}

func (h HitSampleInfo) hasExtras() bool {
	return h.SampleSet != SampleSetNone || h.AdditionSet != SampleSetNone ||
		h.CustomIndex != 0 || h.Volume != 0 || h.Filename != ""
}

// extras renders the "set:addition:index:volume:filename" field.
func (h HitSampleInfo) extras() string {
	return strings.Join([]string{
		strconv.Itoa(int(h.SampleSet)),
		strconv.Itoa(int(h.AdditionSet)),
		strconv.Itoa(h.CustomIndex),
		strconv.Itoa(h.Volume),
		h.Filename,
	}, ":")
}

func (h *HitSampleInfo) parseExtras(s string) error {
	parts := strings.SplitN(s, ":", 5)
	var err error
	if h.SampleSet, err = ParseSampleSet(parts[0]); err != nil {
		return err
	}
	if len(parts) > 1 {
		if h.AdditionSet, err = ParseSampleSet(parts[1]); err != nil {
			return err
		}
	}
	if len(parts) > 2 {
		if h.CustomIndex, err = intOr(parts[2], 0); err != nil {
			return err
		}
	}
	if len(parts) > 3 {
		if h.Volume, err = intOr(parts[3], 0); err != nil {
			return err
		}
	}
	if len(parts) > 4 {
		h.Filename = parts[4]
	}
	return nil
}

// parseEdgeSets reads one "set:addition" slider node pair.
func parseEdgeSets(s string) (SampleSet, SampleSet, error) {
	normal, addition, _ := strings.Cut(s, ":")
	n, err := ParseSampleSet(normal)
	if err != nil {
		return 0, 0, err
	}
	if addition == "" {
		return n, SampleSetNone, nil
	}
	a, err := ParseSampleSet(addition)
	return n, a, err
}
