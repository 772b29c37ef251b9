package dotosu

import (
	"errors"
	"math"
	"testing"

	"maptools/mathutil"
)

func mustHitObject(t *testing.T, line string) HitObject {
	t.Helper()
	ho, err := ParseHitObject(line)
	if err != nil {
		t.Fatalf("%q: %v", line, err)
	}
	return ho
}

func mustTimingPoint(t *testing.T, line string) *TimingPoint {
	t.Helper()
	tp, err := ParseTimingPoint(line)
	if err != nil {
		t.Fatalf("%q: %v", line, err)
	}
	return tp
}

// testPattern is a slider, a circle, a spinner and a slider at 100 BPM with a
// global slider multiplier of 1. The first slider lasts half a beat and the last
// one three beats.
func testPattern(t *testing.T) *Beatmap {
	t.Helper()
	objects := []HitObject{
		mustHitObject(t, "245,44,0,6,0,L|445:44,1,200"),
		mustHitObject(t, "105,142,600,1,0,0:0:0:0:"),
		mustHitObject(t, "256,192,900,12,2,1500,1:0:0:0:"),
		mustHitObject(t, "71,55,1800,6,6,L|371:55,1,300,0|0,1:0|1:0,0:0:0:0:"),
	}
	points := []*TimingPoint{
		mustTimingPoint(t, "0,600,4,2,100,97,1,0"),
		mustTimingPoint(t, "0,-25,4,2,100,97,0,0"),
		mustTimingPoint(t, "1800,-100,4,2,100,97,0,0"),
		mustTimingPoint(t, "1950,-25,4,1,100,97,0,0"),
	}
	pattern, err := NewPattern(objects, points, 1)
	if err != nil {
		t.Fatal(err)
	}
	return pattern
}

// destination is a 200 BPM map with a circle on every beat up to 20 s.
func destination() *Beatmap {
	b := New()
	b.Timing = NewTiming(1.4, NewRedline(0, 300, 4))
	for time := 0.0; time <= 20000; time += 300 {
		b.HitObjects = append(b.HitObjects, NewHitCircle(mathutil.Vector2{X: 256, Y: 192}, time))
	}
	b.GiveObjectsTimingContext()
	return b
}

func checkKinds(t *testing.T, objects []HitObject) {
	t.Helper()
	want := []HitObjectType{TypeSlider, TypeCircle, TypeSpinner, TypeSlider}
	if len(objects) != len(want) {
		t.Fatalf("%d objects in range, want %d", len(objects), len(want))
	}
	for i, ho := range objects {
		if ho.Type() != want[i] {
			t.Errorf("object %d is a %v, want %v", i, ho.Type(), want[i])
		}
	}
}

func TestNewPattern(t *testing.T) {
	pattern := testPattern(t)
	if pattern.Timing.SliderMultiplier != 1 || pattern.Difficulty.SliderMultiplier() != 1 {
		t.Errorf("slider multiplier %v", pattern.Timing.SliderMultiplier)
	}
	if got := pattern.GetHitObjectEndTime(); got != 3600 {
		t.Errorf("end %v", got)
	}
	if got := pattern.HitObjects[0].EndTime(); got != 300 {
		t.Errorf("first slider ends at %v", got)
	}

	if _, err := NewPattern(nil, nil, 1); !errors.Is(err, ErrEmptyPattern) {
		t.Errorf("empty: %v", err)
	}
	circle := NewHitCircle(mathutil.Vector2{}, 0)
	if _, err := NewPattern([]HitObject{circle}, []*TimingPoint{NewGreenline(0, 1)}, 1); !errors.Is(err, ErrNoRedline) {
		t.Errorf("greenlines only: %v", err)
	}
}

func TestMakePattern(t *testing.T) {
	b := New()
	b.Timing = NewTiming(1.4, NewRedline(0, 300, 4), NewGreenline(500, 2), NewGreenline(3000, 0.5))
	for _, time := range []float64{0, 600, 900, 1200} {
		b.HitObjects = append(b.HitObjects, NewHitCircle(mathutil.Vector2{X: time / 10}, time))
	}

	pattern, err := MakePattern(b, 600, 900)
	if err != nil {
		t.Fatal(err)
	}
	if len(pattern.HitObjects) != 2 {
		t.Fatalf("%d objects", len(pattern.HitObjects))
	}
	if pattern.Timing.Len() != 2 {
		t.Errorf("%d timing points", pattern.Timing.Len())
	}
	if got := pattern.Timing.GetSvAtTime(600); got != 2 {
		t.Errorf("sv %v", got)
	}

	pattern.HitObjects[0].Move(mathutil.Vector2{X: 5})
	pattern.Timing.Points()[0].MpB = 400
	if b.HitObjects[1].Base().Pos.X != 60 || b.Timing.Points()[0].MpB != 300 {
		t.Error("pattern shares state with the source map")
	}

	if _, err := MakePattern(b, 1300, 2000); !errors.Is(err, ErrEmptyPattern) {
		t.Errorf("empty range: %v", err)
	}
}

func TestPlacePatternTiming(t *testing.T) {
	pattern := testPattern(t)
	dst := destination()
	placer := &PatternPlacer{
		PatternOverwriteMode: CompleteOverwrite,
		TimingOverwriteMode:  PatternTimingOnly,
		IncludeHitsounds:     true,
		IncludeKiai:          true,
		SnapToNewTiming:      true,
		BeatDivisors:         []int{4},
		FixSv:                true,
	}
	if err := placer.PlaceAtTime(pattern, dst, 10000); err != nil {
		t.Fatal(err)
	}

	placed := dst.GetHitObjectsWithRangeInRange(10000, 13600)
	checkKinds(t, placed)
	if got := placed[0].EndTime(); math.Abs(got-10300) > 1e-6 {
		t.Errorf("first slider ends at %v", got)
	}
	if got := placed[3].EndTime(); math.Abs(got-13600) > 1e-6 {
		t.Errorf("last slider ends at %v", got)
	}

	if got := dst.Timing.GetBpmAtTime(10000); got != 100 {
		t.Errorf("bpm in pattern %v", got)
	}
	// The destination redline returns on its own grid, one beat after the pattern.
	if got := dst.Timing.GetBpmAtTime(13700); got != 100 {
		t.Errorf("bpm before the grid resumes %v", got)
	}
	if r := dst.Timing.GetRedlineAtTime(15000); r.Offset != 13800 || r.BPM() != 200 {
		t.Errorf("restored redline %+v", r)
	}

	if tp := dst.Timing.GetTimingPointAtTime(11000); tp.SampleIndex != 100 || tp.Volume != 97 {
		t.Errorf("pattern hitsounds %+v", tp)
	}
	if tp := dst.Timing.GetTimingPointAtTime(13700); tp.SampleIndex != 0 || tp.Volume != 100 || tp.SampleSet != SampleSetNormal {
		t.Errorf("restored hitsounds %+v", tp)
	}
	if got := dst.Timing.GetSvAtTime(14000); got != 1 {
		t.Errorf("restored sv %v", got)
	}

	// Destination objects outside the span survive.
	if len(dst.GetHitObjectsWithRangeInRange(9900, 9900)) != 1 || len(dst.GetHitObjectsWithRangeInRange(13800, 13800)) != 1 {
		t.Error("objects outside the pattern were removed")
	}
	if len(pattern.HitObjects) != 4 || pattern.HitObjects[0].Base().StartTime != 0 {
		t.Error("placing modified the pattern")
	}
}

func TestPlacePatternWithoutHitsounds(t *testing.T) {
	dst := destination()
	placer := &PatternPlacer{PatternOverwriteMode: CompleteOverwrite, TimingOverwriteMode: PatternTimingOnly}
	if err := placer.PlaceAtTime(testPattern(t), dst, 10000); err != nil {
		t.Fatal(err)
	}
	for _, tp := range dst.Timing.Points() {
		if tp.Volume != 100 || tp.SampleIndex != 0 {
			t.Errorf("point at %v took pattern hitsounds: %+v", tp.Offset, tp)
		}
	}
}

func TestPlaceDestinationTimingScaled(t *testing.T) {
	dst := destination()
	placer := &PatternPlacer{
		PatternOverwriteMode: CompleteOverwrite,
		TimingOverwriteMode:  DestinationTimingOnly,
		IncludeHitsounds:     true,
		ScaleToNewTiming:     true,
		SnapToNewTiming:      true,
		BeatDivisors:         []int{4},
		FixSv:                true,
	}
	if err := placer.PlaceAtTime(testPattern(t), dst, 9900); err != nil {
		t.Fatal(err)
	}

	placed := dst.GetHitObjectsWithRangeInRange(9900, 11700)
	checkKinds(t, placed)

	timing := dst.Timing
	if timing.Len() == 0 || timing.GetBpmAtTime(9900) != 200 || timing.GetBpmAtTime(15000) != 200 {
		t.Errorf("destination tempo changed: %v", timing.GetBpmAtTime(9900))
	}
	for _, r := range timing.Points() {
		if r.Uninherited && r.Offset != 0 {
			t.Errorf("redline added at %v", r.Offset)
		}
	}

	const eps = 1e-6
	gaps := [][2]int{{0, 1}, {1, 2}, {2, 3}}
	for _, g := range gaps {
		if got := timing.GetBeatLength(placed[g[0]].EndTime(), placed[g[1]].Base().StartTime); math.Abs(got-0.5) > eps {
			t.Errorf("gap %d-%d is %v beats", g[0], g[1], got)
		}
	}
	last := placed[3]
	if got := timing.GetBeatLength(last.Base().StartTime, last.EndTime()); math.Abs(got-3) > eps {
		t.Errorf("last slider lasts %v beats", got)
	}

	if tp := timing.GetTimingPointAtTime(10000); tp.Volume != 97 || tp.SampleIndex != 100 {
		t.Errorf("pattern hitsounds %+v", tp)
	}
	if tp := timing.GetTimingPointAtTime(12000); tp.Volume != 100 || tp.SampleIndex != 0 {
		t.Errorf("restored hitsounds %+v", tp)
	}
	if got := timing.GetSvAtTime(12000); got != 1 {
		t.Errorf("restored sv %v", got)
	}
}

func TestPlaceOverwriteModes(t *testing.T) {
	for _, tc := range []struct {
		mode PatternOverwriteMode
		want int
	}{
		{NoOverwrite, 8},
		{MinimalOverwrite, 7},
		{CompleteOverwrite, 6},
	} {
		dst := New()
		dst.Timing = NewTiming(1.4, NewRedline(0, 300, 4))
		// 10350 falls between the first slider and the circle, 11000 inside the spinner.
		for _, time := range []float64{9000, 10350, 11000, 14000} {
			dst.HitObjects = append(dst.HitObjects, NewHitCircle(mathutil.Vector2{}, time))
		}
		placer := &PatternPlacer{PatternOverwriteMode: tc.mode, TimingOverwriteMode: DestinationTimingOnly, FixSv: true}
		if err := placer.PlaceAtTime(testPattern(t), dst, 9900); err != nil {
			t.Fatal(err)
		}
		if len(dst.HitObjects) != tc.want {
			t.Errorf("mode %d: %d objects, want %d", tc.mode, len(dst.HitObjects), tc.want)
		}
		if got := dst.HitObjects[len(dst.HitObjects)-2].EndTime(); math.Abs(got-13500) > 1e-6 {
			t.Errorf("mode %d: last slider ends at %v", tc.mode, got)
		}
	}
}

func TestPlacePaddingWidensOverwrite(t *testing.T) {
	dst := New()
	dst.Timing = NewTiming(1.4, NewRedline(0, 300, 4))
	dst.HitObjects = []HitObject{NewHitCircle(mathutil.Vector2{}, 9850)}
	placer := &PatternPlacer{PatternOverwriteMode: CompleteOverwrite, TimingOverwriteMode: DestinationTimingOnly, Padding: 100}
	if err := placer.PlaceAtTime(testPattern(t), dst, 9900); err != nil {
		t.Fatal(err)
	}
	if len(dst.HitObjects) != 4 {
		t.Errorf("%d objects", len(dst.HitObjects))
	}
}

func TestPlaceEmptyPattern(t *testing.T) {
	placer := &PatternPlacer{}
	if err := placer.PlaceAtTime(New(), destination(), 0); !errors.Is(err, ErrEmptyPattern) {
		t.Errorf("got %v", err)
	}
}
