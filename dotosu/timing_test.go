package dotosu

import (
	"math"
	"testing"

	"maptools/mathutil"
)

func testTiming() *Timing {
	return NewTiming(1.4,
		NewGreenline(1500, 0.5),
		NewRedline(0, 500, 4),
		NewRedline(2000, 250, 4),
		NewGreenline(1000, 2),
	)
}

func TestTimingQueries(t *testing.T) {
	timing := testTiming()

	offsets := []float64{0, 1000, 1500, 2000}
	for i, tp := range timing.Points() {
		if tp.Offset != offsets[i] {
			t.Fatalf("point %d at %v, want %v", i, tp.Offset, offsets[i])
		}
	}

	if got := timing.GetTimingPointAtTime(-100); got.Offset != 0 {
		t.Errorf("point before first %v", got.Offset)
	}
	if got := timing.GetTimingPointAtTime(1200); got.Offset != 1000 {
		t.Errorf("point at 1200 %v", got.Offset)
	}
	if got := timing.GetRedlineAtTime(1999); got.Offset != 0 {
		t.Errorf("redline at 1999 %v", got.Offset)
	}
	if got := timing.GetGreenlineAtTime(500); got != nil {
		t.Errorf("greenline at 500 %v", got.Offset)
	}
	if got := timing.GetNextRedline(0); got == nil || got.Offset != 2000 {
		t.Errorf("next redline %v", got)
	}

	svs := map[float64]float64{0: 1, 1000: 2, 1600: 0.5, 2500: 1}
	for time, want := range svs {
		if got := timing.GetSvAtTime(time); math.Abs(got-want) > 1e-9 {
			t.Errorf("sv at %v: %v, want %v", time, got, want)
		}
	}
	if got := timing.GetBpmAtTime(2500); got != 240 {
		t.Errorf("bpm %v", got)
	}
	if got := timing.GetBeatLength(0, 3000); got != 8 {
		t.Errorf("beats %v", got)
	}
	if got := timing.GetSliderVelocityAtTime(1000); math.Abs(got-0.56) > 1e-9 {
		t.Errorf("slider velocity %v", got)
	}
	if got := len(timing.GetTimingPointsInRange(0, 2000, false)); got != 2 {
		t.Errorf("exclusive range %d points", got)
	}
	if got := len(timing.GetTimingPointsInRange(0, 2000, true)); got != 4 {
		t.Errorf("inclusive range %d points", got)
	}
}

func TestTimingSortRedlinesFirst(t *testing.T) {
	timing := NewTiming(1.4, NewGreenline(1000, 1.5), NewRedline(1000, 400, 4))
	if !timing.Points()[0].Uninherited {
		t.Error("greenline sorted before redline at the same offset")
	}
	if got := timing.GetSvAtTime(1000); math.Abs(got-1.5) > 1e-9 {
		t.Errorf("sv %v", got)
	}
}

func TestTimingSvClamp(t *testing.T) {
	timing := NewTiming(1.4, NewRedline(0, 500, 4), NewGreenline(100, 100))
	if got := timing.GetSvAtTime(200); got != 10 {
		t.Errorf("sv %v", got)
	}
}

func TestResnap(t *testing.T) {
	timing := testTiming()
	if got := timing.Resnap(130, 4); got != 125 {
		t.Errorf("resnap 1/4: %v", got)
	}
	if got := timing.Resnap(170, 4, 3); math.Abs(got-500.0/3) > 1e-9 {
		t.Errorf("resnap 1/3: %v", got)
	}
	if got := timing.Resnap(1990, 1); got != 2000 {
		t.Errorf("resnap across redline: %v", got)
	}
}

func TestTimingPointLine(t *testing.T) {
	for _, line := range []string{
		"15,500,4,2,0,60,1,0",
		"1015,-50,4,2,1,60,0,1",
		"-20,333.333333333333,3,1,0,100,1,8",
	} {
		tp, err := ParseTimingPoint(line)
		if err != nil {
			t.Fatal(err)
		}
		if got := tp.Line(false); got != line {
			t.Errorf("want %q, got %q", line, got)
		}
	}
	tp, err := ParseTimingPoint("100,-200")
	if err != nil {
		t.Fatal(err)
	}
	if tp.Uninherited || tp.SvMultiplier() != 0.5 || tp.Volume != 100 {
		t.Errorf("short timing point %+v", tp)
	}
}

func TestSliderPath(t *testing.T) {
	linear := NewSliderPath(PathLinear, []Vector2{mathutil.V(0, 0), mathutil.V(100, 0), mathutil.V(100, 100)})
	if got := linear.Length(); got != 200 {
		t.Errorf("linear length %v", got)
	}
	if got := linear.PositionAt(150); !got.AlmostEquals(mathutil.V(100, 50), 1e-9) {
		t.Errorf("linear position %v", got)
	}

	arc := NewSliderPath(PathPerfect, []Vector2{mathutil.V(0, 0), mathutil.V(50, 50), mathutil.V(100, 0)})
	if got := arc.Length(); math.Abs(got-50*math.Pi) > 0.5 {
		t.Errorf("arc length %v", got)
	}
	if got := arc.PositionAt(arc.Length()); !got.AlmostEquals(mathutil.V(100, 0), 0.1) {
		t.Errorf("arc end %v", got)
	}

	bezier := NewSliderPath(PathBezier, []Vector2{mathutil.V(0, 0), mathutil.V(50, 100), mathutil.V(100, 0)})
	if got := bezier.PositionAt(bezier.Length()); !got.AlmostEquals(mathutil.V(100, 0), 0.1) {
		t.Errorf("bezier end %v", got)
	}
}

func TestSliderEndPos(t *testing.T) {
	s := NewSlider(mathutil.V(0, 0), 0, PathLinear, []Vector2{mathutil.V(200, 0)}, 1, 100)
	if got := s.EndPos(); !got.AlmostEquals(mathutil.V(100, 0), 1e-9) {
		t.Errorf("end pos %v", got)
	}
	s.RepeatCount = 2
	if got := s.EndPos(); got != s.Pos {
		t.Errorf("end pos with repeat %v", got)
	}

	defer func() {
		if _, ok := recover().(*MissingContextError); !ok {
			t.Error("duration without timing context did not panic with *MissingContextError")
		}
	}()
	s.Duration()
}
