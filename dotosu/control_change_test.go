package dotosu

import "testing"

func TestControlChangeAddsGreenline(t *testing.T) {
	timing := NewTiming(1.4, NewRedline(0, 500, 4))
	rev := timing.Revision()

	tp := NewGreenline(1000, 1)
	tp.Volume = 50
	cc := NewControlChange(tp)
	cc.Volume = true
	cc.AddChange(timing, false)

	if timing.Len() != 2 {
		t.Fatalf("%d points", timing.Len())
	}
	g := timing.Points()[1]
	if g.Uninherited || g.Offset != 1000 || g.Volume != 50 || g.MpB != -100 {
		t.Errorf("greenline %+v", g)
	}
	if timing.Revision() == rev {
		t.Error("revision not bumped")
	}

	// A change within the fuzzyness edits the existing point.
	soft := NewGreenline(1001, 1)
	soft.SampleSet = SampleSetSoft
	cc = NewControlChange(soft)
	cc.SampleSet = true
	cc.AddChange(timing, false)
	if timing.Len() != 2 {
		t.Fatalf("%d points after second change", timing.Len())
	}
	if g.SampleSet != SampleSetSoft || g.Volume != 50 {
		t.Errorf("greenline %+v", g)
	}
}

func TestControlChangeRedundant(t *testing.T) {
	timing := NewTiming(1.4, NewRedline(0, 500, 4))
	cc := NewControlChange(NewGreenline(1000, 1))
	cc.Volume = true
	cc.AddChange(timing, false)
	if timing.Len() != 1 {
		t.Errorf("a change with no effect added a point: %d points", timing.Len())
	}
}

func TestControlChangeRedline(t *testing.T) {
	timing := NewTiming(1.4, NewRedline(0, 500, 4))
	cc := NewControlChange(NewRedline(2000, 400, 3))
	cc.MpB, cc.Meter, cc.Uninherited = true, true, true
	cc.AddChange(timing, false)

	if timing.Len() != 2 {
		t.Fatalf("%d points", timing.Len())
	}
	r := timing.GetRedlineAtTime(2500)
	if r.Offset != 2000 || r.MpB != 400 || r.Meter != 3 {
		t.Errorf("redline %+v", r)
	}
	if got := timing.GetBpmAtTime(2500); got != 150 {
		t.Errorf("bpm %v", got)
	}
}

func TestApplyChangesAllAfter(t *testing.T) {
	timing := NewTiming(1.4, NewRedline(0, 500, 4), NewGreenline(1000, 1.5), NewGreenline(2000, 2))

	tp := NewGreenline(500, 1)
	tp.Volume = 30
	cc := NewControlChange(tp)
	cc.Volume = true
	ApplyChanges(timing, []ControlChange{cc}, true)

	for _, p := range timing.Points() {
		if p.Offset > 500 && p.Volume != 30 {
			t.Errorf("point at %v has volume %d", p.Offset, p.Volume)
		}
	}
	if got := timing.Points()[0].Volume; got != 100 {
		t.Errorf("earlier point volume %d", got)
	}
}

func TestNewControlChangeFuzzyness(t *testing.T) {
	timing := NewTiming(1.4, NewRedline(0, 500, 4), NewGreenline(1000, 1))

	near := NewGreenline(1002, 1)
	near.Volume = 40
	cc := NewControlChange(near)
	if cc.Fuzzyness != DefaultFuzzyness || cc.Uninherited {
		t.Fatalf("unexpected defaults %+v", cc)
	}
	cc.Volume = true
	cc.AddChange(timing, false)
	if timing.Len() != 2 || timing.Points()[1].Volume != 40 {
		t.Fatalf("expected the greenline 2 ms away to be edited, got %d points", timing.Len())
	}

	far := NewGreenline(1003, 1)
	far.Volume = 20
	cc = NewControlChange(far)
	cc.Volume = true
	cc.AddChange(timing, false)
	if timing.Len() != 3 {
		t.Fatalf("expected a new greenline 3 ms away, got %d points", timing.Len())
	}
	if got := timing.GetGreenlineAtTime(1003); got == nil || got.Offset != 1003 || got.Volume != 20 {
		t.Errorf("greenline %+v", got)
	}
}
