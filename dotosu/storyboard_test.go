package dotosu

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestStoryboardTree(t *testing.T) {
	b := decodeFixture(t, "complicated.osu")
	sb := b.Storyboard

	if bg := sb.Background(); bg == nil || bg.Filename != "bg.jpg" {
		t.Fatalf("background %+v", bg)
	}
	if len(sb.BreakPeriods) != 1 || sb.BreakPeriods[0].EndTime != 6000 {
		t.Errorf("breaks %+v", sb.BreakPeriods)
	}
	if len(sb.BackgroundLayer) != 1 {
		t.Fatalf("%d background layer events", len(sb.BackgroundLayer))
	}
	sprite, ok := sb.BackgroundLayer[0].(*Sprite)
	if !ok {
		t.Fatalf("background layer holds %T", sb.BackgroundLayer[0])
	}
	if sprite.FilePath != "sb/star.png" || sprite.Origin != OriginCentre {
		t.Errorf("sprite %+v", sprite)
	}
	children := sprite.Children()
	if len(children) != 2 {
		t.Fatalf("%d sprite children", len(children))
	}
	loop, ok := children[1].(*Loop)
	if !ok || loop.LoopCount != 4 || len(loop.Children()) != 1 {
		t.Fatalf("loop %+v", children[1])
	}
	if move := loop.Children()[0].(*Command); move.Code != EventMove || !slices.Equal(move.Params, []float64{320, 240, 330, 250}) {
		t.Errorf("move %+v", move)
	}

	anim, ok := sb.ForegroundLayer[0].(*Animation)
	if !ok || anim.FrameCount != 4 || anim.LoopType != LoopOnce {
		t.Fatalf("animation %+v", sb.ForegroundLayer[0])
	}
	if scale := anim.Children()[0].(*Command); !scale.ShortEnd || scale.EndTime != 100 {
		t.Errorf("scale %+v", scale)
	}

	if len(sb.SoundSamples) != 1 || sb.SoundSamples[0].FilePath != "clap.wav" || sb.SoundSamples[0].Volume != 70 {
		t.Errorf("samples %+v", sb.SoundSamples)
	}
}

func TestStoryboardText(t *testing.T) {
	osb := strings.Join([]string{
		"[Events]",
		"//Background and Video events",
		"//Storyboard Layer 0 (Background)",
		"Sprite,Background,TopLeft,\"a.png\",0,0",
		"_T,HitSoundClap,0,1000",
		"__F,0,0,100,1,0",
		"//Storyboard Layer 1 (Fail)",
		"//Storyboard Layer 2 (Pass)",
		"//Storyboard Layer 3 (Foreground)",
		"//Storyboard Layer 4 (Overlay)",
		"//Storyboard Sound Samples",
		"Sample,100,3,\"hit.wav\"",
	}, "\r\n")
	sb, err := DecodeStoryboardText(osb)
	if err != nil {
		t.Fatal(err)
	}
	trigger, ok := sb.BackgroundLayer[0].(*Sprite).Children()[0].(*Trigger)
	if !ok || trigger.TriggerName != "HitSoundClap" || len(trigger.Children()) != 1 {
		t.Fatalf("trigger %+v", sb.BackgroundLayer[0])
	}
	if s := sb.SoundSamples[0]; s.Layer != 3 || s.Volume != 100 {
		t.Errorf("sample %+v", s)
	}
	if got := sb.SoundSamples[0].Line(); got != "Sample,100,3,\"hit.wav\"" {
		t.Errorf("sample line %q", got)
	}
}

func TestStoryboardErrors(t *testing.T) {
	var pe *ParseError
	if _, err := ParseEventTree([]string{"Sprite,Background,Centre,\"a.png\",0,0", "  F,0,0,1000,0,1"}); !errors.As(err, &pe) {
		t.Errorf("over-indented child: %v", err)
	}
	if _, err := ParseEventTree([]string{" F,0,0,1000,0,1"}); !errors.As(err, &pe) {
		t.Errorf("orphan child: %v", err)
	}
	if _, err := ParseEvent("Bogus,1,2,3"); !errors.As(err, &pe) {
		t.Errorf("unknown event: %v", err)
	}
	if _, err := ParseEvent("Sprite,Nowhere,Centre,\"a.png\",0,0"); err == nil {
		t.Error("invalid layer accepted")
	}
}

func TestStoryboardClone(t *testing.T) {
	b := decodeFixture(t, "complicated.osu")
	c := b.Storyboard.Clone()
	c.BackgroundLayer[0].(*Sprite).Children()[0].(*Command).StartTime = 99
	c.SoundSamples[0].Volume = 1

	if got := b.Storyboard.BackgroundLayer[0].(*Sprite).Children()[0].(*Command).StartTime; got != 0 {
		t.Errorf("command shared with clone: %v", got)
	}
	if b.Storyboard.SoundSamples[0].Volume != 70 {
		t.Error("sample shared with clone")
	}
}

func roundTripText(t *testing.T, text string) *Beatmap {
	t.Helper()
	b, err := Decode(text)
	if err != nil {
		t.Fatal(err)
	}
	if got := Encode(b, EncodeOptions{}); got != text {
		line, want, have := firstDiff(text, got)
		t.Fatalf("line %d: want %q, got %q", line, want, have)
	}
	return b
}

func TestStoryboardKeepsUnknownSections(t *testing.T) {
	text := strings.Replace(readFixture(t, "complicated.osu"),
		"Sample,1500,0,\"clap.wav\",70\r\n",
		"Sample,1500,0,\"clap.wav\",70\r\n//Background Colour Transformations\r\n3,100,163,162,255\r\n", 1)
	b := roundTripText(t, text)

	blocks := b.Storyboard.UnhandledEvents
	if len(blocks) != 1 || blocks[0].Header != "//Background Colour Transformations" {
		t.Fatalf("unhandled blocks %+v", blocks)
	}
	if !slices.Equal(blocks[0].Lines, []string{"3,100,163,162,255"}) {
		t.Errorf("block lines %q", blocks[0].Lines)
	}
	if len(b.Storyboard.SoundSamples) != 1 {
		t.Errorf("expected 1 sound sample, got %d", len(b.Storyboard.SoundSamples))
	}

	c := b.DeepClone()
	c.Storyboard.UnhandledEvents[0].Lines[0] = "changed"
	if blocks[0].Lines[0] != "3,100,163,162,255" {
		t.Error("unhandled block shared with clone")
	}
}

func TestStoryboardKeepsComments(t *testing.T) {
	text := strings.Replace(readFixture(t, "complicated.osu"),
		"Sprite,Background,Centre,\"sb/star.png\",320,240\r\n F,0,0,1000,0,1\r\n",
		"// intro star\r\nSprite,Background,Centre,\"sb/star.png\",320,240\r\n F,0,0,1000,0,1\r\n//fade done\r\n", 1)
	b := roundTripText(t, text)

	layer := b.Storyboard.BackgroundLayer
	if len(layer) != 2 {
		t.Fatalf("expected a comment and a sprite, got %d events", len(layer))
	}
	if c, ok := layer[0].(*Comment); !ok || c.Text != "// intro star" {
		t.Errorf("first event %#v", layer[0])
	}
	sprite, ok := layer[1].(*Sprite)
	if !ok {
		t.Fatalf("second event %T", layer[1])
	}
	children := sprite.Children()
	if len(children) != 3 {
		t.Fatalf("expected fade, comment and loop, got %d children", len(children))
	}
	if _, ok := children[1].(*Comment); !ok {
		t.Errorf("comment not kept in place: %T", children[1])
	}
	if loop, ok := children[2].(*Loop); !ok || len(loop.Children()) != 1 {
		t.Errorf("loop lost its command: %#v", children[2])
	}
}

func TestStoryboardUnderscoreIndentRoundTrip(t *testing.T) {
	body := []string{
		"3,100,0,0,0",
		"//Storyboard Layer 0 (Background)",
		"Sprite,Background,TopLeft,\"a.png\",0,0",
		"_L,0,2",
		"__F,0,0,100,1,0",
		"_ M,0,0,100,0,0,1,1",
		"//Storyboard Sound Samples",
		"Sample,100,3,\"hit.wav\"",
	}
	osb := "[Events]\r\n" + strings.Join(body, "\r\n")

	sb, err := DecodeStoryboardText(osb)
	if err != nil {
		t.Fatal(err)
	}
	if got := sb.Lines(); !slices.Equal(got, body) {
		t.Errorf("expected %q, got %q", body, got)
	}
	if len(sb.UnhandledEvents) != 1 || sb.UnhandledEvents[0].Header != "" {
		t.Errorf("headerless lines %+v", sb.UnhandledEvents)
	}

	c := sb.Clone()
	if got := c.Lines(); !slices.Equal(got, body) {
		t.Errorf("clone renders %q", got)
	}
}

func TestStoryboardLinesCanonical(t *testing.T) {
	sb := &Storyboard{}
	sb.SoundSamples = append(sb.SoundSamples, NewStoryboardSoundSample(10, 0, "a.wav", 50))
	sprite := &Sprite{Token: "Sprite", Layer: LayerOverlay, Origin: OriginCentre, FilePath: "x.png"}
	sprite.AddChild(&Command{Code: EventFade, StartTime: 0, EndTime: 10, Params: []float64{1}})
	sb.OverlayLayer = append(sb.OverlayLayer, sprite)

	want := []string{
		headerBackground, headerBreaks, headerLayer0, headerLayer1, headerLayer2, headerLayer3, headerLayer4,
		"Sprite,Overlay,Centre,x.png,0,0",
		" F,0,0,10,1",
		headerSamples,
		"Sample,10,0,\"a.wav\",50",
	}
	if got := sb.Lines(); !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}
