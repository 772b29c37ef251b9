package dotosu

import (
	"strconv"
	"strings"

	"maptools/mathutil"
)

type HitObjectType int

const (
	TypeCircle HitObjectType = iota
	TypeSlider
	TypeSpinner
	TypeHoldNote
)

func (t HitObjectType) String() string {
	switch t {
	case TypeSlider:
		return "slider"
	case TypeSpinner:
		return "spinner"
	case TypeHoldNote:
		return "hold note"
	}
	return "circle"
}

// Type field bits of a hit object line.
const (
	bitCircle    = 1
	bitSlider    = 2
	bitNewCombo  = 4
	bitSpinner   = 8
	bitComboSkip = 0x70
	bitHoldNote  = 128
)

// HitObject is a *HitCircle, *Slider, *Spinner or *HoldNote.
type HitObject interface {
	Base() *HitObjectBase
	Type() HitObjectType
	EndTime() float64
	Duration() float64
	EndPos() mathutil.Vector2
	// Line serialises the object as a [HitObjects] line.
	Line(floatPrecision bool) string
	// Clone returns a fully independent copy, contexts included.
	Clone() HitObject
	MoveTime(delta float64)
	Move(delta mathutil.Vector2)
	Transform(m mathutil.Matrix2)
	ResetHitsounds()
}

// HitObjectBase holds the fields every hit object shares.
type HitObjectBase struct {
	Pos       mathutil.Vector2
	StartTime float64
	NewCombo  bool
	ComboSkip int
	Hitsounds HitSampleInfo
	Contexts

	// noExtras remembers a line that had no hit sample field.
	noExtras bool
}

func (b *HitObjectBase) Base() *HitObjectBase { return b }

func (b *HitObjectBase) ComboIncrement() int { return 1 }

// StackedPos is Pos moved by the stacking offset, or Pos when not stacked.
func (b *HitObjectBase) StackedPos() mathutil.Vector2 {
	if b.Stacking == nil {
		return b.Pos
	}
	return b.Pos.Add(b.Stacking.Offset())
}

func (b *HitObjectBase) typeBits(kind int) int {
	t := kind | (b.ComboSkip<<4)&bitComboSkip
	if b.NewCombo {
		t |= bitNewCombo
	}
	return t
}

func (b *HitObjectBase) sharedFields(kind int, floatPrecision bool) []string {
	return []string{
		formatRound(b.Pos.X),
		formatRound(b.Pos.Y),
		formatTime(b.StartTime, floatPrecision),
		strconv.Itoa(b.typeBits(kind)),
		strconv.Itoa(int(b.Hitsounds.Flags())),
	}
}

func (b *HitObjectBase) writeExtras() bool {
	return !b.noExtras || b.Hitsounds.hasExtras()
}

func (b *HitObjectBase) moveTime(delta float64) {
	b.StartTime += delta
	b.Stacking = nil
	b.Timing = nil
	if b.Timeline != nil {
		for _, tlo := range b.Timeline.TimelineObjects {
			tlo.Time += delta
		}
	}
}

func (b *HitObjectBase) cloneBase(origin HitObject) HitObjectBase {
	c := *b
	c.Contexts = b.Contexts.clone(origin)
	return c
}

// StackedEndPos is EndPos moved by the stacking offset.
func StackedEndPos(ho HitObject) mathutil.Vector2 {
	b := ho.Base()
	if b.Stacking == nil {
		return ho.EndPos()
	}
	return ho.EndPos().Add(b.Stacking.Offset())
}

// Compare orders by start time, putting new combos first on ties.
func Compare(a, b HitObject) int {
	ab, bb := a.Base(), b.Base()
	switch {
	case ab.StartTime < bb.StartTime:
		return -1
	case ab.StartTime > bb.StartTime:
		return 1
	case ab.NewCombo && !bb.NewCombo:
		return -1
	case !ab.NewCombo && bb.NewCombo:
		return 1
	}
	return 0
}

// HitCircle is a single tap.
type HitCircle struct {
	HitObjectBase
}

func NewHitCircle(pos mathutil.Vector2, time float64) *HitCircle {
	return &HitCircle{HitObjectBase{Pos: pos, StartTime: time}}
}

func (c *HitCircle) Type() HitObjectType          { return TypeCircle }
func (c *HitCircle) EndTime() float64             { return c.StartTime }
func (c *HitCircle) Duration() float64            { return 0 }
func (c *HitCircle) EndPos() mathutil.Vector2     { return c.Pos }
func (c *HitCircle) MoveTime(delta float64)       { c.moveTime(delta) }
func (c *HitCircle) ResetHitsounds()              { c.Hitsounds = HitSampleInfo{} }
func (c *HitCircle) Move(delta mathutil.Vector2)  { c.Pos = c.Pos.Add(delta); c.Stacking = nil }
func (c *HitCircle) Transform(m mathutil.Matrix2) { c.Pos = m.Transform(c.Pos); c.Stacking = nil }

func (c *HitCircle) Clone() HitObject {
	out := &HitCircle{}
	out.HitObjectBase = c.cloneBase(out)
	return out
}

func (c *HitCircle) Line(floatPrecision bool) string {
	fields := c.sharedFields(bitCircle, floatPrecision)
	if c.writeExtras() {
		fields = append(fields, c.Hitsounds.extras())
	}
	return strings.Join(fields, ",")
}

// Spinner spins from StartTime to EndTime.
type Spinner struct {
	HitObjectBase
	End float64
}

func NewSpinner(time, end float64) *Spinner {
	return &Spinner{HitObjectBase: HitObjectBase{Pos: mathutil.V(256, 192), StartTime: time, NewCombo: true}, End: end}
}

func (s *Spinner) Type() HitObjectType          { return TypeSpinner }
func (s *Spinner) EndTime() float64             { return s.End }
func (s *Spinner) Duration() float64            { return s.End - s.StartTime }
func (s *Spinner) EndPos() mathutil.Vector2     { return s.Pos }
func (s *Spinner) ResetHitsounds()              { s.Hitsounds = HitSampleInfo{} }
func (s *Spinner) Move(delta mathutil.Vector2)  { s.Pos = s.Pos.Add(delta); s.Stacking = nil }
func (s *Spinner) Transform(m mathutil.Matrix2) { s.Pos = m.Transform(s.Pos); s.Stacking = nil }

func (s *Spinner) MoveTime(delta float64) {
	s.moveTime(delta)
	s.End += delta
}

func (s *Spinner) Clone() HitObject {
	out := &Spinner{End: s.End}
	out.HitObjectBase = s.cloneBase(out)
	return out
}

func (s *Spinner) Line(floatPrecision bool) string {
	fields := append(s.sharedFields(bitSpinner, floatPrecision), formatTime(s.End, floatPrecision))
	if s.writeExtras() {
		fields = append(fields, s.Hitsounds.extras())
	}
	return strings.Join(fields, ",")
}

// HoldNote is a mania long note.
type HoldNote struct {
	HitObjectBase
	End float64
}

func NewHoldNote(pos mathutil.Vector2, time, end float64) *HoldNote {
	return &HoldNote{HitObjectBase: HitObjectBase{Pos: pos, StartTime: time}, End: end}
}

func (h *HoldNote) Type() HitObjectType          { return TypeHoldNote }
func (h *HoldNote) EndTime() float64             { return h.End }
func (h *HoldNote) Duration() float64            { return h.End - h.StartTime }
func (h *HoldNote) EndPos() mathutil.Vector2     { return h.Pos }
func (h *HoldNote) ResetHitsounds()              { h.Hitsounds = HitSampleInfo{} }
func (h *HoldNote) Move(delta mathutil.Vector2)  { h.Pos = h.Pos.Add(delta); h.Stacking = nil }
func (h *HoldNote) Transform(m mathutil.Matrix2) { h.Pos = m.Transform(h.Pos); h.Stacking = nil }

func (h *HoldNote) MoveTime(delta float64) {
	h.moveTime(delta)
	h.End += delta
}

func (h *HoldNote) Clone() HitObject {
	out := &HoldNote{End: h.End}
	out.HitObjectBase = h.cloneBase(out)
	return out
}

// Line writes the end time and the hit sample as one colon separated field.
func (h *HoldNote) Line(floatPrecision bool) string {
	last := formatTime(h.End, floatPrecision)
	if h.writeExtras() {
		last += ":" + h.Hitsounds.extras()
	}
	return strings.Join(append(h.sharedFields(bitHoldNote, floatPrecision), last), ",")
}

// ParseHitObject reads one [HitObjects] line.
func ParseHitObject(line string) (HitObject, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 5 {
		return nil, parseErr(line, "hit object needs at least 5 fields", nil)
	}

	var base HitObjectBase
	x, err := parseFloat(parts[0])
	if err != nil {
		return nil, parseErr(line, "invalid x", err)
	}
	y, err := parseFloat(parts[1])
	if err != nil {
		return nil, parseErr(line, "invalid y", err)
	}
	base.Pos = mathutil.V(x, y)
	if base.StartTime, err = parseFloat(parts[2]); err != nil {
		return nil, parseErr(line, "invalid time", err)
	}
	typ, err := parseInt(parts[3])
	if err != nil {
		return nil, parseErr(line, "invalid type", err)
	}
	base.NewCombo = typ&bitNewCombo != 0
	base.ComboSkip = (typ & bitComboSkip) >> 4
	hs, err := parseInt(parts[4])
	if err != nil {
		return nil, parseErr(line, "invalid hitsound", err)
	}
	base.Hitsounds.SetFlags(HitsoundFlags(hs))

	switch {
	case typ&bitCircle != 0:
		return parseCircle(line, parts, base)
	case typ&bitSlider != 0:
		return parseSlider(line, parts, base)
	case typ&bitSpinner != 0:
		return parseSpinner(line, parts, base)
	case typ&bitHoldNote != 0:
		return parseHoldNote(line, parts, base)
	}
	return nil, parseErr(line, "unrecognized hit object type", nil)
}

func parseExtrasField(line string, parts []string, i int, base *HitObjectBase) error {
	if len(parts) <= i {
		base.noExtras = true
		return nil
	}
	if err := base.Hitsounds.parseExtras(parts[i]); err != nil {
		return parseErr(line, "invalid hit sample", err)
	}
	return nil
}

func parseCircle(line string, parts []string, base HitObjectBase) (HitObject, error) {
	if len(parts) > 6 {
		return nil, parseErr(line, "too many fields for a hit circle", nil)
	}
	c := &HitCircle{HitObjectBase: base}
	if err := parseExtrasField(line, parts, 5, &c.HitObjectBase); err != nil {
		return nil, err
	}
	return c, nil
}

func parseSpinner(line string, parts []string, base HitObjectBase) (HitObject, error) {
	if len(parts) < 6 || len(parts) > 7 {
		return nil, parseErr(line, "spinner needs 6 or 7 fields", nil)
	}
	s := &Spinner{HitObjectBase: base}
	var err error
	if s.End, err = parseFloat(parts[5]); err != nil {
		return nil, parseErr(line, "invalid spinner end time", err)
	}
	if err := parseExtrasField(line, parts, 6, &s.HitObjectBase); err != nil {
		return nil, err
	}
	return s, nil
}

func parseHoldNote(line string, parts []string, base HitObjectBase) (HitObject, error) {
	if len(parts) != 6 {
		return nil, parseErr(line, "hold note needs 6 fields", nil)
	}
	h := &HoldNote{HitObjectBase: base}
	end, extras, found := strings.Cut(parts[5], ":")
	var err error
	if h.End, err = parseFloat(end); err != nil {
		return nil, parseErr(line, "invalid hold note end time", err)
	}
	if !found {
		h.noExtras = true
		return h, nil
	}
	if err := h.Hitsounds.parseExtras(extras); err != nil {
		return nil, parseErr(line, "invalid hit sample", err)
	}
	return h, nil
}
