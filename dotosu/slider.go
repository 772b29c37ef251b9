package dotosu

import (
	"slices"
	"strconv"
	"strings"

	"maptools/mathutil"
)

// Slider follows a curve from Pos, travelling PixelLength osu! pixels per span.
type Slider struct {
	HitObjectBase
	CurveType PathType
	// CurvePoints exclude the head, which is Pos.
	CurvePoints []Vector2
	// RepeatCount is the number of spans, 1 for a slider without repeats.
	RepeatCount int
	PixelLength float64
	// Per node, from head to tail.
	EdgeHitsounds    []HitsoundFlags
	EdgeSampleSets   []SampleSet
	EdgeAdditionSets []SampleSet

	noEdges bool
	cache   *sliderPathCache
}

type sliderPathCache struct {
	typ    PathType
	points []Vector2
	path   *SliderPath
}

func NewSlider(pos Vector2, time float64, typ PathType, points []Vector2, repeats int, length float64) *Slider {
	return &Slider{
		HitObjectBase: HitObjectBase{Pos: pos, StartTime: time},
		CurveType:     typ,
		CurvePoints:   points,
		RepeatCount:   repeats,
		PixelLength:   length,
	}
}

func (s *Slider) Type() HitObjectType { return TypeSlider }

// ControlPoints returns the head followed by CurvePoints.
func (s *Slider) ControlPoints() []Vector2 {
	return append([]Vector2{s.Pos}, s.CurvePoints...)
}

// Path returns the approximated curve, cached until the control points change.
func (s *Slider) Path() *SliderPath {
	cps := s.ControlPoints()
	if c := s.cache; c != nil && c.typ == s.CurveType && slices.Equal(c.points, cps) {
		return c.path
	}
	p := NewSliderPath(s.CurveType, cps)
	s.cache = &sliderPathCache{typ: s.CurveType, points: cps, path: p}
	return p
}

// CurveEndPos is where the first span ends.
func (s *Slider) CurveEndPos() Vector2 { return s.Path().PositionAt(s.PixelLength) }

// EndPos is the tail position: the head after an even number of spans.
func (s *Slider) EndPos() Vector2 {
	if s.RepeatCount%2 == 0 {
		return s.Pos
	}
	return s.CurveEndPos()
}

// SpanDuration is the time one span takes. It panics without a timing context.
func (s *Slider) SpanDuration() float64 {
	tc := s.mustTiming()
	if tc.UninheritedTimingPoint == nil {
		return 0
	}
	return s.PixelLength / (100 * tc.GlobalSliderMultiplier * tc.SliderVelocity) * tc.UninheritedTimingPoint.MpB
}

func (s *Slider) Duration() float64 { return s.SpanDuration() * float64(s.RepeatCount) }

func (s *Slider) EndTime() float64 { return s.StartTime + s.Duration() }

func (s *Slider) MoveTime(delta float64) { s.moveTime(delta) }

func (s *Slider) Move(delta Vector2) {
	s.Pos = s.Pos.Add(delta)
	for i := range s.CurvePoints {
		s.CurvePoints[i] = s.CurvePoints[i].Add(delta)
	}
	s.Stacking = nil
}

func (s *Slider) Transform(m mathutil.Matrix2) {
	s.Pos = m.Transform(s.Pos)
	for i := range s.CurvePoints {
		s.CurvePoints[i] = m.Transform(s.CurvePoints[i])
	}
	s.Stacking = nil
}

func (s *Slider) ResetHitsounds() {
	s.Hitsounds = HitSampleInfo{}
	for i := range s.EdgeHitsounds {
		s.EdgeHitsounds[i] = 0
	}
	for i := range s.EdgeSampleSets {
		s.EdgeSampleSets[i] = SampleSetNone
	}
	for i := range s.EdgeAdditionSets {
		s.EdgeAdditionSets[i] = SampleSetNone
	}
}

func (s *Slider) Clone() HitObject {
	out := &Slider{
		CurveType:        s.CurveType,
		CurvePoints:      slices.Clone(s.CurvePoints),
		RepeatCount:      s.RepeatCount,
		PixelLength:      s.PixelLength,
		EdgeHitsounds:    slices.Clone(s.EdgeHitsounds),
		EdgeSampleSets:   slices.Clone(s.EdgeSampleSets),
		EdgeAdditionSets: slices.Clone(s.EdgeAdditionSets),
		noEdges:          s.noEdges,
	}
	out.HitObjectBase = s.cloneBase(out)
	return out
}

// NodeHitsounds returns the sample info a node plays; node 0 is the head.
func (s *Slider) NodeHitsounds(node int) HitSampleInfo {
	h := HitSampleInfo{
		CustomIndex: s.Hitsounds.CustomIndex,
		Volume:      s.Hitsounds.Volume,
		Filename:    s.Hitsounds.Filename,
		SampleSet:   s.Hitsounds.SampleSet,
		AdditionSet: s.Hitsounds.AdditionSet,
	}
	if node < len(s.EdgeHitsounds) {
		h.SetFlags(s.EdgeHitsounds[node])
	}
	if node < len(s.EdgeSampleSets) && s.EdgeSampleSets[node] != SampleSetNone {
		h.SampleSet = s.EdgeSampleSets[node]
	}
	if node < len(s.EdgeAdditionSets) && s.EdgeAdditionSets[node] != SampleSetNone {
		h.AdditionSet = s.EdgeAdditionSets[node]
	}
	return h
}

// SetNodeHitsounds stores h on a node, growing the edge slices as needed.
func (s *Slider) SetNodeHitsounds(node int, h HitSampleInfo) {
	for len(s.EdgeHitsounds) <= node {
		s.EdgeHitsounds = append(s.EdgeHitsounds, 0)
	}
	for len(s.EdgeSampleSets) <= node {
		s.EdgeSampleSets = append(s.EdgeSampleSets, SampleSetNone)
	}
	for len(s.EdgeAdditionSets) <= node {
		s.EdgeAdditionSets = append(s.EdgeAdditionSets, SampleSetNone)
	}
	s.EdgeHitsounds[node] = h.Flags()
	s.EdgeSampleSets[node] = h.SampleSet
	s.EdgeAdditionSets[node] = h.AdditionSet
}

func (s *Slider) edgesNonDefault() bool {
	for _, h := range s.EdgeHitsounds {
		if h != 0 {
			return true
		}
	}
	for i := range s.EdgeSampleSets {
		if s.EdgeSampleSets[i] != SampleSetNone {
			return true
		}
	}
	for i := range s.EdgeAdditionSets {
		if s.EdgeAdditionSets[i] != SampleSetNone {
			return true
		}
	}
	return false
}

func (s *Slider) Line(floatPrecision bool) string {
	var curve strings.Builder
	curve.WriteByte(byte(s.CurveType))
	for _, p := range s.CurvePoints {
		curve.WriteString("|" + formatRound(p.X) + ":" + formatRound(p.Y))
	}

	fields := append(s.sharedFields(bitSlider, floatPrecision),
		curve.String(),
		strconv.Itoa(s.RepeatCount),
		formatFloat(s.PixelLength),
	)

	writeExtras := s.writeExtras()
	if writeExtras || !s.noEdges || s.edgesNonDefault() {
		nodes := max(len(s.EdgeHitsounds), len(s.EdgeSampleSets), len(s.EdgeAdditionSets))
		if s.noEdges || nodes == 0 {
			nodes = max(nodes, s.RepeatCount+1)
		}
		hs := make([]string, nodes)
		sets := make([]string, nodes)
		for i := 0; i < nodes; i++ {
			var h HitsoundFlags
			if i < len(s.EdgeHitsounds) {
				h = s.EdgeHitsounds[i]
			}
			normal, addition := SampleSetNone, SampleSetNone
			if i < len(s.EdgeSampleSets) {
				normal = s.EdgeSampleSets[i]
			}
			if i < len(s.EdgeAdditionSets) {
				addition = s.EdgeAdditionSets[i]
			}
			hs[i] = strconv.Itoa(int(h))
			sets[i] = strconv.Itoa(int(normal)) + ":" + strconv.Itoa(int(addition))
		}
		fields = append(fields, strings.Join(hs, "|"), strings.Join(sets, "|"))
	}
	if writeExtras {
		fields = append(fields, s.Hitsounds.extras())
	}
	return strings.Join(fields, ",")
}

func parseSlider(line string, parts []string, base HitObjectBase) (HitObject, error) {
	if len(parts) < 8 || len(parts) > 11 {
		return nil, parseErr(line, "slider needs 8 to 11 fields", nil)
	}
	s := &Slider{HitObjectBase: base}

	curve := strings.Split(parts[5], "|")
	if len(curve[0]) != 1 {
		return nil, parseErr(line, "invalid curve type", nil)
	}
	switch t := PathType(curve[0][0]); t {
	case PathBezier, PathLinear, PathCatmull, PathPerfect:
		s.CurveType = t
	default:
		return nil, parseErr(line, "invalid curve type", nil)
	}
	for _, p := range curve[1:] {
		xs, ys, ok := strings.Cut(p, ":")
		if !ok {
			return nil, parseErr(line, "invalid curve point", nil)
		}
		x, err := parseFloat(xs)
		if err != nil {
			return nil, parseErr(line, "invalid curve point", err)
		}
		y, err := parseFloat(ys)
		if err != nil {
			return nil, parseErr(line, "invalid curve point", err)
		}
		s.CurvePoints = append(s.CurvePoints, mathutil.V(x, y))
	}

	var err error
	if s.RepeatCount, err = parseInt(parts[6]); err != nil {
		return nil, parseErr(line, "invalid repeat count", err)
	}
	if s.PixelLength, err = parseFloat(parts[7]); err != nil {
		return nil, parseErr(line, "invalid pixel length", err)
	}

	if len(parts) < 10 {
		if len(parts) == 9 {
			return nil, parseErr(line, "edge hitsounds without edge sample sets", nil)
		}
		s.noEdges = true
		s.noExtras = true
		return s, nil
	}
	for _, h := range strings.Split(parts[8], "|") {
		n, err := parseInt(h)
		if err != nil {
			return nil, parseErr(line, "invalid edge hitsound", err)
		}
		s.EdgeHitsounds = append(s.EdgeHitsounds, HitsoundFlags(n))
	}
	for _, p := range strings.Split(parts[9], "|") {
		normal, addition, err := parseEdgeSets(p)
		if err != nil {
			return nil, parseErr(line, "invalid edge sample set", err)
		}
		s.EdgeSampleSets = append(s.EdgeSampleSets, normal)
		s.EdgeAdditionSets = append(s.EdgeAdditionSets, addition)
	}
	if err := parseExtrasField(line, parts, 10, &s.HitObjectBase); err != nil {
		return nil, err
	}
	return s, nil
}
