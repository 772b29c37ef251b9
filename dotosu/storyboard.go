package dotosu

import (
	"math"
	"slices"
	"strings"
)

const (
	headerBackground = "//Background and Video events"
	headerBreaks     = "//Break Periods"
	headerLayer0     = "//Storyboard Layer 0 (Background)"
	headerLayer1     = "//Storyboard Layer 1 (Fail)"
	headerLayer2     = "//Storyboard Layer 2 (Pass)"
	headerLayer3     = "//Storyboard Layer 3 (Foreground)"
	headerLayer4     = "//Storyboard Layer 4 (Overlay)"
	headerSamples    = "//Storyboard Sound Samples"
)

// Storyboard is the content of the [Events] section of a beatmap or .osb file.
type Storyboard struct {
	BackgroundAndVideoEvents []Event
	BreakPeriods             []*Break
	BackgroundLayer          []Event
	FailLayer                []Event
	PassLayer                []Event
	ForegroundLayer          []Event
	OverlayLayer             []Event
	SoundSamples             []*StoryboardSoundSample
	// UnhandledEvents are blocks under headers without a typed field, such as
	// "//Background Colour Transformations". They are written back where they were read.
	UnhandledEvents []*EventBlock

	// headers lists section headers in the order they were read. Unhandled blocks
	// appear by their own header. Nil means the canonical order.
	headers []string
}

// EventBlock is a run of [Events] lines kept verbatim. An empty Header marks lines
// that came before any header.
type EventBlock struct {
	Header string
	Lines  []string
}

func (sb *Storyboard) layers() []*[]Event {
	return []*[]Event{&sb.BackgroundLayer, &sb.FailLayer, &sb.PassLayer, &sb.ForegroundLayer, &sb.OverlayLayer}
}

var layerHeaders = []string{headerLayer0, headerLayer1, headerLayer2, headerLayer3, headerLayer4}

var canonicalHeaders = append(append([]string{headerBackground, headerBreaks}, layerHeaders...), headerSamples)

// tree returns the event list an indented section decodes into, or nil when header
// does not name one.
func (sb *Storyboard) tree(header string) *[]Event {
	if header == headerBackground {
		return &sb.BackgroundAndVideoEvents
	}
	for i, h := range layerHeaders {
		if h == header {
			return sb.layers()[i]
		}
	}
	return nil
}

func isTreeHeader(header string) bool {
	return header == headerBackground || slices.Contains(layerHeaders, header)
}

func isKnownHeader(header string) bool {
	return slices.Contains(canonicalHeaders, header)
}

type eventGroup struct {
	header string
	lines  []string
}

// groupEvents splits the [Events] body on headers. Unknown "//" lines inside an
// indented section stay with it as comments.
func groupEvents(body []string) []*eventGroup {
	var groups []*eventGroup
	var cur *eventGroup
	for _, line := range body {
		if strings.HasPrefix(line, "//") {
			inTree := cur != nil && isTreeHeader(cur.header)
			if isKnownHeader(line) || !inTree {
				cur = &eventGroup{header: line}
				groups = append(groups, cur)
				continue
			}
		}
		if cur == nil {
			cur = &eventGroup{}
			groups = append(groups, cur)
		}
		cur.lines = append(cur.lines, line)
	}
	return groups
}

func eventsBody(lines []string) ([]string, bool) {
	if !hasCategory(lines, "[Events]") {
		return nil, false
	}
	return GetCategoryLines(lines, "[Events]"), true
}

// DecodeStoryboard reads the [Events] section out of the lines of a whole file.
// Nothing in the section is dropped: lines under unknown headers become
// UnhandledEvents and stray comments become Comment events.
func DecodeStoryboard(lines []string) (*Storyboard, error) {
	sb := &Storyboard{}
	body, ok := eventsBody(lines)
	if !ok {
		return sb, nil
	}
	sb.headers = []string{}
	seen := map[string]bool{}

	for _, g := range groupEvents(body) {
		if !isKnownHeader(g.header) {
			sb.headers = append(sb.headers, g.header)
			sb.UnhandledEvents = append(sb.UnhandledEvents, &EventBlock{Header: g.header, Lines: g.lines})
			continue
		}
		if !seen[g.header] {
			seen[g.header] = true
			sb.headers = append(sb.headers, g.header)
		}
		if err := sb.decodeGroup(g); err != nil {
			return nil, err
		}
	}
	return sb, nil
}

func (sb *Storyboard) decodeGroup(g *eventGroup) error {
	if t := sb.tree(g.header); t != nil {
		events, err := ParseEventTree(g.lines)
		if err != nil {
			return err
		}
		*t = append(*t, events...)
		return nil
	}
	for _, line := range g.lines {
		e, err := ParseEvent(line)
		if err != nil {
			return err
		}
		switch v := e.(type) {
		case *Break:
			if g.header != headerBreaks {
				return parseErr(line, "break period outside "+headerBreaks, nil)
			}
			sb.BreakPeriods = append(sb.BreakPeriods, v)
		case *StoryboardSoundSample:
			if g.header != headerSamples {
				return parseErr(line, "sound sample outside "+headerSamples, nil)
			}
			sb.SoundSamples = append(sb.SoundSamples, v)
		default:
			return parseErr(line, "unexpected event under "+g.header, nil)
		}
	}
	return nil
}

// DecodeStoryboardText decodes a standalone .osb file.
func DecodeStoryboardText(text string) (*Storyboard, error) {
	lines, _ := splitLines(text)
	return DecodeStoryboard(lines)
}

func indentDepth(line string) int {
	depth := 0
	for depth < len(line) && (line[depth] == ' ' || line[depth] == '_') {
		depth++
	}
	return depth
}

// ParseEventTree parses indented event lines into trees. A line indented one level
// deeper than the previous parent becomes its child. Comment lines attach to the
// innermost open parent and leave the nesting as it was.
func ParseEventTree(lines []string) ([]Event, error) {
	var roots []Event
	var stack []ParentEvent

	for _, line := range lines {
		depth := indentDepth(line)
		if strings.HasPrefix(line[depth:], "//") {
			c := &Comment{Text: line}
			if len(stack) > 0 {
				stack[len(stack)-1].addIndented(c, "")
			} else {
				roots = append(roots, c)
			}
			continue
		}
		e, err := ParseEvent(line[depth:])
		if err != nil {
			return nil, err
		}
		if depth == 0 {
			roots = append(roots, e)
		} else {
			if depth > len(stack) {
				return nil, parseErr(line, "event indented deeper than its parent", nil)
			}
			stack[depth-1].addIndented(e, line[:depth])
		}
		stack = stack[:depth]
		if p, ok := e.(ParentEvent); ok {
			stack = append(stack, p)
		}
	}
	return roots, nil
}

func appendEventTree(out []string, e Event, indent string, depth int) []string {
	switch {
	case isComment(e):
		out = append(out, e.Line())
	case indent != "":
		out = append(out, indent+e.Line())
	default:
		out = append(out, strings.Repeat(" ", depth)+e.Line())
	}
	if p, ok := e.(ParentEvent); ok {
		for i, c := range p.Children() {
			out = appendEventTree(out, c, p.indentAt(i), depth+1)
		}
	}
	return out
}

func isComment(e Event) bool {
	_, ok := e.(*Comment)
	return ok
}

func (sb *Storyboard) appendSection(out []string, header string) []string {
	out = append(out, header)
	if t := sb.tree(header); t != nil {
		for _, e := range *t {
			out = appendEventTree(out, e, "", 0)
		}
		return out
	}
	if header == headerBreaks {
		for _, b := range sb.BreakPeriods {
			out = append(out, b.Line())
		}
		return out
	}
	for _, s := range sb.SoundSamples {
		out = append(out, s.Line())
	}
	return out
}

func (sb *Storyboard) sectionLen(header string) int {
	if t := sb.tree(header); t != nil {
		return len(*t)
	}
	if header == headerBreaks {
		return len(sb.BreakPeriods)
	}
	return len(sb.SoundSamples)
}

func appendBlock(out []string, b *EventBlock) []string {
	if b.Header != "" {
		out = append(out, b.Header)
	}
	return append(out, b.Lines...)
}

// Lines renders the [Events] section body. Sections come out in the order they were
// read; a known section missing from the input is appended when it has events.
func (sb *Storyboard) Lines() []string {
	order := sb.headers
	if order == nil {
		order = canonicalHeaders
	}
	var out []string
	written := map[string]bool{}
	next := 0
	for _, h := range order {
		if isKnownHeader(h) {
			if !written[h] {
				written[h] = true
				out = sb.appendSection(out, h)
			}
			continue
		}
		if next < len(sb.UnhandledEvents) {
			out = appendBlock(out, sb.UnhandledEvents[next])
			next++
		}
	}
	for _, h := range canonicalHeaders {
		if !written[h] && sb.sectionLen(h) > 0 {
			out = sb.appendSection(out, h)
		}
	}
	for ; next < len(sb.UnhandledEvents); next++ {
		out = appendBlock(out, sb.UnhandledEvents[next])
	}
	return out
}

func (sb *Storyboard) Clone() *Storyboard {
	cloneAll := func(events []Event) []Event {
		out := make([]Event, len(events))
		for i, e := range events {
			out[i] = CloneEvent(e)
		}
		return out
	}
	c := &Storyboard{BackgroundAndVideoEvents: cloneAll(sb.BackgroundAndVideoEvents)}
	for _, b := range sb.BreakPeriods {
		bc := *b
		c.BreakPeriods = append(c.BreakPeriods, &bc)
	}
	src, dst := sb.layers(), c.layers()
	for i := range src {
		*dst[i] = cloneAll(*src[i])
	}
	for _, s := range sb.SoundSamples {
		sc := *s
		c.SoundSamples = append(c.SoundSamples, &sc)
	}
	for _, b := range sb.UnhandledEvents {
		c.UnhandledEvents = append(c.UnhandledEvents, &EventBlock{Header: b.Header, Lines: append([]string(nil), b.Lines...)})
	}
	if sb.headers != nil {
		c.headers = append([]string{}, sb.headers...)
	}
	return c
}

// Background returns the first background event, or nil.
func (sb *Storyboard) Background() *Background {
	for _, e := range sb.BackgroundAndVideoEvents {
		if b, ok := e.(*Background); ok {
			return b
		}
	}
	return nil
}

// EarliestEventTime is the first time any storyboard command or sample starts.
// ok is false for an empty storyboard.
func (sb *Storyboard) EarliestEventTime() (t float64, ok bool) {
	t = math.Inf(1)
	var visit func(e Event, base float64)
	visit = func(e Event, base float64) {
		switch v := e.(type) {
		case *Command:
			t = math.Min(t, base+v.StartTime)
		case *Loop:
			for _, c := range v.Children() {
				visit(c, base+v.StartTime)
			}
			return
		case *Video:
			t = math.Min(t, v.StartTime)
		}
		if p, ok := e.(ParentEvent); ok {
			for _, c := range p.Children() {
				visit(c, base)
			}
		}
	}
	for _, e := range sb.BackgroundAndVideoEvents {
		visit(e, 0)
	}
	for _, layer := range sb.layers() {
		for _, e := range *layer {
			visit(e, 0)
		}
	}
	for _, s := range sb.SoundSamples {
		t = math.Min(t, s.StartTime)
	}
	return t, !math.IsInf(t, 1)
}

// shiftTimes moves every event by delta.
func (sb *Storyboard) shiftTimes(delta float64) {
	var visit func(e Event)
	visit = func(e Event) {
		switch v := e.(type) {
		case *Command:
			v.StartTime += delta
			v.EndTime += delta
		case *Loop:
			// Children of loops are relative to the loop start.
			v.StartTime += delta
			return
		case *Trigger:
			v.StartTime += delta
			v.EndTime += delta
			return
		case *Video:
			v.StartTime += delta
		case *Break:
			v.StartTime += delta
			v.EndTime += delta
		case *StoryboardSoundSample:
			v.StartTime += delta
		}
		if p, ok := e.(ParentEvent); ok {
			for _, c := range p.Children() {
				visit(c)
			}
		}
	}
	for _, e := range sb.BackgroundAndVideoEvents {
		visit(e)
	}
	for _, b := range sb.BreakPeriods {
		visit(b)
	}
	for _, layer := range sb.layers() {
		for _, e := range *layer {
			visit(e)
		}
	}
	for _, s := range sb.SoundSamples {
		visit(s)
	}
}
