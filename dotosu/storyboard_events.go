package dotosu

import (
	"strconv"
	"strings"
)

// Event is one line of the [Events] section. Sprites, animations, loops and triggers
// carry nested child events.
type Event interface {
	Line() string
}

// ParentEvent is an event with indented children.
type ParentEvent interface {
	Event
	Children() []Event
	AddChild(Event)
	addIndented(e Event, indent string)
	indentAt(i int) string
}

// eventTree holds child events and the indentation each was read with. An empty
// indentation is written as one space per level.
type eventTree struct {
	children []Event
	indents  []string
}

func (t *eventTree) Children() []Event { return t.children }
func (t *eventTree) AddChild(e Event)  { t.addIndented(e, "") }

func (t *eventTree) addIndented(e Event, indent string) {
	t.children = append(t.children, e)
	t.indents = append(t.indents, indent)
}

func (t *eventTree) indentAt(i int) string {
	if i < len(t.indents) {
		return t.indents[i]
	}
	return ""
}

func (t *eventTree) cloneChildren() eventTree {
	out := eventTree{
		children: make([]Event, len(t.children)),
		indents:  append([]string(nil), t.indents...),
	}
	for i, c := range t.children {
		out.children[i] = CloneEvent(c)
	}
	return out
}

// Comment is a "//" line between events. Text is the whole line as read.
type Comment struct {
	Text string
}

func (c *Comment) Line() string { return c.Text }

type StoryboardLayer string

const (
	LayerBackground StoryboardLayer = "Background"
	LayerFail       StoryboardLayer = "Fail"
	LayerPass       StoryboardLayer = "Pass"
	LayerForeground StoryboardLayer = "Foreground"
	LayerOverlay    StoryboardLayer = "Overlay"
)

func parseLayer(s string) (StoryboardLayer, bool) {
	switch StoryboardLayer(s) {
	case LayerBackground, LayerFail, LayerPass, LayerForeground, LayerOverlay:
		return StoryboardLayer(s), true
	}
	return "", false
}

type Origin string

const (
	OriginTopLeft      Origin = "TopLeft"
	OriginTopCentre    Origin = "TopCentre"
	OriginTopRight     Origin = "TopRight"
	OriginCentreLeft   Origin = "CentreLeft"
	OriginCentre       Origin = "Centre"
	OriginCentreRight  Origin = "CentreRight"
	OriginBottomLeft   Origin = "BottomLeft"
	OriginBottomCentre Origin = "BottomCentre"
	OriginBottomRight  Origin = "BottomRight"
	OriginCustom       Origin = "Custom"
)

func parseOrigin(s string) (Origin, bool) {
	switch o := Origin(s); o {
	case OriginTopLeft, OriginTopCentre, OriginTopRight, OriginCentreLeft, OriginCentre,
		OriginCentreRight, OriginBottomLeft, OriginBottomCentre, OriginBottomRight, OriginCustom:
		return o, true
	}
	return "", false
}

// Background is the beatmap background image.
type Background struct {
	Token     string
	StartTime float64
	Filename  string
	X, Y      float64
	HasOffset bool
	quoted    bool
}

func (b *Background) Line() string {
	fields := []string{b.Token, formatFloat(b.StartTime), quote(b.Filename, b.quoted)}
	if b.HasOffset {
		fields = append(fields, formatFloat(b.X), formatFloat(b.Y))
	}
	return strings.Join(fields, ",")
}

// Video is a background video. It shares the background line grammar.
type Video struct {
	Background
}

// Break is a break period.
type Break struct {
	Token     string
	StartTime float64
	EndTime   float64
}

func (b *Break) Line() string {
	return b.Token + "," + formatFloat(b.StartTime) + "," + formatFloat(b.EndTime)
}

// BackgroundColour is the legacy solid background colour event.
type BackgroundColour struct {
	Token     string
	StartTime float64
	R, G, B   int
}

func (c *BackgroundColour) Line() string {
	return strings.Join([]string{c.Token, formatFloat(c.StartTime), strconv.Itoa(c.R), strconv.Itoa(c.G), strconv.Itoa(c.B)}, ",")
}

// Sprite is a storyboard image.
type Sprite struct {
	eventTree
	Token    string
	Layer    StoryboardLayer
	Origin   Origin
	FilePath string
	X, Y     float64
	quoted   bool
}

func (s *Sprite) fields() []string {
	return []string{s.Token, string(s.Layer), string(s.Origin), quote(s.FilePath, s.quoted), formatFloat(s.X), formatFloat(s.Y)}
}

func (s *Sprite) Line() string { return strings.Join(s.fields(), ",") }

// Animation is a sprite cycling through numbered frames.
type Animation struct {
	Sprite
	FrameCount  int
	FrameDelay  float64
	LoopType    string
	hasLoopType bool
}

const (
	LoopForever = "LoopForever"
	LoopOnce    = "LoopOnce"
)

func (a *Animation) Line() string {
	fields := append(a.fields(), strconv.Itoa(a.FrameCount), formatFloat(a.FrameDelay))
	if a.hasLoopType || a.LoopType != LoopForever {
		fields = append(fields, a.LoopType)
	}
	return strings.Join(fields, ",")
}

// StoryboardSoundSample plays a file at StartTime.
type StoryboardSoundSample struct {
	Token     string
	StartTime float64
	Layer     int
	FilePath  string
	Volume    int
	hasVolume bool
	quoted    bool
}

func NewStoryboardSoundSample(time float64, layer int, path string, volume int) *StoryboardSoundSample {
	return &StoryboardSoundSample{Token: "Sample", StartTime: time, Layer: layer, FilePath: path, Volume: volume, hasVolume: true, quoted: true}
}

func (s *StoryboardSoundSample) Line() string {
	fields := []string{s.Token, formatFloat(s.StartTime), strconv.Itoa(s.Layer), quote(s.FilePath, s.quoted)}
	if s.hasVolume || s.Volume != 100 {
		fields = append(fields, strconv.Itoa(s.Volume))
	}
	return strings.Join(fields, ",")
}

// EventType is the code of a storyboard command.
type EventType string

const (
	EventFade      EventType = "F"
	EventMove      EventType = "M"
	EventMoveX     EventType = "MX"
	EventMoveY     EventType = "MY"
	EventScale     EventType = "S"
	EventVecScale  EventType = "V"
	EventRotate    EventType = "R"
	EventColour    EventType = "C"
	EventParameter EventType = "P"
	EventLoop      EventType = "L"
	EventTrigger   EventType = "T"
)

// Command is a transform such as F, M or C. Params hold the values after the end
// time; P commands keep their flag in Parameter instead.
type Command struct {
	Code      EventType
	Easing    int
	StartTime float64
	EndTime   float64
	Params    []float64
	Parameter string
	// ShortEnd marks an empty end time field, meaning EndTime == StartTime.
	ShortEnd bool
}

func (c *Command) Line() string {
	end := formatFloat(c.EndTime)
	if c.ShortEnd {
		end = ""
	}
	fields := []string{string(c.Code), strconv.Itoa(c.Easing), formatFloat(c.StartTime), end}
	if c.Code == EventParameter {
		fields = append(fields, c.Parameter)
	}
	for _, p := range c.Params {
		fields = append(fields, formatFloat(p))
	}
	return strings.Join(fields, ",")
}

// Loop repeats its children LoopCount times from StartTime.
type Loop struct {
	eventTree
	StartTime float64
	LoopCount int
}

func (l *Loop) Line() string {
	return "L," + formatFloat(l.StartTime) + "," + strconv.Itoa(l.LoopCount)
}

// Trigger runs its children when TriggerName fires between StartTime and EndTime.
type Trigger struct {
	eventTree
	TriggerName string
	StartTime   float64
	EndTime     float64
	GroupNumber int
	hasGroup    bool
}

func (t *Trigger) Line() string {
	fields := []string{"T", t.TriggerName, formatFloat(t.StartTime), formatFloat(t.EndTime)}
	if t.hasGroup {
		fields = append(fields, strconv.Itoa(t.GroupNumber))
	}
	return strings.Join(fields, ",")
}

// CloneEvent deep copies e and its children.
func CloneEvent(e Event) Event {
	switch v := e.(type) {
	case *Background:
		c := *v
		return &c
	case *Video:
		c := *v
		return &c
	case *Break:
		c := *v
		return &c
	case *BackgroundColour:
		c := *v
		return &c
	case *Animation:
		c := *v
		c.eventTree = v.cloneChildren()
		return &c
	case *Sprite:
		c := *v
		c.eventTree = v.cloneChildren()
		return &c
	case *StoryboardSoundSample:
		c := *v
		return &c
	case *Comment:
		c := *v
		return &c
	case *Command:
		c := *v
		c.Params = append([]float64(nil), v.Params...)
		return &c
	case *Loop:
		c := *v
		c.eventTree = v.cloneChildren()
		return &c
	case *Trigger:
		c := *v
		c.eventTree = v.cloneChildren()
		return &c
	}
	return e
}

// ParseEvent reads a single event line without its indentation.
func ParseEvent(line string) (Event, error) {
	parts := splitCSV(line)
	need := func(n int) error {
		if len(parts) < n {
			return parseErr(line, "too few fields for event "+parts[0], nil)
		}
		return nil
	}
	num := func(i int, what string) (float64, error) {
		v, err := parseFloat(parts[i])
		if err != nil {
			return 0, parseErr(line, "invalid "+what, err)
		}
		return v, nil
	}
	integer := func(i int, what string) (int, error) {
		v, err := parseInt(parts[i])
		if err != nil {
			return 0, parseErr(line, "invalid "+what, err)
		}
		return v, nil
	}

	switch token := parts[0]; token {
	case "0", "Background", "1", "Video":
		if err := need(3); err != nil {
			return nil, err
		}
		b := Background{Token: token}
		var err error
		if b.StartTime, err = num(1, "start time"); err != nil {
			return nil, err
		}
		b.Filename, b.quoted = unquote(parts[2])
		if len(parts) >= 5 {
			b.HasOffset = true
			if b.X, err = num(3, "x offset"); err != nil {
				return nil, err
			}
			if b.Y, err = num(4, "y offset"); err != nil {
				return nil, err
			}
		}
		if token == "1" || token == "Video" {
			return &Video{b}, nil
		}
		return &b, nil

	case "2", "Break":
		if err := need(3); err != nil {
			return nil, err
		}
		b := &Break{Token: token}
		var err error
		if b.StartTime, err = num(1, "break start"); err != nil {
			return nil, err
		}
		if b.EndTime, err = num(2, "break end"); err != nil {
			return nil, err
		}
		return b, nil

	case "3", "Colour":
		if err := need(5); err != nil {
			return nil, err
		}
		c := &BackgroundColour{Token: token}
		var err error
		if c.StartTime, err = num(1, "start time"); err != nil {
			return nil, err
		}
		for i, dst := range []*int{&c.R, &c.G, &c.B} {
			if *dst, err = integer(2+i, "colour"); err != nil {
				return nil, err
			}
		}
		return c, nil

	case "4", "Sprite", "6", "Animation":
		if err := need(6); err != nil {
			return nil, err
		}
		s, err := parseSprite(line, token, parts)
		if err != nil {
			return nil, err
		}
		if token == "4" || token == "Sprite" {
			return s, nil
		}
		if err := need(8); err != nil {
			return nil, err
		}
		a := &Animation{Sprite: *s, LoopType: LoopForever}
		if a.FrameCount, err = integer(6, "frame count"); err != nil {
			return nil, err
		}
		if a.FrameDelay, err = num(7, "frame delay"); err != nil {
			return nil, err
		}
		if len(parts) > 8 {
			a.LoopType, a.hasLoopType = parts[8], true
		}
		return a, nil

	case "5", "Sample":
		if err := need(4); err != nil {
			return nil, err
		}
		s := &StoryboardSoundSample{Token: token, Volume: 100}
		var err error
		if s.StartTime, err = num(1, "sample time"); err != nil {
			return nil, err
		}
		if s.Layer, err = integer(2, "sample layer"); err != nil {
			return nil, err
		}
		s.FilePath, s.quoted = unquote(parts[3])
		if len(parts) > 4 {
			s.hasVolume = true
			if s.Volume, err = integer(4, "sample volume"); err != nil {
				return nil, err
			}
		}
		return s, nil

	case string(EventLoop):
		if err := need(3); err != nil {
			return nil, err
		}
		l := &Loop{}
		var err error
		if l.StartTime, err = num(1, "loop start"); err != nil {
			return nil, err
		}
		if l.LoopCount, err = integer(2, "loop count"); err != nil {
			return nil, err
		}
		return l, nil

	case string(EventTrigger):
		if err := need(4); err != nil {
			return nil, err
		}
		t := &Trigger{TriggerName: parts[1]}
		var err error
		if t.StartTime, err = num(2, "trigger start"); err != nil {
			return nil, err
		}
		if t.EndTime, err = num(3, "trigger end"); err != nil {
			return nil, err
		}
		if len(parts) > 4 {
			t.hasGroup = true
			if t.GroupNumber, err = integer(4, "trigger group"); err != nil {
				return nil, err
			}
		}
		return t, nil

	case string(EventFade), string(EventMove), string(EventMoveX), string(EventMoveY), string(EventScale),
		string(EventVecScale), string(EventRotate), string(EventColour), string(EventParameter):
		if err := need(5); err != nil {
			return nil, err
		}
		c := &Command{Code: EventType(token)}
		var err error
		if c.Easing, err = integer(1, "easing"); err != nil {
			return nil, err
		}
		if c.StartTime, err = num(2, "command start"); err != nil {
			return nil, err
		}
		if parts[3] == "" {
			c.ShortEnd = true
			c.EndTime = c.StartTime
		} else if c.EndTime, err = num(3, "command end"); err != nil {
			return nil, err
		}
		first := 4
		if c.Code == EventParameter {
			c.Parameter = parts[4]
			first = 5
		}
		for i := first; i < len(parts); i++ {
			v, err := num(i, "command parameter")
			if err != nil {
				return nil, err
			}
			c.Params = append(c.Params, v)
		}
		return c, nil
	}
	return nil, parseErr(line, "unrecognized event type", nil)
}

func parseSprite(line, token string, parts []string) (*Sprite, error) {
	s := &Sprite{Token: token}
	var ok bool
	if s.Layer, ok = parseLayer(parts[1]); !ok {
		return nil, parseErr(line, "invalid storyboard layer", nil)
	}
	if s.Origin, ok = parseOrigin(parts[2]); !ok {
		return nil, parseErr(line, "invalid origin", nil)
	}
	s.FilePath, s.quoted = unquote(parts[3])
	var err error
	if s.X, err = parseFloat(parts[4]); err != nil {
		return nil, parseErr(line, "invalid sprite x", err)
	}
	if s.Y, err = parseFloat(parts[5]); err != nil {
		return nil, parseErr(line, "invalid sprite y", err)
	}
	return s, nil
}
