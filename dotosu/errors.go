package dotosu

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidHeader  = errors.New("invalid .osu header")
	ErrNoTimingPoints = errors.New("beatmap has no timing points")
)

// ParseError is a malformed line in a beatmap or storyboard.
type ParseError struct {
	Line   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %q: %v", e.Reason, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %q", e.Reason, e.Line)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func parseErr(line, reason string, err error) error {
	return &ParseError{Line: line, Reason: reason, Err: err}
}

// ContextKind names one of the derived-state slots on a hit object.
type ContextKind int

const (
	ContextStacking ContextKind = iota
	ContextCombo
	ContextTiming
	ContextTimeline
)

func (k ContextKind) String() string {
	switch k {
	case ContextStacking:
		return "stacking"
	case ContextCombo:
		return "combo"
	case ContextTiming:
		return "timing"
	case ContextTimeline:
		return "timeline"
	}
	return fmt.Sprintf("ContextKind(%d)", int(k))
}

// MissingContextError is returned or panicked when a derived value needs a context
// that no pass has attached yet.
type MissingContextError struct {
	Kind ContextKind
}

func (e *MissingContextError) Error() string {
	return fmt.Sprintf("missing %s context", e.Kind)
}
