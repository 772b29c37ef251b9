package dotosu

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseOsuTimestamp reads the time of an editor timestamp such as "01:23:456 (1,2) - ".
// The form is minutes:seconds:milliseconds, optionally preceded by hours. Components
// may be negative and are summed.
func ParseOsuTimestamp(code string) (time.Duration, error) {
	stamp := strings.TrimSpace(code)
	if i := strings.IndexAny(stamp, " ("); i >= 0 {
		stamp = stamp[:i]
	}
	parts := strings.Split(stamp, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return 0, fmt.Errorf("invalid timestamp %q", code)
	}
	units := []time.Duration{time.Minute, time.Second, time.Millisecond}
	if len(parts) == 4 {
		units = append([]time.Duration{time.Hour}, units...)
	}
	var d time.Duration
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q: %w", code, err)
		}
		d += time.Duration(n) * units[i]
	}
	return d, nil
}

// ParseTimeCode splits a timecode into its time and the combo numbers between the
// brackets. Without brackets the numbers are [-1], which matches any object. An
// opening bracket without a closing one is an error.
func ParseTimeCode(code string) (time.Duration, []int, error) {
	d, err := ParseOsuTimestamp(code)
	if err != nil {
		return 0, nil, err
	}
	open := strings.Index(code, "(")
	if open < 0 {
		return d, []int{-1}, nil
	}
	inner := code[open+1:]
	end := strings.Index(inner, ")")
	if end < 0 {
		return 0, nil, fmt.Errorf("unclosed combo list in %q", code)
	}
	inner = inner[:end]
	var numbers []int
	for _, s := range strings.Split(inner, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, nil, fmt.Errorf("invalid combo number %q in %q: %w", s, code, err)
		}
		numbers = append(numbers, n)
	}
	return d, numbers, nil
}

// QueryTimeCode returns the objects a timecode points at. Starting from the first
// object at or after the time, each combo number selects the next object with that
// combo index. Combo contexts must be present.
func (b *Beatmap) QueryTimeCode(code string) ([]HitObject, error) {
	d, numbers, err := ParseTimeCode(code)
	if err != nil {
		return nil, err
	}
	t := float64(d) / float64(time.Millisecond)

	idx := -1
	for i, ho := range b.HitObjects {
		if ho.Base().StartTime >= t {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}

	var out []HitObject
	for _, n := range numbers {
		for n != -1 && idx < len(b.HitObjects) {
			base := b.HitObjects[idx].Base()
			if err := base.Require(ContextCombo); err != nil {
				return nil, err
			}
			if base.Combo.ComboIndex == n {
				break
			}
			idx++
		}
		if idx >= len(b.HitObjects) {
			break
		}
		out = append(out, b.HitObjects[idx])
		idx++
	}
	return out, nil
}
