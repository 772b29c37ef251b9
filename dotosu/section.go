package dotosu

import (
	"strconv"
	"strings"
)

type entry struct {
	key, value string
	comment    bool
}

// Section is an ordered key-value block such as [General]. Keys the model does not
// know about are kept in place, as are comment lines.
type Section struct {
	entries []entry
}

func (s *Section) index(key string) int {
	for i, e := range s.entries {
		if !e.comment && e.key == key {
			return i
		}
	}
	return -1
}

// Get returns the raw value stored for key.
func (s *Section) Get(key string) (string, bool) {
	if i := s.index(key); i >= 0 {
		return s.entries[i].value, true
	}
	return "", false
}

// Set replaces the value for key, appending a new entry when absent.
func (s *Section) Set(key, value string) {
	if i := s.index(key); i >= 0 {
		s.entries[i].value = value
		return
	}
	s.entries = append(s.entries, entry{key: key, value: value})
}

func (s *Section) Delete(key string) {
	if i := s.index(key); i >= 0 {
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
	}
}

// Keys lists the keys in file order.
func (s *Section) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		if !e.comment {
			keys = append(keys, e.key)
		}
	}
	return keys
}

func (s *Section) Len() int { return len(s.entries) }

func (s *Section) Value(key, def string) string {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}

func (s *Section) Int(key string, def int) int {
	if v, ok := s.Get(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return int(f)
		}
	}
	return def
}

func (s *Section) Float(key string, def float64) float64 {
	if v, ok := s.Get(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func (s *Section) Bool(key string, def bool) bool {
	if v, ok := s.Get(key); ok {
		switch v {
		case "1", "true", "True":
			return true
		case "0", "false", "False":
			return false
		}
	}
	return def
}

func (s *Section) SetInt(key string, v int)       { s.Set(key, strconv.Itoa(v)) }
func (s *Section) SetFloat(key string, v float64) { s.Set(key, formatFloat(v)) }

func (s *Section) SetBool(key string, v bool) {
	if v {
		s.Set(key, "1")
	} else {
		s.Set(key, "0")
	}
}

func (s *Section) clone() Section {
	return Section{entries: append([]entry(nil), s.entries...)}
}

func decodeSection(lines []string) Section {
	var s Section
	for _, line := range lines {
		if strings.HasPrefix(line, "//") {
			s.entries = append(s.entries, entry{value: line, comment: true})
			continue
		}
		k, v := splitKeyVal(line)
		s.entries = append(s.entries, entry{key: k, value: v})
	}
	return s
}

// lines renders the section with sep between key and value.
func (s *Section) lines(sep string) []string {
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		if e.comment {
			out = append(out, e.value)
			continue
		}
		out = append(out, e.key+sep+e.value)
	}
	return out
}
