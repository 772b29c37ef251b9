package dotosu

import (
	"math"
	"strconv"
	"strings"
)

// formatFloat writes the shortest representation that parses back to v, never in
// exponent form.
func formatFloat(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatRound rounds half away from zero and writes an integer.
func formatRound(v float64) string {
	return strconv.FormatInt(int64(math.Round(v)), 10)
}

func formatTime(v float64, floatPrecision bool) string {
	if floatPrecision {
		return formatFloat(v)
	}
	return formatRound(v)
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// intOr parses s, falling back to def on empty input.
func intOr(s string, def int) (int, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	return parseInt(s)
}

func splitKeyVal(line string) (key, val string) {
	i := strings.Index(line, ":")
	if i < 0 {
		return strings.TrimSpace(line), ""
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])
}

// splitCSV splits on commas outside double quotes. Quotes are kept.
func splitCSV(line string) []string {
	var out []string
	start := 0
	inQ := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQ = !inQ
		case ',':
			if !inQ {
				out = append(out, line[start:i])
				start = i + 1
			}
		}
	}
	return append(out, line[start:])
}

// unquote strips surrounding double quotes and reports whether there were any.
func unquote(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1], true
	}
	return s, false
}

func quote(s string, quoted bool) string {
	if quoted {
		return `"` + s + `"`
	}
	return s
}

// GetCategoryLines returns the non-empty lines after the line equal to category, up to
// the next line starting with one of identifiers (default "[").
func GetCategoryLines(lines []string, category string, identifiers ...string) []string {
	if len(identifiers) == 0 {
		identifiers = []string{"["}
	}
	var out []string
	atCategory := false
	for _, line := range lines {
		if !atCategory {
			atCategory = line == category
			continue
		}
		if line == "" {
			continue
		}
		for _, id := range identifiers {
			if strings.HasPrefix(line, id) {
				return out
			}
		}
		out = append(out, line)
	}
	return out
}

func hasCategory(lines []string, category string) bool {
	for _, line := range lines {
		if line == category {
			return true
		}
	}
	return false
}
