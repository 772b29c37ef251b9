package dotosu

import (
	"errors"
	"slices"
	"testing"
	"time"
)

func TestParseOsuTimestamp(t *testing.T) {
	tests := []struct {
		code string
		want time.Duration
	}{
		{"00:00:891 (1) - ", 891 * time.Millisecond},
		{"60:00:074 (2,4) - ", 3600074 * time.Millisecond},
		{"60:00:074 - ", 3600074 * time.Millisecond},
		{"00:-01:-230 (1) - ", -1230 * time.Millisecond},
		{"01:02:03:004", time.Hour + 2*time.Minute + 3*time.Second + 4*time.Millisecond},
	}
	for _, tt := range tests {
		got, err := ParseOsuTimestamp(tt.code)
		if err != nil {
			t.Errorf("%q: %v", tt.code, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: want %v, got %v", tt.code, tt.want, got)
		}
	}

	for _, code := range []string{"", "12:34", "aa:00:000 - "} {
		if _, err := ParseOsuTimestamp(code); err == nil {
			t.Errorf("%q: want error", code)
		}
	}
}

func TestParseTimeCode(t *testing.T) {
	tests := []struct {
		code    string
		numbers []int
	}{
		{"00:00:891 (1) - ", []int{1}},
		{"00:00:891 (1,2,1,2) - ", []int{1, 2, 1, 2}},
		{"00:00:891 - ", []int{-1}},
	}
	for _, tt := range tests {
		_, numbers, err := ParseTimeCode(tt.code)
		if err != nil {
			t.Errorf("%q: %v", tt.code, err)
			continue
		}
		if !slices.Equal(numbers, tt.numbers) {
			t.Errorf("%q: want %v, got %v", tt.code, tt.numbers, numbers)
		}
	}
	if _, _, err := ParseTimeCode("00:00:891 (1,x) - "); err == nil {
		t.Error("want error for a non-numeric combo number")
	}
	for _, code := range []string{"00:00:891 (3,4", "00:00:891 (3,4 - "} {
		if _, _, err := ParseTimeCode(code); err == nil {
			t.Errorf("%q: want error for an unclosed combo list", code)
		}
	}
}

func TestQueryTimeCode(t *testing.T) {
	b := decodeFixture(t, "complicated.osu")

	hos, err := b.QueryTimeCode("00:56:823 (1,2,1,2) - ")
	if err != nil {
		t.Fatal(err)
	}
	if len(hos) != 0 {
		t.Errorf("want no objects, got %d", len(hos))
	}

	hos, err = b.QueryTimeCode("00:00:015 (1,2,3,4,5,1) - ")
	if err != nil {
		t.Fatal(err)
	}
	if len(hos) != 6 {
		t.Fatalf("want 6 objects, got %d", len(hos))
	}
	for i, ho := range hos {
		if ho != b.HitObjects[i] {
			t.Errorf("object %d out of order", i)
		}
	}

	hos, err = b.QueryTimeCode("00:01:765 - ")
	if err != nil {
		t.Fatal(err)
	}
	if len(hos) != 1 || hos[0].Base().StartTime != 1765 {
		t.Errorf("wildcard query returned %v", hos)
	}

	// The second number skips ahead to the next combo starting with 1.
	hos, err = b.QueryTimeCode("00:00:015 (1,1) - ")
	if err != nil {
		t.Fatal(err)
	}
	if len(hos) != 2 || hos[1].Base().StartTime != 1765 {
		t.Errorf("query returned %d objects", len(hos))
	}
}

func TestQueryTimeCodeWithoutCombo(t *testing.T) {
	b := decodeFixture(t, "complicated.osu")
	for _, ho := range b.HitObjects {
		ho.Base().Remove(ContextCombo)
	}
	_, err := b.QueryTimeCode("00:00:015 (1,2) - ")
	var mce *MissingContextError
	if !errors.As(err, &mce) || mce.Kind != ContextCombo {
		t.Fatalf("want missing combo context, got %v", err)
	}
}
