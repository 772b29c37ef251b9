package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"maptools/dotosu"
)

const fixtures = "../../dotosu/testdata"

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osutool.yaml")
	yml := "float_precision: true\nhash_cache_path: /tmp/h.db\nhttp:\n  rate_limit: 10\n  session: abc\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OSUTOOL_SESSION", "from-env")
	t.Setenv("OSUTOOL_MAX_CONCURRENT", "4")

	c, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if !c.FloatPrecision || c.HashCachePath != "/tmp/h.db" {
		t.Errorf("file values not applied: %+v", c)
	}
	if c.HTTP.RateLimit != 10 || c.HTTP.MaxConcurrent != 4 {
		t.Errorf("expected rate 10 and concurrency 4, got %d %d", c.HTTP.RateLimit, c.HTTP.MaxConcurrent)
	}
	if c.HTTP.Session != "from-env" {
		t.Errorf("expected env session, got %q", c.HTTP.Session)
	}
	if c.HTTP.BaseURL != "https://osu.ppy.sh" {
		t.Errorf("expected default base url, got %q", c.HTTP.BaseURL)
	}
}

func TestLoadConfigRejectsZeroRate(t *testing.T) {
	t.Setenv("OSUTOOL_RATE_LIMIT", "0")
	if _, err := loadConfig(""); err == nil {
		t.Fatal("expected an error")
	}
}

func TestRoundTripFiles(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.osu")
	text := "osu file format v14\n\n[General]\nAudioFilename:audio.mp3\n"
	if err := os.WriteFile(bad, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	paths := []string{
		filepath.Join(fixtures, "complicated.osu"),
		filepath.Join(fixtures, "mania.osu"),
		bad,
		filepath.Join(fixtures, "missing.osu"),
	}
	results, err := roundTripFiles(context.Background(), paths, dotosu.EncodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !results[0].OK() || !results[1].OK() {
		t.Fatalf("expected fixtures to round trip: %v / %v", results[0], results[1])
	}
	if results[2].Line != 4 || results[2].Got != "AudioFilename: audio.mp3" {
		t.Errorf("expected a difference on line 4, got %+v", results[2])
	}
	if results[3].Err == nil {
		t.Error("expected an error for a missing file")
	}

	var buf bytes.Buffer
	if failed := printResults(&buf, results); failed != 2 {
		t.Errorf("expected 2 failures, got %d", failed)
	}
	if !strings.Contains(buf.String(), "DIFF "+bad+" line 4") {
		t.Errorf("unexpected report:\n%s", buf.String())
	}
}

func TestFormatTime(t *testing.T) {
	cases := map[float64]string{
		0:       "00:00:000",
		1015:    "00:01:015",
		61234.6: "01:01:235",
		-585:    "-00:00:585",
	}
	for in, want := range cases {
		if got := formatTime(in); got != want {
			t.Errorf("formatTime(%v): expected %s, got %s", in, want, got)
		}
	}
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("OSUTOOL_CONFIG", "")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("osutool %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestComboCommand(t *testing.T) {
	out := run(t, "combo", filepath.Join(fixtures, "complicated.osu"))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 8 {
		t.Fatalf("expected 8 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "00:00:015\tcircle\t1\t") || !strings.HasSuffix(lines[0], "NC") {
		t.Errorf("unexpected first line %q", lines[0])
	}
}

func TestQueryCommand(t *testing.T) {
	out := run(t, "query", filepath.Join(fixtures, "complicated.osu"), "00:01:765 (1) - ")
	if got := strings.Count(strings.TrimSpace(out), "\n") + 1; got != 1 {
		t.Fatalf("expected 1 object, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, ",1765,") {
		t.Errorf("expected the slider at 1765, got %s", out)
	}
}

func TestStackCommand(t *testing.T) {
	out := run(t, "stack", "--rounded", filepath.Join(fixtures, "complicated.osu"))
	if strings.Count(out, "\n") != 8 {
		t.Fatalf("expected 8 lines, got:\n%s", out)
	}
	if !strings.Contains(out, "spinner") {
		t.Errorf("expected the spinner in the output:\n%s", out)
	}
}

func TestCopyCommand(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(filepath.Join(fixtures, "complicated.osu"))
	if err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "dst.osu")
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.osu")
	run(t, "copy", filepath.Join(fixtures, "complicated.osu"), dst, "-o", out)

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	b, err := dotosu.Decode(string(got))
	if err != nil {
		t.Fatalf("copy output does not decode: %v", err)
	}
	if len(b.HitObjects) != 8 {
		t.Errorf("expected 8 hit objects, got %d", len(b.HitObjects))
	}
}
