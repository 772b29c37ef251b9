package beatmapset

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"maptools/dotosu"
)

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "dotosu", "testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestOpenDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.osu"), fixture(t, "complicated.osu"))
	writeFile(t, filepath.Join(dir, "b.osu"), fixture(t, "mania.osu"))
	writeFile(t, filepath.Join(dir, "soft-hitclap.wav"), []byte("RIFF"))
	writeFile(t, filepath.Join(dir, "sb", "kick.OGG"), []byte("OggS"))
	writeFile(t, filepath.Join(dir, "bg.jpg"), []byte{0xff, 0xd8})

	s, err := OpenDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	if got := len(s.Files()); got != 5 {
		t.Fatalf("expected 5 files, got %d", got)
	}
	if got := len(s.Beatmaps()); got != 2 {
		t.Fatalf("expected 2 beatmaps, got %d", got)
	}
	sounds := s.SoundFiles()
	if len(sounds) != 2 || sounds[0].Name() != "sb/kick.OGG" || sounds[1].Name() != "soft-hitclap.wav" {
		t.Fatalf("unexpected sound files %v", names(sounds))
	}

	b, ok := s.Beatmap("b.osu")
	if !ok {
		t.Fatal("b.osu not decoded")
	}
	rel, ok := b.RelativePath()
	if !ok || rel != "b.osu" {
		t.Fatalf("expected relative path b.osu, got %q %v", rel, ok)
	}
	if _, ok := s.File("SB/Kick.ogg"); !ok {
		t.Fatal("expected case-insensitive lookup to find sb/kick.OGG")
	}
}

func TestOpenDirReportsDecodeFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.osu"), fixture(t, "empty.osu"))
	writeFile(t, filepath.Join(dir, "bad.osu"), []byte("not a beatmap"))

	s, err := OpenDir(context.Background(), dir)
	if err == nil {
		t.Fatal("expected an error for bad.osu")
	}
	if s == nil || len(s.Beatmaps()) != 1 {
		t.Fatal("expected the good beatmap to stay available")
	}
	if msg := err.Error(); strings.Count(msg, "decode") != 1 || !strings.Contains(msg, "bad.osu") {
		t.Errorf("expected one decode prefix naming bad.osu, got %q", msg)
	}
}

func TestOpenDirNotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.osu")
	writeFile(t, path, fixture(t, "empty.osu"))
	if _, err := OpenDir(context.Background(), path); err == nil {
		t.Fatal("expected an error")
	}
}

func buildOsz(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestOpenOsz(t *testing.T) {
	data := buildOsz(t, map[string][]byte{
		"map [Hard].osu":   fixture(t, "complicated.osu"),
		"drum-hitclap.wav": []byte("RIFF"),
	})
	s, err := OpenOsz(context.Background(), bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("OpenOsz: %v", err)
	}
	b, ok := s.Beatmap("map [Hard].osu")
	if !ok {
		t.Fatal("beatmap missing")
	}
	if len(b.HitObjects) != 8 {
		t.Errorf("expected 8 hit objects, got %d", len(b.HitObjects))
	}
	if len(s.SoundFiles()) != 1 {
		t.Errorf("expected 1 sound file, got %d", len(s.SoundFiles()))
	}
	size, _ := s.SoundFiles()[0].Size()
	if size != 4 {
		t.Errorf("expected size 4, got %d", size)
	}
}

func TestOpenOszSkipsBackslashEntries(t *testing.T) {
	data := buildOsz(t, map[string][]byte{
		"map [Hard].osu": fixture(t, "complicated.osu"),
		`sb\explode.png`: {1},
	})
	s, err := OpenOsz(context.Background(), bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("OpenOsz: %v", err)
	}
	if got := names(s.Files()); len(got) != 1 || got[0] != "map [Hard].osu" {
		t.Errorf("files %v", got)
	}
}

func TestOpenOszWithoutBeatmaps(t *testing.T) {
	data := buildOsz(t, map[string][]byte{"bg.jpg": {1}})
	if _, err := OpenOsz(context.Background(), bytes.NewReader(data), int64(len(data))); err == nil {
		t.Fatal("expected an error")
	}
	if _, err := OpenOsz(context.Background(), bytes.NewReader([]byte("nope")), 4); err == nil {
		t.Fatal("expected an error for a non-zip")
	}
}

func names(files []dotosu.FileSource) []string {
	var out []string
	for _, f := range files {
		out = append(out, f.Name())
	}
	return out
}
