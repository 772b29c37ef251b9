package beatmapset

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"maptools/dotosu"
)

// SoundExtensions are the extensions the game loads as samples.
var SoundExtensions = []string{".wav", ".mp3", ".aif", ".aiff", ".ogg"}

// Set is a beatmap set: the files of one folder or archive and the beatmaps
// decoded from its .osu files.
type Set struct {
	// Location describes where the files came from.
	Location string

	files []dotosu.FileSource

	mu       sync.Mutex
	beatmaps map[string]*dotosu.Beatmap
}

// New returns a set over files. Nothing is decoded until Load.
func New(location string, files []dotosu.FileSource) *Set {
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })
	return &Set{Location: location, files: files, beatmaps: map[string]*dotosu.Beatmap{}}
}

func (s *Set) Files() []dotosu.FileSource { return s.files }

// File looks a file up by relative path. Paths compare case-insensitively the
// way the game resolves them.
func (s *Set) File(name string) (dotosu.FileSource, bool) {
	name = filepath.ToSlash(name)
	for _, f := range s.files {
		if strings.EqualFold(f.Name(), name) {
			return f, true
		}
	}
	return nil, false
}

// RelativePath returns the path b was decoded from.
func (s *Set) RelativePath(b *dotosu.Beatmap) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for p, bm := range s.beatmaps {
		if bm == b {
			return p, true
		}
	}
	return "", false
}

// Beatmap returns the decoded beatmap at rel.
func (s *Set) Beatmap(rel string) (*dotosu.Beatmap, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.beatmaps[filepath.ToSlash(rel)]
	return b, ok
}

// Beatmaps returns the decoded beatmaps ordered by path.
func (s *Set) Beatmaps() []*dotosu.Beatmap {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.beatmaps))
	for p := range s.beatmaps {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	out := make([]*dotosu.Beatmap, len(paths))
	for i, p := range paths {
		out[i] = s.beatmaps[p]
	}
	return out
}

// BeatmapFiles returns the .osu files of the set.
func (s *Set) BeatmapFiles() []dotosu.FileSource {
	return s.filter(func(ext string) bool { return ext == ".osu" })
}

// SoundFiles returns the files the game can play as samples.
func (s *Set) SoundFiles() []dotosu.FileSource {
	return s.filter(IsSoundFile)
}

func (s *Set) filter(keep func(ext string) bool) []dotosu.FileSource {
	var out []dotosu.FileSource
	for _, f := range s.files {
		if keep(strings.ToLower(path.Ext(f.Name()))) {
			out = append(out, f)
		}
	}
	return out
}

// IsSoundFile reports whether ext (with dot, lower case) is a sample extension.
func IsSoundFile(ext string) bool {
	for _, e := range SoundExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Load decodes every .osu file of the set in parallel. Beatmaps are independent
// so each goroutine owns the one it decodes. The first failure is returned after
// all files were tried; the beatmaps that did decode stay available.
func (s *Set) Load(ctx context.Context) error {
	files := s.BeatmapFiles()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	var mu sync.Mutex
	var firstErr error
	failCount := 0
	for _, f := range files {
		f := f
		g.Go(func() (err error) {
			defer recoverTo(&err, f.Name())
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b, err := dotosu.DecodeSource(f)
			if err != nil {
				mu.Lock()
				failCount++
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return nil
			}
			b.Set = s
			s.mu.Lock()
			s.beatmaps[f.Name()] = b
			s.mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if firstErr != nil {
		log.Printf("%s: %d of %d beatmaps failed to decode", s.Location, failCount, len(files))
	}
	return firstErr
}

// recoverTo turns a panic in a decode goroutine into an error carrying the stack.
func recoverTo(err *error, name string) {
	r := recover()
	if r == nil {
		return
	}
	buf := make([]byte, 64<<10)
	buf = buf[:runtime.Stack(buf, false)]
	log.Printf("panic decoding %s: %v\n\n%s", name, r, buf)
	if e, ok := r.(error); ok {
		*err = fmt.Errorf("decode %s: %w", name, e)
		return
	}
	*err = fmt.Errorf("decode %s: panic: %v", name, r)
}

// OpenDir lists every file under dir and decodes the beatmaps among them.
func OpenDir(ctx context.Context, dir string) (*Set, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	var files []dotosu.FileSource
	if err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("walk %s: %v", p, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, &DiskFile{root: dir, rel: filepath.ToSlash(rel)})
		return nil
	}); err != nil {
		return nil, err
	}

	s := New(dir, files)
	return s, s.Load(ctx)
}

// OpenOsz reads a .osz archive and decodes its beatmaps. Entries stay inside
// the archive and are read on demand, so r must outlive the set.
func OpenOsz(ctx context.Context, r io.ReaderAt, size int64) (*Set, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("error opening osz (zip): %w", err)
	}
	var files []dotosu.FileSource
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if strings.Contains(f.Name, "\\") {
			log.Printf("skipping archive entry with backslash: %s", f.Name)
			continue
		}
		files = append(files, &ZipFile{f: f})
	}
	s := New("osz", files)
	if len(s.BeatmapFiles()) == 0 {
		return s, fmt.Errorf("no .osu files found in the archive")
	}
	return s, s.Load(ctx)
}
