// Package samples identifies hitsound samples by their content.
package samples

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"maptools/dotosu"
)

// Generator is anything that produces a sample. Name is usable as a file name.
type Generator interface {
	Name() string
}

// HashableGenerator can reduce its sample to a content hash. Generators with equal
// hashes play the same sound.
type HashableGenerator interface {
	Generator
	ContentHash(ctx context.Context) (string, error)
}

// FileGenerator is a sample read straight from a file.
type FileGenerator struct {
	File dotosu.FileSource
	// Cache, when set, skips rehashing unchanged files on disk.
	Cache *SQLiteHashCache
}

func NewFileGenerator(f dotosu.FileSource, cache *SQLiteHashCache) *FileGenerator {
	return &FileGenerator{File: f, Cache: cache}
}

func (g *FileGenerator) Name() string { return g.File.Name() }

// IsValid reports whether the file is a non-empty sound file.
func (g *FileGenerator) IsValid() bool {
	size, err := g.File.Size()
	if err != nil || size == 0 {
		return false
	}
	switch strings.ToLower(path.Ext(g.File.Name())) {
	case ".wav", ".mp3", ".aif", ".aiff", ".ogg":
		return true
	}
	return false
}

// DiskSource is a file with a location on disk. Only such files are cached, since
// their path and modification time tell versions apart.
type DiskSource interface {
	dotosu.FileSource
	Path() string
	ModTime() (time.Time, error)
}

func (g *FileGenerator) cacheKey() (CacheKey, bool, error) {
	f, ok := g.File.(DiskSource)
	if !ok || g.Cache == nil {
		return CacheKey{}, false, nil
	}
	abs, err := filepath.Abs(f.Path())
	if err != nil {
		return CacheKey{}, false, err
	}
	size, err := f.Size()
	if err != nil {
		return CacheKey{}, false, err
	}
	mtime, err := f.ModTime()
	if err != nil {
		return CacheKey{}, false, err
	}
	return CacheKey{Path: abs, Size: size, ModTime: mtime}, true, nil
}

// ContentHash is the hex BLAKE2b-256 of the file bytes. Files on disk are looked up
// in Cache first; anything else is always read.
func (g *FileGenerator) ContentHash(ctx context.Context) (string, error) {
	key, cached, err := g.cacheKey()
	if err != nil {
		return "", err
	}
	if cached {
		h, ok, err := g.Cache.Get(ctx, key)
		if err != nil {
			return "", err
		}
		if ok {
			return h, nil
		}
	}

	rc, err := g.File.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", g.Name(), err)
	}
	defer rc.Close()
	hasher, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(hasher, rc); err != nil {
		return "", fmt.Errorf("hash %s: %w", g.Name(), err)
	}
	sum := hex.EncodeToString(hasher.Sum(nil))

	if cached {
		if err := g.Cache.Put(ctx, key, sum); err != nil {
			return "", err
		}
	}
	return sum, nil
}
