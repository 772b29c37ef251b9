package samples

import (
	"context"
	"path"
	"strings"

	"maptools/dotosu"
)

// Key normalises a sample path the way the game looks samples up: forward slashes,
// lower case and no extension.
func Key(p string) string {
	p = strings.ToLower(strings.ReplaceAll(p, `\`, "/"))
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	return strings.TrimSuffix(p, path.Ext(p))
}

// DuplicateMap maps every sample to the first sample with identical content.
// Keys and values are in Key form.
type DuplicateMap map[string]string

// AnalyzeSamples hashes files in order and maps each one to the first file that
// hashed the same. Invalid sound files map to themselves.
func AnalyzeSamples(ctx context.Context, files []dotosu.FileSource, cache *SQLiteHashCache) (DuplicateMap, *HashingComparer, error) {
	cmp, err := NewHashingComparer(ctx)
	if err != nil {
		return nil, nil, err
	}
	dup := DuplicateMap{}
	first := map[string]string{}
	for _, f := range files {
		g := NewFileGenerator(f, cache)
		key := Key(f.Name())
		if _, seen := dup[key]; seen {
			continue
		}
		if !g.IsValid() {
			dup[key] = key
			continue
		}
		if err := cmp.Register(ctx, g); err != nil {
			return nil, nil, err
		}
		h, err := cmp.Hash(g)
		if err != nil {
			return nil, nil, err
		}
		if orig, ok := first[h]; ok {
			dup[key] = orig
			continue
		}
		first[h] = key
		dup[key] = key
	}
	return dup, cmp, nil
}

// Original returns the first sample with the content of p. ok is false when p is
// not a known sample.
func (d DuplicateMap) Original(p string) (string, bool) {
	orig, ok := d[Key(p)]
	return orig, ok
}

// Resolve is Original falling back to the key of p.
func (d DuplicateMap) Resolve(p string) string {
	if orig, ok := d.Original(p); ok {
		return orig
	}
	return Key(p)
}
