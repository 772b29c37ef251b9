package dotosu

import (
	"fmt"
	"io"
)

// FileSource is a file the host can hand to the codec. Open returns a stream the
// caller must close.
type FileSource interface {
	Name() string
	Size() (int64, error)
	Open() (io.ReadCloser, error)
}

// BeatmapSet is the folder a beatmap lives in.
type BeatmapSet interface {
	Files() []FileSource
	// RelativePath returns the path of b inside the set.
	RelativePath(b *Beatmap) (string, bool)
}

// ReadAll acquires src, reads it fully and releases it.
func ReadAll(src FileSource) ([]byte, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src.Name(), err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Name(), err)
	}
	return data, nil
}
