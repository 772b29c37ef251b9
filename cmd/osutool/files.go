package main

import (
	"io"
	"os"
	"path/filepath"
)

// localFile is a single file outside any beatmap set.
type localFile string

func (f localFile) Name() string { return filepath.Base(string(f)) }

func (f localFile) Size() (int64, error) {
	info, err := os.Stat(string(f))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (f localFile) Open() (io.ReadCloser, error) { return os.Open(string(f)) }
