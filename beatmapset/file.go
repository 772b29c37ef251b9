package beatmapset

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"
)

// DiskFile is a file inside a set directory.
type DiskFile struct {
	root string
	rel  string
}

func (f *DiskFile) Name() string { return f.rel }

func (f *DiskFile) Path() string { return filepath.Join(f.root, filepath.FromSlash(f.rel)) }

func (f *DiskFile) Size() (int64, error) {
	info, err := os.Stat(f.Path())
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (f *DiskFile) ModTime() (time.Time, error) {
	info, err := os.Stat(f.Path())
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func (f *DiskFile) Open() (io.ReadCloser, error) { return os.Open(f.Path()) }

// ZipFile is an entry of a .osz archive.
type ZipFile struct {
	f *zip.File
}

func (f *ZipFile) Name() string { return f.f.Name }

func (f *ZipFile) Size() (int64, error) { return int64(f.f.UncompressedSize64), nil }

func (f *ZipFile) Open() (io.ReadCloser, error) { return f.f.Open() }

// MemFile holds its content in memory. Fetched beatmaps and tests use it.
type MemFile struct {
	name string
	data []byte
}

func NewMemFile(name string, data []byte) *MemFile {
	return &MemFile{name: name, data: data}
}

func (f *MemFile) Name() string { return f.name }

func (f *MemFile) Size() (int64, error) { return int64(len(f.data)), nil }

func (f *MemFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}
