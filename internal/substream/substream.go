// Package substream provides byte-range views over a shared file handle.
//
// Many views may be open over one handle at the same time. Each view keeps
// its own position and reads with ReadAt, so no view ever moves the shared
// file offset.
package substream

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// File is a reference-counted read-only file handle.
//
// The handle is closed when the last reference is released. Open returns a
// File holding one reference, owned by the caller.
type File struct {
	f    *os.File
	size int64
	refs atomic.Int64
}

// Open opens name for reading and returns a File holding one reference.
func Open(name string) (*File, error) {
	f, err := os.Open(name) //nolint:gosec // path is caller-supplied archive path
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	sf := &File{f: f, size: info.Size()}
	sf.refs.Store(1)
	return sf, nil
}

// Name returns the name of the underlying file.
func (f *File) Name() string {
	return f.f.Name()
}

// Size returns the size of the file at open time.
func (f *File) Size() int64 {
	return f.size
}

// ReadAt implements io.ReaderAt using positioned reads.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	return f.f.ReadAt(p, off)
}

// Acquire adds a reference. It fails with os.ErrClosed once the last
// reference was released.
func (f *File) Acquire() error {
	for {
		n := f.refs.Load()
		if n <= 0 {
			return fmt.Errorf("acquire %s: %w", f.f.Name(), os.ErrClosed)
		}
		if f.refs.CompareAndSwap(n, n+1) {
			return nil
		}
	}
}

// Release drops a reference and closes the handle when none remain.
func (f *File) Release() error {
	n := f.refs.Add(-1)
	switch {
	case n == 0:
		return f.f.Close()
	case n < 0:
		return fmt.Errorf("release %s: %w", f.f.Name(), os.ErrClosed)
	default:
		return nil
	}
}

// Refs returns the current reference count.
func (f *File) Refs() int64 {
	return f.refs.Load()
}

// Section opens a view of the byte range [start, end).
// The view holds its own reference until closed.
func (f *File) Section(start, end int64) (*Section, error) {
	if start < 0 || end < start {
		return nil, fmt.Errorf("section [%d, %d) of %s: invalid range", start, end, f.f.Name())
	}
	if err := f.Acquire(); err != nil {
		return nil, err
	}
	return &Section{
		SectionReader: io.NewSectionReader(f, start, end-start),
		file:          f,
	}, nil
}

// Section is a seekable view of a byte range in a shared File.
type Section struct {
	*io.SectionReader
	file *File
	once sync.Once
	err  error
}

// Close releases the view's reference. Subsequent calls are no-ops.
func (s *Section) Close() error {
	s.once.Do(func() {
		s.err = s.file.Release()
	})
	return s.err
}

// Hold acquires a reference for a reader that reads through f by other
// means, such as a decompressor. Closing the returned Closer releases it.
func (f *File) Hold() (io.Closer, error) {
	if err := f.Acquire(); err != nil {
		return nil, err
	}
	return &hold{file: f}, nil
}

type hold struct {
	file *File
	once sync.Once
	err  error
}

func (h *hold) Close() error {
	h.once.Do(func() {
		h.err = h.file.Release()
	})
	return h.err
}
