package roarchive

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/meigma/roarchive/internal/sizing"
)

// streamBufferSize is the read buffer installed on every stream.
const streamBufferSize = 64 << 10

// Filter wraps a file stream, typically to decode it.
// A Closer returned by a filter is closed together with the stream.
type Filter func(io.Reader) (io.Reader, error)

// IStream is an open file inside an archive.
//
// It reads through its own 64 KiB buffer. Streams are independent of each
// other and may be used from different goroutines; a single IStream is not
// safe for concurrent use. Close releases the buffer and the stream's hold
// on the container; the container itself stays open.
type IStream struct {
	path    string
	size    int64 // -1 when unknown
	raw     *rawStream
	seeker  io.Seeker // nil when not seekable
	buf     *bufio.Reader
	closers []io.Closer
	closed  bool
}

// newIStream wraps r as the stream of the file at path. size is -1 when
// unknown. The stream is seekable when r implements io.Seeker. closers are
// closed in reverse order on Close.
func newIStream(path string, r io.Reader, size int64, closers ...io.Closer) *IStream {
	raw := &rawStream{r: r, size: size}
	s := &IStream{
		path:    path,
		size:    size,
		raw:     raw,
		closers: closers,
	}
	if seeker, ok := r.(io.Seeker); ok {
		raw.seeker = seeker
		s.seeker = raw
	}
	s.buf = bufio.NewReaderSize(raw, streamBufferSize)
	return s
}

// filter stacks filters on top of the stream. Filtered streams have unknown
// size and cannot seek.
func (s *IStream) filter(filters []Filter) error {
	if len(filters) == 0 {
		return nil
	}
	var r io.Reader = s.raw
	for _, f := range filters {
		next, err := f(r)
		if err != nil {
			return fmt.Errorf("filter %s: %w", s.path, err)
		}
		if c, ok := next.(io.Closer); ok {
			s.closers = append(s.closers, c)
		}
		r = next
	}
	s.size = -1
	s.seeker = nil
	s.buf.Reset(r)
	return nil
}

// Read reads from the file. Reading past the end returns io.EOF; a file
// that ends before its recorded size returns io.ErrUnexpectedEOF.
func (s *IStream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, fmt.Errorf("read %s: %w", s.path, errStreamClosed)
	}
	return s.buf.Read(p)
}

// Path returns the archive-relative path of the file.
func (s *IStream) Path() string {
	return s.path
}

// Size returns the file size if the container records it.
func (s *IStream) Size() (int64, bool) {
	return s.size, s.size >= 0
}

// Seekable reports whether Seek is supported.
func (s *IStream) Seekable() bool {
	return s.seeker != nil
}

// Seek implements io.Seeker for seekable streams and returns ErrNotSeekable
// otherwise. Buffered data is discarded.
func (s *IStream) Seek(offset int64, whence int) (int64, error) {
	if s.seeker == nil {
		return 0, fmt.Errorf("seek %s: %w", s.path, ErrNotSeekable)
	}
	if s.closed {
		return 0, fmt.Errorf("seek %s: %w", s.path, errStreamClosed)
	}
	if whence == io.SeekCurrent {
		offset -= int64(s.buf.Buffered())
	}
	pos, err := s.seeker.Seek(offset, whence)
	s.buf.Reset(s.raw)
	return pos, err
}

// Close releases the stream. Closing twice is a no-op.
func (s *IStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.buf = nil

	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// ReadAll reads the whole file.
//
// With a known size it allocates exactly that many bytes. Otherwise a
// seekable stream is measured by seeking to its end and rewound. Only
// streams that are neither sized nor seekable are copied into a growing
// buffer.
func (s *IStream) ReadAll() ([]byte, error) {
	if size, ok := s.Size(); ok {
		return s.readExactly(size)
	}

	if s.Seekable() {
		end, err := s.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, err
		}
		if _, err := s.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return s.readExactly(end)
	}

	var out bytes.Buffer
	if _, err := io.Copy(&out, s); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return out.Bytes(), nil
}

func (s *IStream) readExactly(size int64) ([]byte, error) {
	n, err := sizing.ToInt(uint64(size), errFileTooLarge) //nolint:gosec // size is non-negative
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(s, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return buf, nil
}

var (
	errStreamClosed = errors.New("stream closed")
	errFileTooLarge = errors.New("file too large for memory")
)

// rawStream tracks the read position of the unbuffered source so that a
// premature EOF on a sized file is reported as truncation.
type rawStream struct {
	r      io.Reader
	seeker io.Seeker
	size   int64
	pos    int64
}

func (r *rawStream) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.pos += int64(n)
	if err == io.EOF && r.size >= 0 && r.pos < r.size {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

func (r *rawStream) Seek(offset int64, whence int) (int64, error) {
	pos, err := r.seeker.Seek(offset, whence)
	if err != nil {
		return pos, err
	}
	r.pos = pos
	return pos, nil
}
