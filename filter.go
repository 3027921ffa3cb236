package roarchive

import (
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// GzipFilter decodes a gzip-compressed file.
func GzipFilter(r io.Reader) (io.Reader, error) {
	return gzip.NewReader(r)
}

// ZstdFilter decodes a zstd-compressed file.
func ZstdFilter(r io.Reader) (io.Reader, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return zstdReadCloser{dec}, nil
}

// zstdReadCloser adapts zstd.Decoder, whose Close has no error result.
type zstdReadCloser struct {
	*zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}
