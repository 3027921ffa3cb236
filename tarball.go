package roarchive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"

	"github.com/meigma/roarchive/internal/index"
	"github.com/meigma/roarchive/internal/sizing"
	"github.com/meigma/roarchive/internal/substream"
)

// tarSpan locates the data of a tar member: [start, end) in the archive.
type tarSpan struct {
	start, end int64
}

// tarball serves files of an uncompressed tar archive.
//
// The archive is scanned once at open for member headers and data offsets.
// Streams are sections of one shared file handle read with ReadAt, so any
// number of them can be open at once.
type tarball struct {
	indexed[tarSpan]
	file *substream.File
}

func openTarball(path string, cfg *config) (*tarball, resolution, error) {
	f, err := substream.Open(path)
	if err != nil {
		return nil, resolution{}, err
	}
	records, err := scanTar(f)
	if err == nil {
		err = checkFileLimit(len(records), cfg.fileLimit, path)
	}
	if err != nil {
		f.Release() //nolint:errcheck // best-effort cleanup
		return nil, resolution{}, err
	}

	x, res, err := newIndexed(path, records, cfg.hint)
	if err != nil {
		f.Release() //nolint:errcheck // best-effort cleanup
		return nil, resolution{}, err
	}
	return &tarball{indexed: x, file: f}, res, nil
}

// scanTar records the data span of every regular file in the archive.
func scanTar(f *substream.File) ([]index.Record[tarSpan], error) {
	sr := io.NewSectionReader(f, 0, f.Size())
	tr := tar.NewReader(sr)

	var records []index.Record[tarSpan]
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read tar header in %s: %w", f.Name(), err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		// tar.Reader consumes headers exactly, so the section is positioned
		// at the member data.
		start, err := sr.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, fmt.Errorf("locate %s in %s: %w", hdr.Name, f.Name(), err)
		}
		end, ok := sizing.End(start, hdr.Size)
		if !ok || end > f.Size() {
			return nil, fmt.Errorf("%s in %s: %w", hdr.Name, f.Name(), io.ErrUnexpectedEOF)
		}
		records = append(records, index.Record[tarSpan]{
			Path:    hdr.Name,
			Locator: tarSpan{start: start, end: end},
		})
	}
}

func (t *tarball) istream(path string) (*IStream, error) {
	span, err := t.lookup(path)
	if err != nil {
		return nil, err
	}
	section, err := t.file.Section(span.start, span.end)
	if err != nil {
		return nil, err
	}
	return newIStream(path, section, span.end-span.start, section), nil
}

func (t *tarball) close() error {
	return t.file.Release()
}
