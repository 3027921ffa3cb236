package roarchive

import (
	"fmt"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"

	"github.com/meigma/roarchive/internal/index"
	"github.com/meigma/roarchive/internal/sizing"
	"github.com/meigma/roarchive/internal/substream"
)

// zipArchive serves files of a zip archive.
//
// Stored members are sections of the shared file handle and can seek.
// Compressed members are decoded on the fly; they have a known size but
// cannot seek. Zstandard members (methods 93 and 20) are supported in
// addition to store and deflate.
type zipArchive struct {
	indexed[*zip.File]
	file *substream.File
}

func openZip(path string, cfg *config) (*zipArchive, resolution, error) {
	f, err := substream.Open(path)
	if err != nil {
		return nil, resolution{}, err
	}
	records, err := scanZip(f)
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
	return &zipArchive{indexed: x, file: f}, res, nil
}

// scanZip reads the central directory and records every non-directory member.
func scanZip(f *substream.File) ([]index.Record[*zip.File], error) {
	zr, err := zip.NewReader(f, f.Size())
	if err != nil {
		return nil, fmt.Errorf("read zip directory of %s: %w", f.Name(), err)
	}
	zr.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())
	zr.RegisterDecompressor(zstd.ZipMethodPKWare, zstd.ZipDecompressor())

	records := make([]index.Record[*zip.File], 0, len(zr.File))
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		records = append(records, index.Record[*zip.File]{Path: zf.Name, Locator: zf})
	}
	return records, nil
}

func (z *zipArchive) istream(path string) (*IStream, error) {
	zf, err := z.lookup(path)
	if err != nil {
		return nil, err
	}
	size, err := sizing.ToInt64(zf.UncompressedSize64, errFileTooLarge)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if zf.Method == zip.Store {
		off, err := zf.DataOffset()
		if err != nil {
			return nil, fmt.Errorf("locate %s: %w", path, err)
		}
		end, ok := sizing.End(off, size)
		if !ok {
			return nil, fmt.Errorf("locate %s: invalid data offset %d", path, off)
		}
		section, err := z.file.Section(off, end)
		if err != nil {
			return nil, err
		}
		return newIStream(path, section, size, section), nil
	}

	hold, err := z.file.Hold()
	if err != nil {
		return nil, err
	}
	rc, err := zf.Open()
	if err != nil {
		hold.Close() //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return newIStream(path, rc, size, hold, rc), nil
}

func (z *zipArchive) close() error {
	return z.file.Release()
}
