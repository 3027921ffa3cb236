package roarchive

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
)

// backend is a container format reader.
//
// Paths passed to a backend are archive-relative, that is relative to the
// root resolved from the hint.
type backend interface {
	istream(path string) (*IStream, error)
	exists(path string) bool
	list() ([]string, error)
	findFile(name string) (string, error)
	applyHint(hint FileHint) (resolution, error)
	prefix() string
	locate(path string) string
	handlesSchema(schema string) bool
	close() error
}

// RoArchive is a read-only archive backed by a directory, a tar or zip
// file, or a tree served over HTTP.
//
// Files are addressed by slash-separated paths relative to the archive root.
// The root is the container root unless a hint selected a directory inside
// the container. IStream, Exists, FindFile and List may be called
// concurrently; ApplyHint must not run concurrently with other methods.
type RoArchive struct {
	path    string
	typ     string
	backend backend
	used    string
	stamp   fileStamp
	logger  *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// Open opens the container at path, which may be a directory, a tar or zip
// file, or an http or https URL.
//
// The container type is detected from the path unless WithMIME is given.
// Unsupported types fail with ErrNotAnArchive. With a hint, the archive
// root becomes the directory holding the best-ranked hint candidate, and
// Open fails with ErrHintNotFound when no candidate exists in the container.
func Open(path string, opts ...Option) (*RoArchive, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.inlineSep != "" {
		if before, after, ok := strings.Cut(path, cfg.inlineSep); ok {
			path = before
			cfg.hint = FileHint{after}
		}
	}

	a := &RoArchive{path: path, typ: cfg.mime, logger: cfg.logger}
	if a.typ == "" {
		typ, err := classify(path)
		if err != nil {
			return nil, err
		}
		a.typ = typ
	}
	a.log().Debug("opening archive", "path", path, "type", a.typ, "hint", cfg.hint.String())

	var (
		res resolution
		err error
	)
	switch a.typ {
	case TypeDirectory:
		a.backend, res, err = openDirectory(path, &cfg)
	case TypeTar:
		a.backend, res, err = openTarball(path, &cfg)
	case TypeZip:
		a.backend, res, err = openZip(path, &cfg)
	case TypeHTTP:
		a.backend, res, err = openRemote(path, &cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported archive type <%s> of %s", ErrNotAnArchive, a.typ, path)
	}
	if err != nil {
		return nil, err
	}
	a.used = res.used
	if a.typ != TypeHTTP {
		a.stamp = statStamp(path)
	}

	a.log().Debug("opened archive", "path", path, "type", a.typ, "root", res.prefix, "used_hint", res.used)
	return a, nil
}

func (a *RoArchive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// IStream opens the file at path for reading.
//
// Filters are applied in order on top of the raw file data; a filtered
// stream has unknown size and cannot seek. A missing file fails with an
// *ArchiveError wrapping ErrFileNotFound.
func (a *RoArchive) IStream(path string, filters ...Filter) (*IStream, error) {
	s, err := a.backend.istream(path)
	if err != nil {
		return nil, &ArchiveError{Op: "istream", Path: path, Archive: a.path, Err: err}
	}
	if err := s.filter(filters); err != nil {
		s.Close() //nolint:errcheck // best-effort cleanup
		return nil, &ArchiveError{Op: "istream", Path: path, Archive: a.path, Err: err}
	}
	return s, nil
}

// ReadFile reads the whole file at path.
func (a *RoArchive) ReadFile(path string, filters ...Filter) ([]byte, error) {
	s, err := a.IStream(path, filters...)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.ReadAll()
}

// Exists reports whether a file exists at path.
func (a *RoArchive) Exists(path string) bool {
	return a.backend.exists(path)
}

// FindFile returns the path of the only file named name below the root.
// It fails with ErrFileNotFound when there is none and with
// ErrAmbiguousFile when there are several.
func (a *RoArchive) FindFile(name string) (string, error) {
	p, err := a.backend.findFile(name)
	if err != nil {
		return "", &ArchiveError{Op: "find", Path: name, Archive: a.path, Err: err}
	}
	return p, nil
}

// List returns the sorted paths of all files below the root.
// HTTP archives cannot be listed and return errors.ErrUnsupported.
func (a *RoArchive) List() ([]string, error) {
	return a.backend.list()
}

// ApplyHint resolves the archive root again using hint.
// On failure the previous root stays in effect.
func (a *RoArchive) ApplyHint(hint FileHint) error {
	prev := a.backend.prefix()
	res, err := a.backend.applyHint(hint)
	if err != nil {
		return err
	}
	a.used = res.used
	a.log().Debug("applied hint", "path", a.path, "hint", hint.String(), "previous_root", prev, "root", res.prefix)
	return nil
}

// Changed reports whether the container was modified since Open.
// HTTP archives always report false.
func (a *RoArchive) Changed() bool {
	if a.typ == TypeHTTP {
		return false
	}
	return a.stamp.differs(statStamp(a.path))
}

// UsedHint returns the hint candidate that selected the root, if any.
func (a *RoArchive) UsedHint() (string, bool) {
	return a.used, a.used != ""
}

// HandlesSchema reports whether the archive resolves URLs of the given
// scheme itself, which only HTTP archives do for http and https.
func (a *RoArchive) HandlesSchema(schema string) bool {
	return a.backend.handlesSchema(strings.ToLower(schema))
}

// Path returns the container path or URL passed to Open, without any
// inline hint.
func (a *RoArchive) Path() string {
	return a.path
}

// Root returns the container directory used as archive root, "" for the
// container root.
func (a *RoArchive) Root() string {
	return a.backend.prefix()
}

// Resolve returns the location of path for diagnostics: a filesystem path
// for directories, a URL for HTTP archives and the container path joined
// with the member path otherwise. Absolute paths are returned unchanged.
func (a *RoArchive) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return a.backend.locate(path)
}

// Type returns the container type signature, e.g. TypeTar.
func (a *RoArchive) Type() string {
	return a.typ
}

// Close releases the container. Open streams stay readable until they are
// closed themselves. Closing twice is a no-op.
func (a *RoArchive) Close() error {
	a.closeOnce.Do(func() {
		a.closeErr = a.backend.close()
	})
	return a.closeErr
}
