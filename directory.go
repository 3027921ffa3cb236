package roarchive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/meigma/roarchive/internal/pathutil"
)

// directory serves files of a plain directory tree.
//
// Nothing is indexed up front: paths are resolved against the root on every
// call and Exists asks the filesystem. Absolute paths are used as given.
type directory struct {
	path      string // container directory
	root      string // slash-separated root below path, "" for path itself
	fileLimit int
}

func openDirectory(path string, cfg *config) (*directory, resolution, error) {
	d := &directory{path: path, fileLimit: cfg.fileLimit}
	res, err := d.applyHint(cfg.hint)
	if err != nil {
		return nil, resolution{}, err
	}
	return d, res, nil
}

// dir returns the filesystem directory of the archive root.
func (d *directory) dir() string {
	return filepath.Join(d.path, filepath.FromSlash(d.root))
}

func (d *directory) locate(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(d.dir(), filepath.FromSlash(pathutil.Normalize(path)))
}

// target returns the filesystem path of a file. Relative paths must stay
// below the archive root; ok is false for paths such as "../README".
func (d *directory) target(path string) (string, bool) {
	if filepath.IsAbs(path) {
		return path, true
	}
	rel := filepath.FromSlash(pathutil.Normalize(path))
	if !filepath.IsLocal(rel) {
		return "", false
	}
	return filepath.Join(d.dir(), rel), true
}

func (d *directory) istream(path string) (*IStream, error) {
	name, ok := d.target(path)
	if !ok {
		return nil, ErrFileNotFound
	}
	f, err := os.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close() //nolint:errcheck // best-effort cleanup
		return nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close() //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("%w: not a regular file", ErrFileNotFound)
	}
	return newIStream(path, f, info.Size(), f), nil
}

func (d *directory) exists(path string) bool {
	name, ok := d.target(path)
	if !ok {
		return false
	}
	info, err := os.Stat(name)
	return err == nil && info.Mode().IsRegular()
}

// walk visits the regular files below the archive root in lexical order,
// passing root-relative slash paths. It stops early when fn returns false.
func (d *directory) walk(root string, fn func(path string) bool) error {
	count := 0
	err := fs.WalkDir(os.DirFS(root), ".", func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		count++
		if err := checkFileLimit(count, d.fileLimit, d.path); err != nil {
			return err
		}
		if !fn(p) {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", root, err)
	}
	return nil
}

func (d *directory) list() ([]string, error) {
	var paths []string
	err := d.walk(d.dir(), func(p string) bool {
		paths = append(paths, p)
		return true
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (d *directory) findFile(name string) (string, error) {
	var matches []string
	err := d.walk(d.dir(), func(p string) bool {
		if pathutil.Base(p) == name {
			matches = append(matches, p)
		}
		return true
	})
	if err != nil {
		return "", err
	}
	return uniqueMatch(name, matches)
}

// applyHint walks the whole container, not just the current root.
func (d *directory) applyHint(hint FileHint) (resolution, error) {
	if hint.IsEmpty() {
		d.root = ""
		return resolution{}, nil
	}

	var walkErr error
	paths := func(yield func(string) bool) {
		walkErr = d.walk(d.path, yield)
	}
	res, err := resolvePrefix(hint, paths, d.path)
	if walkErr != nil {
		return resolution{}, walkErr
	}
	if err != nil {
		return resolution{}, err
	}
	d.root = res.prefix
	return res, nil
}

func (d *directory) prefix() string {
	return d.root
}

func (d *directory) handlesSchema(string) bool {
	return false
}

func (d *directory) close() error {
	return nil
}
