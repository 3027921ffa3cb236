package roarchive

import (
	"fmt"
	"iter"

	"github.com/meigma/roarchive/internal/index"
	"github.com/meigma/roarchive/internal/pathutil"
)

// indexed is the index-backed part shared by the tar and zip backends.
// The records are kept so the root can be re-resolved by ApplyHint.
type indexed[L any] struct {
	container string
	records   []index.Record[L]
	idx       *index.Index[L]
}

func newIndexed[L any](container string, records []index.Record[L], hint FileHint) (indexed[L], resolution, error) {
	x := indexed[L]{container: container, records: records}
	res, err := x.applyHint(hint)
	return x, res, err
}

// applyHint resolves the root for hint and rebuilds the index under it.
func (x *indexed[L]) applyHint(hint FileHint) (resolution, error) {
	res, err := resolvePrefix(hint, recordPaths(x.records), x.container)
	if err != nil {
		return resolution{}, err
	}
	x.idx = index.Build(x.records, res.prefix)
	return res, nil
}

func (x *indexed[L]) lookup(path string) (L, error) {
	loc, ok := x.idx.Lookup(pathutil.Normalize(path))
	if !ok {
		var zero L
		return zero, ErrFileNotFound
	}
	return loc, nil
}

func (x *indexed[L]) exists(path string) bool {
	return x.idx.Contains(pathutil.Normalize(path))
}

func (x *indexed[L]) list() ([]string, error) {
	return x.idx.Paths(), nil
}

func (x *indexed[L]) findFile(name string) (string, error) {
	return uniqueMatch(name, x.idx.FindByName(name))
}

func (x *indexed[L]) prefix() string {
	return x.idx.Prefix()
}

// locate names a file for diagnostics as container path plus member path.
func (x *indexed[L]) locate(path string) string {
	return x.container + "/" + pathutil.Join(x.idx.Prefix(), pathutil.Normalize(path))
}

func (x *indexed[L]) handlesSchema(string) bool {
	return false
}

func recordPaths[L any](records []index.Record[L]) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, rec := range records {
			if !yield(rec.Path) {
				return
			}
		}
	}
}

// checkFileLimit fails when count exceeds a positive limit.
func checkFileLimit(count, limit int, container string) error {
	if limit > 0 && count > limit {
		return fmt.Errorf("%w: %s holds more than %d files", ErrTooManyFiles, container, limit)
	}
	return nil
}

// uniqueMatch returns the single element of matches.
func uniqueMatch(name string, matches []string) (string, error) {
	switch len(matches) {
	case 0:
		return "", ErrFileNotFound
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %q matches %d files", ErrAmbiguousFile, name, len(matches))
	}
}
