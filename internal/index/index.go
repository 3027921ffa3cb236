package index

import (
	"slices"
	"sort"
	"strings"

	"github.com/meigma/roarchive/internal/pathutil"
)

// Record is a single file reported by a container reader.
// L is the format-specific locator needed to open the file later.
type Record[L any] struct {
	Path    string
	Locator L
}

// Index maps archive-relative paths to locators.
//
// Entries are sorted by path, so lookups are O(log n). An Index is immutable after Build and safe for
// concurrent use.
type Index[L any] struct {
	prefix  string
	entries []Record[L]
}

// Build projects records into an index rooted at prefix.
//
// Record paths are normalized first. Records outside prefix are omitted and
// the prefix is stripped from the rest. When a path occurs more than once the
// first record wins.
func Build[L any](records []Record[L], prefix string) *Index[L] {
	prefix = pathutil.Normalize(prefix)
	entries := make([]Record[L], 0, len(records))
	for _, rec := range records {
		rel, ok := pathutil.CutPrefix(pathutil.Normalize(rec.Path), prefix)
		if !ok || rel == "" {
			continue
		}
		entries = append(entries, Record[L]{Path: rel, Locator: rec.Locator})
	}

	// Stable sort keeps container order among duplicates so the first wins.
	slices.SortStableFunc(entries, func(a, b Record[L]) int {
		return strings.Compare(a.Path, b.Path)
	})
	entries = slices.CompactFunc(entries, func(a, b Record[L]) bool {
		return a.Path == b.Path
	})

	return &Index[L]{prefix: prefix, entries: entries}
}

// Prefix returns the container directory the index is rooted at.
func (idx *Index[L]) Prefix() string {
	return idx.prefix
}

// Lookup returns the locator for the given archive-relative path.
func (idx *Index[L]) Lookup(path string) (L, bool) {
	i, ok := idx.search(path)
	if !ok {
		var zero L
		return zero, false
	}
	return idx.entries[i].Locator, true
}

// Contains reports whether path is indexed.
func (idx *Index[L]) Contains(path string) bool {
	_, ok := idx.search(path)
	return ok
}

// Paths returns all indexed paths in sorted order.
func (idx *Index[L]) Paths() []string {
	paths := make([]string, len(idx.entries))
	for i, e := range idx.entries {
		paths[i] = e.Path
	}
	return paths
}

// FindByName returns the paths of all entries whose last path component
// equals name, in sorted order.
func (idx *Index[L]) FindByName(name string) []string {
	var found []string
	for _, e := range idx.entries {
		if pathutil.Base(e.Path) == name {
			found = append(found, e.Path)
		}
	}
	return found
}

func (idx *Index[L]) search(path string) (int, bool) {
	i := sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].Path >= path
	})
	if i < len(idx.entries) && idx.entries[i].Path == path {
		return i, true
	}
	return 0, false
}
