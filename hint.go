package roarchive

import (
	"fmt"
	"iter"
	"strings"

	"github.com/meigma/roarchive/internal/pathutil"
)

// FileHint lists candidate root-marker file names, best first.
//
// The archive root is the directory holding the best-ranked candidate found
// in the container. A candidate is usually a bare file name such as
// "metadata.json"; a candidate with directory components matches paths
// ending in it, and the root is the directory above those components.
//
// Order matters: the matcher stops scanning as soon as the first candidate
// is found, so callers must pass candidates ranked best-to-worst.
type FileHint []string

// String returns the candidates joined by commas.
func (h FileHint) String() string {
	return strings.Join(h, ",")
}

// IsEmpty reports whether the hint has no usable candidate. Candidates that
// normalize to the empty path, such as "" or "/", are ignored.
func (h FileHint) IsEmpty() bool {
	for _, cand := range h {
		if pathutil.Normalize(cand) != "" {
			return false
		}
	}
	return true
}

// Matcher returns a new matcher for the hint.
func (h FileHint) Matcher() *Matcher {
	return &Matcher{hint: h, bestIndex: len(h)}
}

// Matcher tracks the best candidate seen while walking container paths.
type Matcher struct {
	hint      FileHint
	bestIndex int
	bestMatch string
}

// Match offers a container path to the matcher. It reports true once the
// top-ranked candidate has matched, since no better match can follow.
// A matcher without candidates never reports true.
func (m *Matcher) Match(path string) bool {
	for i := 0; i < m.bestIndex; i++ {
		if matchesCandidate(path, m.hint[i]) {
			m.bestIndex = i
			m.bestMatch = path
			break
		}
	}
	return len(m.hint) > 0 && m.bestIndex == 0
}

// Best returns the path of the best match so far.
func (m *Matcher) Best() (string, bool) {
	if m.bestIndex >= len(m.hint) {
		return "", false
	}
	return m.bestMatch, true
}

// Candidate returns the hint candidate that produced the best match.
func (m *Matcher) Candidate() (string, bool) {
	if m.bestIndex >= len(m.hint) {
		return "", false
	}
	return m.hint[m.bestIndex], true
}

// root returns the container directory implied by the best match.
func (m *Matcher) root() (string, bool) {
	best, ok := m.Best()
	if !ok {
		return "", false
	}
	cand := pathutil.Normalize(m.hint[m.bestIndex])
	return strings.TrimSuffix(strings.TrimSuffix(best, cand), "/"), true
}

func matchesCandidate(path, candidate string) bool {
	candidate = pathutil.Normalize(candidate)
	if candidate == "" {
		return false
	}
	if !strings.Contains(candidate, "/") {
		return pathutil.Base(path) == candidate
	}
	return path == candidate || strings.HasSuffix(path, "/"+candidate)
}

// resolution is the outcome of resolving a hint against a container.
type resolution struct {
	prefix string // container directory adopted as archive root
	used   string // hint candidate that matched, empty without a hint
}

// resolvePrefix walks container paths with the hint matcher and adopts the
// directory of the best match as archive root. Without a hint the root is
// the container root.
func resolvePrefix(hint FileHint, paths iter.Seq[string], archive string) (resolution, error) {
	if hint.IsEmpty() {
		return resolution{}, nil
	}
	m := hint.Matcher()
	for p := range paths {
		if m.Match(pathutil.Normalize(p)) {
			break
		}
	}
	prefix, ok := m.root()
	if !ok {
		return resolution{}, fmt.Errorf("%w: no %q found in the archive at %s", ErrHintNotFound, hint.String(), archive)
	}
	used, _ := m.Candidate()
	return resolution{prefix: prefix, used: used}, nil
}
