// Package pathutil provides path manipulation for slash-separated archive paths.
package pathutil

import "strings"

// Normalize converts a container record path or a caller-supplied path to
// the form used as an index key.
//
// It strips leading "/" and "./" elements and trailing slashes, and collapses
// consecutive slashes. The container root normalizes to "".
func Normalize(p string) string {
	parts := strings.Split(p, "/")
	result := parts[:0] // reuse backing array
	for _, part := range parts {
		if part == "" {
			continue
		}
		if part == "." && len(result) == 0 {
			continue
		}
		result = append(result, part)
	}
	return strings.Join(result, "/")
}

// Base returns the last element of a slash-separated path.
// If path is empty or ".", it returns ".".
func Base(path string) string {
	if path == "" || path == "." {
		return "."
	}
	// Remove trailing slash if present
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Dir returns all but the last element of a normalized path.
// Top-level paths have the empty directory.
func Dir(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i]
	}
	return ""
}

// HasPrefix reports whether path lies under the directory prefix,
// comparing whole path components.
func HasPrefix(path, prefix string) bool {
	if prefix == "" {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// CutPrefix strips the directory prefix from path.
// ok is false when path does not lie under prefix.
func CutPrefix(path, prefix string) (rest string, ok bool) {
	if !HasPrefix(path, prefix) {
		return path, false
	}
	if prefix == "" {
		return path, true
	}
	return path[len(prefix)+1:], true
}

// Join joins a directory prefix and a relative path.
func Join(prefix, path string) string {
	switch {
	case prefix == "":
		return path
	case path == "":
		return prefix
	default:
		return prefix + "/" + path
	}
}
