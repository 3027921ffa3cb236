// Package sizing provides overflow-checked size arithmetic for archive
// member offsets and lengths.
package sizing

import "math"

// ToInt converts a uint64 to int, returning overflowErr if it doesn't fit.
func ToInt(size uint64, overflowErr error) (int, error) {
	if size > uint64(math.MaxInt) {
		return 0, overflowErr
	}
	return int(size), nil
}

// ToInt64 converts a uint64 to int64, returning overflowErr if it doesn't fit.
func ToInt64(size uint64, overflowErr error) (int64, error) {
	if size > uint64(math.MaxInt64) {
		return 0, overflowErr
	}
	return int64(size), nil
}

// End returns off+size, the end of a byte range, with ok false when either
// value is negative or the sum overflows.
func End(off, size int64) (int64, bool) {
	if off < 0 || size < 0 || off > math.MaxInt64-size {
		return 0, false
	}
	return off + size, true
}
