// Package index provides the in-memory path index for opened containers.
//
// An index is built once from the records a container reader reports,
// projected onto the archive root prefix, and never modified afterwards.
// Entries are kept sorted so lookups are O(log n).
package index
