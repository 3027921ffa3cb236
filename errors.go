package roarchive

import "errors"

// Sentinel errors.
var (
	// ErrNotAnArchive is returned when the container type is not supported.
	ErrNotAnArchive = errors.New("roarchive: not an archive")

	// ErrFileNotFound is returned when a path is not present in the archive.
	ErrFileNotFound = errors.New("roarchive: file not found")

	// ErrHintNotFound is returned when no file in the container matches the root hint.
	ErrHintNotFound = errors.New("roarchive: hint not found")

	// ErrTooManyFiles is returned when the file count exceeds the configured limit.
	ErrTooManyFiles = errors.New("roarchive: too many files")

	// ErrAmbiguousFile is returned by FindFile when more than one file has the name.
	ErrAmbiguousFile = errors.New("roarchive: ambiguous file name")

	// ErrNotSeekable is returned by Seek on streams that cannot seek.
	ErrNotSeekable = errors.New("roarchive: stream is not seekable")
)

// ArchiveError records a failed operation on a file inside an archive.
type ArchiveError struct {
	Op      string // operation, e.g. "istream"
	Path    string // archive-relative path
	Archive string // path or URL of the container
	Err     error
}

func (e *ArchiveError) Error() string {
	return e.Op + " " + e.Path + " (archive " + e.Archive + "): " + e.Err.Error()
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}
