// Package http reads files from remote trees served over HTTP.
//
// A [Tree] addresses files relative to a base URL and offers metadata
// probes and sequential downloads. A [Source] gives random access to a
// single remote file using HTTP range requests; it satisfies io.ReaderAt
// so it can back seekable section readers.
package http //nolint:revive // intentional naming for domain clarity
