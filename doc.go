// Package roarchive provides read-only access to files in archive-like
// containers: plain directories, tar and zip archives, and trees served
// over HTTP.
//
// Callers open a container once and read files by relative path without
// knowing which container type backs it. Streams report their size and
// seekability, which depend on the container:
//   - Directory files and tar members: sized and seekable
//   - Zip members: sized; seekable when stored uncompressed
//   - HTTP files: sized when the server reports a length; seekable with
//     [WithRangeReads] on servers that support range requests
//
// # Quick Start
//
//	archive, err := roarchive.Open("tileset.tar", roarchive.WithHint("metadata.json"))
//	if err != nil {
//	    return err
//	}
//	defer archive.Close()
//
//	data, err := archive.ReadFile("metadata.json")
//
// # Root Hints
//
// Archives often wrap their content in one or more directories. A hint
// names marker files, best first; the directory holding the best-ranked
// marker becomes the archive root and every path is resolved against it.
// With [WithInlineHint] the hint can be appended to the path itself:
//
//	archive, err := roarchive.Open("bundle.zip:metadata.json", roarchive.WithInlineHint(":"))
//
// # Caching
//
// HTTP files can be kept in a local cache so repeated reads do not hit the
// network:
//
//	c, err := disk.New("/var/cache/roarchive")
//	if err != nil {
//	    return err
//	}
//	archive, err := roarchive.Open("https://example.com/tiles", roarchive.WithCache(c))
package roarchive
