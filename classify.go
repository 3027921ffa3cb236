package roarchive

import (
	"fmt"
	"net/url"
	"os"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

// Container type signatures.
const (
	TypeDirectory = "inode/directory"
	TypeTar       = "application/x-tar"
	TypeZip       = "application/zip"
	TypeHTTP      = "http"
)

// magicReadLimit is the number of leading bytes inspected when sniffing.
const magicReadLimit = 3072

// knownTypes are the sniffed signatures with a backend.
var knownTypes = []string{TypeTar, TypeZip}

var initMagic sync.Once

// classify returns the container type signature of path.
//
// URLs with an http or https scheme are classified by scheme alone.
// Directories are recognized by stat, files by content sniffing. A sniffed
// type that is a specialization of a known container (a jar is a zip) is
// reported as that container; any other type is returned as detected.
func classify(path string) (string, error) {
	if isHTTPURL(path) {
		return TypeHTTP, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("classify %s: %w", path, err)
	}
	if info.IsDir() {
		return TypeDirectory, nil
	}

	initMagic.Do(func() {
		mimetype.SetLimit(magicReadLimit)
	})
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("classify %s: %w", path, err)
	}
	for t := mtype; t != nil; t = t.Parent() {
		for _, known := range knownTypes {
			if t.Is(known) {
				return known, nil
			}
		}
	}
	return mtype.String(), nil
}

// isHTTPURL reports whether path parses as an http or https URL.
func isHTTPURL(path string) bool {
	u, err := url.Parse(path)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
