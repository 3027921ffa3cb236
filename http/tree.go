package http //nolint:revive // intentional naming for domain clarity

import (
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
)

// ErrNotFound is returned when the server reports 404 for a file.
var ErrNotFound = errors.New("http: not found")

// Metadata describes a remote file.
type Metadata struct {
	// Size is the content length, or -1 when the server did not report it.
	Size int64

	// ETag and LastModified are cache validators, empty when absent.
	ETag         string
	LastModified string
}

// Tree addresses files relative to a base URL.
// A Tree is safe for concurrent use.
type Tree struct {
	cfg  config
	base *url.URL
	opts []Option
}

// NewTree creates a Tree rooted at base, which must be an http or https URL.
func NewTree(base string, opts ...Option) (*Tree, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: unsupported scheme %q", base, u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	u.Fragment = ""
	return &Tree{cfg: newConfig(opts), base: u, opts: opts}, nil
}

// Base returns the base URL of the tree.
func (t *Tree) Base() string {
	return t.base.String()
}

// URL resolves a slash-separated relative path against the base URL.
func (t *Tree) URL(path string) string {
	if path == "" {
		return t.base.String()
	}
	return t.base.JoinPath(strings.Split(path, "/")...).String()
}

// Stat returns metadata of the file at path without downloading it.
func (t *Tree) Stat(path string) (Metadata, error) {
	return head(&t.cfg, t.URL(path))
}

// Get starts a download of the file at path.
// The caller must close the returned body.
func (t *Tree) Get(path string) (io.ReadCloser, Metadata, error) {
	u := t.URL(path)
	req, err := newRequest(&t.cfg, nethttp.MethodGet, u)
	if err != nil {
		return nil, Metadata{}, err
	}
	resp, err := t.cfg.client.Do(req)
	if err != nil {
		return nil, Metadata{}, err
	}
	if err := checkStatus(resp, u); err != nil {
		drain(resp.Body)
		return nil, Metadata{}, err
	}
	return resp.Body, metadataFrom(resp), nil
}

// Source opens a range-request Source for the file at path.
func (t *Tree) Source(path string) (*Source, error) {
	return NewSource(t.URL(path), t.opts...)
}

// head performs a HEAD request, falling back to GET when the server
// does not allow HEAD.
func head(cfg *config, u string) (Metadata, error) {
	req, err := newRequest(cfg, nethttp.MethodHead, u)
	if err != nil {
		return Metadata{}, err
	}
	resp, err := cfg.client.Do(req)
	if err != nil {
		return Metadata{}, err
	}
	defer drain(resp.Body)

	if resp.StatusCode == nethttp.StatusMethodNotAllowed {
		req, err = newRequest(cfg, nethttp.MethodGet, u)
		if err != nil {
			return Metadata{}, err
		}
		get, err := cfg.client.Do(req)
		if err != nil {
			return Metadata{}, err
		}
		defer get.Body.Close()
		resp = get
	}
	if err := checkStatus(resp, u); err != nil {
		return Metadata{}, err
	}
	return metadataFrom(resp), nil
}

func checkStatus(resp *nethttp.Response, u string) error {
	switch {
	case resp.StatusCode == nethttp.StatusNotFound || resp.StatusCode == nethttp.StatusGone:
		return fmt.Errorf("%w: %s", ErrNotFound, u)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("request %s: %s", u, resp.Status)
	default:
		return nil
	}
}

func metadataFrom(resp *nethttp.Response) Metadata {
	return Metadata{
		Size:         resp.ContentLength,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}
}
