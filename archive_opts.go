package roarchive

import (
	"log/slog"
	nethttp "net/http"

	"github.com/meigma/roarchive/cache"
	"github.com/meigma/roarchive/http"
)

// Option configures Open.
type Option func(*config)

type config struct {
	hint       FileHint
	inlineSep  string
	mime       string
	fileLimit  int
	logger     *slog.Logger
	httpOpts   []http.Option
	rangeReads bool
	cache      cache.Cache
}

// WithHint sets the root hint: candidate marker file names, best first.
// The archive root becomes the directory holding the best match.
func WithHint(hint ...string) Option {
	return func(c *config) {
		c.hint = FileHint(hint)
	}
}

// WithInlineHint lets the archive path carry its own hint.
//
// When sep occurs in the path passed to Open, the path is split at the first
// occurrence: the part before is the container path and the part after is a
// single-candidate hint that replaces any WithHint value. A container path
// that itself contains sep cannot be opened this way.
func WithInlineHint(sep string) Option {
	return func(c *config) {
		c.inlineSep = sep
	}
}

// WithMIME skips content detection and opens the container as the given
// type signature, e.g. TypeTar.
func WithMIME(signature string) Option {
	return func(c *config) {
		c.mime = signature
	}
}

// WithFileLimit caps the number of files a container may hold.
// Tar and zip containers with more files fail to open with ErrTooManyFiles.
// Directories are not counted at open without a hint; their limit applies
// while walking the tree for hint resolution, List and FindFile.
// Set n to 0 to disable the limit.
func WithFileLimit(n int) Option {
	return func(c *config) {
		c.fileLimit = n
	}
}

// WithLogger sets a logger for the archive.
// If nil, a discard logger is used (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithHTTPClient sets the client used by the HTTP backend.
func WithHTTPClient(client *nethttp.Client) Option {
	return func(c *config) {
		c.httpOpts = append(c.httpOpts, http.WithClient(client))
	}
}

// WithHTTPHeaders adds headers to every request made by the HTTP backend.
func WithHTTPHeaders(headers nethttp.Header) Option {
	return func(c *config) {
		c.httpOpts = append(c.httpOpts, http.WithHeaders(headers))
	}
}

// WithRangeReads makes HTTP streams seekable by serving reads with range
// requests. Servers without range support fall back to a plain GET.
func WithRangeReads(enabled bool) Option {
	return func(c *config) {
		c.rangeReads = enabled
	}
}

// WithCache stores files fetched by the HTTP backend in c and serves
// repeated reads from it.
func WithCache(c cache.Cache) Option {
	return func(cfg *config) {
		cfg.cache = c
	}
}
