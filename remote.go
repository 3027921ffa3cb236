package roarchive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/meigma/roarchive/cache"
	"github.com/meigma/roarchive/http"
	"github.com/meigma/roarchive/internal/pathutil"
)

// remote serves files of a tree published over HTTP.
//
// A remote tree cannot be listed, so the root hint is resolved by probing
// base/candidate for each candidate in order. Files are downloaded with GET
// or, with range reads enabled, read through range requests. The tree is
// treated as static input: Changed never reports a modification and cached
// files stay valid until evicted.
type remote struct {
	tree       *http.Tree
	root       string
	rangeReads bool
	cache      cache.Cache
	fills      singleflight.Group
	logger     *slog.Logger
}

func openRemote(url string, cfg *config) (*remote, resolution, error) {
	tree, err := http.NewTree(url, cfg.httpOpts...)
	if err != nil {
		return nil, resolution{}, err
	}
	r := &remote{
		tree:       tree,
		rangeReads: cfg.rangeReads,
		cache:      cfg.cache,
		logger:     cfg.logger,
	}
	res, err := r.applyHint(cfg.hint)
	if err != nil {
		return nil, resolution{}, err
	}
	return r, res, nil
}

// applyHint probes the candidates against the base URL in order.
// Candidates are probed at the tree base only, not in subdirectories.
func (r *remote) applyHint(hint FileHint) (resolution, error) {
	for _, cand := range hint {
		cand = pathutil.Normalize(cand)
		if cand == "" {
			continue
		}
		_, err := r.tree.Stat(cand)
		if errors.Is(err, http.ErrNotFound) {
			continue
		}
		if err != nil {
			return resolution{}, fmt.Errorf("probe hint %s: %w", cand, err)
		}
		r.root = pathutil.Dir(cand)
		return resolution{prefix: r.root, used: cand}, nil
	}
	if hint.IsEmpty() {
		r.root = ""
		return resolution{}, nil
	}
	return resolution{}, fmt.Errorf("%w: no %q found in the archive at %s", ErrHintNotFound, hint.String(), r.tree.Base())
}

func (r *remote) rel(path string) string {
	return pathutil.Join(r.root, pathutil.Normalize(path))
}

func (r *remote) locate(path string) string {
	return r.tree.URL(r.rel(path))
}

func (r *remote) istream(path string) (*IStream, error) {
	rel := r.rel(path)
	if r.cache != nil {
		return r.cached(path, rel)
	}
	if r.rangeReads {
		src, err := r.tree.Source(rel)
		switch {
		case err == nil:
			return newIStream(path, io.NewSectionReader(src, 0, src.Size()), src.Size()), nil
		case errors.Is(err, http.ErrRangeUnsupported):
			r.log().Debug("range reads unsupported, downloading", "url", r.tree.URL(rel))
		default:
			return nil, notFound(err)
		}
	}
	return r.get(path, rel)
}

func (r *remote) get(path, rel string) (*IStream, error) {
	body, meta, err := r.tree.Get(rel)
	if err != nil {
		return nil, notFound(err)
	}
	return newIStream(path, body, meta.Size, body), nil
}

// cached serves path from the cache, filling it on a miss. Concurrent
// misses for one URL share a single download.
func (r *remote) cached(path, rel string) (*IStream, error) {
	url := r.tree.URL(rel)
	key := cache.Key(url)
	if f, ok := r.cache.Get(key); ok {
		r.log().Debug("istream cache hit", "url", url)
		return cachedStream(path, f)
	}

	r.log().Debug("istream cache miss", "url", url)
	_, err, _ := r.fills.Do(string(key), func() (any, error) {
		// Double-check after acquiring singleflight
		if f, ok := r.cache.Get(key); ok {
			_ = f.Close()
			return struct{}{}, nil //nolint:nilnil // cache filled by an earlier call
		}
		body, meta, err := r.tree.Get(rel)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		// A short body must not be cached as the whole file.
		return struct{}{}, r.cache.Put(key, &rawStream{r: body, size: meta.Size})
	})
	if err != nil {
		if errors.Is(err, http.ErrNotFound) {
			return nil, notFound(err)
		}
		r.log().Warn("cache fill failed", "url", url, "error", err)
		return r.get(path, rel)
	}

	if f, ok := r.cache.Get(key); ok {
		return cachedStream(path, f)
	}
	// The cache declined the file, e.g. because it exceeds the size limit.
	return r.get(path, rel)
}

func cachedStream(path string, f fs.File) (*IStream, error) {
	info, err := f.Stat()
	if err != nil {
		f.Close() //nolint:errcheck // best-effort cleanup
		return nil, err
	}
	return newIStream(path, f, info.Size(), f), nil
}

func (r *remote) exists(path string) bool {
	_, err := r.tree.Stat(r.rel(path))
	return err == nil
}

func (r *remote) list() ([]string, error) {
	return nil, fmt.Errorf("list %s: %w", r.tree.Base(), errors.ErrUnsupported)
}

func (r *remote) findFile(name string) (string, error) {
	return "", fmt.Errorf("find %s in %s: %w", name, r.tree.Base(), errors.ErrUnsupported)
}

func (r *remote) prefix() string {
	return r.root
}

func (r *remote) handlesSchema(schema string) bool {
	return schema == "http" || schema == "https"
}

func (r *remote) close() error {
	return nil
}

func (r *remote) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// notFound maps a missing remote file to ErrFileNotFound.
func notFound(err error) error {
	if errors.Is(err, http.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}
	return err
}
