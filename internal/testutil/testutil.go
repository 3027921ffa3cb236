// Package testutil builds container fixtures for tests.
package testutil

import (
	"archive/tar"
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// File is a fixture entry. A path ending in "/" is a directory.
type File struct {
	Path string
	Data string
}

// Tileset returns a tree with the root marker below two wrapper directories.
func Tileset() []File {
	return []File{
		{Path: "data/"},
		{Path: "data/tileset/"},
		{Path: "data/tileset/metadata.json", Data: `{"name":"tiles"}`},
		{Path: "data/tileset/tiles/0/0/0.png", Data: "png-0"},
		{Path: "data/tileset/tiles/1/0/0.png", Data: "png-1"},
		{Path: "README", Data: "readme"},
	}
}

// WriteDir writes files below a new temporary directory and returns it.
func WriteDir(tb testing.TB, files []File) string {
	tb.Helper()
	dir := tb.TempDir()
	for _, f := range files {
		p := filepath.Join(dir, filepath.FromSlash(f.Path))
		if strings.HasSuffix(f.Path, "/") {
			if err := os.MkdirAll(p, 0o755); err != nil {
				tb.Fatalf("mkdir %s: %v", p, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			tb.Fatalf("mkdir %s: %v", p, err)
		}
		if err := os.WriteFile(p, []byte(f.Data), 0o644); err != nil {
			tb.Fatalf("write %s: %v", p, err)
		}
	}
	return dir
}

// TarBytes encodes files as an uncompressed tar archive in the given order.
func TarBytes(tb testing.TB, files []File) []byte {
	tb.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, f := range files {
		hdr := &tar.Header{Name: f.Path, Mode: 0o644, Size: int64(len(f.Data)), Typeflag: tar.TypeReg}
		if strings.HasSuffix(f.Path, "/") {
			hdr = &tar.Header{Name: f.Path, Mode: 0o755, Typeflag: tar.TypeDir}
		}
		if err := tw.WriteHeader(hdr); err != nil {
			tb.Fatalf("tar header %s: %v", f.Path, err)
		}
		if _, err := io.WriteString(tw, f.Data); err != nil {
			tb.Fatalf("tar data %s: %v", f.Path, err)
		}
	}
	if err := tw.Close(); err != nil {
		tb.Fatalf("close tar: %v", err)
	}
	return buf.Bytes()
}

// WriteTar writes a tar archive of files to a temporary file and returns its path.
func WriteTar(tb testing.TB, files []File) string {
	tb.Helper()
	return WriteFile(tb, "archive.tar", TarBytes(tb, files))
}

// WriteZip writes a zip archive of files to a temporary file and returns
// its path. method is zip.Store, zip.Deflate or zstd.ZipMethodWinZip.
func WriteZip(tb testing.TB, files []File, method uint16) string {
	tb.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())
	for _, f := range files {
		hdr := &zip.FileHeader{Name: f.Path, Method: method}
		if strings.HasSuffix(f.Path, "/") {
			hdr.Method = zip.Store
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			tb.Fatalf("zip header %s: %v", f.Path, err)
		}
		if _, err := io.WriteString(w, f.Data); err != nil {
			tb.Fatalf("zip data %s: %v", f.Path, err)
		}
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("close zip: %v", err)
	}
	return WriteFile(tb, "archive.zip", buf.Bytes())
}

// WriteFile writes data to a file named name in a new temporary directory.
func WriteFile(tb testing.TB, name string, data []byte) string {
	tb.Helper()
	p := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		tb.Fatalf("write %s: %v", p, err)
	}
	return p
}

// MockCache is an in-memory cache.Cache that counts stores.
type MockCache struct {
	mu   sync.RWMutex
	data map[string][]byte
	puts int
}

// NewMockCache constructs an empty in-memory cache.
func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string][]byte)}
}

// Get returns a seekable in-memory file for key.
func (c *MockCache) Get(key []byte) (fs.File, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.data[string(key)]
	if !ok {
		return nil, false
	}
	f, err := fstest.MapFS{"entry": &fstest.MapFile{Data: data}}.Open("entry")
	if err != nil {
		return nil, false
	}
	return f, true
}

// Put stores the content of r under key.
func (c *MockCache) Put(key []byte, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[string(key)] = data
	c.puts++
	return nil
}

// Delete removes the entry for key.
func (c *MockCache) Delete(key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, string(key))
	return nil
}

// MaxBytes returns 0, the cache is unbounded.
func (c *MockCache) MaxBytes() int64 { return 0 }

// SizeBytes returns the total size of stored entries.
func (c *MockCache) SizeBytes() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var n int64
	for _, d := range c.data {
		n += int64(len(d))
	}
	return n
}

// Prune drops every entry when targetBytes is below the current size.
func (c *MockCache) Prune(targetBytes int64) (int64, error) {
	size := c.SizeBytes()
	if size <= targetBytes {
		return 0, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.data)
	return size, nil
}

// Puts returns the number of successful Put calls.
func (c *MockCache) Puts() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.puts
}
