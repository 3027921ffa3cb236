package roarchive

import (
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/roarchive/internal/testutil"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path func(t *testing.T) string
		want string
	}{
		{
			name: "directory",
			path: func(t *testing.T) string { return t.TempDir() },
			want: TypeDirectory,
		},
		{
			name: "tar",
			path: func(t *testing.T) string { return testutil.WriteTar(t, testutil.Tileset()) },
			want: TypeTar,
		},
		{
			name: "zip",
			path: func(t *testing.T) string { return testutil.WriteZip(t, testutil.Tileset(), zip.Deflate) },
			want: TypeZip,
		},
		{
			name: "jar dispatches as zip",
			path: func(t *testing.T) string {
				return testutil.WriteZip(t, []testutil.File{
					{Path: "META-INF/MANIFEST.MF", Data: "Manifest-Version: 1.0\n"},
				}, zip.Deflate)
			},
			want: TypeZip,
		},
		{
			name: "http url",
			path: func(*testing.T) string { return "http://example.com/tiles" },
			want: TypeHTTP,
		},
		{
			name: "https url",
			path: func(*testing.T) string { return "https://example.com/" },
			want: TypeHTTP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := classify(tt.path(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_Unknown(t *testing.T) {
	t.Parallel()

	got, err := classify(testutil.WriteFile(t, "plain.txt", []byte("hello world\n")))
	require.NoError(t, err)
	assert.Contains(t, got, "text/plain")

	got, err = classify(testutil.WriteFile(t, "image.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")))
	require.NoError(t, err)
	assert.Equal(t, "image/png", got)
}

func TestIsHTTPURL(t *testing.T) {
	t.Parallel()

	assert.True(t, isHTTPURL("http://host/path"))
	assert.True(t, isHTTPURL("HTTPS://host"))
	assert.False(t, isHTTPURL("ftp://host/path"))
	assert.False(t, isHTTPURL("/var/data/archive.tar"))
	assert.False(t, isHTTPURL("http:relative"))
	assert.False(t, isHTTPURL("C:\\data\\archive.zip"))
}
