package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{".", ""},
		{"/", ""},
		{"./data/tileset/", "data/tileset"},
		{"/etc//nginx/nginx.conf", "etc/nginx/nginx.conf"},
		{"././a/./b", "a/./b"},
		{"a/../b", "a/../b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestBaseDir(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "metadata.json", Base("data/tileset/metadata.json"))
	assert.Equal(t, "data/tileset", Dir("data/tileset/metadata.json"))
	assert.Equal(t, "", Dir("metadata.json"))
	assert.Equal(t, ".", Base(""))
}

func TestCutPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path, prefix string
		want         string
		ok           bool
	}{
		{"data/tileset/metadata.json", "data/tileset", "metadata.json", true},
		{"data/tileset/tiles/0.bin", "data/tileset", "tiles/0.bin", true},
		{"data/tileset2/x", "data/tileset", "data/tileset2/x", false},
		{"data/tileset", "data/tileset", "data/tileset", false},
		{"anything", "", "anything", true},
	}
	for _, tt := range tests {
		got, ok := CutPrefix(tt.path, tt.prefix)
		assert.Equal(t, tt.ok, ok, "CutPrefix(%q, %q) ok", tt.path, tt.prefix)
		assert.Equal(t, tt.want, got, "CutPrefix(%q, %q)", tt.path, tt.prefix)
	}
}

func TestJoin(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a/b", Join("a", "b"))
	assert.Equal(t, "b", Join("", "b"))
	assert.Equal(t, "a", Join("a", ""))
}
