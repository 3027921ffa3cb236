package roarchive

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher(t *testing.T) {
	t.Parallel()

	t.Run("ranks candidates", func(t *testing.T) {
		t.Parallel()
		m := FileHint{"best.json", "good.json", "ok.json"}.Matcher()

		assert.False(t, m.Match("x/ok.json"))
		best, _ := m.Best()
		assert.Equal(t, "x/ok.json", best)

		assert.False(t, m.Match("y/good.json"))
		assert.False(t, m.Match("z/ok.json"), "worse candidates never replace a better match")
		best, _ = m.Best()
		assert.Equal(t, "y/good.json", best)

		assert.True(t, m.Match("w/best.json"))
		cand, ok := m.Candidate()
		require.True(t, ok)
		assert.Equal(t, "best.json", cand)
	})

	t.Run("compares last component", func(t *testing.T) {
		t.Parallel()
		m := FileHint{"metadata.json"}.Matcher()
		assert.False(t, m.Match("metadata.json.bak"))
		assert.False(t, m.Match("metadata.json/inner"))
		_, ok := m.Best()
		assert.False(t, ok)
		assert.True(t, m.Match("a/b/metadata.json"))
	})

	t.Run("candidate with directories", func(t *testing.T) {
		t.Parallel()
		m := FileHint{"tileset/metadata.json"}.Matcher()
		assert.False(t, m.Match("other/metadata.json"))
		assert.False(t, m.Match("mytileset/metadata.json"))
		assert.True(t, m.Match("data/tileset/metadata.json"))
		root, ok := m.root()
		require.True(t, ok)
		assert.Equal(t, "data", root)
	})

	t.Run("empty hint never matches", func(t *testing.T) {
		t.Parallel()
		m := FileHint{}.Matcher()
		assert.False(t, m.Match("anything"))
		assert.False(t, m.Match(""))
		_, ok := m.Best()
		assert.False(t, ok)
	})
}

func TestResolvePrefix(t *testing.T) {
	t.Parallel()

	paths := slices.Values([]string{"README", "./data/tileset/metadata.json", "data/tileset/tiles/0.png"})

	res, err := resolvePrefix(FileHint{"metadata.json"}, paths, "tiles.tar")
	require.NoError(t, err)
	assert.Equal(t, resolution{prefix: "data/tileset", used: "metadata.json"}, res)

	res, err = resolvePrefix(FileHint{"README"}, paths, "tiles.tar")
	require.NoError(t, err)
	assert.Equal(t, "", res.prefix, "a top-level match keeps the container root")

	res, err = resolvePrefix(nil, paths, "tiles.tar")
	require.NoError(t, err)
	assert.Equal(t, resolution{}, res)

	_, err = resolvePrefix(FileHint{"tileset.json"}, paths, "tiles.tar")
	require.ErrorIs(t, err, ErrHintNotFound)
	assert.Contains(t, err.Error(), "tiles.tar")
}

func TestFileHint_IsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, FileHint(nil).IsEmpty())
	assert.True(t, FileHint{"", "/", "./"}.IsEmpty())
	assert.False(t, FileHint{"", "metadata.json"}.IsEmpty())
}

func TestFileHint_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a.json,b.json", FileHint{"a.json", "b.json"}.String())
	assert.Empty(t, FileHint(nil).String())
}
