package substream

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeTemp(tb testing.TB, data []byte) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "data.bin")
	require.NoError(tb, os.WriteFile(path, data, 0o644))
	return path
}

func TestSection_Read(t *testing.T) {
	t.Parallel()

	f, err := Open(writeTemp(t, []byte("hello world")))
	require.NoError(t, err)
	defer f.Release()

	s, err := f.Section(6, 11)
	require.NoError(t, err)
	defer s.Close()

	got, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "world", string(got))
	assert.Equal(t, int64(5), s.Size())

	_, err = s.Seek(1, io.SeekStart)
	require.NoError(t, err)
	got, err = io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "orld", string(got))
}

func TestSection_InvalidRange(t *testing.T) {
	t.Parallel()

	f, err := Open(writeTemp(t, []byte("abc")))
	require.NoError(t, err)
	defer f.Release()

	_, err = f.Section(2, 1)
	require.Error(t, err)
	assert.Equal(t, int64(1), f.Refs(), "failed section must not hold a reference")
}

func TestFile_RefCounting(t *testing.T) {
	t.Parallel()

	f, err := Open(writeTemp(t, []byte("abcdef")))
	require.NoError(t, err)

	s, err := f.Section(0, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.Refs())

	// Owner releases first; the open section keeps the handle alive.
	require.NoError(t, f.Release())
	got, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "second close is a no-op")
	assert.Equal(t, int64(0), f.Refs())

	_, err = f.Section(0, 1)
	require.ErrorIs(t, err, os.ErrClosed)
}

func TestSection_ConcurrentReads(t *testing.T) {
	t.Parallel()

	const parts = 16
	var data bytes.Buffer
	for i := range parts {
		data.Write(bytes.Repeat([]byte{byte('a' + i)}, 4096))
	}
	f, err := Open(writeTemp(t, data.Bytes()))
	require.NoError(t, err)
	defer f.Release()

	var wg sync.WaitGroup
	errs := make(chan error, parts)
	for i := range parts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := f.Section(int64(i*4096), int64((i+1)*4096))
			if err != nil {
				errs <- err
				return
			}
			defer s.Close()
			got, err := io.ReadAll(s)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(got, bytes.Repeat([]byte{byte('a' + i)}, 4096)) {
				errs <- fmt.Errorf("section %d: content mismatch", i)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, int64(1), f.Refs())
}

func TestFile_Hold(t *testing.T) {
	t.Parallel()

	f, err := Open(writeTemp(t, []byte("abcdef")))
	require.NoError(t, err)

	h, err := f.Hold()
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.Refs())

	require.NoError(t, f.Release())
	buf := make([]byte, 2)
	_, err = f.ReadAt(buf, 4)
	require.NoError(t, err)
	assert.Equal(t, "ef", string(buf))

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.Equal(t, int64(0), f.Refs())

	_, err = f.Hold()
	require.ErrorIs(t, err, os.ErrClosed)
}
