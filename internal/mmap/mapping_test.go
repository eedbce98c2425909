package mmap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMapping_OpenReadClose(t *testing.T) {
	content := `{"a": [1, 2.5, true]}`
	m, err := Open(writeFile(t, content))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, len(content), m.Size())
	assert.Equal(t, content, string(m.Bytes()))
	require.NoError(t, m.Advise(AccessSequential))

	t.Run("ReadAt", func(t *testing.T) {
		buf := make([]byte, 3)
		n, err := m.ReadAt(buf, 1)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, `"a"`, string(buf))
	})

	t.Run("ReadAtPastEnd", func(t *testing.T) {
		n, err := m.ReadAt(make([]byte, 4), 100)
		assert.Equal(t, 0, n)
		assert.Equal(t, io.EOF, err)
	})

	t.Run("ReadAtPartial", func(t *testing.T) {
		buf := make([]byte, 10)
		n, err := m.ReadAt(buf, int64(len(content)-2))
		assert.Equal(t, 2, n)
		assert.Equal(t, io.EOF, err)
		assert.Equal(t, "]}", string(buf[:n]))
	})

	t.Run("NegativeOffset", func(t *testing.T) {
		_, err := m.ReadAt(make([]byte, 1), -1)
		assert.ErrorIs(t, err, ErrInvalidOffset)
	})
}

func TestMapping_EmptyFile(t *testing.T) {
	m, err := Open(writeFile(t, ""))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 0, m.Size())
	assert.Empty(t, m.Bytes())
	assert.NoError(t, m.Advise(AccessRandom))
}

func TestMapping_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMapping_Directory(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestMapping_Close(t *testing.T) {
	m, err := Open(writeFile(t, "null"))
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	assert.Nil(t, m.Bytes())
	assert.ErrorIs(t, m.Advise(AccessSequential), ErrClosed)
	_, err = m.ReadAt(make([]byte, 1), 0)
	assert.ErrorIs(t, err, ErrClosed)
}
