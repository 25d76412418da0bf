package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root)
	require.NoError(t, err)

	require.NoError(t, s.Save("uploads/a.txt", strings.NewReader("hello")))
	assert.FileExists(t, filepath.Join(root, "uploads", "a.txt"))

	r, err := s.Open("uploads/a.txt")
	require.NoError(t, err)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "hello", string(b))

	require.NoError(t, s.Delete("uploads/a.txt"))
	assert.NoFileExists(t, filepath.Join(root, "uploads", "a.txt"))

	// Deleting twice is fine
	require.NoError(t, s.Delete("uploads/a.txt"))

	_, err = s.Open("uploads/a.txt")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStorageRefusesOverwrite(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save("uploads/a.txt", strings.NewReader("first")))
	assert.Error(t, s.Save("uploads/a.txt", strings.NewReader("second")))
}

func TestLocalStorageStaysUnderRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "data")
	s, err := NewLocalStorage(root)
	require.NoError(t, err)

	require.NoError(t, s.Save("../../escape.txt", strings.NewReader("x")))
	assert.NoFileExists(t, filepath.Join(parent, "escape.txt"))
	assert.FileExists(t, filepath.Join(root, "escape.txt"))

	assert.Error(t, s.Save("..", strings.NewReader("x")))
	assert.Error(t, s.Save("", strings.NewReader("x")))
}

func TestLocalStorageRemovesPartialWrite(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root)
	require.NoError(t, err)

	err = s.Save("uploads/broken.txt", io.MultiReader(strings.NewReader("part"), errReader{}))
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(root, "uploads", "broken.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
