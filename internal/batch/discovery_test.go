package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	}
}

func TestDiscoverImageFilesSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.png", "a.jpg", "notes.txt", "c.bmp")

	files, err := discoverImageFiles([]string{dir}, false, nil, nil)
	require.NoError(t, err)
	require.Len(t, files, 3)

	// Sorted, images only.
	assert.Equal(t, filepath.Join(dir, "a.jpg"), files[0])
	assert.Equal(t, filepath.Join(dir, "b.png"), files[1])
	assert.Equal(t, filepath.Join(dir, "c.bmp"), files[2])
}

func TestDiscoverRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "top.png", filepath.Join("nested", "deep.png"))

	flat, err := discoverImageFiles([]string{dir}, false, nil, nil)
	require.NoError(t, err)
	assert.Len(t, flat, 1)

	deep, err := discoverImageFiles([]string{dir}, true, nil, nil)
	require.NoError(t, err)
	assert.Len(t, deep, 2)
}

func TestDiscoverIncludeExcludePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "label_1.png", "label_2.png", "photo.png")

	included, err := discoverImageFiles([]string{dir}, false, []string{"label_*.png"}, nil)
	require.NoError(t, err)
	assert.Len(t, included, 2)

	excluded, err := discoverImageFiles([]string{dir}, false, nil, []string{"label_*.png"})
	require.NoError(t, err)
	require.Len(t, excluded, 1)
	assert.Equal(t, filepath.Join(dir, "photo.png"), excluded[0])
}

func TestDiscoverExplicitFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "single.png")

	files, err := discoverImageFiles([]string{filepath.Join(dir, "single.png")}, false, nil, nil)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestDiscoverMissingPath(t *testing.T) {
	_, err := discoverImageFiles([]string{filepath.Join(t.TempDir(), "ghost")}, false, nil, nil)
	assert.Error(t, err)
}
