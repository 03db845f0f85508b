package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("boom")
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestLocalImageStore_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalImageStore(dir, "images")
	require.NoError(t, err)

	url, err := s.Save(context.Background(), ".png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/images/image-"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Len(t, listFiles(t, dir), 1)

	require.NoError(t, s.Delete(context.Background(), url))
	assert.Empty(t, listFiles(t, dir))

	// 既に無いファイルはエラーにしない
	assert.NoError(t, s.Delete(context.Background(), url))
}

func TestLocalImageStore_SaveFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalImageStore(dir, "/images")
	require.NoError(t, err)

	_, err = s.Save(context.Background(), ".png", failingReader{})
	require.Error(t, err)
	assert.Empty(t, listFiles(t, dir))
}

func TestLocalImageStore_DeleteOutsideStore(t *testing.T) {
	s, err := NewLocalImageStore(t.TempDir(), "/images")
	require.NoError(t, err)

	for _, url := range []string{
		"https://cdn.example.com/a.png",
		"/images/../secret",
		"/images/",
		"/images/.upload-1",
		"/other/a.png",
	} {
		assert.ErrorIs(t, s.Delete(context.Background(), url), ErrOutsideStore, url)
	}
}
