package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.webm"), []byte("fake"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "song.m4a"), []byte("fake"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "queue.json"), []byte("[]"), 0644))

	ls := NewLibraryService()
	files, err := ls.ScanFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)

	paths := []string{files[0].Path, files[1].Path}
	assert.Contains(t, paths, "clip.webm")
	assert.Contains(t, paths, filepath.Join("nested", "song.m4a"))
}

func TestGetContentType(t *testing.T) {
	ls := NewLibraryService()

	assert.Equal(t, "video/mp4", ls.GetContentType("/downloads/a.mp4"))
	assert.Equal(t, "video/x-matroska", ls.GetContentType("/downloads/a.MKV"))
	assert.Equal(t, "audio/mpeg", ls.GetContentType("/downloads/a.mp3"))
	assert.Equal(t, "application/octet-stream", ls.GetContentType("/downloads/a.bin"))
}
