package audiofile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "MeAndYou.mp3"), make([]byte, 2048), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "folder"), 0o755))
	d := New(root, nil)

	path, err := d.Resolve("MeAndYou.mp3")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "MeAndYou.mp3"), path)

	_, err = d.Resolve("")
	assert.ErrorIs(t, err, ErrNoFileName)

	_, err = d.Resolve("  ")
	assert.ErrorIs(t, err, ErrNoFileName)

	_, err = d.Resolve("gone.wav")
	assert.ErrorIs(t, err, ErrMissing)

	_, err = d.Resolve("folder")
	assert.ErrorIs(t, err, ErrMissing)
}

func TestPath_StaysInsideRoot(t *testing.T) {
	d := New("/audio", nil)

	assert.Equal(t, filepath.Join("/audio", "song.wav"), d.Path("song.wav"))
	assert.Equal(t, filepath.Join("/audio", "passwd"), d.Path("../../etc/passwd"))
}

func TestResolve_LogsSize(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.wav"), make([]byte, 1536), 0o644))
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	_, err := New(root, logger).Resolve("a.wav")

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "1.5 KiB")
}

func TestRemove(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.wav"), []byte("x"), 0o644))
	d := New(root, nil)

	require.NoError(t, d.Remove("a.wav"))
	assert.False(t, d.Exists("a.wav"))
	require.NoError(t, d.Remove("a.wav"))
	require.NoError(t, d.Remove(""))
}
