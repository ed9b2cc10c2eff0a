package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/artistmusic/internal/config"
)

func TestNew_WriterAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l, closeFn := New(config.LogConfig{Level: "warn"}, &buf)
	defer closeFn()

	l.Info("hidden")
	l.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "key=value")
	assert.Equal(t, log.WarnLevel, l.GetLevel())
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	l, closeFn := New(config.LogConfig{Level: "loud"}, &bytes.Buffer{})
	defer closeFn()

	assert.Equal(t, log.InfoLevel, l.GetLevel())
}

func TestNew_RotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "artistmusic.log")
	l, closeFn := New(config.LogConfig{Level: "debug", File: path, MaxSizeMB: 1, MaxBackups: 1}, nil)

	For(l, Store).Debug("snapshot saved", "artists", 2)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "prefix=store")
	assert.Contains(t, string(data), `msg="snapshot saved"`)
	assert.Contains(t, string(data), "artists=2")
}

func TestFor_Prefix(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(config.LogConfig{Level: "info"}, &buf)

	For(l, Audio).Info("loading")

	assert.Contains(t, buf.String(), "audio")
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Error("nothing") })
}
