// Package audiofile maps a song's stored file name to a path inside the
// audio directory.
package audiofile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

var (
	// ErrNoFileName is returned for songs without an audio reference.
	ErrNoFileName = errors.New("song has no audio file")
	// ErrMissing is returned when the referenced file does not exist.
	ErrMissing = errors.New("audio file missing")
)

// Dir is the directory holding every song's audio file.
type Dir struct {
	root   string
	logger *log.Logger
}

// New returns a Dir rooted at root. A nil logger discards output.
func New(root string, logger *log.Logger) *Dir {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Dir{root: root, logger: logger}
}

// Root returns the audio directory.
func (d *Dir) Root() string {
	return d.root
}

// Path joins fileName onto the audio directory without checking it exists.
func (d *Dir) Path(fileName string) string {
	return filepath.Join(d.root, filepath.Base(fileName))
}

// Resolve returns the absolute location of fileName, failing when the name
// is empty or the file does not exist.
func (d *Dir) Resolve(fileName string) (string, error) {
	if strings.TrimSpace(fileName) == "" {
		return "", ErrNoFileName
	}
	path := d.Path(fileName)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		d.logger.Warn("audio file not found", "path", path)
		return "", fmt.Errorf("%w: %s", ErrMissing, fileName)
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", fileName, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrMissing, fileName)
	}
	d.logger.Debug("resolved audio file", "path", path, "size", humanize.IBytes(uint64(info.Size()))) //nolint:gosec // size is never negative
	return path, nil
}

// Exists reports whether fileName resolves to an existing file.
func (d *Dir) Exists(fileName string) bool {
	_, err := d.Resolve(fileName)
	return err == nil
}

// Remove deletes fileName from the audio directory. A missing file is not an
// error.
func (d *Dir) Remove(fileName string) error {
	if strings.TrimSpace(fileName) == "" {
		return nil
	}
	err := os.Remove(d.Path(fileName))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
