package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/llehouerou/artistmusic/internal/catalog"
)

// File stores the snapshot as a JSON file. Writes go to a temporary file in
// the same directory which is then renamed over the target, so readers
// never observe a partial snapshot.
type File struct {
	path string
}

// Verify File implements catalog.Persister at compile time.
var _ catalog.Persister = (*File)(nil)

// NewFile returns a File persister writing to path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the snapshot file location.
func (f *File) Path() string {
	return f.path
}

// Load reads the snapshot. A missing file is an empty catalog.
func (f *File) Load() ([]catalog.Artist, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return Decode(data)
}

// Save replaces the snapshot file with artists.
func (f *File) Save(artists []catalog.Artist) error {
	data, err := Encode(artists)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	committed = true
	return nil
}
