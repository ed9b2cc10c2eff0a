package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by every lookup failure.
	ErrNotFound = errors.New("not found")

	ErrArtistNotFound   = fmt.Errorf("artist %w", ErrNotFound)
	ErrSongNotFound     = fmt.Errorf("song %w", ErrNotFound)
	ErrPlaylistNotFound = fmt.Errorf("playlist %w", ErrNotFound)

	// ErrPersist is returned when a mutation was applied in memory but the
	// snapshot could not be written.
	ErrPersist = errors.New("persist catalog snapshot")
)

func artistNotFound(id string) error {
	return fmt.Errorf("%w: %s", ErrArtistNotFound, id)
}

func songNotFound(id string) error {
	return fmt.Errorf("%w: %s", ErrSongNotFound, id)
}

func playlistNotFound(id string) error {
	return fmt.Errorf("%w: %s", ErrPlaylistNotFound, id)
}
