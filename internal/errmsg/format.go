// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import (
	"errors"
	"fmt"

	"github.com/llehouerou/artistmusic/internal/audiofile"
	"github.com/llehouerou/artistmusic/internal/catalog"
	"github.com/llehouerou/artistmusic/internal/transcode"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Artist operations
	OpArtistCreate Op = "create artist"
	OpArtistRename Op = "rename artist"
	OpArtistDelete Op = "delete artist"
	OpArtistBanner Op = "set artist banner"
	OpArtistAvatar Op = "set artist avatar"

	// Song operations
	OpSongAdd     Op = "add song"
	OpSongImport  Op = "import audio"
	OpSongUpdate  Op = "update song"
	OpSongDelete  Op = "delete songs"
	OpSongBatch   Op = "update songs"
	OpSongArtwork Op = "set song artwork"

	// Playlist operations
	OpPlaylistCreate  Op = "create playlist"
	OpPlaylistMove    Op = "move playlists"
	OpPlaylistAddSong Op = "add song to playlist"

	// Playback operations
	OpPlaybackStart Op = "start playback"

	// File operations
	OpFileLoad Op = "load file"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Failed to %s: %v", op, err)
	if hint := Hint(err); hint != "" {
		msg += " (" + hint + ")"
	}
	return msg
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	msg := fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
	if hint := Hint(err); hint != "" {
		msg += " (" + hint + ")"
	}
	return msg
}

// Hint suggests what the user can do about a known failure.
func Hint(err error) string {
	switch {
	case errors.Is(err, catalog.ErrPersist):
		return "the change is kept in memory but was not saved"
	case errors.Is(err, catalog.ErrNotFound):
		return "check the id with the list command"
	case errors.Is(err, audiofile.ErrMissing):
		return "re-import the audio file"
	case errors.Is(err, transcode.ErrUnsupported):
		return "supported formats are mp3, flac, wav and ogg vorbis"
	default:
		return ""
	}
}
