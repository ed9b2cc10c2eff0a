package playback

import "github.com/llehouerou/artistmusic/internal/catalog"

// StateChange is emitted when the engine moves between states.
type StateChange struct {
	Previous State
	Current  State
}

// TrackChange is emitted when a different song is handed to the output.
//
// Emitted by Enqueue, Next, Previous and automatic advance after a song
// finishes. Not emitted when the resolver rejects the song, since nothing
// changes in that case.
type TrackChange struct {
	Previous *catalog.Song
	Current  *catalog.Song
	Index    int
}

// QueueChange is emitted when Enqueue replaces the queue.
type QueueChange struct {
	Songs []catalog.Song
}

// ErrorEvent is emitted when a song cannot be resolved or loaded.
type ErrorEvent struct {
	Operation string // "resolve" or "load"
	SongID    string
	Path      string
	Err       error
}
