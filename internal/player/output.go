// Package player renders audio files through the system speaker.
package player

import "time"

// EventKind tells what happened to a track handed to Replace.
type EventKind int

const (
	// EventReady means the track is decoded and Play will start it.
	EventReady EventKind = iota
	// EventFailed means the track could not be loaded.
	EventFailed
	// EventFinished means the track played to its end.
	EventFinished
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventFailed:
		return "failed"
	case EventFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Event is reported asynchronously for the track at Path.
type Event struct {
	Kind EventKind
	Path string
	Err  error
}

// Output is the audio collaborator driven by the playback engine. Loading
// is asynchronous: Replace returns at once and the outcome arrives on
// Events.
type Output interface {
	// Replace drops the current track and starts loading path.
	Replace(path string)
	Play()
	Pause()
	State() State
	Position() time.Duration
	Duration() time.Duration
	Events() <-chan Event
	Close() error
}

const eventBufferSize = 16
