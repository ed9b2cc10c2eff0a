package playback

import (
	"context"

	"github.com/llehouerou/artistmusic/internal/catalog"
)

// Service defines the playback contract used by the user interfaces.
type Service interface {
	// Queue
	Enqueue(songs []catalog.Song, start int)

	// Transport
	Play()
	Pause()
	Toggle()
	Next()
	Previous()

	// Periodic updates
	ReportProgress(elapsed, duration float64)
	Spin()

	// State queries
	Status() Status
	State() State
	IsPlaying() bool
	Current() (catalog.Song, bool)
	Queue() []catalog.Song

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Run(ctx context.Context) error
	Close() error
}

// Status is a consistent copy of the engine state.
type Status struct {
	State     State
	Current   *catalog.Song
	Index     int // position of Current in Queue, -1 if none
	Queue     []catalog.Song
	IsPlaying bool
	Progress  float64 // 0..1
	Rotation  float64 // degrees, 0..360
}
