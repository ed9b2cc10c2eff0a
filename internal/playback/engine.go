// Package playback owns the play queue and transport state and drives an
// audio output through the load/play cycle.
package playback

import (
	"context"
	"io"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/artistmusic/internal/catalog"
	"github.com/llehouerou/artistmusic/internal/player"
)

const (
	DefaultProgressInterval = 250 * time.Millisecond
	DefaultSpinInterval     = 20 * time.Millisecond

	// SpinStep is the rotation added per spin tick, in degrees.
	SpinStep = 0.4
)

// Resolver maps a song's stored file name to a playable path.
type Resolver interface {
	Resolve(fileName string) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(fileName string) (string, error)

func (f ResolverFunc) Resolve(fileName string) (string, error) { return f(fileName) }

// Verify Engine implements Service at compile time.
var _ Service = (*Engine)(nil)

// Engine is the playback state machine. All methods are safe for concurrent
// use; they are serialised on one mutex.
type Engine struct {
	mu sync.Mutex

	out      player.Output
	resolver Resolver
	logger   *log.Logger

	state     State
	queue     []catalog.Song
	current   *catalog.Song
	isPlaying bool
	progress  float64
	rotation  float64

	loaded  string // path last handed to the output
	pending string // loaded path still waiting for ready
	ended   bool   // the last song of the queue played to its end

	progressInterval time.Duration
	spinInterval     time.Duration

	subs   []*Subscription
	subsMu sync.RWMutex

	closed bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithIntervals overrides the progress and spin tick intervals. Zero keeps
// the default.
func WithIntervals(progress, spin time.Duration) Option {
	return func(e *Engine) {
		if progress > 0 {
			e.progressInterval = progress
		}
		if spin > 0 {
			e.spinInterval = spin
		}
	}
}

// New creates an idle engine playing through out.
func New(out player.Output, resolver Resolver, opts ...Option) *Engine {
	e := &Engine{
		out:              out,
		resolver:         resolver,
		logger:           log.New(io.Discard),
		state:            StateIdle,
		progressInterval: DefaultProgressInterval,
		spinInterval:     DefaultSpinInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enqueue replaces the queue with songs and loads songs[start]. An out of
// range start only replaces the queue.
func (e *Engine) Enqueue(songs []catalog.Song, start int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.queue = slices.Clone(songs)
	e.broadcastQueue()
	if start < 0 || start >= len(e.queue) {
		e.logger.Debug("enqueue without playback", "songs", len(songs), "start", start)
		return
	}
	e.loadLocked(start)
}

// loadLocked resolves queue[idx] and hands it to the output. A resolve
// failure leaves every field untouched.
func (e *Engine) loadLocked(idx int) {
	song := e.queue[idx]
	path, err := e.resolver.Resolve(song.FileName)
	if err != nil {
		e.logger.Error("cannot resolve audio", "song", song.Title, "file", song.FileName, "err", err)
		e.broadcastError(ErrorEvent{Operation: "resolve", SongID: song.ID, Err: err})
		return
	}

	e.logger.Info("loading", "song", song.Title, "path", path)
	e.out.Replace(path)

	prev := e.current
	e.current = &song
	e.loaded = path
	e.pending = path
	e.ended = false
	e.isPlaying = true
	e.progress = 0
	e.setStateLocked(StateLoading)
	e.broadcastTrack(TrackChange{Previous: prev, Current: &song, Index: idx})
}

// HandleEvent applies an output notification. Events for paths other than
// the one last handed to the output are ignored.
func (e *Engine) HandleEvent(ev player.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch ev.Kind {
	case player.EventReady:
		if ev.Path != e.pending {
			e.logger.Debug("stale ready ignored", "path", ev.Path)
			return
		}
		e.pending = ""
		if e.isPlaying {
			e.out.Play()
			e.setStateLocked(StatePlaying)
		} else {
			e.setStateLocked(StatePaused)
		}

	case player.EventFailed:
		if ev.Path != e.pending {
			return
		}
		// No retry: the engine stays in Loading until the next command.
		e.pending = ""
		e.logger.Error("load failed", "path", ev.Path, "err", ev.Err)
		id := ""
		if e.current != nil {
			id = e.current.ID
		}
		e.broadcastError(ErrorEvent{Operation: "load", SongID: id, Path: ev.Path, Err: ev.Err})

	case player.EventFinished:
		if ev.Path != e.loaded || e.pending != "" {
			return
		}
		e.advanceLocked()
	}
}

// advanceLocked moves to the next song after the current one finished. At
// the end of the queue playback pauses on the last song.
func (e *Engine) advanceLocked() {
	idx := e.currentIndexLocked()
	if idx >= 0 && idx+1 < len(e.queue) {
		e.loadLocked(idx + 1)
		return
	}
	e.progress = 1
	e.isPlaying = false
	e.ended = true
	e.setStateLocked(StatePaused)
}

// Play resumes a paused song without reloading it. While loading it only
// marks the song to start once ready. A song that played to the end of the
// queue is loaded again from the start.
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playLocked()
}

func (e *Engine) playLocked() {
	switch e.state {
	case StatePaused:
		if e.ended {
			if idx := e.currentIndexLocked(); idx >= 0 {
				e.loadLocked(idx)
			}
			return
		}
		e.isPlaying = true
		e.out.Play()
		e.setStateLocked(StatePlaying)
	case StateLoading:
		e.isPlaying = true
	case StateIdle, StatePlaying:
	}
}

// Pause halts playback. The output keeps its position.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pauseLocked()
}

func (e *Engine) pauseLocked() {
	switch e.state {
	case StatePlaying:
		e.isPlaying = false
		e.out.Pause()
		e.setStateLocked(StatePaused)
	case StateLoading:
		e.isPlaying = false
	case StateIdle, StatePaused:
	}
}

// Toggle switches between playing and paused.
func (e *Engine) Toggle() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.isPlaying {
		e.pauseLocked()
	} else {
		e.playLocked()
	}
}

// Next loads the song after the current one. At the end of the queue it
// does nothing.
func (e *Engine) Next() {
	e.step(1)
}

// Previous loads the song before the current one. At the start of the
// queue it does nothing.
func (e *Engine) Previous() {
	e.step(-1)
}

func (e *Engine) step(delta int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.currentIndexLocked()
	if idx < 0 {
		return
	}
	target := idx + delta
	if target < 0 || target >= len(e.queue) {
		return
	}
	e.loadLocked(target)
}

// currentIndexLocked finds the current song in the queue by id.
func (e *Engine) currentIndexLocked() int {
	if e.current == nil {
		return -1
	}
	id := e.current.ID
	return slices.IndexFunc(e.queue, func(s catalog.Song) bool { return s.ID == id })
}

// ReportProgress records elapsed/duration, both in seconds. Durations that
// are not finite and positive leave progress unchanged.
func (e *Engine) ReportProgress(elapsed, duration float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reportLocked(elapsed, duration)
}

func (e *Engine) reportLocked(elapsed, duration float64) {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return
	}
	if math.IsNaN(elapsed) {
		return
	}
	e.progress = min(max(elapsed/duration, 0), 1)
}

// Spin advances the cosmetic rotation while playing.
func (e *Engine) Spin() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.isPlaying {
		return
	}
	e.rotation = math.Mod(e.rotation+SpinStep, 360)
}

// pollProgress samples the output while a song is playing.
func (e *Engine) pollProgress() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StatePlaying {
		return
	}
	e.reportLocked(e.out.Position().Seconds(), e.out.Duration().Seconds())
}

// Run drives the engine until ctx is done: it polls progress, spins the
// rotation and applies output events.
func (e *Engine) Run(ctx context.Context) error {
	progress := time.NewTicker(e.progressInterval)
	defer progress.Stop()
	spin := time.NewTicker(e.spinInterval)
	defer spin.Stop()

	events := e.out.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-progress.C:
			e.pollProgress()
		case <-spin.C:
			e.Spin()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			e.HandleEvent(ev)
		}
	}
}

// Status returns a copy of the full engine state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{
		State:     e.state,
		Index:     e.currentIndexLocked(),
		Queue:     slices.Clone(e.queue),
		IsPlaying: e.isPlaying,
		Progress:  e.progress,
		Rotation:  e.rotation,
	}
	if e.current != nil {
		c := *e.current
		st.Current = &c
	}
	return st
}

// State returns the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// IsPlaying reports whether playback is wanted, including while loading.
func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isPlaying
}

// Current returns the current song.
func (e *Engine) Current() (catalog.Song, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return catalog.Song{}, false
	}
	return *e.current, true
}

// Queue returns a copy of the queue.
func (e *Engine) Queue() []catalog.Song {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.queue)
}

// Subscribe creates a new event subscription.
func (e *Engine) Subscribe() *Subscription {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	sub := newSubscription()
	e.subs = append(e.subs, sub)
	return sub
}

// Close ends all subscriptions and pauses the output. The output itself is
// owned by the caller.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.pauseLocked()
	e.mu.Unlock()

	e.subsMu.Lock()
	for _, sub := range e.subs {
		sub.close()
	}
	e.subs = nil
	e.subsMu.Unlock()
	return nil
}

func (e *Engine) setStateLocked(s State) {
	if s == e.state {
		return
	}
	prev := e.state
	e.state = s
	e.logger.Debug("state", "from", prev, "to", s)
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendState(StateChange{Previous: prev, Current: s})
	}
}

func (e *Engine) broadcastTrack(tc TrackChange) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendTrack(tc)
	}
}

func (e *Engine) broadcastQueue() {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendQueue(QueueChange{Songs: slices.Clone(e.queue)})
	}
}

func (e *Engine) broadcastError(ev ErrorEvent) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendError(ev)
	}
}
