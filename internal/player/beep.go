package player

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Speaker initialisation is process wide; the first track fixes the rate.
var (
	speakerMu   sync.Mutex
	speakerRate beep.SampleRate
	speakerErr  error
	speakerInit bool
)

const resampleQuality = 4

func initSpeaker(rate beep.SampleRate) (beep.SampleRate, error) {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	if !speakerInit {
		speakerErr = speaker.Init(rate, rate.N(time.Second/10))
		speakerRate = rate
		speakerInit = true
	}
	return speakerRate, speakerErr
}

type track struct {
	path     string
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	started  bool
}

// Beep plays files through gopxl/beep's speaker.
type Beep struct {
	mu     sync.Mutex
	state  State
	gen    uint64
	cur    *track
	events chan Event
	closed bool
	logger *log.Logger
}

// Verify Beep implements Output at compile time.
var _ Output = (*Beep)(nil)

// NewBeep returns an idle output. A nil logger discards output.
func NewBeep(logger *log.Logger) *Beep {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Beep{
		state:  Stopped,
		events: make(chan Event, eventBufferSize),
		logger: logger,
	}
}

// Replace stops whatever is playing and decodes path in the background.
func (b *Beep) Replace(path string) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.gen++
	gen := b.gen
	old := b.cur
	b.cur = nil
	b.state = Loading
	b.mu.Unlock()

	b.release(old)
	go b.load(gen, path)
}

func (b *Beep) load(gen uint64, path string) {
	streamer, format, err := Open(path)
	if err == nil {
		var rate beep.SampleRate
		rate, err = initSpeaker(format.SampleRate)
		if err != nil {
			streamer.Close()
		} else {
			b.adopt(gen, path, streamer, format, rate)
			return
		}
	}

	b.mu.Lock()
	stale := gen != b.gen
	if !stale {
		b.state = Stopped
	}
	b.mu.Unlock()
	if stale {
		return
	}
	b.logger.Error("load failed", "path", path, "err", err)
	b.emit(Event{Kind: EventFailed, Path: path, Err: err})
}

func (b *Beep) adopt(gen uint64, path string, streamer beep.StreamSeekCloser, format beep.Format, rate beep.SampleRate) {
	var s beep.Streamer = streamer
	if format.SampleRate != rate {
		s = beep.Resample(resampleQuality, format.SampleRate, rate, streamer)
	}
	t := &track{
		path:     path,
		streamer: streamer,
		format:   format,
		ctrl:     &beep.Ctrl{Streamer: s, Paused: true},
	}

	b.mu.Lock()
	if gen != b.gen || b.closed {
		b.mu.Unlock()
		streamer.Close()
		return
	}
	b.cur = t
	b.state = Paused
	b.mu.Unlock()

	b.logger.Debug("loaded", "path", path, "rate", format.SampleRate, "length", format.SampleRate.D(streamer.Len()))
	b.emit(Event{Kind: EventReady, Path: path})
}

// Play starts or resumes the loaded track. Without one it does nothing.
func (b *Beep) Play() {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.cur
	if t == nil || b.state != Paused {
		return
	}
	if !t.started {
		t.started = true
		gen := b.gen
		speaker.Play(beep.Seq(t.ctrl, beep.Callback(func() {
			b.finished(gen, t.path)
		})))
	}
	speaker.Lock()
	t.ctrl.Paused = false
	speaker.Unlock()
	b.state = Playing
}

// finished runs on the speaker goroutine. It must not take b.mu while
// holding the speaker lock, so the state update is deferred to a goroutine.
func (b *Beep) finished(gen uint64, path string) {
	go func() {
		b.mu.Lock()
		stale := gen != b.gen
		if !stale {
			b.state = Paused
		}
		b.mu.Unlock()
		if !stale {
			b.emit(Event{Kind: EventFinished, Path: path})
		}
	}()
}

// Pause halts the current track, keeping its position.
func (b *Beep) Pause() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cur == nil || b.state != Playing {
		return
	}
	speaker.Lock()
	b.cur.ctrl.Paused = true
	speaker.Unlock()
	b.state = Paused
}

// State returns the transport state.
func (b *Beep) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Position returns the playback position of the current track.
func (b *Beep) Position() time.Duration {
	b.mu.Lock()
	t := b.cur
	b.mu.Unlock()
	if t == nil {
		return 0
	}
	speaker.Lock()
	pos := t.streamer.Position()
	speaker.Unlock()
	return t.format.SampleRate.D(pos)
}

// Duration returns the length of the current track, zero while loading.
func (b *Beep) Duration() time.Duration {
	b.mu.Lock()
	t := b.cur
	b.mu.Unlock()
	if t == nil {
		return 0
	}
	return t.format.SampleRate.D(t.streamer.Len())
}

// Events delivers load and completion events.
func (b *Beep) Events() <-chan Event {
	return b.events
}

// Close stops playback and releases the current track.
func (b *Beep) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.gen++
	old := b.cur
	b.cur = nil
	b.state = Stopped
	b.mu.Unlock()

	b.release(old)
	return nil
}

func (b *Beep) release(t *track) {
	if t == nil {
		return
	}
	if t.started {
		speaker.Clear()
	}
	speaker.Lock()
	err := t.streamer.Close()
	speaker.Unlock()
	if err != nil {
		b.logger.Warn("close track", "path", t.path, "err", err)
	}
}

// emit drops the event if nobody keeps up with the channel.
func (b *Beep) emit(e Event) {
	select {
	case b.events <- e:
	default:
		b.logger.Warn("event dropped", "kind", e.Kind, "path", e.Path)
	}
}
