package player

import (
	"sync"
	"time"
)

// Mock is a test double for Output. Loads never complete on their own; use
// the Emit helpers to drive them.
type Mock struct {
	mu           sync.Mutex
	state        State
	pending      string
	position     time.Duration
	duration     time.Duration
	replaceCalls []string
	playCalls    int
	pauseCalls   int
	events       chan Event
	closed       bool
}

// NewMock creates a new mock output for testing.
func NewMock() *Mock {
	return &Mock{
		state:  Stopped,
		events: make(chan Event, eventBufferSize),
	}
}

func (m *Mock) Replace(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceCalls = append(m.replaceCalls, path)
	m.pending = path
	m.state = Loading
}

func (m *Mock) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls++
	if m.state == Paused {
		m.state = Playing
	}
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCalls++
	if m.state == Playing {
		m.state = Paused
	}
}

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Events() <-chan Event { return m.events }

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.state = Stopped
	return nil
}

// Test helpers

func (m *Mock) SetState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

func (m *Mock) ReplaceCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.replaceCalls...)
}

func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

func (m *Mock) Pending() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// EmitReady completes a load. The state only changes when path is the
// pending track.
func (m *Mock) EmitReady(path string) {
	m.mu.Lock()
	if path == m.pending && m.state == Loading {
		m.state = Paused
	}
	m.mu.Unlock()
	m.events <- Event{Kind: EventReady, Path: path}
}

// EmitFailed reports a load failure for path.
func (m *Mock) EmitFailed(path string, err error) {
	m.mu.Lock()
	if path == m.pending && m.state == Loading {
		m.state = Stopped
	}
	m.mu.Unlock()
	m.events <- Event{Kind: EventFailed, Path: path, Err: err}
}

// EmitFinished reports that path played to its end.
func (m *Mock) EmitFinished(path string) {
	m.mu.Lock()
	if path == m.pending {
		m.state = Paused
	}
	m.mu.Unlock()
	m.events <- Event{Kind: EventFinished, Path: path}
}

// Verify Mock implements Output at compile time.
var _ Output = (*Mock)(nil)
