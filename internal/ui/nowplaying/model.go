// Package nowplaying is the terminal screen shown while a queue plays.
package nowplaying

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/artistmusic/internal/keymap"
	"github.com/llehouerou/artistmusic/internal/playback"
	"github.com/llehouerou/artistmusic/internal/ui/styles"
)

// RefreshInterval is how often the screen re-reads progress and rotation,
// which change without an engine event.
const RefreshInterval = 50 * time.Millisecond

type refreshMsg time.Time

// closedMsg reports that the engine ended the subscription.
type closedMsg struct{}

// Model renders the playback engine and forwards transport keys to it.
type Model struct {
	svc    playback.Service
	sub    *playback.Subscription
	keys   *keymap.Keymap
	artist string

	status  playback.Status
	bar     progress.Model
	lastErr string
	errSong string // song the last error was about

	width, height int
}

// New builds the screen for songs of artist played by svc.
func New(svc playback.Service, artist string) Model {
	bar := progress.New(
		progress.WithGradient(string(styles.T().Primary), string(styles.T().Secondary)),
		progress.WithoutPercentage(),
	)
	return Model{
		svc:    svc,
		sub:    svc.Subscribe(),
		keys:   keymap.New(keymap.Player),
		artist: artist,
		status: svc.Status(),
		bar:    bar,
		width:  60,
		height: 20,
	}
}

func refresh() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

// listen waits for the next engine event and delivers it as a message.
func (m Model) listen() tea.Cmd {
	sub := m.sub
	return func() tea.Msg {
		select {
		case ev := <-sub.StateChanged:
			return ev
		case ev := <-sub.TrackChanged:
			return ev
		case ev := <-sub.QueueChanged:
			return ev
		case ev := <-sub.Error:
			return ev
		case <-sub.Done:
			return closedMsg{}
		}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(refresh(), m.listen())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case refreshMsg:
		m.sync()
		return m, refresh()
	case playback.StateChange, playback.QueueChange:
		m.sync()
		return m, m.listen()
	case playback.TrackChange:
		// An error about the song now loading stays visible.
		if msg.Current == nil || msg.Current.ID != m.errSong {
			m.lastErr, m.errSong = "", ""
		}
		m.sync()
		return m, m.listen()
	case playback.ErrorEvent:
		m.lastErr, m.errSong = msg.Err.Error(), msg.SongID
		return m, m.listen()
	case closedMsg:
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keys.Action(msg.String()) {
	case keymap.ActionPlayPause:
		m.svc.Toggle()
	case keymap.ActionNext:
		m.svc.Next()
	case keymap.ActionPrevious:
		m.svc.Previous()
	case keymap.ActionQuit:
		return m, tea.Quit
	default:
		return m, nil
	}
	m.sync()
	return m, nil
}

func (m *Model) sync() {
	m.status = m.svc.Status()
}

// Status returns the engine state the screen last rendered.
func (m Model) Status() playback.Status {
	return m.status
}
