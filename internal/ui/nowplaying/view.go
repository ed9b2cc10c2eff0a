package nowplaying

import (
	"fmt"
	"strings"

	"github.com/llehouerou/artistmusic/internal/playback"
	"github.com/llehouerou/artistmusic/internal/ui/render"
	"github.com/llehouerou/artistmusic/internal/ui/styles"
)

const (
	minWidth    = 24
	queueMargin = 9 // lines used by everything but the queue
)

// Disc frames, one per quarter turn.
var discFrames = [...]string{"◐", "◓", "◑", "◒"}

// DiscGlyph returns the frame for a rotation angle in degrees.
func DiscGlyph(rotation float64) string {
	idx := int(rotation/90) % len(discFrames)
	if idx < 0 {
		idx += len(discFrames)
	}
	return discFrames[idx]
}

func (m Model) View() string {
	s := styles.T().S()
	inner := max(m.width-4, minWidth) // border + padding

	var lines []string
	lines = append(lines, s.Muted.Render(render.Truncate(m.artist, inner)), "")

	st := m.status
	if st.Current == nil {
		lines = append(lines, s.Subtle.Render("Nothing playing"))
	} else {
		title := render.Truncate(st.Current.Title, inner-2)
		lines = append(lines,
			s.Disc.Render(DiscGlyph(st.Rotation))+" "+styles.Gradient(title, styles.T().Primary, styles.T().Secondary, true),
			s.Base.Render(render.Truncate(songDetail(st), inner)),
		)
	}

	lines = append(lines, "", m.progressLine(st, inner), s.Muted.Render(statusLine(st)))

	if q := m.queueLines(st, inner); len(q) > 0 {
		lines = append(lines, "")
		lines = append(lines, q...)
	}
	if m.lastErr != "" {
		lines = append(lines, "", s.Error.Render(render.Truncate(m.lastErr, inner)))
	}
	lines = append(lines, "", s.Subtle.Render(render.Truncate(m.keys.Help(), inner)))

	return s.Panel.Width(inner + 2).Render(strings.Join(lines, "\n"))
}

func songDetail(st playback.Status) string {
	parts := make([]string, 0, 2)
	if st.Current.Version != "" {
		parts = append(parts, st.Current.Version)
	}
	if c := st.Current.CreatorLine(); c != "" {
		parts = append(parts, c)
	}
	return strings.Join(parts, " · ")
}

func (m Model) progressLine(st playback.Status, width int) string {
	pct := fmt.Sprintf("%3.0f%%", st.Progress*100)
	bar := m.bar
	bar.Width = max(width-len(pct)-1, 1)
	return bar.ViewAs(st.Progress) + " " + pct
}

func statusLine(st playback.Status) string {
	switch st.State {
	case playback.StateLoading:
		return "Loading…"
	case playback.StatePlaying:
		return "▶ Playing"
	case playback.StatePaused:
		return "⏸ Paused"
	case playback.StateIdle:
		return "■ Idle"
	default:
		return ""
	}
}

// queueLines lists the queue around the current song, as many as fit.
func (m Model) queueLines(st playback.Status, width int) []string {
	if len(st.Queue) == 0 {
		return nil
	}
	s := styles.T().S()
	rows := max(m.height-queueMargin-2, 1)
	start := 0
	if st.Index >= rows {
		start = st.Index - rows + 1
	}
	end := min(start+rows, len(st.Queue))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		label := render.Truncate(fmt.Sprintf("%2d. %s", i+1, st.Queue[i].Title), width-2)
		if i == st.Index {
			lines = append(lines, s.Playing.Render("▸ "+label))
		} else {
			lines = append(lines, s.Muted.Render("  "+label))
		}
	}
	return lines
}
