package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/llehouerou/artistmusic/internal/catalog"
	"github.com/llehouerou/artistmusic/internal/errmsg"
	"github.com/llehouerou/artistmusic/internal/logging"
	"github.com/llehouerou/artistmusic/internal/playback"
	"github.com/llehouerou/artistmusic/internal/player"
	"github.com/llehouerou/artistmusic/internal/stderr"
	"github.com/llehouerou/artistmusic/internal/ui/nowplaying"
)

func newPlayCommand(r *runner) *cobra.Command {
	var start string
	cmd := &cobra.Command{
		Use:   "play ARTIST [PLAYLIST]",
		Short: "Play an artist's songs in the terminal",
		Long: `Play a playlist of the artist, or "All Songs" when none is given, in a
full-screen player. Keys: space play/pause, n next, p previous, q quit.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.app.FindArtist(args[0])
			if err != nil {
				return fail(errmsg.OpPlaybackStart, err)
			}
			playlist := ""
			if len(args) == 2 {
				playlist = args[1]
			}
			queue, err := r.playQueue(a, playlist)
			if err != nil {
				return fail(errmsg.OpPlaybackStart, err)
			}
			if len(queue) == 0 {
				return fail(errmsg.OpPlaybackStart, fmt.Errorf("%s has no songs to play", a.Name))
			}
			idx := 0
			if start != "" {
				s, err := FindSong(a, start)
				if err != nil {
					return fail(errmsg.OpPlaybackStart, err)
				}
				if idx = indexOf(queue, s.ID); idx < 0 {
					return fail(errmsg.OpPlaybackStart, fmt.Errorf("%q is not in the queue", s.Title))
				}
			}
			return r.play(cmd.Context(), a.Name, queue, idx)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "song to start with")
	return cmd
}

// playQueue returns the songs of the named playlist, or of "All Songs" when
// name is empty. Artists without that playlist play every song by date.
func (r *runner) playQueue(a catalog.Artist, name string) ([]catalog.Song, error) {
	if name == "" {
		all, ok := a.AllSongs()
		if !ok {
			return a.ChronologicalSongs(), nil
		}
		return r.app.Store.PlaylistSongs(a.ID, all.ID)
	}
	p, err := FindPlaylist(a, name)
	if err != nil {
		return nil, err
	}
	return r.app.Store.PlaylistSongs(a.ID, p.ID)
}

func indexOf(songs []catalog.Song, id string) int {
	for i, s := range songs {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (r *runner) play(ctx context.Context, artist string, queue []catalog.Song, idx int) error {
	// The screen belongs to the player: log to the file or nowhere.
	logger := logging.Discard()
	if r.app.Config.Log.File != "" {
		logger = r.app.Logger
	}

	audioLog := logging.For(logger, logging.Audio)
	out, release := r.output(audioLog)
	defer release()
	defer out.Close()

	engine := playback.New(out, r.app.Audio,
		playback.WithLogger(audioLog),
		playback.WithIntervals(r.app.Config.ProgressInterval(), r.app.Config.SpinInterval()),
	)
	defer engine.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = engine.Run(ctx) }()

	engine.Enqueue(queue, idx)

	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, r.programOpts...)
	if len(r.programOpts) == 0 {
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(nowplaying.New(engine, artist), opts...)
	if _, err := p.Run(); err != nil {
		logging.For(logger, logging.UI).Error("player screen", "err", err)
		return fail(errmsg.OpPlaybackStart, err)
	}
	return nil
}

// output returns the audio output. The default one diverts fd 2 into the
// log until release is called.
func (r *runner) output(logger *log.Logger) (out player.Output, release func()) {
	if r.newOutput != nil {
		return r.newOutput(logger), func() {}
	}
	capture, err := stderr.Start(func(line string) { logger.Warn("audio backend", "msg", line) })
	if err != nil {
		logger.Debug("stderr not captured", "err", err)
	}
	return player.NewBeep(logger), func() { _ = capture.Stop() }
}
