package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/llehouerou/artistmusic/internal/errmsg"
)

func newPlaylistCommand(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "Manage an artist's playlists",
	}
	cmd.AddCommand(
		newPlaylistListCommand(r),
		&cobra.Command{
			Use:   "add ARTIST NAME",
			Short: "Create a playlist at the top of the list",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := r.app.FindArtist(args[0])
				if err != nil {
					return fail(errmsg.OpPlaylistCreate, err)
				}
				p, err := r.app.Store.AddPlaylist(args[1], a.ID)
				if err != nil {
					return fail(errmsg.OpPlaylistCreate, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), p.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "move ARTIST TO FROM...",
			Short: "Move the playlists at offsets FROM before offset TO",
			Long: `Move the playlists at offsets FROM before the playlist at offset TO.
Offsets start at 0 and refer to the order before the move; a TO equal to the
number of playlists moves them to the end.`,
			Args: cobra.MinimumNArgs(3),
			RunE: func(_ *cobra.Command, args []string) error {
				offsets, err := parseOffsets(args[1:])
				if err != nil {
					return err
				}
				a, err := r.app.FindArtist(args[0])
				if err != nil {
					return fail(errmsg.OpPlaylistMove, err)
				}
				return fail(errmsg.OpPlaylistMove, r.app.Store.MovePlaylists(a.ID, offsets[1:], offsets[0]))
			},
		},
		&cobra.Command{
			Use:   "add-song ARTIST PLAYLIST SONG",
			Short: "Append a song to a playlist",
			Args:  cobra.ExactArgs(3),
			RunE: func(_ *cobra.Command, args []string) error {
				a, err := r.app.FindArtist(args[0])
				if err != nil {
					return fail(errmsg.OpPlaylistAddSong, err)
				}
				p, err := FindPlaylist(a, args[1])
				if err != nil {
					return fail(errmsg.OpPlaylistAddSong, err)
				}
				s, err := FindSong(a, args[2])
				if err != nil {
					return fail(errmsg.OpPlaylistAddSong, err)
				}
				return fail(errmsg.OpPlaylistAddSong, r.app.Store.AddSongToPlaylist(s.ID, p.ID, a.ID))
			},
		},
	)
	return cmd
}

func newPlaylistListCommand(r *runner) *cobra.Command {
	var withSongs bool
	cmd := &cobra.Command{
		Use:   "list ARTIST",
		Short: "List an artist's playlists in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.app.FindArtist(args[0])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tID\tNAME\tSONGS")
			for i, p := range a.Playlists {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", i, p.ID, p.Name, len(p.SongIDs))
				if !withSongs {
					continue
				}
				songs, err := r.app.Store.PlaylistSongs(a.ID, p.ID)
				if err != nil {
					return err
				}
				for _, s := range songs {
					fmt.Fprintf(w, "\t\t  %s\t\n", s.Title)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&withSongs, "songs", false, "list the songs of each playlist")
	return cmd
}

func parseOffsets(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("offset %q is not a number", a)
		}
		out[i] = n
	}
	return out, nil
}
