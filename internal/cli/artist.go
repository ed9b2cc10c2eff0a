package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/artistmusic/internal/artwork"
	"github.com/llehouerou/artistmusic/internal/errmsg"
)

func newArtistCommand(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artist",
		Short: "List and edit artists",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List artists",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tSONGS\tPLAYLISTS\tIMAGES")
				for _, a := range r.app.Store.Artists() {
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
						a.ID, a.Name, len(a.Songs), len(a.Playlists),
						humanize.IBytes(uint64(len(a.Banner)+len(a.Avatar))))
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "add NAME",
			Short: "Create an artist",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := r.app.Store.CreateArtist(args[0])
				if err != nil {
					return fail(errmsg.OpArtistCreate, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), a.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "rename ARTIST NAME",
			Short: "Rename an artist",
			Args:  cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				a, err := r.app.FindArtist(args[0])
				if err != nil {
					return fail(errmsg.OpArtistRename, err)
				}
				return fail(errmsg.OpArtistRename, r.app.Store.RenameArtist(a.ID, args[1]))
			},
		},
		&cobra.Command{
			Use:     "delete ARTIST",
			Aliases: []string{"rm"},
			Short:   "Delete an artist with its songs and playlists",
			Args:    cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				a, err := r.app.FindArtist(args[0])
				if err != nil {
					return fail(errmsg.OpArtistDelete, err)
				}
				return fail(errmsg.OpArtistDelete, r.app.Store.DeleteArtist(a.ID))
			},
		},
		newCollaboratorsCommand(r),
		newImageCommand(r, "banner", errmsg.OpArtistBanner, func(data []byte, artistID string) error {
			return r.app.Store.SetBanner(data, artistID)
		}),
		newImageCommand(r, "avatar", errmsg.OpArtistAvatar, func(data []byte, artistID string) error {
			return r.app.Store.SetAvatar(data, artistID)
		}),
	)
	return cmd
}

// newCollaboratorsCommand lists the creators credited on an artist's songs,
// or with NAME the songs crediting that creator across every artist.
func newCollaboratorsCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:     "collaborators ARTIST [NAME]",
		Aliases: []string{"collabs"},
		Short:   "List an artist's collaborators or the songs of one collaborator",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.app.FindArtist(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				for _, name := range a.Collaborators() {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			groups := r.app.Store.SongsByCreator(args[1])
			if len(groups) == 0 {
				return fmt.Errorf("no songs credit %q", args[1])
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ARTIST\tID\tTITLE\tVERSION\tADDED")
			for _, g := range groups {
				for _, s := range g.Songs {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						g.ArtistName, s.ID, s.Title, s.Version, humanize.Time(s.Date))
				}
			}
			return w.Flush()
		},
	}
}

// newImageCommand builds the banner and avatar commands.
func newImageCommand(r *runner, name string, op errmsg.Op, set func(data []byte, artistID string) error) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   name + " ARTIST [IMAGE]",
		Short: "Set or clear the artist " + name,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			if remove == (len(args) == 2) {
				return fmt.Errorf("give either an image file or --clear")
			}
			a, err := r.app.FindArtist(args[0])
			if err != nil {
				return fail(op, err)
			}
			var data []byte
			if !remove {
				if data, err = r.readImage(args[1]); err != nil {
					return fail(op, err)
				}
			}
			return fail(op, set(data, a.ID))
		},
	}
	cmd.Flags().BoolVar(&remove, "clear", false, "remove the "+name)
	return cmd
}

// readImage loads an image file and bounds it to the configured size.
func (r *runner) readImage(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, err := artwork.Normalize(data, r.app.Config.Artwork.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.app.Logger.Debug("image loaded", "path", path,
		"size", humanize.IBytes(uint64(len(data))), "stored", humanize.IBytes(uint64(len(out))))
	return out, nil
}
