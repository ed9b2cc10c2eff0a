package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/artistmusic/internal/artwork"
	"github.com/llehouerou/artistmusic/internal/catalog"
	"github.com/llehouerou/artistmusic/internal/errmsg"
	"github.com/llehouerou/artistmusic/internal/transcode"
)

const dateLayout = "2006-01-02"

func newSongCommand(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "song",
		Short: "Import and edit songs",
	}
	cmd.AddCommand(
		newSongListCommand(r),
		newSongAddCommand(r),
		newSongEditCommand(r),
		newSongRemoveCommand(r),
		newSongBatchCommand(r),
		newSongArtworkCommand(r),
	)
	return cmd
}

func newSongListCommand(r *runner) *cobra.Command {
	var byDate bool
	cmd := &cobra.Command{
		Use:   "list ARTIST",
		Short: "List an artist's songs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.app.FindArtist(args[0])
			if err != nil {
				return err
			}
			songs := a.Songs
			if byDate {
				songs = a.ChronologicalSongs()
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tVERSION\tCREATORS\tADDED\tFILE")
			for _, s := range songs {
				file := s.FileName
				if file != "" && !r.app.Audio.Exists(file) {
					file += " (missing)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					s.ID, s.Title, s.Version, s.CreatorLine(), humanize.Time(s.Date), file)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&byDate, "by-date", false, "sort by date added, oldest first")
	return cmd
}

// songFlags are the per-song fields settable from the command line.
type songFlags struct {
	title    string
	version  string
	creators []string
	notes    string
	date     string
	artwork  string
}

func (f *songFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "song title")
	cmd.Flags().StringVar(&f.version, "version", "", `version, e.g. "Master" or "Remix"`)
	cmd.Flags().StringSliceVar(&f.creators, "creators", nil, "comma separated writers and producers")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&f.date, "date", "", "date added ("+dateLayout+")")
	cmd.Flags().StringVar(&f.artwork, "artwork", "", "artwork image file")
}

func parseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want %s", s, dateLayout)
	}
	return d, nil
}

func newSongAddCommand(r *runner) *cobra.Command {
	var f songFlags
	cmd := &cobra.Command{
		Use:   "add ARTIST AUDIOFILE",
		Short: "Import an audio file as a new song",
		Long: `Copy an audio file into the audio directory, converting it to WAV when it
cannot be played as is, and add it to the artist. Title, creators and
artwork default to the file's tags.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.app.FindArtist(args[0])
			if err != nil {
				return fail(errmsg.OpSongAdd, err)
			}
			src := args[1]
			meta, err := transcode.Probe(src)
			if err != nil {
				return fail(errmsg.OpSongImport, err)
			}

			song := catalog.Song{
				Title:    meta.Title,
				Version:  f.version,
				Creators: meta.Creators,
				Notes:    f.notes,
			}
			if f.title != "" {
				song.Title = f.title
			}
			if cmd.Flags().Changed("creators") {
				song.Creators = f.creators
			}
			if song.Creators == nil {
				song.Creators = []string{}
			}
			if f.date != "" {
				if song.Date, err = parseDate(f.date); err != nil {
					return err
				}
			}
			switch {
			case f.artwork != "":
				if song.Artwork, err = r.readImage(f.artwork); err != nil {
					return fail(errmsg.OpSongArtwork, err)
				}
			case len(meta.Artwork) > 0:
				song.Artwork, err = artwork.Normalize(meta.Artwork, r.app.Config.Artwork.MaxSize)
				if err != nil {
					r.app.Logger.Warn("embedded artwork skipped", "file", src, "err", err)
					song.Artwork = nil
				}
			}

			dest, err := r.app.Transcoder.EnsurePlayableCopy(cmd.Context(), src, r.app.Audio.Root())
			if err != nil {
				return fail(errmsg.OpSongImport, err)
			}
			song.FileName = filepath.Base(dest)

			added, err := r.app.Store.AddSong(song, a.ID)
			if err != nil {
				return fail(errmsg.OpSongAdd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), added.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newSongEditCommand(r *runner) *cobra.Command {
	var f songFlags
	cmd := &cobra.Command{
		Use:   "edit ARTIST SONG",
		Short: "Change the fields of one song",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.app.FindArtist(args[0])
			if err != nil {
				return fail(errmsg.OpSongUpdate, err)
			}
			song, err := FindSong(a, args[1])
			if err != nil {
				return fail(errmsg.OpSongUpdate, err)
			}

			changed := cmd.Flags().Changed
			if changed("title") {
				song.Title = f.title
			}
			if changed("version") {
				song.Version = f.version
			}
			if changed("creators") {
				song.Creators = f.creators
			}
			if changed("notes") {
				song.Notes = f.notes
			}
			if changed("date") {
				if song.Date, err = parseDate(f.date); err != nil {
					return err
				}
			}
			if changed("artwork") {
				if song.Artwork, err = r.readImage(f.artwork); err != nil {
					return fail(errmsg.OpSongArtwork, err)
				}
			}
			return fail(errmsg.OpSongUpdate, r.app.Store.UpdateSong(song, a.ID))
		},
	}
	f.register(cmd)
	return cmd
}

func newSongRemoveCommand(r *runner) *cobra.Command {
	var purge bool
	cmd := &cobra.Command{
		Use:     "rm ARTIST SONG...",
		Aliases: []string{"delete"},
		Short:   "Delete songs and drop them from every playlist",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			a, songs, err := r.findSongs(args[0], args[1:])
			if err != nil {
				return fail(errmsg.OpSongDelete, err)
			}
			if err := r.app.Store.DeleteSongs(songIDs(songs), a.ID); err != nil {
				return fail(errmsg.OpSongDelete, err)
			}
			if !purge {
				return nil
			}
			for _, s := range songs {
				if s.FileName == "" {
					continue
				}
				if err := r.app.Audio.Remove(s.FileName); err != nil {
					r.app.Logger.Warn("audio file not removed", "file", s.FileName, "err", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&purge, "purge", false, "also delete the audio files")
	return cmd
}

func newSongBatchCommand(r *runner) *cobra.Command {
	var (
		f            songFlags
		clearArtwork bool
	)
	cmd := &cobra.Command{
		Use:   "batch ARTIST SONG...",
		Short: "Apply the same version, creators or artwork to several songs",
		Long: `Apply the same version, creators or artwork to several songs. Only the
flags given are written; every other field is left as it is.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed
			var patch catalog.SongPatch
			if changed("version") {
				patch.Version = catalog.Some(f.version)
			}
			if changed("creators") {
				patch.Creators = catalog.Some(f.creators)
			}
			switch {
			case clearArtwork && changed("artwork"):
				return fmt.Errorf("--artwork and --clear-artwork are exclusive")
			case clearArtwork:
				patch.Artwork = catalog.Some([]byte(nil))
			case changed("artwork"):
				data, err := r.readImage(f.artwork)
				if err != nil {
					return fail(errmsg.OpSongArtwork, err)
				}
				patch.Artwork = catalog.Some(data)
			}
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to change: give --version, --creators, --artwork or --clear-artwork")
			}

			a, songs, err := r.findSongs(args[0], args[1:])
			if err != nil {
				return fail(errmsg.OpSongBatch, err)
			}
			return fail(errmsg.OpSongBatch, r.app.Store.BatchUpdateSongs(songIDs(songs), a.ID, patch))
		},
	}
	cmd.Flags().StringVar(&f.version, "version", "", "version for every song")
	cmd.Flags().StringSliceVar(&f.creators, "creators", nil, "creators for every song")
	cmd.Flags().StringVar(&f.artwork, "artwork", "", "artwork image for every song")
	cmd.Flags().BoolVar(&clearArtwork, "clear-artwork", false, "remove the artwork of every song")
	return cmd
}

func newSongArtworkCommand(r *runner) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "artwork ARTIST SONG [IMAGE]",
		Short: "Set or clear a song's artwork",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(_ *cobra.Command, args []string) error {
			if remove == (len(args) == 3) {
				return fmt.Errorf("give either an image file or --clear")
			}
			a, err := r.app.FindArtist(args[0])
			if err != nil {
				return fail(errmsg.OpSongArtwork, err)
			}
			song, err := FindSong(a, args[1])
			if err != nil {
				return fail(errmsg.OpSongArtwork, err)
			}
			var data []byte
			if !remove {
				if data, err = r.readImage(args[2]); err != nil {
					return fail(errmsg.OpSongArtwork, err)
				}
			}
			return fail(errmsg.OpSongArtwork, r.app.Store.SetSongArtwork(data, song.ID, a.ID))
		},
	}
	cmd.Flags().BoolVar(&remove, "clear", false, "remove the artwork")
	return cmd
}

// findSongs resolves an artist and several of its songs.
func (r *runner) findSongs(artistRef string, songRefs []string) (catalog.Artist, []catalog.Song, error) {
	a, err := r.app.FindArtist(artistRef)
	if err != nil {
		return catalog.Artist{}, nil, err
	}
	songs := make([]catalog.Song, 0, len(songRefs))
	var missing []string
	for _, ref := range songRefs {
		s, err := FindSong(a, ref)
		if err != nil {
			missing = append(missing, ref)
			continue
		}
		songs = append(songs, s)
	}
	if len(missing) > 0 {
		return a, nil, fmt.Errorf("%w: %s", catalog.ErrSongNotFound, strings.Join(missing, ", "))
	}
	return a, songs, nil
}

func songIDs(songs []catalog.Song) []string {
	ids := make([]string, len(songs))
	for i, s := range songs {
		ids[i] = s.ID
	}
	return ids
}
