package cli

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/llehouerou/artistmusic/internal/config"
	"github.com/llehouerou/artistmusic/internal/errmsg"
	"github.com/llehouerou/artistmusic/internal/player"
)

// runner carries the application between cobra hooks and commands.
type runner struct {
	app   *App
	owned bool // opened by the root command, closed after it

	configPath string
	logLevel   string

	// Overridden in tests.
	newOutput   func(*log.Logger) player.Output
	programOpts []tea.ProgramOption
}

func newRootCommand(r *runner) *cobra.Command {
	root := &cobra.Command{
		Use:           "artistmusic",
		Short:         "Manage and play an artist's songs",
		Long:          `Keep a catalog of artists, their songs and playlists, and play them in the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return r.open(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return r.close()
		},
	}
	root.PersistentFlags().StringVarP(&r.configPath, "config", "c", "", "config file")
	root.PersistentFlags().StringVar(&r.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newArtistCommand(r),
		newSongCommand(r),
		newPlaylistCommand(r),
		newPlayCommand(r),
	)
	return root
}

func (r *runner) open(cmd *cobra.Command) error {
	if r.app != nil {
		return nil
	}
	cfg, err := config.Load(r.configPath)
	if err != nil {
		return &opError{op: errmsg.OpInitialize, err: err}
	}
	if r.logLevel != "" {
		cfg.Log.Level = r.logLevel
	}
	app, err := Open(cfg, cmd.ErrOrStderr())
	if err != nil {
		return &opError{op: errmsg.OpInitialize, err: err}
	}
	r.app = app
	r.owned = true
	return nil
}

func (r *runner) close() error {
	if !r.owned || r.app == nil {
		return nil
	}
	err := r.app.Close()
	r.app = nil
	r.owned = false
	return err
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	r := &runner{}
	err := newRootCommand(r).Execute()
	// PersistentPostRunE is skipped when a command fails.
	if cerr := r.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// opError renders err for the user while keeping it inspectable.
type opError struct {
	op  errmsg.Op
	err error
}

func (e *opError) Error() string { return errmsg.Format(e.op, e.err) }
func (e *opError) Unwrap() error { return e.err }

func fail(op errmsg.Op, err error) error {
	if err == nil {
		return nil
	}
	var oe *opError
	if errors.As(err, &oe) {
		return err
	}
	return &opError{op: op, err: err}
}
