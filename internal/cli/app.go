// Package cli implements the artistmusic command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/artistmusic/internal/audiofile"
	"github.com/llehouerou/artistmusic/internal/catalog"
	"github.com/llehouerou/artistmusic/internal/config"
	"github.com/llehouerou/artistmusic/internal/logging"
	"github.com/llehouerou/artistmusic/internal/snapshot"
	"github.com/llehouerou/artistmusic/internal/transcode"
)

// App holds the services shared by every command.
type App struct {
	Config     *config.Config
	Logger     *log.Logger
	Store      *catalog.Store
	Audio      *audiofile.Dir
	Transcoder *transcode.Transcoder

	closeLog func() error
	changes  *catalog.Subscription
	watching chan struct{}
}

// Open builds the application from cfg. Log output goes to logOut unless a
// log file is configured.
func Open(cfg *config.Config, logOut io.Writer) (*App, error) {
	logger, closeLog := logging.New(cfg.Log, logOut)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.AudioDir, 0o755); err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("create audio dir: %w", err)
	}

	p, err := openPersister(cfg.Storage)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	logger.Debug("catalog storage", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path)

	storeLog := logging.For(logger, logging.Store)
	a := &App{
		Config:     cfg,
		Logger:     logger,
		Store:      catalog.Open(p, catalog.WithLogger(storeLog)),
		Audio:      audiofile.New(cfg.AudioDir, logging.For(logger, logging.Audio)),
		Transcoder: transcode.New(logging.For(logger, logging.Audio)),
		closeLog:   closeLog,
		watching:   make(chan struct{}),
	}
	a.changes = a.Store.Subscribe()
	go a.journal(storeLog)
	return a, nil
}

// journal logs every catalog change until the store closes. Changes still
// buffered at that point are logged before it returns.
func (a *App) journal(logger *log.Logger) {
	defer close(a.watching)
	for {
		select {
		case c := <-a.changes.Changed:
			logChange(logger, c)
		case <-a.changes.Done:
			for {
				select {
				case c := <-a.changes.Changed:
					logChange(logger, c)
				default:
					return
				}
			}
		}
	}
}

func logChange(logger *log.Logger, c catalog.Change) {
	if !c.Persisted {
		logger.Warn("change kept in memory only", "op", c.Op, "artist", c.ArtistID)
		return
	}
	logger.Debug("catalog changed", "op", c.Op, "artist", c.ArtistID)
}

func openPersister(cfg config.StorageConfig) (catalog.Persister, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		s, err := snapshot.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open catalog database: %w", err)
		}
		return s, nil
	default:
		return snapshot.NewFile(cfg.Path), nil
	}
}

// Close releases the store and the log output.
func (a *App) Close() error {
	err := a.Store.Close()
	<-a.watching
	return errors.Join(err, a.closeLog())
}

// FindArtist looks an artist up by id, then by case-insensitive name.
func (a *App) FindArtist(ref string) (catalog.Artist, error) {
	artists := a.Store.Artists()
	for _, artist := range artists {
		if artist.ID == ref {
			return artist, nil
		}
	}
	var found []catalog.Artist
	for _, artist := range artists {
		if strings.EqualFold(artist.Name, ref) {
			found = append(found, artist)
		}
	}
	switch len(found) {
	case 0:
		return catalog.Artist{}, fmt.Errorf("%w: %s", catalog.ErrArtistNotFound, ref)
	case 1:
		return found[0], nil
	default:
		return catalog.Artist{}, fmt.Errorf("artist name %q is ambiguous, use its id", ref)
	}
}

// FindSong looks a song of artist up by id, then by case-insensitive title.
func FindSong(artist catalog.Artist, ref string) (catalog.Song, error) {
	for _, s := range artist.Songs {
		if s.ID == ref {
			return s, nil
		}
	}
	var found []catalog.Song
	for _, s := range artist.Songs {
		if strings.EqualFold(s.Title, ref) {
			found = append(found, s)
		}
	}
	switch len(found) {
	case 0:
		return catalog.Song{}, fmt.Errorf("%w: %s", catalog.ErrSongNotFound, ref)
	case 1:
		return found[0], nil
	default:
		return catalog.Song{}, fmt.Errorf("song title %q is ambiguous, use its id", ref)
	}
}

// FindPlaylist looks a playlist of artist up by id, then by name.
func FindPlaylist(artist catalog.Artist, ref string) (catalog.Playlist, error) {
	for _, p := range artist.Playlists {
		if p.ID == ref {
			return p, nil
		}
	}
	for _, p := range artist.Playlists {
		if strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	return catalog.Playlist{}, fmt.Errorf("%w: %s", catalog.ErrPlaylistNotFound, ref)
}
