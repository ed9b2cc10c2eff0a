package catalog

import (
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Persister loads and saves the whole catalog snapshot.
type Persister interface {
	Load() ([]Artist, error)
	Save(artists []Artist) error
}

// Store owns the in-memory catalog. Every mutator applies its change,
// rewrites the snapshot through the Persister and notifies subscribers
// before returning.
//
// Mutators return an error wrapping ErrNotFound when an id is unknown; the
// catalog is left untouched and nothing is written. When the snapshot write
// fails the in-memory change is kept and an error wrapping ErrPersist is
// returned.
type Store struct {
	mu        sync.Mutex
	artists   []Artist
	persister Persister
	logger    *log.Logger
	now       func() time.Time
	seed      bool

	subs   []*Subscription
	subsMu sync.RWMutex
	closed bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load/save diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the time source used for seeded and undated songs.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithoutSeed disables the demo artist inserted into an empty catalog.
func WithoutSeed() Option {
	return func(s *Store) { s.seed = false }
}

// Open loads the catalog from p. A snapshot that cannot be read or decoded
// is logged and replaced by an empty catalog. An empty catalog is seeded
// with a demo artist and persisted immediately.
func Open(p Persister, opts ...Option) *Store {
	s := &Store{
		persister: p,
		logger:    log.New(io.Discard),
		now:       time.Now,
		seed:      true,
	}
	for _, opt := range opts {
		opt(s)
	}

	artists, err := p.Load()
	if err != nil {
		s.logger.Error("load catalog snapshot", "err", err)
		artists = nil
	}
	s.artists = artists
	s.logger.Debug("catalog loaded", "artists", len(artists))

	if len(s.artists) == 0 && s.seed {
		s.artists = demoArtists(s.timestamp())
		_ = s.saveLocked()
	}
	return s
}

// Close releases subscriptions and closes the persister if it holds
// resources.
func (s *Store) Close() error {
	s.subsMu.Lock()
	if s.closed {
		s.subsMu.Unlock()
		return nil
	}
	s.closed = true
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()

	if c, ok := s.persister.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Subscribe registers for change notifications.
func (s *Store) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	if s.closed {
		sub.close()
		return sub
	}
	s.subs = append(s.subs, sub)
	return sub
}

func (s *Store) notify(c Change) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.send(c)
	}
}

// Artists returns a copy of the whole catalog in order.
func (s *Store) Artists() []Artist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneArtists(s.artists)
}

// Artist returns a copy of the artist with the given id.
func (s *Store) Artist(id string) (Artist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.artistIndex(id)
	if i < 0 {
		return Artist{}, artistNotFound(id)
	}
	return s.artists[i].clone(), nil
}

// Song returns a copy of one song of an artist.
func (s *Store) Song(artistID, songID string) (Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.artistIndex(artistID)
	if i < 0 {
		return Song{}, artistNotFound(artistID)
	}
	j := s.artists[i].songIndex(songID)
	if j < 0 {
		return Song{}, songNotFound(songID)
	}
	return s.artists[i].Songs[j].clone(), nil
}

// Playlist returns a copy of one playlist of an artist.
func (s *Store) Playlist(artistID, playlistID string) (Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.artistIndex(artistID)
	if i < 0 {
		return Playlist{}, artistNotFound(artistID)
	}
	j := s.artists[i].playlistIndex(playlistID)
	if j < 0 {
		return Playlist{}, playlistNotFound(playlistID)
	}
	return s.artists[i].Playlists[j].clone(), nil
}

// PlaylistSongs resolves a playlist to its songs in playlist order.
// Ids that no longer reference a song are skipped.
func (s *Store) PlaylistSongs(artistID, playlistID string) ([]Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.artistIndex(artistID)
	if i < 0 {
		return nil, artistNotFound(artistID)
	}
	a := &s.artists[i]
	j := a.playlistIndex(playlistID)
	if j < 0 {
		return nil, playlistNotFound(playlistID)
	}
	songs := make([]Song, 0, len(a.Playlists[j].SongIDs))
	for _, id := range a.Playlists[j].SongIDs {
		if k := a.songIndex(id); k >= 0 {
			songs = append(songs, a.Songs[k].clone())
		}
	}
	return songs, nil
}

// CreateArtist appends a new artist with no songs or playlists.
func (s *Store) CreateArtist(name string) (Artist, error) {
	artist := NewArtist(name)
	s.mu.Lock()
	s.artists = append(s.artists, artist)
	err := s.saveLocked()
	s.mu.Unlock()
	s.notify(Change{Op: OpCreateArtist, ArtistID: artist.ID, Persisted: err == nil})
	return artist.clone(), err
}

// RenameArtist changes an artist's display name.
func (s *Store) RenameArtist(id, name string) error {
	return s.withArtist(OpRenameArtist, id, func(a *Artist) error {
		a.Name = name
		return nil
	})
}

// UpdateArtist replaces the stored record of artist.ID in place.
func (s *Store) UpdateArtist(artist Artist) error {
	return s.withArtist(OpUpdateArtist, artist.ID, func(a *Artist) error {
		*a = artist.clone()
		return nil
	})
}

// DeleteArtist removes an artist together with its songs and playlists.
func (s *Store) DeleteArtist(id string) error {
	s.mu.Lock()
	i := s.artistIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return artistNotFound(id)
	}
	s.artists = slices.Delete(s.artists, i, i+1)
	err := s.saveLocked()
	s.mu.Unlock()
	s.notify(Change{Op: OpDeleteArtist, ArtistID: id, Persisted: err == nil})
	return err
}

// AddSong appends song to the artist and lists it first in "All Songs".
// A song without id gets a fresh one; a song without date is stamped now.
// The stored song is returned.
func (s *Store) AddSong(song Song, artistID string) (Song, error) {
	song = song.clone()
	if song.ID == "" {
		song.ID = NewID()
	}
	if song.Date.IsZero() {
		song.Date = s.timestamp()
	}
	err := s.withArtist(OpAddSong, artistID, func(a *Artist) error {
		a.Songs = append(a.Songs, song)
		ensureAllSongs(a, song.ID)
		return nil
	})
	return song.clone(), err
}

// UpdateSong replaces the stored song with the same id, keeping its position.
func (s *Store) UpdateSong(song Song, artistID string) error {
	return s.withArtist(OpUpdateSong, artistID, func(a *Artist) error {
		i := a.songIndex(song.ID)
		if i < 0 {
			return songNotFound(song.ID)
		}
		a.Songs[i] = song.clone()
		return nil
	})
}

// DeleteSongs removes the songs with the given ids and scrubs the ids from
// every playlist of the artist. Ids that are not present are ignored.
func (s *Store) DeleteSongs(ids []string, artistID string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	return s.withArtist(OpDeleteSongs, artistID, func(a *Artist) error {
		a.Songs = slices.DeleteFunc(a.Songs, func(song Song) bool { return drop[song.ID] })
		scrubSongs(a, drop)
		return nil
	})
}

// BatchUpdateSongs applies patch to every song of the artist whose id is in
// ids. The snapshot is written once for the whole batch.
func (s *Store) BatchUpdateSongs(ids []string, artistID string, patch SongPatch) error {
	targets := make(map[string]bool, len(ids))
	for _, id := range ids {
		targets[id] = true
	}
	return s.withArtist(OpBatchUpdateSongs, artistID, func(a *Artist) error {
		updated := 0
		for i := range a.Songs {
			if targets[a.Songs[i].ID] {
				patch.apply(&a.Songs[i])
				updated++
			}
		}
		s.logger.Debug("batch update", "artist", artistID, "songs", updated, "fields", patch.Fields())
		return nil
	})
}

// AddPlaylist inserts a new empty playlist in front of the artist's
// playlists and returns it.
func (s *Store) AddPlaylist(name, artistID string) (Playlist, error) {
	list := NewPlaylist(name)
	err := s.withArtist(OpAddPlaylist, artistID, func(a *Artist) error {
		a.Playlists = slices.Insert(a.Playlists, 0, list)
		return nil
	})
	return list.clone(), err
}

// MovePlaylists reorders the artist's playlists: the playlists at offsets
// from are removed and reinserted, in order, before the playlist that was at
// offset to.
func (s *Store) MovePlaylists(artistID string, from []int, to int) error {
	return s.withArtist(OpMovePlaylists, artistID, func(a *Artist) error {
		a.Playlists = moveOffsets(a.Playlists, from, to)
		return nil
	})
}

// AddSongToPlaylist appends songID to the playlist unless already present.
func (s *Store) AddSongToPlaylist(songID, playlistID, artistID string) error {
	return s.withArtist(OpAddSongToPlaylist, artistID, func(a *Artist) error {
		i := a.playlistIndex(playlistID)
		if i < 0 {
			return playlistNotFound(playlistID)
		}
		if !a.Playlists[i].Contains(songID) {
			a.Playlists[i].SongIDs = append(a.Playlists[i].SongIDs, songID)
		}
		return nil
	})
}

// SetBanner overwrites the artist's banner; nil clears it.
func (s *Store) SetBanner(data []byte, artistID string) error {
	return s.withArtist(OpSetBanner, artistID, func(a *Artist) error {
		a.Banner = cloneSlice(data)
		return nil
	})
}

// SetAvatar overwrites the artist's avatar; nil clears it.
func (s *Store) SetAvatar(data []byte, artistID string) error {
	return s.withArtist(OpSetAvatar, artistID, func(a *Artist) error {
		a.Avatar = cloneSlice(data)
		return nil
	})
}

// SetSongArtwork overwrites a song's artwork; nil clears it.
func (s *Store) SetSongArtwork(data []byte, songID, artistID string) error {
	return s.withArtist(OpSetSongArtwork, artistID, func(a *Artist) error {
		i := a.songIndex(songID)
		if i < 0 {
			return songNotFound(songID)
		}
		a.Songs[i].Artwork = cloneSlice(data)
		return nil
	})
}

// withArtist runs fn on the artist under the lock, then persists and
// notifies. When fn fails nothing is persisted.
func (s *Store) withArtist(op Op, artistID string, fn func(a *Artist) error) error {
	s.mu.Lock()
	i := s.artistIndex(artistID)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Debug("ignored mutation", "op", op, "artist", artistID, "reason", "artist not found")
		return artistNotFound(artistID)
	}
	if err := fn(&s.artists[i]); err != nil {
		s.mu.Unlock()
		s.logger.Debug("ignored mutation", "op", op, "artist", artistID, "reason", err)
		return err
	}
	err := s.saveLocked()
	s.mu.Unlock()

	s.notify(Change{Op: op, ArtistID: artistID, Persisted: err == nil})
	return err
}

// saveLocked writes the snapshot. A failure is logged and returned; the
// in-memory catalog is not rolled back.
func (s *Store) saveLocked() error {
	if err := s.persister.Save(cloneArtists(s.artists)); err != nil {
		s.logger.Error("save catalog snapshot", "err", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (s *Store) artistIndex(id string) int {
	return slices.IndexFunc(s.artists, func(a Artist) bool { return a.ID == id })
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Round(0)
}
