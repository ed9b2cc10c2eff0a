// Package catalog holds the artist/song/playlist catalog and the store that
// mutates and persists it.
package catalog

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AllSongsName is the name of the playlist maintained for every artist that
// lists each song added to it, newest first.
const AllSongsName = "All Songs"

// Song is a single recording owned by an artist.
type Song struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Version  string    `json:"version"`  // "Master", "Remix", ...
	Creators []string  `json:"creators"` // writers / producers
	Date     time.Time `json:"date"`
	Notes    string    `json:"notes"`
	Artwork  []byte    `json:"artwork"`  // nil when absent
	FileName string    `json:"fileName"` // resolved against the audio directory
}

// CreatorLine returns the creators as shown under a title.
func (s Song) CreatorLine() string {
	return strings.Join(s.Creators, " · ")
}

// Playlist is an ordered list of song ids.
type Playlist struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	SongIDs []string `json:"songIds"`
}

// Contains reports whether the playlist references songID.
func (p Playlist) Contains(songID string) bool {
	return slices.Contains(p.SongIDs, songID)
}

// Artist owns its songs and playlists.
type Artist struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Banner    []byte     `json:"banner"`
	Avatar    []byte     `json:"avatar"`
	Songs     []Song     `json:"songs"`
	Playlists []Playlist `json:"playlists"`
}

// ChronologicalSongs returns the artist's songs sorted by creation date,
// oldest first. Songs sharing a date keep their stored order.
func (a Artist) ChronologicalSongs() []Song {
	songs := make([]Song, len(a.Songs))
	for i := range a.Songs {
		songs[i] = a.Songs[i].clone()
	}
	sort.SliceStable(songs, func(i, j int) bool {
		return songs[i].Date.Before(songs[j].Date)
	})
	return songs
}

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// NewArtist returns an artist with a fresh id and no songs or playlists.
func NewArtist(name string) Artist {
	return Artist{ID: NewID(), Name: name}
}

// NewPlaylist returns an empty playlist with a fresh id.
func NewPlaylist(name string) Playlist {
	return Playlist{ID: NewID(), Name: name}
}

func (a *Artist) songIndex(id string) int {
	return slices.IndexFunc(a.Songs, func(s Song) bool { return s.ID == id })
}

func (a *Artist) playlistIndex(id string) int {
	return slices.IndexFunc(a.Playlists, func(p Playlist) bool { return p.ID == id })
}

func (a *Artist) playlistIndexByName(name string) int {
	return slices.IndexFunc(a.Playlists, func(p Playlist) bool { return p.Name == name })
}

// clone returns a deep copy. Nil slices stay nil so that absent blobs and
// empty lists remain distinguishable.
func (s Song) clone() Song {
	s.Creators = cloneSlice(s.Creators)
	s.Artwork = cloneSlice(s.Artwork)
	return s
}

func (p Playlist) clone() Playlist {
	p.SongIDs = cloneSlice(p.SongIDs)
	return p
}

func (a Artist) clone() Artist {
	a.Banner = cloneSlice(a.Banner)
	a.Avatar = cloneSlice(a.Avatar)
	if a.Songs != nil {
		songs := make([]Song, len(a.Songs))
		for i := range a.Songs {
			songs[i] = a.Songs[i].clone()
		}
		a.Songs = songs
	}
	if a.Playlists != nil {
		lists := make([]Playlist, len(a.Playlists))
		for i := range a.Playlists {
			lists[i] = a.Playlists[i].clone()
		}
		a.Playlists = lists
	}
	return a
}

func cloneArtists(artists []Artist) []Artist {
	if artists == nil {
		return nil
	}
	out := make([]Artist, len(artists))
	for i := range artists {
		out[i] = artists[i].clone()
	}
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
