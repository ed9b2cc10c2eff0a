package catalog

import "time"

// Demo catalog inserted when the store starts empty.
const (
	DemoArtistName = "Demo Artist"
	DemoSongTitle  = "Me & You"
	DemoSongFile   = "MeAndYou.mp3"
)

func demoArtists(now time.Time) []Artist {
	song := Song{
		ID:       NewID(),
		Title:    DemoSongTitle,
		Version:  "Master",
		Creators: []string{"Alex Skrindo", "Uplink"},
		Date:     now,
		FileName: DemoSongFile,
	}
	all := NewPlaylist(AllSongsName)
	all.SongIDs = []string{song.ID}

	artist := NewArtist(DemoArtistName)
	artist.Songs = []Song{song}
	artist.Playlists = []Playlist{all}
	return []Artist{artist}
}
