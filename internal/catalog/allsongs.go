package catalog

import "slices"

// ensureAllSongs keeps the "All Songs" invariant for a newly added song:
// the playlist exists and lists songID, newest first. A missing playlist is
// created in front of the artist's other playlists.
func ensureAllSongs(a *Artist, songID string) {
	i := a.playlistIndexByName(AllSongsName)
	if i < 0 {
		list := NewPlaylist(AllSongsName)
		list.SongIDs = []string{songID}
		a.Playlists = slices.Insert(a.Playlists, 0, list)
		return
	}
	if !a.Playlists[i].Contains(songID) {
		a.Playlists[i].SongIDs = slices.Insert(a.Playlists[i].SongIDs, 0, songID)
	}
}

// scrubSongs removes the given song ids from every playlist of the artist.
func scrubSongs(a *Artist, ids map[string]bool) {
	for i := range a.Playlists {
		a.Playlists[i].SongIDs = slices.DeleteFunc(a.Playlists[i].SongIDs, func(id string) bool {
			return ids[id]
		})
	}
}

// AllSongs returns the artist's "All Songs" playlist, if it exists.
func (a Artist) AllSongs() (Playlist, bool) {
	i := a.playlistIndexByName(AllSongsName)
	if i < 0 {
		return Playlist{}, false
	}
	return a.Playlists[i].clone(), true
}
