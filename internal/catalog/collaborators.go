package catalog

import (
	"cmp"
	"slices"
	"strings"
)

// Collaborators returns every distinct creator credited on the artist's
// songs, sorted. Blank credits are skipped.
func (a Artist) Collaborators() []string {
	var names []string
	for _, s := range a.Songs {
		for _, c := range s.Creators {
			if c = strings.TrimSpace(c); c != "" {
				names = append(names, c)
			}
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// CreatorSongs groups the songs of one artist credited to a creator.
type CreatorSongs struct {
	ArtistID   string
	ArtistName string
	Songs      []Song
}

// SongsByCreator finds the songs crediting name, compared case-insensitively,
// across every artist. Groups are sorted by artist name and songs keep their
// stored order. Artists with no matching song are left out.
func (s *Store) SongsByCreator(name string) []CreatorSongs {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var groups []CreatorSongs
	for _, a := range s.artists {
		var songs []Song
		for _, song := range a.Songs {
			if credits(song, name) {
				songs = append(songs, song.clone())
			}
		}
		if len(songs) > 0 {
			groups = append(groups, CreatorSongs{ArtistID: a.ID, ArtistName: a.Name, Songs: songs})
		}
	}
	slices.SortStableFunc(groups, func(x, y CreatorSongs) int {
		return cmp.Compare(strings.ToLower(x.ArtistName), strings.ToLower(y.ArtistName))
	})
	return groups
}

func credits(s Song, name string) bool {
	return slices.ContainsFunc(s.Creators, func(c string) bool {
		return strings.EqualFold(strings.TrimSpace(c), name)
	})
}
