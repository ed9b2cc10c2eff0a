package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtist_Collaborators(t *testing.T) {
	tests := []struct {
		name  string
		songs []Song
		want  []string
	}{
		{name: "no songs"},
		{
			name:  "deduplicated and sorted",
			songs: []Song{{Creators: []string{"Zed", "Alex"}}, {Creators: []string{"Alex", "Mia"}}},
			want:  []string{"Alex", "Mia", "Zed"},
		},
		{
			name:  "blank credits skipped",
			songs: []Song{{Creators: []string{" ", "Mia "}}, {Creators: nil}},
			want:  []string{"Mia"},
		},
		{
			name:  "case kept distinct",
			songs: []Song{{Creators: []string{"mia", "Mia"}}},
			want:  []string{"Mia", "mia"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Artist{Songs: tt.songs}
			assert.Equal(t, tt.want, a.Collaborators())
		})
	}
}

func TestSongsByCreator(t *testing.T) {
	s, _, a := newTestStore(t)
	zoe, err := s.CreateArtist("zoe")
	require.NoError(t, err)
	bea, err := s.CreateArtist("Bea")
	require.NoError(t, err)

	add := func(artistID, title string, creators ...string) {
		t.Helper()
		_, err := s.AddSong(Song{Title: title, Creators: creators}, artistID)
		require.NoError(t, err)
	}
	add(a.ID, "One", "Alex Skrindo", "Mia")
	add(a.ID, "Two", "Mia")
	add(a.ID, "Three", "ALEX SKRINDO")
	add(zoe.ID, "Four", "alex skrindo")
	add(bea.ID, "Five", "Nobody")

	tests := []struct {
		name    string
		creator string
		want    map[string][]string // artist name -> titles
		order   []string
	}{
		{
			name:    "case-insensitive across artists",
			creator: "Alex Skrindo",
			want:    map[string][]string{"Artist": {"One", "Three"}, "zoe": {"Four"}},
			order:   []string{"Artist", "zoe"},
		},
		{
			name:    "single artist",
			creator: "mia",
			want:    map[string][]string{"Artist": {"One", "Two"}},
			order:   []string{"Artist"},
		},
		{name: "unknown creator", creator: "Ghost"},
		{name: "blank name", creator: "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := s.SongsByCreator(tt.creator)

			var order []string
			for _, g := range groups {
				order = append(order, g.ArtistName)
				var titles []string
				for _, song := range g.Songs {
					titles = append(titles, song.Title)
				}
				assert.Equal(t, tt.want[g.ArtistName], titles, g.ArtistName)
			}
			assert.Equal(t, tt.order, order)
		})
	}
}

func TestSongsByCreator_ReturnsCopies(t *testing.T) {
	s, _, a := newTestStore(t)
	_, err := s.AddSong(Song{Title: "One", Creators: []string{"Mia"}}, a.ID)
	require.NoError(t, err)

	groups := s.SongsByCreator("Mia")
	require.Len(t, groups, 1)
	groups[0].Songs[0].Creators[0] = "changed"

	assert.Len(t, s.SongsByCreator("Mia"), 1)
}
