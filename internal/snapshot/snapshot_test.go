package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/artistmusic/internal/catalog"
	dbutil "github.com/llehouerou/artistmusic/internal/db"
)

// sampleCatalog covers absent and empty optionals side by side.
func sampleCatalog() []catalog.Artist {
	date := time.Date(2025, 5, 5, 9, 30, 15, 123456789, time.UTC)
	return []catalog.Artist{
		{
			ID:     "artist-1",
			Name:   "Demo Artist",
			Banner: []byte{0x89, 'P', 'N', 'G'},
			Avatar: nil,
			Songs: []catalog.Song{
				{
					ID:       "song-1",
					Title:    "Me & You",
					Version:  "Master",
					Creators: []string{"Alex Skrindo", "Uplink"},
					Date:     date,
					Notes:    "first take",
					Artwork:  nil,
					FileName: "MeAndYou.mp3",
				},
				{
					ID:       "song-2",
					Title:    "Empty",
					Creators: []string{},
					Date:     date.Add(time.Hour),
					Artwork:  []byte{},
					FileName: "empty.wav",
				},
				{
					ID:       "song-3",
					Title:    "No creators",
					Creators: nil,
					Date:     date,
					Artwork:  []byte{1, 2, 3},
				},
			},
			Playlists: []catalog.Playlist{
				{ID: "pl-all", Name: catalog.AllSongsName, SongIDs: []string{"song-3", "song-2", "song-1"}},
				{ID: "pl-empty", Name: "Nothing yet", SongIDs: []string{}},
				{ID: "pl-nil", Name: "Never touched"},
			},
		},
		{ID: "artist-2", Name: "Bare", Avatar: []byte{}},
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	want := sampleCatalog()

	data, err := Encode(want)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Nil(t, got[0].Avatar)
	assert.NotNil(t, got[1].Avatar)
	assert.Nil(t, got[0].Songs[0].Artwork)
	assert.NotNil(t, got[0].Songs[1].Artwork)
	assert.NotNil(t, got[0].Songs[1].Creators)
	assert.Nil(t, got[0].Songs[2].Creators)
}

func TestCodec_NilCatalogEncodesEmptyList(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestCodec_DecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`{"not": "a list"`))
	require.Error(t, err)
}

func TestFile_LoadMissingIsEmpty(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "artists.json"))

	artists, err := f.Load()

	require.NoError(t, err)
	assert.Empty(t, artists)
}

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "artists.json")
	f := NewFile(path)
	want := sampleCatalog()

	require.NoError(t, f.Save(want))
	got, err := f.Load()

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFile_SaveReplacesWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(filepath.Join(dir, "artists.json"))

	require.NoError(t, f.Save(sampleCatalog()))
	require.NoError(t, f.Save(sampleCatalog()[1:]))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must be renamed away")
	assert.Equal(t, "artists.json", entries[0].Name())

	got, err := f.Load()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bare", got[0].Name)
}

func TestFile_SaveFailureKeepsPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artists.json")
	f := NewFile(path)
	require.NoError(t, f.Save(sampleCatalog()))

	// A directory in place of the target makes the rename fail.
	blocked := NewFile(filepath.Join(dir, "blocked"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "blocked", "child"), 0o755))
	require.Error(t, blocked.Save(sampleCatalog()))

	got, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, sampleCatalog(), got)
}

func TestFile_CorruptSnapshotReseedsCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artists.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	f := NewFile(path)

	_, err := f.Load()
	require.Error(t, err)

	store := catalog.Open(f)
	artists := store.Artists()
	require.Len(t, artists, 1)
	assert.Equal(t, catalog.DemoArtistName, artists[0].Name)

	onDisk, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, artists, onDisk)
}

func TestFile_StoreWriteThrough(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "artists.json"))
	store := catalog.Open(f, catalog.WithoutSeed())

	a, err := store.CreateArtist("Writer")
	require.NoError(t, err)
	_, err = store.AddSong(catalog.Song{Title: "Tune", Creators: []string{}}, a.ID)
	require.NoError(t, err)

	onDisk, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, store.Artists(), onDisk)

	reopened := catalog.Open(NewFile(f.Path()))
	assert.Equal(t, store.Artists(), reopened.Artists())
}

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	conn, err := dbutil.Open(dbutil.MemoryPath)
	require.NoError(t, err)
	s, err := NewSQLite(conn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_LoadEmpty(t *testing.T) {
	s := newTestSQLite(t)

	artists, err := s.Load()

	require.NoError(t, err)
	assert.Empty(t, artists)
}

func TestSQLite_RoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	want := sampleCatalog()

	require.NoError(t, s.Save(want))
	require.NoError(t, s.Save(want))
	got, err := s.Load()

	require.NoError(t, err)
	assert.Equal(t, want, got)

	var rows int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM catalog_snapshot`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestSQLite_SavedAt(t *testing.T) {
	s := newTestSQLite(t)
	s.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

	require.NoError(t, s.Save(sampleCatalog()))
	at, err := s.SavedAt()

	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000), at.Unix())
}

func TestSQLite_OpenOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(sampleCatalog()))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, sampleCatalog(), got)
}
