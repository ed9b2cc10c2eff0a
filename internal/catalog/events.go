package catalog

// Op identifies the mutation that produced a Change.
type Op string

const (
	OpCreateArtist      Op = "create-artist"
	OpRenameArtist      Op = "rename-artist"
	OpUpdateArtist      Op = "update-artist"
	OpDeleteArtist      Op = "delete-artist"
	OpAddSong           Op = "add-song"
	OpUpdateSong        Op = "update-song"
	OpDeleteSongs       Op = "delete-songs"
	OpBatchUpdateSongs  Op = "batch-update-songs"
	OpAddPlaylist       Op = "add-playlist"
	OpMovePlaylists     Op = "move-playlists"
	OpAddSongToPlaylist Op = "add-song-to-playlist"
	OpSetBanner         Op = "set-banner"
	OpSetAvatar         Op = "set-avatar"
	OpSetSongArtwork    Op = "set-song-artwork"
)

// Change is emitted after a mutation has been applied.
type Change struct {
	Op        Op
	ArtistID  string
	Persisted bool // false when the snapshot write failed
}

const eventBufferSize = 16

// Subscription delivers catalog changes to one subscriber.
type Subscription struct {
	Changed <-chan Change
	Done    <-chan struct{}

	changedCh chan Change
	doneCh    chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		changedCh: make(chan Change, eventBufferSize),
		doneCh:    make(chan struct{}),
	}
	s.Changed = s.changedCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) close() {
	close(s.doneCh)
}

// send delivers c without blocking; it is dropped if the buffer is full.
func (s *Subscription) send(c Change) {
	select {
	case s.changedCh <- c:
	default:
	}
}
