package playback

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/artistmusic/internal/catalog"
	"github.com/llehouerou/artistmusic/internal/player"
)

var errMissing = errors.New("missing")

func testResolver() Resolver {
	return ResolverFunc(func(name string) (string, error) {
		if name == "" || name == "missing.wav" {
			return "", errMissing
		}
		return "/audio/" + name, nil
	})
}

func songs(ids ...string) []catalog.Song {
	out := make([]catalog.Song, len(ids))
	for i, id := range ids {
		out[i] = catalog.Song{ID: id, Title: "Song " + id, FileName: id + ".wav"}
	}
	return out
}

func newTestEngine() (*Engine, *player.Mock) {
	out := player.NewMock()
	return New(out, testResolver()), out
}

// ready completes the pending load the way the output would.
func ready(e *Engine, out *player.Mock) {
	path := out.Pending()
	out.EmitReady(path)
	<-out.Events()
	e.HandleEvent(player.Event{Kind: player.EventReady, Path: path})
}

func TestNew_StartsIdle(t *testing.T) {
	e, _ := newTestEngine()

	st := e.Status()
	assert.Equal(t, StateIdle, st.State)
	assert.Nil(t, st.Current)
	assert.Equal(t, -1, st.Index)
	assert.False(t, st.IsPlaying)
	assert.Zero(t, st.Progress)
	assert.Zero(t, st.Rotation)
}

func TestEnqueue_LoadsStartSong(t *testing.T) {
	e, out := newTestEngine()

	e.Enqueue(songs("a", "b", "c"), 1)

	st := e.Status()
	assert.Equal(t, StateLoading, st.State)
	require.NotNil(t, st.Current)
	assert.Equal(t, "b", st.Current.ID)
	assert.Equal(t, 1, st.Index)
	assert.True(t, st.IsPlaying)
	assert.Len(t, st.Queue, 3)
	assert.Equal(t, []string{"/audio/b.wav"}, out.ReplaceCalls())
	assert.Zero(t, out.PlayCalls(), "playback waits for ready")
}

func TestEnqueue_InvalidStartOnlyReplacesQueue(t *testing.T) {
	for _, start := range []int{-1, 3, 99} {
		e, out := newTestEngine()

		e.Enqueue(songs("a", "b", "c"), start)

		st := e.Status()
		assert.Equal(t, StateIdle, st.State)
		assert.Nil(t, st.Current)
		assert.Len(t, st.Queue, 3)
		assert.Empty(t, out.ReplaceCalls())
	}
}

func TestEnqueue_EmptyQueue(t *testing.T) {
	e, out := newTestEngine()

	e.Enqueue(nil, 0)

	assert.Equal(t, StateIdle, e.State())
	assert.Empty(t, out.ReplaceCalls())
}

func TestEnqueue_UnresolvableLeavesStateUnchanged(t *testing.T) {
	e, out := newTestEngine()
	sub := e.Subscribe()
	queue := songs("a")
	queue[0].FileName = "missing.wav"

	e.Enqueue(queue, 0)

	st := e.Status()
	assert.Equal(t, StateIdle, st.State)
	assert.Nil(t, st.Current)
	assert.False(t, st.IsPlaying)
	assert.Empty(t, out.ReplaceCalls())
	ev := <-sub.Error
	assert.Equal(t, "resolve", ev.Operation)
	assert.ErrorIs(t, ev.Err, errMissing)
}

func TestEnqueue_UnresolvableWhilePlayingKeepsCurrent(t *testing.T) {
	e, out := newTestEngine()
	e.Enqueue(songs("a"), 0)
	ready(e, out)
	e.ReportProgress(30, 60)

	bad := songs("x")
	bad[0].FileName = ""
	e.Enqueue(bad, 0)

	st := e.Status()
	assert.Equal(t, StatePlaying, st.State)
	assert.Equal(t, "a", st.Current.ID)
	assert.InDelta(t, 0.5, st.Progress, 1e-9)
	assert.Len(t, out.ReplaceCalls(), 1)
}

func TestReady_StartsPlayback(t *testing.T) {
	e, out := newTestEngine()
	e.Enqueue(songs("a"), 0)

	ready(e, out)

	assert.Equal(t, StatePlaying, e.State())
	assert.True(t, e.IsPlaying())
	assert.Equal(t, 1, out.PlayCalls())
	assert.Equal(t, player.Playing, out.State())
}

func TestReady_StaleEventIgnored(t *testing.T) {
	e, out := newTestEngine()
	e.Enqueue(songs("a", "b"), 0)
	e.Next()

	e.HandleEvent(player.Event{Kind: player.EventReady, Path: "/audio/a.wav"})

	assert.Equal(t, StateLoading, e.State())
	assert.Zero(t, out.PlayCalls())

	e.HandleEvent(player.Event{Kind: player.EventReady, Path: "/audio/b.wav"})
	assert.Equal(t, StatePlaying, e.State())
}

func TestReady_PausedWhileLoading(t *testing.T) {
	e, out := newTestEngine()
	e.Enqueue(songs("a"), 0)
	e.Pause()

	ready(e, out)

	assert.Equal(t, StatePaused, e.State())
	assert.False(t, e.IsPlaying())
	assert.Zero(t, out.PlayCalls())

	e.Play()
	assert.Equal(t, StatePlaying, e.State())
	assert.Equal(t, 1, out.PlayCalls())
}

func TestFailed_StallsInLoading(t *testing.T) {
	e, out := newTestEngine()
	sub := e.Subscribe()
	e.Enqueue(songs("a"), 0)

	e.HandleEvent(player.Event{Kind: player.EventFailed, Path: "/audio/a.wav", Err: errors.New("corrupt")})

	st := e.Status()
	assert.Equal(t, StateLoading, st.State)
	assert.Equal(t, "a", st.Current.ID)
	assert.Len(t, out.ReplaceCalls(), 1, "no retry")
	ev := <-sub.Error
	assert.Equal(t, "load", ev.Operation)
	assert.Equal(t, "a", ev.SongID)

	// A late ready for the failed load does not revive it.
	e.HandleEvent(player.Event{Kind: player.EventReady, Path: "/audio/a.wav"})
	assert.Equal(t, StateLoading, e.State())
}

func TestPausePlay_DoesNotReload(t *testing.T) {
	e, out := newTestEngine()
	e.Enqueue(songs("a"), 0)
	ready(e, out)

	e.Pause()
	assert.Equal(t, StatePaused, e.State())
	assert.False(t, e.IsPlaying())

	e.Play()
	assert.Equal(t, StatePlaying, e.State())
	assert.True(t, e.IsPlaying())
	assert.Len(t, out.ReplaceCalls(), 1)
	assert.Equal(t, 2, out.PlayCalls())
}

func TestToggle(t *testing.T) {
	e, out := newTestEngine()
	e.Enqueue(songs("a"), 0)
	ready(e, out)

	e.Toggle()
	assert.Equal(t, StatePaused, e.State())
	e.Toggle()
	assert.Equal(t, StatePlaying, e.State())
}

func TestToggle_Concurrent(t *testing.T) {
	e, out := newTestEngine()
	e.Enqueue(songs("a"), 0)
	ready(e, out)

	var wg sync.WaitGroup
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Toggle()
		}()
	}
	wg.Wait()

	// An even number of toggles lands back where it started.
	assert.Equal(t, StatePlaying, e.State())
	assert.True(t, e.IsPlaying())
	assert.Equal(t, 32, out.PauseCalls())
}

func TestTransport_IdleIsNoop(t *testing.T) {
	e, out := newTestEngine()

	e.Play()
	e.Pause()
	e.Toggle()
	e.Next()
	e.Previous()

	assert.Equal(t, StateIdle, e.State())
	assert.Zero(t, out.PlayCalls())
	assert.Zero(t, out.PauseCalls())
	assert.Empty(t, out.ReplaceCalls())
}

func TestPrevious_StopsAtStart(t *testing.T) {
	e, out := newTestEngine()
	e.Enqueue(songs("a", "b"), 1)
	ready(e, out)

	e.Previous()
	cur, ok := e.Current()
	require.True(t, ok)
	assert.Equal(t, "a", cur.ID)

	ready(e, out)
	e.Previous()
	cur, _ = e.Current()
	assert.Equal(t, "a", cur.ID)
	assert.Equal(t, []string{"/audio/b.wav", "/audio/a.wav"}, out.ReplaceCalls())
}

func TestNext_StopsAtEnd(t *testing.T) {
	e, out := newTestEngine()
	e.Enqueue(songs("a", "b"), 1)
	ready(e, out)

	e.Next()

	cur, _ := e.Current()
	assert.Equal(t, "b", cur.ID)
	assert.True(t, e.IsPlaying())
	assert.Equal(t, StatePlaying, e.State())
	assert.Len(t, out.ReplaceCalls(), 1)
}

func TestNext_LocatesCurrentByID(t *testing.T) {
	e, out := newTestEngine()
	e.Enqueue(songs("a", "b", "c"), 0)
	ready(e, out)

	// A new queue where the current song sits elsewhere.
	e.Enqueue(songs("x", "y"), 5)
	e.Next()
	assert.Len(t, out.ReplaceCalls(), 1, "current song is not in the new queue")

	e.Enqueue(songs("c", "a", "b"), 1)
	ready(e, out)
	e.Next()
	cur, _ := e.Current()
	assert.Equal(t, "b", cur.ID)
}

func TestFinished_AdvancesQueue(t *testing.T) {
	e, out := newTestEngine()
	sub := e.Subscribe()
	e.Enqueue(songs("a", "b"), 0)
	ready(e, out)

	e.HandleEvent(player.Event{Kind: player.EventFinished, Path: "/audio/a.wav"})

	cur, _ := e.Current()
	assert.Equal(t, "b", cur.ID)
	assert.Equal(t, StateLoading, e.State())

	first := <-sub.TrackChanged
	assert.Equal(t, "a", first.Current.ID)
	second := <-sub.TrackChanged
	assert.Equal(t, "a", second.Previous.ID)
	assert.Equal(t, "b", second.Current.ID)
	assert.Equal(t, 1, second.Index)
}

func TestFinished_EndOfQueuePauses(t *testing.T) {
	e, out := newTestEngine()
	e.Enqueue(songs("a"), 0)
	ready(e, out)
	e.ReportProgress(59, 60)

	e.HandleEvent(player.Event{Kind: player.EventFinished, Path: "/audio/a.wav"})

	st := e.Status()
	assert.Equal(t, StatePaused, st.State)
	assert.False(t, st.IsPlaying)
	assert.InDelta(t, 1.0, st.Progress, 1e-9)
	assert.Equal(t, "a", st.Current.ID)
}

func TestFinished_PlayAfterEndReloads(t *testing.T) {
	e, out := newTestEngine()
	e.Enqueue(songs("a", "b"), 1)
	ready(e, out)
	e.HandleEvent(player.Event{Kind: player.EventFinished, Path: "/audio/b.wav"})
	playCalls := out.PlayCalls()

	e.Play()

	st := e.Status()
	assert.Equal(t, StateLoading, st.State)
	assert.True(t, st.IsPlaying)
	assert.Zero(t, st.Progress)
	assert.Equal(t, "b", st.Current.ID)
	assert.Equal(t, []string{"/audio/b.wav", "/audio/b.wav"}, out.ReplaceCalls())
	assert.Equal(t, playCalls, out.PlayCalls(), "the finished track is not resumed")

	ready(e, out)
	assert.Equal(t, StatePlaying, e.State())
}

func TestFinished_ToggleAfterEndReloads(t *testing.T) {
	e, out := newTestEngine()
	e.Enqueue(songs("a"), 0)
	ready(e, out)
	e.HandleEvent(player.Event{Kind: player.EventFinished, Path: "/audio/a.wav"})

	e.Toggle()

	assert.Equal(t, StateLoading, e.State())
	assert.Len(t, out.ReplaceCalls(), 2)
}

func TestFinished_StaleIgnored(t *testing.T) {
	e, out := newTestEngine()
	e.Enqueue(songs("a", "b", "c"), 0)
	ready(e, out)
	e.Next()
	ready(e, out)

	e.HandleEvent(player.Event{Kind: player.EventFinished, Path: "/audio/a.wav"})

	cur, _ := e.Current()
	assert.Equal(t, "b", cur.ID)
	assert.Equal(t, StatePlaying, e.State())
}

func TestReportProgress(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  float64
		duration float64
		want     float64
	}{
		{"half", 30, 60, 0.5},
		{"zero duration", 30, 0, 0.25},
		{"negative duration", 30, -10, 0.25},
		{"nan duration", 30, math.NaN(), 0.25},
		{"infinite duration", 30, math.Inf(1), 0.25},
		{"nan elapsed", math.NaN(), 60, 0.25},
		{"clamped high", 90, 60, 1},
		{"clamped low", -5, 60, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine()
			e.ReportProgress(15, 60)

			e.ReportProgress(tt.elapsed, tt.duration)

			assert.InDelta(t, tt.want, e.Status().Progress, 1e-9)
		})
	}
}

func TestSpin_OnlyWhilePlaying(t *testing.T) {
	e, out := newTestEngine()

	e.Spin()
	assert.Zero(t, e.Status().Rotation)

	e.Enqueue(songs("a"), 0)
	ready(e, out)
	for range 5 {
		e.Spin()
	}
	assert.InDelta(t, 2.0, e.Status().Rotation, 1e-9)

	e.Pause()
	e.Spin()
	assert.InDelta(t, 2.0, e.Status().Rotation, 1e-9)
}

func TestSpin_WrapsAt360(t *testing.T) {
	e, out := newTestEngine()
	e.Enqueue(songs("a"), 0)
	ready(e, out)

	for range 901 {
		e.Spin()
	}

	r := e.Status().Rotation
	assert.GreaterOrEqual(t, r, 0.0)
	assert.Less(t, r, 360.0)
	assert.InDelta(t, 0.4, r, 1e-6)
}

func TestStatus_ReturnsCopies(t *testing.T) {
	e, _ := newTestEngine()
	e.Enqueue(songs("a", "b"), 0)

	st := e.Status()
	st.Queue[0].Title = "changed"
	st.Current.Title = "changed"

	assert.Equal(t, "Song a", e.Queue()[0].Title)
	cur, _ := e.Current()
	assert.Equal(t, "Song a", cur.Title)
}

func TestSubscribe_StateChanges(t *testing.T) {
	e, out := newTestEngine()
	sub := e.Subscribe()

	e.Enqueue(songs("a"), 0)
	ready(e, out)
	e.Pause()

	want := []StateChange{
		{Previous: StateIdle, Current: StateLoading},
		{Previous: StateLoading, Current: StatePlaying},
		{Previous: StatePlaying, Current: StatePaused},
	}
	for _, w := range want {
		assert.Equal(t, w, <-sub.StateChanged)
	}
	q := <-sub.QueueChanged
	assert.Len(t, q.Songs, 1)
}

func TestClose_EndsSubscriptions(t *testing.T) {
	e, out := newTestEngine()
	sub := e.Subscribe()
	e.Enqueue(songs("a"), 0)
	ready(e, out)

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	<-sub.Done
	assert.Equal(t, player.Paused, out.State())
	assert.False(t, out.Closed(), "output is owned by the caller")
}

func TestRun_DrivesEngine(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		out := player.NewMock()
		e := New(out, testResolver())
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- e.Run(ctx) }()

		e.Enqueue(songs("a", "b"), 0)
		out.EmitReady("/audio/a.wav")
		synctest.Wait()
		require.Equal(t, StatePlaying, e.State())

		out.SetDuration(100 * time.Second)
		out.SetPosition(25 * time.Second)
		time.Sleep(DefaultProgressInterval)
		synctest.Wait()
		assert.InDelta(t, 0.25, e.Status().Progress, 1e-9)
		assert.Greater(t, e.Status().Rotation, 0.0)

		out.EmitFinished("/audio/a.wav")
		synctest.Wait()
		cur, _ := e.Current()
		assert.Equal(t, "b", cur.ID)
		assert.Equal(t, StateLoading, e.State())

		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})
}

func TestRun_SpinRate(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		out := player.NewMock()
		e := New(out, testResolver(), WithIntervals(time.Hour, 10*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go e.Run(ctx) //nolint:errcheck // returns on cancel

		e.Enqueue(songs("a"), 0)
		out.EmitReady("/audio/a.wav")
		synctest.Wait()

		time.Sleep(100*time.Millisecond + time.Millisecond)
		synctest.Wait()
		assert.InDelta(t, 10*SpinStep, e.Status().Rotation, 1e-9)
	})
}
