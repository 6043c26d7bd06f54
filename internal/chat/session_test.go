package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/heartroom/internal/apperr"
	"github.com/templui/heartroom/internal/model"
	"github.com/templui/heartroom/internal/realtime"
	"github.com/templui/heartroom/internal/repository"
	"github.com/templui/heartroom/internal/service"
)

type harness struct {
	feed     *realtime.LocalFeed
	room     *fakeRoom
	hearts   *mockHearts
	rewards  *mockRewards
	notifier *recordingNotifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	feed := realtime.NewLocalFeed()
	t.Cleanup(func() { feed.Close() })
	return &harness{
		feed:     feed,
		room:     newFakeRoom(feed),
		hearts:   &mockHearts{},
		rewards:  &mockRewards{},
		notifier: &recordingNotifier{},
	}
}

func (h *harness) config(userID string) Config {
	return Config{
		UserID:   userID,
		Messages: h.room,
		Hearts:   h.hearts,
		Feed:     h.feed,
		Rewards:  h.rewards,
		Settings: model.NotificationSettings{EnableNotifications: true, EnableMessageSounds: true},
		Notifier: h.notifier,
	}
}

func (h *harness) open(t *testing.T, cfg Config) *Session {
	t.Helper()
	s := NewSession(cfg)
	require.NoError(t, s.Open(context.Background()))
	t.Cleanup(s.Close)

	nextFrameOf(t, s, FrameSnapshot)
	return s
}

func TestSessionOpen(t *testing.T) {
	t.Run("loads existing messages", func(t *testing.T) {
		h := newHarness(t)
		h.room.seed("bob", "hello", h.room.now)

		s := NewSession(h.config("user-123"))
		assert.Equal(t, StateLoading, s.State())

		require.NoError(t, s.Open(context.Background()))
		defer s.Close()

		f := nextFrame(t, s)
		assert.Equal(t, FrameSnapshot, f.Type)
		require.Len(t, f.Messages, 1)
		assert.Equal(t, "hello", f.Messages[0].Content)
		assert.Equal(t, StateReady, s.State())
	})

	t.Run("fetch failure still becomes ready", func(t *testing.T) {
		h := newHarness(t)
		h.room.fetchErr = apperr.Backend("failed to load messages", errors.New("db down"))

		s := NewSession(h.config("user-123"))
		require.NoError(t, s.Open(context.Background()))
		defer s.Close()

		toast := nextFrame(t, s)
		assert.Equal(t, FrameToast, toast.Type)
		assert.Equal(t, ToastError, toast.Toast.Level)

		snap := nextFrame(t, s)
		assert.Equal(t, FrameSnapshot, snap.Type)
		assert.Empty(t, snap.Messages)
		assert.Equal(t, StateReady, s.State())
	})

	t.Run("subscribe failure", func(t *testing.T) {
		h := newHarness(t)
		cfg := h.config("user-123")
		cfg.Feed = failingSubscriber{}

		err := NewSession(cfg).Open(context.Background())
		assert.Equal(t, apperr.KindBackend, apperr.KindOf(err))
	})
}

func TestSessionSendRoundTrip(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.room.hold = true
	s := h.open(t, h.config("user-123"))

	s.SendMessage(ctx, "Test message")

	assert.Empty(t, s.Snapshot(), "list only changes on the echo")
	requireNoFrame(t, s)

	require.NoError(t, h.room.echo(ctx))

	f := nextFrameOf(t, s, FrameAppend)
	assert.Equal(t, "Test message", f.Message.Content)
	assert.Equal(t, "user-123", f.Message.UserID)

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Test message", snapshot[0].Content)

	notes, sounds := h.notifier.counts()
	assert.Zero(t, notes, "own messages do not notify")
	assert.Zero(t, sounds)

	h.rewards.mu.Lock()
	assert.Equal(t, []model.Activity{model.ActivityFirstMessage}, h.rewards.claims)
	h.rewards.mu.Unlock()
}

func TestSessionSendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("blank content is ignored", func(t *testing.T) {
		h := newHarness(t)
		s := h.open(t, h.config("user-123"))

		s.SendMessage(ctx, "   \n\t")

		requireNoFrame(t, s)
		assert.Empty(t, h.room.rows)
	})

	t.Run("no user is ignored", func(t *testing.T) {
		h := newHarness(t)
		s := h.open(t, h.config(""))

		s.SendMessage(ctx, "hello")

		requireNoFrame(t, s)
		assert.Empty(t, h.room.rows)
	})

	t.Run("failure toasts and leaves state alone", func(t *testing.T) {
		h := newHarness(t)
		h.room.createErr = apperr.Validation("message too long")
		s := h.open(t, h.config("user-123"))

		s.SendMessage(ctx, "hello")

		f := nextFrame(t, s)
		assert.Equal(t, FrameToast, f.Type)
		assert.Equal(t, ToastError, f.Toast.Level)
		assert.Equal(t, "message too long", f.Toast.Message)
		assert.Empty(t, s.Snapshot())
		assert.Empty(t, h.rewards.claims)
	})

	t.Run("backend failure uses a generic message", func(t *testing.T) {
		h := newHarness(t)
		h.room.createErr = apperr.Backend("failed to send message", errors.New("pq: connection reset"))
		s := h.open(t, h.config("user-123"))

		s.SendMessage(ctx, "hello")

		f := nextFrame(t, s)
		assert.Equal(t, "Failed to send message", f.Toast.Message)
	})
}

func TestSessionInsertFromOtherUser(t *testing.T) {
	ctx := context.Background()

	t.Run("notifies when enabled", func(t *testing.T) {
		h := newHarness(t)
		s := h.open(t, h.config("user-123"))
		other := h.open(t, h.config("bob"))

		other.SendMessage(ctx, "hi there")

		f := nextFrameOf(t, s, FrameAppend)
		assert.Equal(t, "bob", f.Message.UserID)

		require.Eventually(t, func() bool {
			notes, sounds := h.notifier.counts()
			return notes >= 1 && sounds >= 1
		}, time.Second, 10*time.Millisecond)

		h.notifier.mu.Lock()
		assert.Equal(t, "bob: hi there", h.notifier.notifications[0].Body)
		h.notifier.mu.Unlock()
	})

	t.Run("settings switch effects off", func(t *testing.T) {
		h := newHarness(t)
		cfg := h.config("user-123")
		cfg.Settings = model.NotificationSettings{}
		s := h.open(t, cfg)

		h.room.seed("bob", "quiet", h.room.now)
		require.NoError(t, h.feed.Publish(ctx, realtime.Event{Table: repository.MessagesTable, Type: realtime.Insert, ID: "m1"}))

		nextFrameOf(t, s, FrameAppend)
		// a second event flushes any effect of the first
		h.room.seed("bob", "still quiet", h.room.now)
		require.NoError(t, h.feed.Publish(ctx, realtime.Event{Table: repository.MessagesTable, Type: realtime.Insert, ID: "m2"}))
		nextFrameOf(t, s, FrameAppend)

		notes, sounds := h.notifier.counts()
		assert.Zero(t, notes)
		assert.Zero(t, sounds)
	})

	t.Run("default notifier emits frames", func(t *testing.T) {
		h := newHarness(t)
		cfg := h.config("user-123")
		cfg.Notifier = nil
		s := h.open(t, cfg)

		h.room.seed("bob", "ping", h.room.now)
		require.NoError(t, h.feed.Publish(ctx, realtime.Event{Table: repository.MessagesTable, Type: realtime.Insert, ID: "m1"}))

		assert.Equal(t, FrameAppend, nextFrame(t, s).Type)
		notify := nextFrame(t, s)
		assert.Equal(t, FrameNotify, notify.Type)
		assert.Equal(t, "New message", notify.Notification.Title)
		assert.Equal(t, FrameSound, nextFrame(t, s).Type)
	})
}

func TestSessionIgnoresDuplicateInsert(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.room.seed("bob", "first", h.room.now)
	s := h.open(t, h.config("user-123"))

	require.NoError(t, h.feed.Publish(ctx, realtime.Event{Table: repository.MessagesTable, Type: realtime.Insert, ID: "m1"}))
	h.room.seed("bob", "second", h.room.now)
	require.NoError(t, h.feed.Publish(ctx, realtime.Event{Table: repository.MessagesTable, Type: realtime.Insert, ID: "m2"}))

	f := nextFrameOf(t, s, FrameAppend)
	assert.Equal(t, "m2", f.Message.ID)

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "m1", snapshot[0].ID)
	assert.Equal(t, "m2", snapshot[1].ID)
}

func TestSessionDeleteEvents(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.room.seed("bob", "one", h.room.now)
	h.room.seed("bob", "two", h.room.now)
	s := h.open(t, h.config("user-123"))

	require.NoError(t, h.feed.Publish(ctx, realtime.Event{Table: repository.MessagesTable, Type: realtime.Delete, ID: "missing"}))
	require.NoError(t, h.feed.Publish(ctx, realtime.Event{Table: repository.MessagesTable, Type: realtime.Delete, ID: "m1"}))

	f := nextFrame(t, s)
	assert.Equal(t, FrameRemove, f.Type)
	assert.Equal(t, "m1", f.ID)

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "m2", snapshot[0].ID)
}

func TestSessionGiveHeart(t *testing.T) {
	ctx := context.Background()

	t.Run("self is a no-op", func(t *testing.T) {
		h := newHarness(t)
		s := h.open(t, h.config("user-123"))

		s.GiveHeart(ctx, "user-123", "m1")

		requireNoFrame(t, s)
		assert.Empty(t, h.hearts.calls)
	})

	t.Run("success", func(t *testing.T) {
		h := newHarness(t)
		s := h.open(t, h.config("user-123"))

		s.GiveHeart(ctx, "bob", "m1")

		f := nextFrame(t, s)
		assert.Equal(t, ToastSuccess, f.Toast.Level)
		require.Len(t, h.hearts.calls, 1)
		assert.Equal(t, "user-123", h.hearts.calls[0].GiverID)
		assert.Equal(t, "bob", h.hearts.calls[0].ReceiverID)
		require.NotNil(t, h.hearts.calls[0].MessageID)
		assert.Equal(t, "m1", *h.hearts.calls[0].MessageID)
	})

	t.Run("without message", func(t *testing.T) {
		h := newHarness(t)
		s := h.open(t, h.config("user-123"))

		s.GiveHeart(ctx, "bob", "")

		nextFrame(t, s)
		require.Len(t, h.hearts.calls, 1)
		assert.Nil(t, h.hearts.calls[0].MessageID)
	})

	t.Run("duplicate", func(t *testing.T) {
		h := newHarness(t)
		h.hearts.giveFn = func(ctx context.Context, in service.HeartInput) error {
			return apperr.New(apperr.KindDuplicateHeart, "already hearted")
		}
		s := h.open(t, h.config("user-123"))

		s.GiveHeart(ctx, "bob", "m1")

		f := nextFrame(t, s)
		assert.Equal(t, ToastError, f.Toast.Level)
		assert.Equal(t, "You already gave this user a heart", f.Toast.Message)
	})

	t.Run("backend error", func(t *testing.T) {
		h := newHarness(t)
		h.hearts.giveFn = func(ctx context.Context, in service.HeartInput) error {
			return apperr.Backend("failed to give heart", errors.New("timeout"))
		}
		s := h.open(t, h.config("user-123"))

		s.GiveHeart(ctx, "bob", "m1")

		f := nextFrame(t, s)
		assert.Equal(t, "Failed to send heart", f.Toast.Message)
	})
}

func TestSessionDeleteMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("own message", func(t *testing.T) {
		h := newHarness(t)
		h.room.seed("user-123", "mine", h.room.now)
		s := h.open(t, h.config("user-123"))

		s.DeleteMessage(ctx, "m1")

		toast := nextFrameOf(t, s, FrameToast)
		assert.Equal(t, "Message deleted", toast.Toast.Message)
		require.Eventually(t, func() bool { return len(s.Snapshot()) == 0 }, time.Second, 10*time.Millisecond)
	})

	t.Run("message of another user only logs", func(t *testing.T) {
		h := newHarness(t)
		h.room.seed("bob", "not mine", h.room.now)
		s := h.open(t, h.config("user-123"))

		s.DeleteMessage(ctx, "m1")

		requireNoFrame(t, s)
		assert.Len(t, s.Snapshot(), 1)
		assert.Len(t, h.room.rows, 1)
	})
}

func TestSessionClearAllMessages(t *testing.T) {
	ctx := context.Background()

	t.Run("resets the list", func(t *testing.T) {
		h := newHarness(t)
		h.room.seed("bob", "one", h.room.now)
		h.room.seed("ana", "two", h.room.now)
		s := h.open(t, h.config("user-123"))

		s.ClearAllMessages(ctx)

		toast := nextFrameOf(t, s, FrameToast)
		assert.Equal(t, ToastSuccess, toast.Toast.Level)
		assert.Empty(t, s.Snapshot())
		assert.Empty(t, h.room.rows)
	})

	t.Run("failure keeps the list", func(t *testing.T) {
		h := newHarness(t)
		h.room.seed("bob", "one", h.room.now)
		h.room.clearErr = apperr.Backend("failed to clear messages", errors.New("db down"))
		s := h.open(t, h.config("user-123"))

		s.ClearAllMessages(ctx)

		toast := nextFrame(t, s)
		assert.Equal(t, ToastError, toast.Toast.Level)
		assert.Len(t, s.Snapshot(), 1)
	})
}

func TestSessionClearAllKeepsInsertDuringDelete(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.room.seed("bob", "old", h.room.now)
	s := h.open(t, h.config("user-123"))

	var late string
	h.room.afterClear = func() {
		late = h.room.seed("ana", "just in time", h.room.now).ID
		require.NoError(t, h.feed.Publish(ctx, realtime.Event{Table: repository.MessagesTable, Type: realtime.Insert, ID: late, UserID: "ana"}))
	}

	s.ClearAllMessages(ctx)

	require.Eventually(t, func() bool {
		snapshot := s.Snapshot()
		return len(snapshot) == 1 && snapshot[0].ID == late
	}, time.Second, 10*time.Millisecond)
}

func TestSessionClearAllRestoresOnFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.room.seed("bob", "one", h.room.now)
	h.room.seed("bob", "two", h.room.now)
	h.room.clearErr = apperr.Backend("failed to clear messages", errors.New("db down"))
	s := h.open(t, h.config("user-123"))

	s.ClearAllMessages(ctx)

	toast := nextFrameOf(t, s, FrameToast)
	assert.Equal(t, "Failed to reset the chat", toast.Toast.Message)
	snapshot := s.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "m1", snapshot[0].ID)
	assert.Equal(t, "m2", snapshot[1].ID)
}

// collector drains a session on a goroutine, pausing between frames like
// a client on a slow link.
type collector struct {
	mu     sync.Mutex
	frames []Frame
	stop   chan struct{}
	wg     sync.WaitGroup
}

func collect(s *Session, pause time.Duration) *collector {
	c := &collector{stop: make(chan struct{})}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-c.stop:
				return
			case <-s.Done():
				return
			case f := <-s.Updates():
				c.mu.Lock()
				c.frames = append(c.frames, f)
				c.mu.Unlock()
				time.Sleep(pause)
			}
		}
	}()
	return c
}

func (c *collector) appended(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.frames {
		if f.Type == FrameAppend && f.Message.ID == id {
			return true
		}
	}
	return false
}

func (c *collector) close() {
	close(c.stop)
	c.wg.Wait()
}

func TestSessionsFollowFeedAfterBulkClear(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	for i := 0; i < 200; i++ {
		h.room.seed("dan", "filler", h.room.now)
	}

	alice := h.open(t, h.config("alice"))
	bob := h.open(t, h.config("bob"))
	carol := h.open(t, h.config("carol"))

	aliceFrames := collect(alice, 0)
	defer aliceFrames.close()
	bobFrames := collect(bob, 200*time.Microsecond)
	defer bobFrames.close()
	carolFrames := collect(carol, 0)
	defer carolFrames.close()

	alice.ClearAllMessages(ctx)
	require.Eventually(t, func() bool { return len(bob.Snapshot()) == 0 }, 2*time.Second, 10*time.Millisecond)

	carol.SendMessage(ctx, "anyone here?")

	require.Eventually(t, func() bool {
		return aliceFrames.appended("m201") && bobFrames.appended("m201")
	}, 2*time.Second, 10*time.Millisecond)

	for _, s := range []*Session{alice, bob, carol} {
		select {
		case <-s.Done():
			t.Fatalf("session of %s ended", s.cfg.UserID)
		default:
		}
	}
}

func TestSessionEndsWhenFeedCloses(t *testing.T) {
	h := newHarness(t)
	s := h.open(t, h.config("user-123"))

	require.NoError(t, h.feed.Close())

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("session still open after the feed closed")
	}
	s.Close()
}

func TestSessionReloadsNotificationSettings(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	source := &stubSettings{}
	cfg := h.config("user-123")
	cfg.SettingsSource = source
	s := h.open(t, cfg)

	h.room.seed("bob", "muted", h.room.now)
	require.NoError(t, h.feed.Publish(ctx, realtime.Event{Table: repository.MessagesTable, Type: realtime.Insert, ID: "m1"}))
	nextFrameOf(t, s, FrameAppend)

	source.set(model.NotificationSettings{EnableNotifications: true, EnableMessageSounds: true})
	h.room.seed("bob", "loud", h.room.now)
	require.NoError(t, h.feed.Publish(ctx, realtime.Event{Table: repository.MessagesTable, Type: realtime.Insert, ID: "m2"}))
	nextFrameOf(t, s, FrameAppend)

	require.Eventually(t, func() bool {
		notes, sounds := h.notifier.counts()
		return notes == 1 && sounds == 1
	}, time.Second, 10*time.Millisecond)

	h.notifier.mu.Lock()
	assert.Equal(t, "bob: loud", h.notifier.notifications[0].Body)
	h.notifier.mu.Unlock()

	// a failed read keeps the last known settings
	source.mu.Lock()
	source.err = errors.New("db down")
	source.mu.Unlock()
	h.room.seed("bob", "again", h.room.now)
	require.NoError(t, h.feed.Publish(ctx, realtime.Event{Table: repository.MessagesTable, Type: realtime.Insert, ID: "m3"}))
	nextFrameOf(t, s, FrameAppend)

	require.Eventually(t, func() bool {
		notes, _ := h.notifier.counts()
		return notes == 2
	}, time.Second, 10*time.Millisecond)
}

func TestSessionCountdownClearsOnce(t *testing.T) {
	h := newHarness(t)
	now := h.room.now
	h.room.seed("bob", "old", now.Add(-31*time.Minute))

	cfg := h.config("user-123")
	cfg.Expiry = 30 * time.Minute
	cfg.Tick = 5 * time.Millisecond
	cfg.Now = func() time.Time { return now }
	s := h.open(t, cfg)

	tick := nextFrameOf(t, s, FrameCountdown)
	assert.Equal(t, "Chat reset", tick.Countdown.Label)

	toast := nextFrameOf(t, s, FrameToast)
	assert.Equal(t, "Chat reset: all messages were deleted", toast.Toast.Message)
	assert.Empty(t, s.Snapshot())
	assert.Empty(t, h.room.rows)
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	h := newHarness(t)
	s := NewSession(h.config("user-123"))
	require.NoError(t, s.Open(context.Background()))

	s.Close()
	s.Close()

	select {
	case <-s.Done():
	default:
		t.Fatal("done not closed")
	}
}

func TestRunReleasesSubscription(t *testing.T) {
	h := newHarness(t)
	var session *Session

	err := Run(context.Background(), h.config("user-123"), func(ctx context.Context, s *Session) error {
		session = s
		assert.Equal(t, StateReady, s.State())
		return errors.New("client gone")
	})

	assert.EqualError(t, err, "client gone")
	require.NotNil(t, session)
	select {
	case <-session.Done():
	default:
		t.Fatal("session not closed")
	}
}
