package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/templui/heartroom/internal/apperr"
	"github.com/templui/heartroom/internal/model"
	"github.com/templui/heartroom/internal/realtime"
	"github.com/templui/heartroom/internal/repository"
	"github.com/templui/heartroom/internal/service"
)

// fakeRoom is an in-memory message backend publishing to a real feed.
// With hold set, inserts are queued until echo is called.
type fakeRoom struct {
	feed realtime.Publisher

	mu      sync.Mutex
	seq     int
	rows    []*model.ChatMessage
	pending []realtime.Event
	hold    bool

	fetchErr  error
	createErr error
	clearErr  error
	now       time.Time

	// afterClear runs once the rows are gone and before the delete event
	// is published.
	afterClear func()
}

func newFakeRoom(feed realtime.Publisher) *fakeRoom {
	return &fakeRoom{feed: feed, now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (r *fakeRoom) seed(userID, content string, createdAt time.Time) *model.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(userID, content, createdAt)
}

func (r *fakeRoom) addLocked(userID, content string, createdAt time.Time) *model.ChatMessage {
	r.seq++
	m := &model.ChatMessage{
		Message: model.Message{
			ID:        fmt.Sprintf("m%d", r.seq),
			UserID:    userID,
			Content:   content,
			CreatedAt: createdAt,
			ExpiresAt: createdAt.Add(model.DefaultMessageTTL),
		},
		Profile: &model.ProfileSnapshot{Username: userID},
	}
	r.rows = append(r.rows, m)
	return m
}

func (r *fakeRoom) FetchMessages(ctx context.Context) ([]*model.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	out := make([]*model.ChatMessage, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

func (r *fakeRoom) FetchMessageByID(ctx context.Context, id string) (*model.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.rows {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, apperr.NotFound("message not found")
}

func (r *fakeRoom) CreateMessage(ctx context.Context, content, authorID string) error {
	r.mu.Lock()
	if r.createErr != nil {
		r.mu.Unlock()
		return r.createErr
	}
	m := r.addLocked(authorID, content, r.now)
	ev := realtime.Event{Table: repository.MessagesTable, Type: realtime.Insert, ID: m.ID, UserID: authorID}
	if r.hold {
		r.pending = append(r.pending, ev)
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()
	return r.feed.Publish(ctx, ev)
}

// echo delivers the held insert events.
func (r *fakeRoom) echo(ctx context.Context) error {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	for _, ev := range pending {
		err := r.feed.Publish(ctx, ev)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeRoom) DeleteMessage(ctx context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	for i, m := range r.rows {
		if m.ID == id && m.UserID == userID {
			r.rows = append(r.rows[:i:i], r.rows[i+1:]...)
			r.mu.Unlock()
			return true, r.feed.Publish(ctx, realtime.Event{Table: repository.MessagesTable, Type: realtime.Delete, ID: id, UserID: userID})
		}
	}
	r.mu.Unlock()
	return false, nil
}

func (r *fakeRoom) ClearAll(ctx context.Context) (int64, error) {
	r.mu.Lock()
	if r.clearErr != nil {
		r.mu.Unlock()
		return 0, r.clearErr
	}
	rows := r.rows
	r.rows = nil
	afterClear := r.afterClear
	r.mu.Unlock()

	if afterClear != nil {
		afterClear()
	}
	if len(rows) == 0 {
		return 0, nil
	}

	ids := make([]string, len(rows))
	for i, m := range rows {
		ids[i] = m.ID
	}
	err := r.feed.Publish(ctx, realtime.Event{Table: repository.MessagesTable, Type: realtime.Delete, IDs: ids})
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

type stubSettings struct {
	mu       sync.Mutex
	settings model.NotificationSettings
	err      error
}

func (s *stubSettings) NotificationSettings(ctx context.Context, userID string) (model.NotificationSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, s.err
}

func (s *stubSettings) set(settings model.NotificationSettings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
}

type mockHearts struct {
	giveFn func(ctx context.Context, in service.HeartInput) error

	mu    sync.Mutex
	calls []service.HeartInput
}

func (m *mockHearts) GiveHeart(ctx context.Context, in service.HeartInput) error {
	m.mu.Lock()
	m.calls = append(m.calls, in)
	m.mu.Unlock()
	if m.giveFn != nil {
		return m.giveFn(ctx, in)
	}
	return nil
}

type mockRewards struct {
	mu     sync.Mutex
	claims []model.Activity
	err    error
}

func (m *mockRewards) Claim(ctx context.Context, userID string, activity model.Activity) (*service.RewardResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claims = append(m.claims, activity)
	if m.err != nil {
		return nil, m.err
	}
	return &service.RewardResult{}, nil
}

type recordingNotifier struct {
	mu            sync.Mutex
	notifications []Notification
	sounds        int
}

func (n *recordingNotifier) Notify(note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, note)
}

func (n *recordingNotifier) PlaySound() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sounds++
}

func (n *recordingNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notifications), n.sounds
}

type failingSubscriber struct{}

func (failingSubscriber) Subscribe(ctx context.Context, table string) (*realtime.Subscription, error) {
	return nil, errors.New("redis unavailable")
}

func nextFrame(t *testing.T, s *Session) Frame {
	t.Helper()
	select {
	case f := <-s.Updates():
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return Frame{}
	}
}

// nextFrameOf skips frames until one of type typ arrives.
func nextFrameOf(t *testing.T, s *Session, typ FrameType) Frame {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case f := <-s.Updates():
			if f.Type == typ {
				return f
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s frame", typ)
			return Frame{}
		}
	}
}

func requireNoFrame(t *testing.T, s *Session) {
	t.Helper()
	select {
	case f := <-s.Updates():
		require.Failf(t, "unexpected frame", "%+v", f)
	case <-time.After(50 * time.Millisecond):
	}
}
