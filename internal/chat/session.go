// Package chat holds the state of one connected chat client: the visible
// message list kept in sync with the change feed, the actions a client can
// take and the room reset countdown.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/templui/heartroom/internal/apperr"
	"github.com/templui/heartroom/internal/logger"
	"github.com/templui/heartroom/internal/model"
	"github.com/templui/heartroom/internal/realtime"
	"github.com/templui/heartroom/internal/repository"
	"github.com/templui/heartroom/internal/service"
)

type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
)

const (
	updatesBuffer = 128

	toastWarningDuration = 10 * time.Second
	toastUrgentDuration  = 5 * time.Second
)

// MessageAPI is the message backend a session talks to.
type MessageAPI interface {
	FetchMessages(ctx context.Context) ([]*model.ChatMessage, error)
	FetchMessageByID(ctx context.Context, id string) (*model.ChatMessage, error)
	CreateMessage(ctx context.Context, content, authorID string) error
	DeleteMessage(ctx context.Context, id, userID string) (bool, error)
	ClearAll(ctx context.Context) (int64, error)
}

type HeartGiver interface {
	GiveHeart(ctx context.Context, in service.HeartInput) error
}

// SettingsReader loads the notification settings of a user.
type SettingsReader interface {
	NotificationSettings(ctx context.Context, userID string) (model.NotificationSettings, error)
}

type Config struct {
	// UserID is the signed in user. Empty means a read-only session.
	UserID   string
	Messages MessageAPI
	Hearts   HeartGiver
	Feed     realtime.Subscriber
	Rewards  service.RewardClaimer

	Settings model.NotificationSettings
	// SettingsSource, when set, is consulted before each notification so
	// changes saved while the session is open take effect. Settings is
	// kept when a read fails.
	SettingsSource SettingsReader
	// Notifier receives notification and sound effects. Defaults to
	// notify and sound frames on the update stream.
	Notifier Notifier

	// Expiry is the reset window measured from the oldest visible message.
	Expiry time.Duration
	// Tick drives the countdown. Zero disables it.
	Tick time.Duration
	Now  func() time.Time
}

type Session struct {
	cfg      Config
	log      *slog.Logger
	notifier *GatedNotifier

	mu       sync.RWMutex
	state    State
	messages []*model.ChatMessage

	updates chan Frame
	sub     *realtime.Subscription

	cancel    context.CancelFunc
	done      chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
	closeOnce sync.Once
}

func NewSession(cfg Config) *Session {
	if cfg.Expiry <= 0 {
		cfg.Expiry = model.DefaultMessageTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Session{
		cfg:     cfg,
		log:     logger.Component("chat").With("user_id", cfg.UserID),
		state:   StateLoading,
		updates: make(chan Frame, updatesBuffer),
		done:    make(chan struct{}),
	}

	next := cfg.Notifier
	if next == nil {
		next = frameNotifier{s: s}
	}
	s.notifier = NewGatedNotifier(cfg.Settings, next)
	return s
}

// Run opens a session, hands it to fn and closes it on every exit path.
func Run(ctx context.Context, cfg Config, fn func(ctx context.Context, s *Session) error) error {
	s := NewSession(cfg)
	err := s.Open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(ctx, s)
}

// Open subscribes to message changes, loads the current list and starts the
// event loop. The subscription is taken before the fetch so no insert made
// in between is lost; the echo of an already loaded row is ignored.
// A failed fetch still leaves the session ready with an empty list.
func (s *Session) Open(ctx context.Context) error {
	sub, err := s.cfg.Feed.Subscribe(ctx, repository.MessagesTable)
	if err != nil {
		return apperr.Backend("failed to subscribe to messages", err)
	}
	s.sub = sub

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	messages, err := s.cfg.Messages.FetchMessages(loopCtx)
	if err != nil {
		s.log.Error("failed to load messages", "error", err)
		s.toast(ToastError, "Failed to load messages", 0)
		messages = nil
	}

	s.mu.Lock()
	s.messages = messages
	s.state = StateReady
	s.mu.Unlock()

	s.emit(Frame{Type: FrameSnapshot, Messages: s.Snapshot()})

	s.wg.Add(1)
	go s.listen(loopCtx)

	if s.cfg.Tick > 0 {
		s.wg.Add(1)
		go s.countdown(loopCtx)
	}
	return nil
}

// Close releases the subscription and stops the session goroutines.
// Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.stop()
		if s.sub != nil {
			s.sub.Close()
		}
		s.wg.Wait()
	})
}

// stop closes Done and cancels in-flight work without waiting, so the
// session goroutines may call it on themselves.
func (s *Session) stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// Updates streams frames for the client. The channel is never closed; stop
// reading once Done is closed.
func (s *Session) Updates() <-chan Frame {
	return s.updates
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Snapshot returns a copy of the visible messages, oldest first.
func (s *Session) Snapshot() []*model.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) listen(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.sub.C:
			if !ok {
				// events may have been missed; ending the session makes
				// the client reconnect and load a fresh snapshot
				select {
				case <-s.done:
				default:
					s.log.Warn("message feed closed, ending session")
					s.stop()
				}
				return
			}
			s.apply(ctx, ev)
		}
	}
}

func (s *Session) apply(ctx context.Context, ev realtime.Event) {
	switch ev.Type {
	case realtime.Insert:
		s.applyInsert(ctx, ev.ID)
	case realtime.Delete:
		for _, id := range ev.RowIDs() {
			s.applyDelete(id)
		}
	}
}

func (s *Session) applyInsert(ctx context.Context, id string) {
	message, err := s.cfg.Messages.FetchMessageByID(ctx, id)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Warn("failed to load inserted message", "error", err, "message_id", id)
		}
		return
	}

	s.mu.Lock()
	if s.indexLocked(id) >= 0 {
		s.mu.Unlock()
		return
	}
	s.messages = append(s.messages, message)
	s.mu.Unlock()

	foreign := message.UserID != s.cfg.UserID
	if foreign {
		s.refreshSettings(ctx)
	}

	s.emit(Frame{Type: FrameAppend, Message: message})

	if foreign {
		s.notifier.Notify(newMessageNotification(message))
		s.notifier.PlaySound()
	}
}

func (s *Session) applyDelete(id string) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.messages = append(s.messages[:i:i], s.messages[i+1:]...)
	s.mu.Unlock()

	s.emit(Frame{Type: FrameRemove, ID: id})
}

func (s *Session) refreshSettings(ctx context.Context) {
	if s.cfg.SettingsSource == nil || s.cfg.UserID == "" {
		return
	}
	settings, err := s.cfg.SettingsSource.NotificationSettings(ctx, s.cfg.UserID)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Warn("failed to reload notification settings", "error", err)
		}
		return
	}
	s.notifier.SetSettings(settings)
}

func (s *Session) indexLocked(id string) int {
	return indexOf(s.messages, id)
}

func indexOf(messages []*model.ChatMessage, id string) int {
	for i, m := range messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func newMessageNotification(m *model.ChatMessage) Notification {
	username := "Someone"
	icon := ""
	if m.Profile != nil {
		username = m.Profile.Username
		if m.Profile.AvatarURL != nil {
			icon = *m.Profile.AvatarURL
		}
	}
	return Notification{
		Title: "New message",
		Body:  username + ": " + m.Content,
		Icon:  icon,
		Tag:   "chat-message",
	}
}

// SendMessage posts content as the session user. The visible list only
// changes when the insert comes back through the feed.
func (s *Session) SendMessage(ctx context.Context, content string) {
	if s.cfg.UserID == "" || strings.TrimSpace(content) == "" {
		return
	}

	err := s.cfg.Messages.CreateMessage(ctx, content, s.cfg.UserID)
	if err != nil {
		s.log.Error("failed to send message", "error", err)
		s.toast(ToastError, failureText(err, "Failed to send message"), 0)
		return
	}

	s.claim(ctx, model.ActivityFirstMessage)
}

// GiveHeart sends a heart from the session user to receiverID.
func (s *Session) GiveHeart(ctx context.Context, receiverID, messageID string) {
	if s.cfg.UserID == "" || receiverID == s.cfg.UserID {
		return
	}

	in := service.HeartInput{GiverID: s.cfg.UserID, ReceiverID: receiverID}
	if messageID != "" {
		in.MessageID = &messageID
	}

	err := s.cfg.Hearts.GiveHeart(ctx, in)
	switch {
	case err == nil:
		s.toast(ToastSuccess, "Heart sent! ❤️", 0)
	case apperr.IsDuplicate(err):
		s.toast(ToastError, "You already gave this user a heart", 0)
	default:
		s.log.Error("failed to give heart", "error", err, "receiver_id", receiverID)
		s.toast(ToastError, failureText(err, "Failed to send heart"), 0)
	}
}

// DeleteMessage removes one of the session user's own messages. A message
// of another user matches nothing and is only logged.
func (s *Session) DeleteMessage(ctx context.Context, id string) {
	if s.cfg.UserID == "" {
		return
	}

	deleted, err := s.cfg.Messages.DeleteMessage(ctx, id, s.cfg.UserID)
	if err != nil {
		s.log.Error("failed to delete message", "error", err, "message_id", id)
		s.toast(ToastError, "Failed to delete message", 0)
		return
	}
	if !deleted {
		s.log.Info("delete matched no message", "message_id", id)
		return
	}

	s.toast(ToastSuccess, "Message deleted", 0)
}

// ClearAllMessages deletes every message in the room and empties the list.
// The list is emptied before the delete runs, so a message whose insert
// arrives while the delete is in flight stays visible.
func (s *Session) ClearAllMessages(ctx context.Context) {
	if s.cfg.UserID == "" {
		return
	}

	s.mu.Lock()
	previous := s.messages
	s.messages = nil
	s.mu.Unlock()

	n, err := s.cfg.Messages.ClearAll(ctx)
	if err != nil {
		s.mu.Lock()
		s.messages = s.restoreLocked(previous)
		s.mu.Unlock()

		s.log.Error("failed to clear messages", "error", err)
		s.toast(ToastError, "Failed to reset the chat", 0)
		return
	}

	s.log.Info("chat cleared", "count", n)
	s.emit(Frame{Type: FrameSnapshot, Messages: s.Snapshot()})
	s.toast(ToastSuccess, "Chat reset: all messages were deleted", 0)
}

// restoreLocked puts previous back in front of anything appended since.
func (s *Session) restoreLocked(previous []*model.ChatMessage) []*model.ChatMessage {
	out := make([]*model.ChatMessage, 0, len(previous)+len(s.messages))
	out = append(out, previous...)
	for _, m := range s.messages {
		if indexOf(previous, m.ID) < 0 {
			out = append(out, m)
		}
	}
	return out
}

func (s *Session) countdown(ctx context.Context) {
	defer s.wg.Done()

	cd := NewCountdown(s.cfg.Expiry)
	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evaluate(ctx, cd)
		}
	}
}

func (s *Session) evaluate(ctx context.Context, cd *Countdown) {
	s.mu.RLock()
	if len(s.messages) == 0 {
		s.mu.RUnlock()
		return
	}
	oldest := s.messages[0].CreatedAt
	s.mu.RUnlock()

	tick := cd.Evaluate(oldest, s.cfg.Now())
	s.emit(Frame{Type: FrameCountdown, Countdown: &tick})

	if tick.Warn {
		s.toast(ToastWarning, "⚠️ The chat resets in 5 minutes", toastWarningDuration)
	}
	if tick.Urgent {
		s.toast(ToastError, "🚨 Chat resetting in 30 seconds...", toastUrgentDuration)
	}
	if tick.Clear {
		s.ClearAllMessages(ctx)
	}
}

func (s *Session) claim(ctx context.Context, activity model.Activity) {
	if s.cfg.Rewards == nil {
		return
	}
	_, err := s.cfg.Rewards.Claim(ctx, s.cfg.UserID, activity)
	if err != nil {
		s.log.Warn("failed to claim activity reward", "error", err, "activity", activity)
	}
}

// Notice pushes a toast to the client.
func (s *Session) Notice(level ToastLevel, message string) {
	s.toast(level, message, 0)
}

func (s *Session) toast(level ToastLevel, message string, d time.Duration) {
	s.emit(Frame{Type: FrameToast, Toast: &Toast{Level: level, Message: message, DurationMs: d.Milliseconds()}})
}

// emit blocks until the client takes the frame or the session closes.
func (s *Session) emit(f Frame) {
	select {
	case s.updates <- f:
	case <-s.done:
	}
}

// failureText prefers the classified message of err over fallback.
func failureText(err error, fallback string) string {
	if apperr.KindOf(err) == apperr.KindBackend {
		return fallback
	}
	if msg := apperr.UserMessage(err); msg != "" {
		return msg
	}
	return fallback
}
