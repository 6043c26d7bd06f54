package chat

import (
	"sync"

	"github.com/templui/heartroom/internal/model"
)

// Notifier delivers the side effects of a message from another user.
type Notifier interface {
	Notify(n Notification)
	PlaySound()
}

// GatedNotifier drops effects the user switched off.
type GatedNotifier struct {
	mu       sync.RWMutex
	settings model.NotificationSettings
	next     Notifier
}

// NewGatedNotifier wraps next so it only fires what settings allow.
func NewGatedNotifier(settings model.NotificationSettings, next Notifier) *GatedNotifier {
	return &GatedNotifier{settings: settings, next: next}
}

// SetSettings replaces the settings used for later effects.
func (g *GatedNotifier) SetSettings(settings model.NotificationSettings) {
	g.mu.Lock()
	g.settings = settings
	g.mu.Unlock()
}

func (g *GatedNotifier) Settings() model.NotificationSettings {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.settings
}

func (g *GatedNotifier) Notify(n Notification) {
	if g.Settings().EnableNotifications {
		g.next.Notify(n)
	}
}

func (g *GatedNotifier) PlaySound() {
	if g.Settings().EnableMessageSounds {
		g.next.PlaySound()
	}
}

// frameNotifier turns effects into frames on the session's update stream.
type frameNotifier struct {
	s *Session
}

func (f frameNotifier) Notify(n Notification) {
	f.s.emit(Frame{Type: FrameNotify, Notification: &n})
}

func (f frameNotifier) PlaySound() {
	f.s.emit(Frame{Type: FrameSound})
}
