// Package realtime carries row change notifications from writers to
// chat sessions, in-process or across instances through Redis.
package realtime

import (
	"context"
	"sync"
	"time"
)

type EventType string

const (
	Insert EventType = "insert"
	Delete EventType = "delete"
)

// Event announces that a row of Table was inserted or deleted. A bulk
// delete carries every removed row in IDs and leaves ID empty.
type Event struct {
	Table  string    `json:"table"`
	Type   EventType `json:"type"`
	ID     string    `json:"id,omitempty"`
	IDs    []string  `json:"ids,omitempty"`
	UserID string    `json:"user_id,omitempty"`
	At     time.Time `json:"at"`
}

// RowIDs lists the rows the event refers to.
func (e Event) RowIDs() []string {
	if len(e.IDs) > 0 {
		return e.IDs
	}
	if e.ID == "" {
		return nil
	}
	return []string{e.ID}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, table string) (*Subscription, error)
}

type Feed interface {
	Publisher
	Subscriber
	Close() error
}

// Subscription delivers events for one table until Close is called.
// C is closed once the subscription is released.
type Subscription struct {
	C <-chan Event

	once    sync.Once
	release func()
}

func newSubscription(c <-chan Event, release func()) *Subscription {
	return &Subscription{C: c, release: release}
}

// Close releases the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(s.release)
}
