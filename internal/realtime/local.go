package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/templui/heartroom/internal/logger"
	"github.com/templui/heartroom/internal/metrics"
)

const (
	subscriberBuffer = 64
	// slowSubscriberWait bounds how long a publisher waits on a full buffer.
	slowSubscriberWait = 2 * time.Second
)

var ErrFeedClosed = errors.New("feed closed")

type localSubscriber struct {
	table string
	ch    chan Event
}

// LocalFeed fans events out to subscribers of the same process.
// A subscriber whose buffer stays full for longer than wait, or until the
// publish context ends, is dropped and its channel closed.
type LocalFeed struct {
	mu     sync.Mutex
	subs   map[*localSubscriber]struct{}
	closed bool
	wait   time.Duration
}

func NewLocalFeed() *LocalFeed {
	return &LocalFeed{
		subs: make(map[*localSubscriber]struct{}),
		wait: slowSubscriberWait,
	}
}

func (f *LocalFeed) Publish(ctx context.Context, event Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrFeedClosed
	}

	metrics.FeedEvents.WithLabelValues(event.Table, string(event.Type)).Inc()

	for sub := range f.subs {
		if sub.table != event.Table {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			if !f.sendSlow(ctx, sub, event) {
				logger.Component("realtime").Warn("dropping slow subscriber", "table", sub.table)
				f.removeLocked(sub)
			}
		}
	}
	return nil
}

func (f *LocalFeed) sendSlow(ctx context.Context, sub *localSubscriber, event Event) bool {
	timer := time.NewTimer(f.wait)
	defer timer.Stop()

	select {
	case sub.ch <- event:
		return true
	case <-ctx.Done():
		return false
	case <-timer.C:
		return false
	}
}

func (f *LocalFeed) Subscribe(ctx context.Context, table string) (*Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrFeedClosed
	}

	sub := &localSubscriber{table: table, ch: make(chan Event, subscriberBuffer)}
	f.subs[sub] = struct{}{}

	return newSubscription(sub.ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.removeLocked(sub)
	}), nil
}

func (f *LocalFeed) removeLocked(sub *localSubscriber) {
	if _, ok := f.subs[sub]; !ok {
		return
	}
	delete(f.subs, sub)
	close(sub.ch)
}

// Close closes every open subscription.
func (f *LocalFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	for sub := range f.subs {
		f.removeLocked(sub)
	}
	return nil
}
