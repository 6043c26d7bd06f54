package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/templui/heartroom/internal/logger"
	"github.com/templui/heartroom/internal/metrics"
)

const channelPrefix = "realtime:"

func channelName(table string) string {
	return channelPrefix + table
}

// RedisFeed distributes events between instances over Redis Pub/Sub.
// Delivery is at-most-once; a session that misses an event catches up on its next snapshot.
type RedisFeed struct {
	client *redis.Client
	log    *slog.Logger

	mu   sync.Mutex
	subs map[*redis.PubSub]struct{}
}

func NewRedisFeed(client *redis.Client) *RedisFeed {
	return &RedisFeed{
		client: client,
		log:    logger.Component("realtime"),
		subs:   make(map[*redis.PubSub]struct{}),
	}
}

func (f *RedisFeed) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	err = f.client.Publish(ctx, channelName(event.Table), payload).Err()
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	metrics.FeedEvents.WithLabelValues(event.Table, string(event.Type)).Inc()
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context, table string) (*Subscription, error) {
	ps := f.client.Subscribe(ctx, channelName(table))

	// wait for the subscription to be confirmed so no event published after
	// Subscribe returns can be missed
	_, err := ps.Receive(ctx)
	if err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", table, err)
	}

	f.mu.Lock()
	f.subs[ps] = struct{}{}
	f.mu.Unlock()

	out := make(chan Event, subscriberBuffer)
	done := make(chan struct{})

	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var event Event
			err := json.Unmarshal([]byte(msg.Payload), &event)
			if err != nil {
				f.log.Warn("discarding malformed event", "channel", msg.Channel, "error", err)
				continue
			}
			select {
			case out <- event:
			case <-done:
				return
			}
		}
	}()

	return newSubscription(out, func() {
		close(done)
		f.mu.Lock()
		delete(f.subs, ps)
		f.mu.Unlock()
		err := ps.Close()
		if err != nil {
			f.log.Warn("failed to close subscription", "table", table, "error", err)
		}
	}), nil
}

// Close closes open subscriptions. The redis client is owned by the caller.
func (f *RedisFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for ps := range f.subs {
		_ = ps.Close()
		delete(f.subs, ps)
	}
	return nil
}
