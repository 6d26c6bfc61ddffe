package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// IssueChannel is the Redis pub/sub channel issue changes are announced on.
const IssueChannel = "issues:changes"

// Issue event types.
const (
	EventCreated   = "created"
	EventUpdated   = "updated"
	EventLiked     = "liked"
	EventCommented = "commented"
	EventRetweeted = "retweeted"
	EventDeleted   = "deleted"
)

// IssueEvent announces that an issue document changed.
type IssueEvent struct {
	Type    string `json:"type"`
	IssueID string `json:"issueId"`
}

// Notifier fans issue change events out to live query subscribers.
// Subscribe returns a channel that is closed once ctx is done. Slow
// subscribers miss events rather than block publishers; a missed event is
// harmless because every event triggers a full re-query.
type Notifier interface {
	Publish(ctx context.Context, event IssueEvent) error
	Subscribe(ctx context.Context) (<-chan IssueEvent, error)
}

// LocalNotifier delivers events within one process.
type LocalNotifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan IssueEvent
}

func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{subs: make(map[int]chan IssueEvent)}
}

func (n *LocalNotifier) Publish(_ context.Context, event IssueEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (n *LocalNotifier) Subscribe(ctx context.Context) (<-chan IssueEvent, error) {
	ch := make(chan IssueEvent, 1)
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = ch
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.mu.Lock()
		delete(n.subs, id)
		close(ch)
		n.mu.Unlock()
	}()
	return ch, nil
}

// RedisNotifier delivers events across server instances over Redis pub/sub.
type RedisNotifier struct {
	rdb *redis.Client
}

func NewRedisNotifier(rdb *redis.Client) *RedisNotifier {
	return &RedisNotifier{rdb: rdb}
}

func (n *RedisNotifier) Publish(ctx context.Context, event IssueEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := n.rdb.Publish(ctx, IssueChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish issue event: %w", err)
	}
	return nil
}

func (n *RedisNotifier) Subscribe(ctx context.Context) (<-chan IssueEvent, error) {
	pubsub := n.rdb.Subscribe(ctx, IssueChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", IssueChannel, err)
	}

	out := make(chan IssueEvent, 1)
	go func() {
		defer close(out)
		defer pubsub.Close()
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event IssueEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					slog.Warn("Dropping malformed issue event", "payload", msg.Payload, "error", err)
					continue
				}
				select {
				case out <- event:
				default:
				}
			}
		}
	}()
	return out, nil
}
