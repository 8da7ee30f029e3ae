package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/urbanatlas/urban-backend/internal/logger"
)

// ChangeEvent announces a committed mutation of the city model so
// downstream consumers can invalidate caches or recompute metrics.
// Events are published after commit only; a publish failure never rolls
// a transaction back.
type ChangeEvent struct {
	Kind       string `json:"kind"`
	Entity     string `json:"entity"`
	EntityID   int64  `json:"entity_id"`
	ProjectID  int64  `json:"project_id,omitempty"`
	ScenarioID int64  `json:"scenario_id,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	At         int64  `json:"at"`
}

const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

type EventBus interface {
	Publish(ctx context.Context, event ChangeEvent) error
	StartForwarder(ctx context.Context, onEvent func(e ChangeEvent)) error
	Close() error
}

type eventBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewEventBus(log *logger.Logger) (EventBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_CHANNEL"))
	if ch == "" {
		ch = "urban-events"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &eventBus{
		log:     log.With("service", "RedisEventBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *eventBus) Publish(ctx context.Context, event ChangeEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis event bus not initialized")
	}
	if event.At == 0 {
		event.At = time.Now().Unix()
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *eventBus) StartForwarder(ctx context.Context, onEvent func(e ChangeEvent)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis event bus not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var event ChangeEvent
				if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
					b.log.Warn("bad redis event payload", "error", err)
					continue
				}
				onEvent(event)
			}
		}
	}()

	return nil
}

func (b *eventBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
