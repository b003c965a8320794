package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/talentvine/talentvine-backend/internal/platform/envutil"
	"github.com/talentvine/talentvine-backend/internal/platform/logger"
	"github.com/talentvine/talentvine-backend/internal/realtime"
)

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewRedisBus(log *logger.Logger) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := envutil.String("REDIS_ADDR", "")
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: envutil.String("REDIS_PASSWORD", ""),
		DB:       envutil.Int("REDIS_DB", 0),
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &redisBus{
		log:     log.With("bus", "RedisBus"),
		rdb:     rdb,
		channel: envutil.String("REDIS_CHANNEL", "assignment-events"),
	}, nil
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal realtime message: %w", err)
	}
	return b.rdb.Publish(ctx, b.channel, payload).Err()
}

// StartForwarder subscribes to the shared channel and invokes onMsg for
// every message until ctx is cancelled. Malformed payloads are dropped.
func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg required")
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe failed: %w", err)
	}

	go func() {
		defer func() { _ = sub.Close() }()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-ch:
				if !ok {
					return
				}
				var msg realtime.Message
				if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
					b.log.Warn("dropping malformed realtime message", "error", err)
					continue
				}
				if strings.TrimSpace(msg.Channel) == "" {
					continue
				}
				onMsg(msg)
			}
		}
	}()
	return nil
}

func (b *redisBus) Close() error {
	return b.rdb.Close()
}
