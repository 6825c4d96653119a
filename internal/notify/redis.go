// Package notify publishes committed schedule changes to Redis pub/sub.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/class-scheduler/internal/config"
	"github.com/Leganyst/class-scheduler/internal/scheduling"
)

type publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisNotifier sends every change as one JSON message on a channel.
type RedisNotifier struct {
	client  publisher
	channel string
}

func NewRedisNotifier(client publisher, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Notify(ctx context.Context, change scheduling.Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", n.channel, err)
	}
	return nil
}

// Connect returns a client for cfg, or nil when Redis is not configured.
// An unreachable server is an error: notifications were asked for.
func Connect(ctx context.Context, cfg config.RedisConfig, log *logrus.Logger) (*redis.Client, error) {
	if cfg.Addr == "" {
		log.Info("REDIS_ADDR не задан, уведомления отключены")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	// проверяем соединение
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	log.WithField("addr", cfg.Addr).Info("подключение к Redis установлено")
	return rdb, nil
}
