package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"brokerage-backoffice/config"
)

// RedisLimiter : те же счётчики, но в Redis — общие для всех инстансов.
// Окно моделируется TTL ключа счётчика, блокировка — отдельным ключом с TTL.
type RedisLimiter struct {
	client *config.RedisClient

	maxFailures int
	window      time.Duration
	lockout     time.Duration
}

func NewRedisLimiter(client *config.RedisClient, cfg *config.RateLimitConfig) (*RedisLimiter, error) {
	maxFailures, window, lockout, err := parsePolicy(cfg)
	if err != nil {
		return nil, err
	}

	return &RedisLimiter{
		client:      client,
		maxFailures: maxFailures,
		window:      window,
		lockout:     lockout,
	}, nil
}

// Allow проверяет ключ блокировки.
// При недоступности Redis логин пропускается: недоступный Redis не должен
// запирать всех пользователей разом.
func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	exists, err := l.client.Client.Exists(ctx, l.lockKey(key)).Result()
	if err != nil {
		log.Printf("rate limiter: ошибка запроса к Redis: %v", err)
		return true
	}
	return exists == 0
}

func (l *RedisLimiter) RecordFailure(ctx context.Context, key string) {
	failures, err := l.client.Client.Incr(ctx, l.failKey(key)).Result()
	if err != nil {
		log.Printf("rate limiter: ошибка инкремента в Redis: %v", err)
		return
	}

	// первый провал открывает окно
	if failures == 1 {
		if err := l.client.Client.Expire(ctx, l.failKey(key), l.window).Err(); err != nil {
			log.Printf("rate limiter: ошибка установки TTL окна: %v", err)
		}
	}

	if failures >= int64(l.maxFailures) {
		if err := l.client.Client.Set(ctx, l.lockKey(key), "1", l.lockout).Err(); err != nil {
			log.Printf("rate limiter: ошибка установки блокировки: %v", err)
		}
	}
}

func (l *RedisLimiter) RecordSuccess(ctx context.Context, key string) {
	if err := l.client.Client.Del(ctx, l.failKey(key), l.lockKey(key)).Err(); err != nil {
		log.Printf("rate limiter: ошибка сброса счётчиков: %v", err)
	}
}

func (l *RedisLimiter) failKey(key string) string {
	return fmt.Sprintf("login:fail:%s", key)
}

func (l *RedisLimiter) lockKey(key string) string {
	return fmt.Sprintf("login:lock:%s", key)
}
