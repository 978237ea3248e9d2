package ports

import "context"

// LoginRateLimiterInterface : скользящее окно неудачных логинов с блокировкой.
// Ключ — строка "ip|email". Параметры окна задаются конфигурацией, не вызовом.
type LoginRateLimiterInterface interface {
	// Allow обязан вызываться до проверки пароля; false — ключ заблокирован.
	Allow(ctx context.Context, key string) bool
	RecordFailure(ctx context.Context, key string)
	RecordSuccess(ctx context.Context, key string)
}
