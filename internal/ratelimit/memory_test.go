package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"brokerage-backoffice/config"
	"brokerage-backoffice/internal/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, cfg *config.RateLimitConfig) *ratelimit.MemoryLimiter {
	t.Helper()

	limiter, err := ratelimit.NewMemoryLimiter(cfg)
	require.NoError(t, err)
	t.Cleanup(limiter.Close)

	return limiter
}

// 1. Ключ блокируется после максимума неудач
func TestMemoryLimiter_LocksAfterMaxFailures(t *testing.T) {
	limiter := newTestLimiter(t, &config.RateLimitConfig{MaxFailures: 3, Window: "1m", Lockout: "5m"})
	ctx := context.Background()

	assert.True(t, limiter.Allow(ctx, "1.2.3.4|user@example.com"))

	for i := 0; i < 3; i++ {
		limiter.RecordFailure(ctx, "1.2.3.4|user@example.com")
	}

	assert.False(t, limiter.Allow(ctx, "1.2.3.4|user@example.com"))
}

// 2. Успешный логин сбрасывает счётчик
func TestMemoryLimiter_SuccessResetsCounter(t *testing.T) {
	limiter := newTestLimiter(t, &config.RateLimitConfig{MaxFailures: 3, Window: "1m", Lockout: "5m"})
	ctx := context.Background()

	limiter.RecordFailure(ctx, "key")
	limiter.RecordFailure(ctx, "key")
	limiter.RecordSuccess(ctx, "key")
	limiter.RecordFailure(ctx, "key")
	limiter.RecordFailure(ctx, "key")

	// после сброса две неудачи — это не три
	assert.True(t, limiter.Allow(ctx, "key"))
}

// 3. Ключи независимы: блокировка одного не задевает другой
func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	limiter := newTestLimiter(t, &config.RateLimitConfig{MaxFailures: 1, Window: "1m", Lockout: "5m"})
	ctx := context.Background()

	limiter.RecordFailure(ctx, "1.2.3.4|first@example.com")

	assert.False(t, limiter.Allow(ctx, "1.2.3.4|first@example.com"))
	assert.True(t, limiter.Allow(ctx, "1.2.3.4|second@example.com"))
	assert.True(t, limiter.Allow(ctx, "5.6.7.8|first@example.com"))
}

// 4. После истечения блокировки и окна ключ снова разрешён
func TestMemoryLimiter_LockExpires(t *testing.T) {
	limiter := newTestLimiter(t, &config.RateLimitConfig{MaxFailures: 1, Window: "10ms", Lockout: "20ms"})
	ctx := context.Background()

	limiter.RecordFailure(ctx, "key")
	assert.False(t, limiter.Allow(ctx, "key"))

	time.Sleep(40 * time.Millisecond)

	assert.True(t, limiter.Allow(ctx, "key"))
}

// 5. Пустой конфиг даёт рабочий лимитер с дефолтной политикой
func TestMemoryLimiter_Defaults(t *testing.T) {
	limiter := newTestLimiter(t, &config.RateLimitConfig{})
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		limiter.RecordFailure(ctx, "key")
	}
	assert.True(t, limiter.Allow(ctx, "key"))

	limiter.RecordFailure(ctx, "key")
	assert.False(t, limiter.Allow(ctx, "key"))
}

// 6. Кривой duration в конфиге — ошибка конструктора
func TestMemoryLimiter_BadConfig(t *testing.T) {
	_, err := ratelimit.NewMemoryLimiter(&config.RateLimitConfig{Window: "sixty seconds"})
	assert.Error(t, err)
}
