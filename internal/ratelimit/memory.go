package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"brokerage-backoffice/config"
)

const (
	defaultMaxFailures = 5
	defaultWindow      = 60 * time.Second
	defaultLockout     = 300 * time.Second
)

type entry struct {
	failures    int
	windowStart time.Time
	locked      bool
	lockUntil   time.Time
}

// MemoryLimiter : счётчики неудачных логинов в памяти процесса.
// Подходит для одного инстанса; для нескольких — RedisLimiter.
// Записи, чьё окно и блокировка давно истекли, убирает фоновая чистка,
// иначе map рос бы неограниченно на потоке разных ключей.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry

	maxFailures int
	window      time.Duration
	lockout     time.Duration

	stopJanitor chan struct{}
}

func NewMemoryLimiter(cfg *config.RateLimitConfig) (*MemoryLimiter, error) {
	maxFailures, window, lockout, err := parsePolicy(cfg)
	if err != nil {
		return nil, err
	}

	limiter := &MemoryLimiter{
		entries:     make(map[string]*entry),
		maxFailures: maxFailures,
		window:      window,
		lockout:     lockout,
		stopJanitor: make(chan struct{}),
	}

	go limiter.runJanitor()

	return limiter, nil
}

func parsePolicy(cfg *config.RateLimitConfig) (int, time.Duration, time.Duration, error) {
	maxFailures := defaultMaxFailures
	window := defaultWindow
	lockout := defaultLockout

	if cfg.MaxFailures > 0 {
		maxFailures = cfg.MaxFailures
	}
	if cfg.Window != "" {
		parsed, err := time.ParseDuration(cfg.Window)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("ошибка парсинга rateLimit.window: %w", err)
		}
		window = parsed
	}
	if cfg.Lockout != "" {
		parsed, err := time.ParseDuration(cfg.Lockout)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("ошибка парсинга rateLimit.lockout: %w", err)
		}
		lockout = parsed
	}

	return maxFailures, window, lockout, nil
}

// Allow сообщает, можно ли пробовать логин по этому ключу.
// Попутно сдвигает окно: если с windowStart прошло больше window,
// счётчик и блокировка сбрасываются.
func (l *MemoryLimiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	e := l.entry(key, now)

	if e.locked && now.Before(e.lockUntil) {
		return false
	}

	if now.After(e.windowStart.Add(l.window)) {
		e.windowStart = now
		e.failures = 0
		e.locked = false
		e.lockUntil = time.Time{}
	}

	return true
}

// RecordFailure увеличивает счётчик; на maxFailures ключ блокируется на lockout
func (l *MemoryLimiter) RecordFailure(_ context.Context, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	e := l.entry(key, now)

	e.failures++
	if e.failures >= l.maxFailures {
		e.locked = true
		e.lockUntil = now.Add(l.lockout)
	}
}

// RecordSuccess безусловно сбрасывает счётчик и блокировку
func (l *MemoryLimiter) RecordSuccess(_ context.Context, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.entry(key, time.Now())
	e.failures = 0
	e.locked = false
	e.lockUntil = time.Time{}
}

func (l *MemoryLimiter) Close() {
	close(l.stopJanitor)
}

// entry возвращает запись ключа, создавая её лениво. Вызывается под l.mu.
func (l *MemoryLimiter) entry(key string, now time.Time) *entry {
	e, ok := l.entries[key]
	if !ok {
		e = &entry{windowStart: now}
		l.entries[key] = e
	}
	return e
}

func (l *MemoryLimiter) runJanitor() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep(time.Now())
		case <-l.stopJanitor:
			return
		}
	}
}

// sweep удаляет записи, у которых истекли и окно, и блокировка
func (l *MemoryLimiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, e := range l.entries {
		windowExpired := now.After(e.windowStart.Add(l.window))
		lockExpired := !e.locked || now.After(e.lockUntil)
		if windowExpired && lockExpired {
			delete(l.entries, key)
		}
	}
}
