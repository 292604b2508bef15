package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter throttles repeated failed logins per email.
type LoginLimiter interface {
	TooManyFailures(ctx context.Context, email string) bool
	RecordFailure(ctx context.Context, email string)
	Reset(ctx context.Context, email string)
}

// RedisLoginLimiter counts failures in Redis with a rolling TTL window.
// Redis being unreachable never blocks a login; the limiter fails open.
type RedisLoginLimiter struct {
	client      *redis.Client
	maxFailures int
	window      time.Duration
}

// NewRedisLoginLimiter builds a limiter.
func NewRedisLoginLimiter(client *redis.Client, maxFailures int, window time.Duration) *RedisLoginLimiter {
	if maxFailures <= 0 {
		maxFailures = 10
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &RedisLoginLimiter{client: client, maxFailures: maxFailures, window: window}
}

func (l *RedisLoginLimiter) key(email string) string {
	return fmt.Sprintf("login_failures:%s", email)
}

// TooManyFailures reports whether the email is over the failure budget.
func (l *RedisLoginLimiter) TooManyFailures(ctx context.Context, email string) bool {
	if l == nil || l.client == nil {
		return false
	}
	count, err := l.client.Get(ctx, l.key(email)).Int()
	if err != nil {
		return false
	}
	return count >= l.maxFailures
}

// RecordFailure increments the failure counter and refreshes the window.
func (l *RedisLoginLimiter) RecordFailure(ctx context.Context, email string) {
	if l == nil || l.client == nil {
		return
	}
	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, l.key(email))
	pipe.Expire(ctx, l.key(email), l.window)
	_, _ = pipe.Exec(ctx)
}

// Reset clears the counter after a successful login.
func (l *RedisLoginLimiter) Reset(ctx context.Context, email string) {
	if l == nil || l.client == nil {
		return
	}
	_ = l.client.Del(ctx, l.key(email)).Err()
}
