// Package ratelimit gates live order submissions with a token bucket.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBucket implements a token bucket rate limiter backed by Redis, so the
// cap holds across restarts and replicas.
type TokenBucket struct {
	client       *redis.Client
	key          string
	maxTokens    int
	refillPeriod time.Duration
}

// NewTokenBucket creates a limiter allowing maxTokens placements per period.
// The single refill goroutine runs until ctx is cancelled.
func NewTokenBucket(ctx context.Context, client *redis.Client, maxTokens int, period time.Duration) *TokenBucket {
	tb := &TokenBucket{
		client:       client,
		key:          "follow:ratelimit:tokens",
		maxTokens:    maxTokens,
		refillPeriod: period,
	}
	go tb.refillLoop(ctx)
	return tb
}

// AllowPlacement consumes a token if one is available.
func (tb *TokenBucket) AllowPlacement(ctx context.Context) (bool, error) {
	if err := tb.initialize(ctx); err != nil {
		return false, err
	}

	tokens, err := tb.client.Decr(ctx, tb.key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to decrement tokens: %w", err)
	}

	if tokens < 0 {
		// Restore the token we tried to take.
		tb.client.Incr(ctx, tb.key)
		return false, nil
	}

	return true, nil
}

// initialize sets the bucket to full when the key is missing (first use, or
// after a Redis flush). SetNX keeps two concurrent callers from both seeding.
func (tb *TokenBucket) initialize(ctx context.Context) error {
	if err := tb.client.SetNX(ctx, tb.key, tb.maxTokens, 0).Err(); err != nil {
		return fmt.Errorf("failed to initialize bucket: %w", err)
	}
	return nil
}

// refillLoop restores the bucket to full each period.
func (tb *TokenBucket) refillLoop(ctx context.Context) {
	ticker := time.NewTicker(tb.refillPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = tb.client.Set(ctx, tb.key, tb.maxTokens, 0).Err()
		}
	}
}

// Tokens returns the current token count (for monitoring).
func (tb *TokenBucket) Tokens(ctx context.Context) (int, error) {
	tokens, err := tb.client.Get(ctx, tb.key).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get tokens: %w", err)
	}
	return tokens, nil
}

// Reset refills the bucket immediately (for testing).
func (tb *TokenBucket) Reset(ctx context.Context) error {
	return tb.client.Set(ctx, tb.key, tb.maxTokens, 0).Err()
}
