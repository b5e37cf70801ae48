package ratelimit_test

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Apsteward8/market-scanner/internal/ratelimit"
)

func TestRefillLoopStopsOnCancel(t *testing.T) {
	// No Redis needed: the refill loop's writes fail and are ignored; this
	// only checks goroutine lifecycle.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	before := runtime.NumGoroutine()

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 5; i++ {
		ratelimit.NewTokenBucket(ctx, client, 10, 10*time.Millisecond)
	}

	// One refill goroutine per bucket, not per redis key observation.
	time.Sleep(50 * time.Millisecond)
	running := runtime.NumGoroutine()
	if running > before+6 {
		t.Errorf("goroutines = %d, want at most %d (one refill loop per bucket)", running, before+6)
	}

	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before+1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := runtime.NumGoroutine(); n > before+1 {
		t.Errorf("goroutines = %d after cancel, want about %d", n, before)
	}
}
