// Package dedup suppresses repeat alerts for the same opportunity.
//
// The feed delivers at-least-once, so the same large wager can be observed
// more than once; a TTL key in Redis keeps each distinct opportunity to one
// alert per window.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Apsteward8/market-scanner/pkg/models"
)

// Deduplicator tracks recently alerted opportunities in Redis.
type Deduplicator struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDeduplicator creates a deduplicator with the given suppression window.
func NewDeduplicator(client *redis.Client, ttl time.Duration) *Deduplicator {
	return &Deduplicator{
		client: client,
		ttl:    ttl,
	}
}

// ShouldAlert returns true if this opportunity has not been alerted within
// the window, and marks it as alerted.
func (d *Deduplicator) ShouldAlert(ctx context.Context, opp models.Opportunity) (bool, error) {
	key := dedupKey(opp)

	// SET NX is atomic: only the first caller in a window wins the key.
	set, err := d.client.SetNX(ctx, key, "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set dedup key: %w", err)
	}
	return set, nil
}

// Clear removes a dedup entry (for testing).
func (d *Deduplicator) Clear(ctx context.Context, opp models.Opportunity) error {
	return d.client.Del(ctx, dedupKey(opp)).Err()
}

// dedupKey identifies an opportunity by the wager it follows. The same line
// at the same price and stake is the same opportunity however often the feed
// re-delivers it.
func dedupKey(opp models.Opportunity) string {
	return fmt.Sprintf("follow:dedup:%s:%s:%d:%.0f",
		opp.Event.EventID, opp.Event.LineID, opp.Event.Odds, opp.Event.Stake)
}
