package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

const dedupTTL = 24 * time.Hour

// DedupChecker makes registration event delivery at-most-once per customer.
// Key format: dedup:customer_registered:<guid>
type DedupChecker struct {
	client *redis.Client
}

func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// MarkFirst records the event and reports whether it was the first time it
// was seen.
func (d *DedupChecker) MarkFirst(ctx context.Context, event domain.CustomerRegistered) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.key(event), event.OccurredAt.Unix(), dedupTTL).Result()
	if err != nil {
		return false, fmt.Errorf("dedup mark: %w", err)
	}
	return ok, nil
}

func (d *DedupChecker) key(event domain.CustomerRegistered) string {
	return fmt.Sprintf("dedup:customer_registered:%s", event.CustomerGUID)
}
