package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Checker marks plates as recently seen per user so repeat uploads of the
// same vehicle inside the window do not create duplicate records. Backed by
// SETNX with a TTL; a nil client disables the fast path and the caller
// falls back to a repository recency query.
type Checker struct {
	rdb    *redis.Client
	window time.Duration
}

func NewChecker(rdb *redis.Client, window time.Duration) *Checker {
	return &Checker{rdb: rdb, window: window}
}

func (c *Checker) Enabled() bool {
	return c != nil && c.rdb != nil
}

// MarkSeen reports whether the plate was already recorded for the user
// inside the window, marking it seen as a side effect when it was not.
func (c *Checker) MarkSeen(ctx context.Context, userID uuid.UUID, normalizedPlate string) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}

	key := fmt.Sprintf("camlytics:seen:%s:%s", userID, normalizedPlate)
	created, err := c.rdb.SetNX(ctx, key, 1, c.window).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}

	return !created, nil
}

// Forget drops the seen marker, used when the owning record is deleted.
func (c *Checker) Forget(ctx context.Context, userID uuid.UUID, normalizedPlate string) error {
	if !c.Enabled() {
		return nil
	}
	key := fmt.Sprintf("camlytics:seen:%s:%s", userID, normalizedPlate)
	return c.rdb.Del(ctx, key).Err()
}
