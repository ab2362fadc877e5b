// internal/state/redis.go
package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quotation-relay/internal/models"
)

const keyPrefix = "relay:tx:"

// RedisTracker stores states under relay:tx:<id> with a TTL, so several
// relay instances can share one view of the pipeline.
type RedisTracker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTracker(client *redis.Client, ttl time.Duration) *RedisTracker {
	return &RedisTracker{client: client, ttl: ttl}
}

func (r *RedisTracker) Transition(ctx context.Context, txID string, to models.TransactionState) error {
	if txID == "" {
		return nil
	}
	key := keyPrefix + txID

	// Optimistic check-and-set; a concurrent writer makes Watch fail with TxFailedErr.
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		from := models.TransactionState(current)
		if !CanTransition(from, to) {
			return fmt.Errorf("%w: %s -> %s for %s", ErrInvalidTransition, from, to, txID)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, string(to), r.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < 3; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("state transition for %s: too much contention", txID)
}

func (r *RedisTracker) Get(ctx context.Context, txID string) (models.TransactionState, bool, error) {
	val, err := r.client.Get(ctx, keyPrefix+txID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get state %s: %w", txID, err)
	}
	return models.TransactionState(val), true, nil
}
