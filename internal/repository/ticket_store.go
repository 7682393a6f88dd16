package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TicketStore keeps the upload-ticket registry in Redis. Tickets expire on
// their own; the pending counter carries the same TTL so abandoned
// reservations free up quota without bookkeeping.
type TicketStore struct {
	client *redis.Client
}

func NewTicketStore(client *redis.Client) *TicketStore {
	return &TicketStore{client: client}
}

func ticketKey(storageKey string) string {
	return "ticket:" + storageKey
}

func pendingKey(groupID string) string {
	return "media:pending:" + groupID
}

// Register records an issued ticket under its storage key.
func (t *TicketStore) Register(ctx context.Context, key, groupID string, ttl time.Duration) error {
	if err := t.client.Set(ctx, ticketKey(key), groupID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to register ticket: %w", err)
	}
	return nil
}

// Consume removes the ticket and reports whether it was present. GETDEL is
// atomic, so two concurrent commits of the same key consume it exactly once.
func (t *TicketStore) Consume(ctx context.Context, key string) (bool, error) {
	err := t.client.GetDel(ctx, ticketKey(key)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ReservePending increments the group's outstanding-ticket counter and
// returns the new total. The caller decides whether the total breaks the
// cap and releases on rejection.
func (t *TicketStore) ReservePending(ctx context.Context, groupID string, ttl time.Duration) (int64, error) {
	key := pendingKey(groupID)
	n, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	// Refresh on every reservation; the counter dies with the newest ticket.
	if err := t.client.Expire(ctx, key, ttl).Err(); err != nil {
		return n, err
	}
	return n, nil
}

// ReleasePending decrements the counter, flooring at zero.
func (t *TicketStore) ReleasePending(ctx context.Context, groupID string) error {
	key := pendingKey(groupID)
	n, err := t.client.Decr(ctx, key).Result()
	if err != nil {
		return err
	}
	if n < 0 {
		return t.client.Set(ctx, key, 0, redis.KeepTTL).Err()
	}
	return nil
}
