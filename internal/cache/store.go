// Package cache provides the narrow key-value store the saga uses for
// its two non-authoritative markers: the fast-path "booking confirmed"
// flag and the manual-review note left behind by a failed seat
// confirmation.  The relational records remain the source of truth;
// losing this cache never corrupts correctness.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLs for the two marker kinds.  Both are generous: the confirmed
// marker only saves a database read, and the review note must outlive
// a weekend of unattended operations.
const (
	ConfirmedTTL = 72 * time.Hour
	ReviewTTL    = 7 * 24 * time.Hour
)

// ConfirmedKey is the cache key of the confirmed-booking marker.
func ConfirmedKey(bookingCode string) string { return "booking:confirmed:" + bookingCode }

// ReviewKey is the cache key of the manual-review note.
func ReviewKey(bookingCode string) string { return "booking:review:" + bookingCode }

// ReviewNote is the durable side-channel record flagging a booking for
// operator review after a failed seat confirmation.
type ReviewNote struct {
	BookingCode string    `json:"booking_code"`
	Reason      string    `json:"reason"`
	FlaggedAt   time.Time `json:"flagged_at"`
}

// Encode marshals the note for storage.
func (n ReviewNote) Encode() string {
	b, _ := json.Marshal(n)
	return string(b)
}

// Store is the key-value surface injected into the saga.  Get returns
// ("", nil) when the key does not exist.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// RedisStore implements Store on a Redis client.  A nil client turns
// every operation into a no-op so the service degrades gracefully when
// Redis is unreachable at startup.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps a Redis client, which may be nil.
func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

// Set stores a value with a TTL.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

// Get fetches a value; a missing key is not an error.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	if s.rdb == nil {
		return "", nil
	}
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

// Delete removes a key; deleting a missing key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, key).Err()
}
