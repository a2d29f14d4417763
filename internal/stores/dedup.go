package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrDedupRedisUnavailable = errors.New("event dedup redis unavailable")

// DedupStore guards event consumers against double-processing. A marker keyed
// by (system, event id) is created atomically on first sight; later deliveries
// of the same event to the same system find it and are skipped. Markers carry
// a TTL that must outlive the stream retention window.
type DedupStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewDedupStore(redisClient redis.UniversalClient, prefix string) *DedupStore {
	if prefix == "" {
		prefix = "event:dedup:"
	}
	return &DedupStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *DedupStore) key(systemCode, eventID string) string {
	return s.prefix + systemCode + ":" + eventID
}

// ShouldProcess returns true exactly once per (system, event) pair. Dedup is
// per consumer system: the same event id under a different system code is a
// fresh marker.
func (s *DedupStore) ShouldProcess(ctx context.Context, systemCode, eventID string, ttl time.Duration) (bool, error) {
	created, err := s.redis.SetNX(ctx, s.key(systemCode, eventID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDedupRedisUnavailable, err)
	}
	return created, nil
}
