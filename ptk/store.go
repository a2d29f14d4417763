package ptk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrTokenNotFound is an exported constant or variable used by the portal engine.
	ErrTokenNotFound = errors.New("portal token not found")
	// ErrTokenExists is an exported constant or variable used by the portal engine.
	ErrTokenExists = errors.New("portal token collision")
	// ErrRedisUnavailable is an exported constant or variable used by the portal engine.
	ErrRedisUnavailable = errors.New("portal token redis unavailable")
)

// Store persists portal token records. The Redis TTL is the authoritative
// expiry; the ExpiresAt field inside the record exists for reporting and is
// rewritten on every slide.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "portal:ptk:"
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *Store) key(token string) string {
	return s.prefix + token
}

// Save stores a freshly minted token record. Conditional on key absence so a
// colliding opaque value can never adopt another user's session.
func (s *Store) Save(ctx context.Context, t *Token, ttl time.Duration) error {
	encoded, err := Encode(t)
	if err != nil {
		return err
	}

	ok, err := s.redis.SetNX(ctx, s.key(t.Token), encoded, ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if !ok {
		return ErrTokenExists
	}

	return nil
}

// Get loads the record for an opaque token value. An absent key reports
// [ErrTokenNotFound]; TTL expiry is indistinguishable from never-issued at
// this layer.
func (s *Store) Get(ctx context.Context, token string) (*Token, error) {
	data, err := s.redis.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return Decode(data)
}

// Slide pushes the expiry forward by ttl, rewriting the record's reported
// ExpiresAt under WATCH so a concurrent slide cannot resurrect a deleted
// token.
func (s *Store) Slide(ctx context.Context, token string, ttl time.Duration) (*Token, error) {
	const maxRetries = 4
	key := s.key(token)

	for i := 0; i < maxRetries; i++ {
		var updated *Token

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			t, err := Decode(data)
			if err != nil {
				return err
			}

			slid := *t
			slid.ExpiresAt = time.Now().Add(ttl).Unix()
			encoded, err := Encode(&slid)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, encoded, ttl)
				return nil
			})
			if err != nil {
				return err
			}

			updated = &slid
			return nil
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil, ErrTokenNotFound
			}
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}

		return updated, nil
	}

	return nil, ErrTokenNotFound
}

// Delete removes the token record. Deleting an absent token is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	if err := s.redis.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
