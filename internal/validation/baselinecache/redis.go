package baselinecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// RedisStore persists cache entries in Redis so concurrent validation
// workers share baseline computations across processes.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore wraps a Redis client. A zero ttl means entries never
// expire (keys are content hashes, so expiry is a space concern only).
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("redis entry %s corrupt: %w", key, err)
	}
	return entry, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// GuardedStore fronts a primary store with a circuit breaker and falls
// back to a secondary store when the primary is unavailable. Used to keep
// validation running on the in-memory cache when Redis is down.
type GuardedStore struct {
	primary  Store
	fallback Store
	breaker  *gobreaker.CircuitBreaker
}

// NewGuardedStore builds the breaker-fronted store pair.
func NewGuardedStore(primary, fallback Store) *GuardedStore {
	settings := gobreaker.Settings{
		Name:    "baseline-cache",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("baseline cache breaker state change")
		},
	}
	return &GuardedStore{
		primary:  primary,
		fallback: fallback,
		breaker:  gobreaker.NewCircuitBreaker(settings),
	}
}

func (s *GuardedStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	type result struct {
		entry Entry
		found bool
	}
	res, err := s.breaker.Execute(func() (interface{}, error) {
		entry, found, err := s.primary.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		return result{entry: entry, found: found}, nil
	})
	if err != nil {
		return s.fallback.Get(ctx, key)
	}
	r := res.(result)
	return r.entry, r.found, nil
}

func (s *GuardedStore) Set(ctx context.Context, key string, entry Entry) error {
	// Fallback always receives the entry so reads survive a primary outage
	if err := s.fallback.Set(ctx, key, entry); err != nil {
		return err
	}
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.primary.Set(ctx, key, entry)
	})
	if err != nil {
		log.Debug().Err(err).Str("key", key).Msg("baseline cache primary set failed; entry kept in fallback")
	}
	return nil
}
