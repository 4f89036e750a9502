package redis

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tokengate/tokengate/internal/domain/repository"
)

// scanBatchSize bounds how many keys each SCAN iteration asks for.
const scanBatchSize = 200

var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore implements the keyed session storage on a Redis client.
// Prefix operations use SCAN, never KEYS, so they stay safe on busy
// instances.
type SessionStore struct {
	client redis.UniversalClient
}

// NewSessionStore wraps an established Redis client.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", repository.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, nil
}

func (s *SessionStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

func (s *SessionStore) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	var deleted int64
	err := s.scanPrefix(ctx, prefix, func(keys []string) error {
		n, err := s.client.Del(ctx, keys...).Result()
		deleted += n
		return err
	})
	if err != nil {
		return deleted, fmt.Errorf("redis delete by prefix %q: %w", prefix, err)
	}
	return deleted, nil
}

func (s *SessionStore) ListByPrefix(ctx context.Context, prefix string) (map[string]string, error) {
	out := make(map[string]string)
	err := s.scanPrefix(ctx, prefix, func(keys []string) error {
		values, err := s.client.MGet(ctx, keys...).Result()
		if err != nil {
			return err
		}
		for i, v := range values {
			// Keys expiring between SCAN and MGET come back nil.
			if str, ok := v.(string); ok {
				out[keys[i]] = str
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis list by prefix %q: %w", prefix, err)
	}
	return out, nil
}

func (s *SessionStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis ttl %q: %w", key, err)
	}
	// go-redis passes the Redis sentinels through unscaled: a raw -2 means
	// the key is missing, a raw -1 means it exists without an expiry.
	if ttl < 0 {
		if ttl == time.Duration(-2) {
			return 0, repository.ErrKeyNotFound
		}
		return 0, nil
	}
	return ttl, nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// scanPrefix walks all keys starting with prefix in batches and hands each
// batch to fn. The MATCH pattern escapes glob metacharacters so a prefix
// containing "*", "?" or "[" stays a literal prefix, and returned keys are
// filtered again because MATCH semantics vary across server versions.
func (s *SessionStore) scanPrefix(ctx context.Context, prefix string, fn func(keys []string) error) error {
	iter := s.client.Scan(ctx, 0, escapeGlob(prefix)+"*", scanBatchSize).Iterator()
	batch := make([]string, 0, scanBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := fn(batch)
		batch = batch[:0]
		return err
	}
	for iter.Next(ctx) {
		if !strings.HasPrefix(iter.Val(), prefix) {
			continue
		}
		batch = append(batch, iter.Val())
		if len(batch) >= scanBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return flush()
}

// escapeGlob backslash-escapes the Redis MATCH metacharacters so s matches
// only itself.
func escapeGlob(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '^', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
