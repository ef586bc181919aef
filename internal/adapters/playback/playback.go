// Package playback stores the per-event highlight pointer: the category
// currently being presented. Every backend is last-write-wins.
package playback

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Highlighter reads and writes the highlight pointer of an event.
type Highlighter interface {
	SetHighlight(ctx context.Context, eventID int64, key string) error
	GetHighlight(ctx context.Context, eventID int64) (string, error)
}

// DefaultPrefix namespaces highlight keys in Redis.
const DefaultPrefix = "pirouette:highlight"

// RedisStore keeps highlight pointers in Redis, one string key per event.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

var _ Highlighter = (*RedisStore)(nil)

// Option configures a RedisStore.
type Option func(*RedisStore)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore wraps client.
func NewRedisStore(client redis.UniversalClient, opts ...Option) *RedisStore {
	s := &RedisStore{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial connects to addr and verifies the server answers.
func Dial(ctx context.Context, addr, password string, db int, opts ...Option) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisStore(client, opts...), nil
}

func (s *RedisStore) key(eventID int64) string {
	return s.prefix + ":" + strconv.FormatInt(eventID, 10)
}

// SetHighlight stores key for the event. An empty key clears it.
func (s *RedisStore) SetHighlight(ctx context.Context, eventID int64, key string) error {
	if key == "" {
		if err := s.client.Del(ctx, s.key(eventID)).Err(); err != nil {
			return fmt.Errorf("clear highlight: %w", err)
		}
		return nil
	}
	if err := s.client.Set(ctx, s.key(eventID), key, 0).Err(); err != nil {
		return fmt.Errorf("set highlight: %w", err)
	}
	return nil
}

// GetHighlight returns the event's pointer, empty when unset.
func (s *RedisStore) GetHighlight(ctx context.Context, eventID int64) (string, error) {
	v, err := s.client.Get(ctx, s.key(eventID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get highlight: %w", err)
	}
	return v, nil
}

// Close releases the client.
func (s *RedisStore) Close() error { return s.client.Close() }
