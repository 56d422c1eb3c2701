package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "gac"

// RedisStore is a TokenStore backed by Redis. Each profile owns two keys:
//
//	<prefix>:<profile>:refresh
//	<prefix>:<profile>:user
type RedisStore struct {
	redis   redis.UniversalClient
	prefix  string
	profile string
	ttl     time.Duration
}

// NewRedisStore returns a store for profile under prefix. A zero ttl keeps keys
// until Clear; otherwise every save resets the expiry of the written key.
func NewRedisStore(client redis.UniversalClient, prefix, profile string, ttl time.Duration) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	profile = strings.TrimSpace(profile)
	if profile == "" {
		profile = "default"
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{
		redis:   client,
		prefix:  prefix,
		profile: profile,
		ttl:     ttl,
	}
}

func (s *RedisStore) refreshKey() string {
	return s.prefix + ":" + s.profile + ":refresh"
}

func (s *RedisStore) userKey() string {
	return s.prefix + ":" + s.profile + ":user"
}

// LoadRefreshToken returns the stored refresh token or "" when none is stored.
func (s *RedisStore) LoadRefreshToken(ctx context.Context) (string, error) {
	token, err := s.redis.Get(ctx, s.refreshKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return token, nil
}

// SaveRefreshToken overwrites the refresh token. An empty token deletes the key.
func (s *RedisStore) SaveRefreshToken(ctx context.Context, token string) error {
	return s.put(ctx, s.refreshKey(), []byte(token))
}

// LoadUser returns the stored user blob or nil.
func (s *RedisStore) LoadUser(ctx context.Context) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.userKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return data, nil
}

// SaveUser overwrites the user blob. An empty blob deletes the key.
func (s *RedisStore) SaveUser(ctx context.Context, user []byte) error {
	return s.put(ctx, s.userKey(), user)
}

// Clear deletes both keys in one round trip.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.refreshKey(), s.userKey()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) put(ctx context.Context, key string, value []byte) error {
	var err error
	if len(value) == 0 {
		err = s.redis.Del(ctx, key).Err()
	} else {
		err = s.redis.Set(ctx, key, value, s.ttl).Err()
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
