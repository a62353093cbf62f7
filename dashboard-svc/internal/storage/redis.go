package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisTokenStore keeps the token under one key without expiry; a stale
// token is only noticed when the API rejects it.
type RedisTokenStore struct {
	Client *redis.Client
	Key    string
}

func NewRedisTokenStore(client *redis.Client, key string) *RedisTokenStore {
	return &RedisTokenStore{Client: client, Key: key}
}

func (s *RedisTokenStore) Set(ctx context.Context, token string) error {
	return s.Client.Set(ctx, s.Key, token, 0).Err()
}

func (s *RedisTokenStore) Get(ctx context.Context) (string, bool, error) {
	token, err := s.Client.Get(ctx, s.Key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if token == "" {
		return "", false, nil
	}
	return token, true, nil
}

func (s *RedisTokenStore) Clear(ctx context.Context) error {
	return s.Client.Del(ctx, s.Key).Err()
}
