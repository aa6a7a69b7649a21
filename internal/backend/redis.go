package backend

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	recordKeyPrefix = "bb:record:"
	blobKeyPrefix   = "bb:blob:"
)

// RedisStore keeps each record as a JSON string under its path key and
// lists collections by scanning the key space.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context, path string) (string, error) {
	value, err := r.client.Get(ctx, recordKeyPrefix+path).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("redis get %s: %w", path, err)
	}
	return value, nil
}

func (r *RedisStore) Set(ctx context.Context, path string, value string) error {
	if err := r.client.Set(ctx, recordKeyPrefix+path, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", path, err)
	}
	return nil
}

func (r *RedisStore) List(ctx context.Context, prefix string) (map[string]string, error) {
	pattern := recordKeyPrefix + prefix + "/*"

	var keys []string
	var cursor uint64
	for {
		batch, next, err := r.client.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan %s: %w", prefix, err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	out := make(map[string]string, len(keys))
	for _, key := range keys {
		value, err := r.client.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, fmt.Errorf("redis get %s: %w", key, err)
		}
		path := key[len(recordKeyPrefix):]
		out[childKey(prefix, path)] = value
	}
	return out, nil
}

func (r *RedisStore) Put(ctx context.Context, path string, data []byte) error {
	if err := r.client.Set(ctx, blobKeyPrefix+path, data, 0).Err(); err != nil {
		return fmt.Errorf("redis blob put %s: %w", path, err)
	}
	return nil
}

func (r *RedisStore) Fetch(ctx context.Context, path string) ([]byte, error) {
	data, err := r.client.Get(ctx, blobKeyPrefix+path).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis blob fetch %s: %w", path, err)
	}
	return data, nil
}
