package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "cache:"

// ErrCacheVersionChanged is returned by SetCacheIfVersion when the guard moved.
var ErrCacheVersionChanged = errors.New("cache version changed")

type RedisDB struct {
	Client *redis.Client
}

func NewRedisDB(redisURL string) (*RedisDB, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Println("[Redis] ✅ Connected to Redis")
	return &RedisDB{Client: client}, nil
}

// NewRedisDBFromClient wraps an existing client, e.g. one pointed at miniredis.
func NewRedisDBFromClient(client *redis.Client) *RedisDB {
	return &RedisDB{Client: client}
}

func (r *RedisDB) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func (r *RedisDB) Close() {
	if r.Client != nil {
		r.Client.Close()
		log.Println("[Redis] Connection closed")
	}
}

// GetCache decodes cache:<key> into dest. A miss returns redis.Nil.
func (r *RedisDB) GetCache(ctx context.Context, key string, dest interface{}) error {
	data, err := r.Client.Get(ctx, cachePrefix+key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (r *RedisDB) DeleteCache(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = cachePrefix + k
	}
	return r.Client.Del(ctx, prefixed...).Err()
}

// CacheVersion returns the counter stored at cache:<key>, zero when unset.
func (r *RedisDB) CacheVersion(ctx context.Context, key string) (int64, error) {
	v, err := r.Client.Get(ctx, cachePrefix+key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// BumpCacheVersion increments every counter in versionKeys and deletes keys atomically.
func (r *RedisDB) BumpCacheVersion(ctx context.Context, versionKeys []string, keys ...string) error {
	_, err := r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range versionKeys {
			pipe.Incr(ctx, cachePrefix+k)
		}
		for _, k := range keys {
			pipe.Del(ctx, cachePrefix+k)
		}
		return nil
	})
	return err
}

// SetCacheIfVersion stores value under cache:<key> only while cache:<versionKey> still
// holds version. The check and the write run in one WATCH/MULTI transaction.
func (r *RedisDB) SetCacheIfVersion(ctx context.Context, versionKey string, version int64, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	guard := cachePrefix + versionKey
	err = r.Client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, guard).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return ErrCacheVersionChanged
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cachePrefix+key, data, expiration)
			return nil
		})
		return err
	}, guard)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrCacheVersionChanged
	}
	return err
}

// InvalidateCache deletes every cache key matching pattern.
func (r *RedisDB) InvalidateCache(ctx context.Context, pattern string) error {
	var keys []string
	iter := r.Client.Scan(ctx, 0, cachePrefix+pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.Client.Del(ctx, keys...).Err()
	}
	return nil
}
