package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/infrastructure/cache"
)

const (
	scanCount   = 100
	deleteBatch = 100
)

// CacheStore は cache.Backend のRedis実装
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore は新しいCacheStoreを作成する
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

func (s *CacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cache.ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

func (s *CacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// ScanKeys は SCAN でプレフィックスに一致するキーを列挙する（KEYS はブロックするため使わない）
func (s *CacheStore) ScanKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("キャッシュキーの走査に失敗: %w", err)
	}
	return keys, nil
}

// Delete はキーをバッチに分けて削除する
func (s *CacheStore) Delete(ctx context.Context, keys ...string) error {
	for i := 0; i < len(keys); i += deleteBatch {
		end := i + deleteBatch
		if end > len(keys) {
			end = len(keys)
		}
		if err := s.client.Del(ctx, keys[i:end]...).Err(); err != nil {
			return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
		}
	}
	return nil
}

// FlushAll は選択中のDBを空にする
func (s *CacheStore) FlushAll(ctx context.Context) error {
	if err := s.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("キャッシュ全削除に失敗: %w", err)
	}
	return nil
}

func (s *CacheStore) Ping(ctx context.Context) error {
	return Ping(ctx, s.client)
}

var _ cache.Backend = (*CacheStore)(nil)
