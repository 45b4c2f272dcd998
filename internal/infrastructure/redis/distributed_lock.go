package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/metrics"
)

var (
	ErrLockNotAcquired = errors.New("ロックを取得できませんでした")
	ErrLockNotOwned    = errors.New("ロックの所有者ではありません")
)

const releaseScript = `
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`

// DistributedLock は Redis を使用した分散ロック
type DistributedLock struct {
	client *redis.Client
	key    string
	value  string
	ttl    time.Duration
}

// LockManager は分散ロックを管理する
type LockManager struct {
	client *redis.Client
}

func NewLockManager(client *redis.Client) *LockManager {
	return &LockManager{client: client}
}

// AcquireLock はロックを取得する
func (m *LockManager) AcquireLock(ctx context.Context, key string, ttl time.Duration) (*DistributedLock, error) {
	lockKey := fmt.Sprintf("lock:%s", key)
	lockValue := uuid.New().String()

	// SetNX を使用してロックを取得（キーが存在しない場合のみ設定）
	ok, err := m.client.SetNX(ctx, lockKey, lockValue, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	if !ok {
		return nil, ErrLockNotAcquired
	}

	return &DistributedLock{
		client: m.client,
		key:    lockKey,
		value:  lockValue,
		ttl:    ttl,
	}, nil
}

// AcquireLockWithRetry はリトライ付きでロックを取得する
func (m *LockManager) AcquireLockWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (*DistributedLock, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		lock, err := m.AcquireLock(ctx, key, ttl)
		if err == nil {
			return lock, nil
		}
		lastErr = err
		if !errors.Is(err, ErrLockNotAcquired) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, lastErr
}

// Release はロックを解放する（Lua スクリプトで所有者確認と削除をアトミックに実行）
func (l *DistributedLock) Release(ctx context.Context) error {
	result, err := l.client.Eval(ctx, releaseScript, []string{l.key}, l.value).Int()
	if err != nil {
		return fmt.Errorf("ロック解放に失敗: %w", err)
	}
	if result == 0 {
		return ErrLockNotOwned
	}
	return nil
}

// Key はロックキーを返す
func (l *DistributedLock) Key() string {
	return l.key
}

// TableLockKey はテーブル単位のロックキーを返す
func TableLockKey(tableID string) string {
	return "table:" + tableID
}

// TableLocker はテーブル単位の予約確定を直列化する補助ロック。
// 正しさはDBの行ロックと排他制約で保証されるため、取得失敗は呼び出し側で無視してよい
type TableLocker struct {
	manager    *LockManager
	ttl        time.Duration
	maxRetries int
	retryDelay time.Duration
	metrics    *metrics.Metrics
}

// NewTableLocker は新しいTableLockerを作成する
func NewTableLocker(client *redis.Client, ttl time.Duration, m *metrics.Metrics) *TableLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &TableLocker{
		manager:    NewLockManager(client),
		ttl:        ttl,
		maxRetries: 20,
		retryDelay: 50 * time.Millisecond,
		metrics:    m,
	}
}

// LockTable はテーブルのロックを取得し、解放関数を返す
func (t *TableLocker) LockTable(ctx context.Context, tableID string) (func(context.Context) error, error) {
	start := time.Now()
	lock, err := t.manager.AcquireLockWithRetry(ctx, TableLockKey(tableID), t.ttl, t.maxRetries, t.retryDelay)
	if err != nil {
		t.metrics.ObserveLock("acquire", "failed", start)
		return nil, err
	}
	t.metrics.ObserveLock("acquire", "success", start)

	return func(ctx context.Context) error {
		start := time.Now()
		err := lock.Release(ctx)
		status := "success"
		if err != nil {
			status = "failed"
		}
		t.metrics.ObserveLock("release", status, start)
		return err
	}, nil
}
