package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/metrics"
)

// DefaultTTL はキャッシュエントリの既定の有効期限
const DefaultTTL = 60 * time.Second

// Coordinator は共有キャッシュ（primary）とプロセス内キャッシュ（fallback）を切り替える。
// primary でエラーが起きると fallback に切り替わり、Probe が疎通を確認するまで戻らない
type Coordinator struct {
	primary  Backend
	fallback *LocalStore
	ttl      time.Duration
	healthy  atomic.Bool
	metrics  *metrics.Metrics

	// 無効化の世代。ロード中に無効化された結果は保存しない
	genMu       sync.RWMutex
	epoch       uint64
	generations map[string]uint64
}

// NewCoordinator は新しいCoordinatorを作成する。primary が nil の場合は常に fallback を使う
func NewCoordinator(primary Backend, ttl time.Duration, m *metrics.Metrics) *Coordinator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Coordinator{
		primary:     primary,
		fallback:    NewLocalStore(),
		ttl:         ttl,
		metrics:     m,
		generations: make(map[string]uint64),
	}
	c.healthy.Store(primary != nil)
	m.SetCacheDegraded(primary == nil)
	return c
}

// NewLocalCoordinator はプロセス内キャッシュのみのCoordinatorを作成する
func NewLocalCoordinator(ttl time.Duration) *Coordinator {
	return NewCoordinator(nil, ttl, nil)
}

// Healthy は primary を使用中かを返す
func (c *Coordinator) Healthy() bool {
	return c.primary != nil && c.healthy.Load()
}

// TTL はエントリの有効期限を返す
func (c *Coordinator) TTL() time.Duration {
	return c.ttl
}

func (c *Coordinator) markUnhealthy(op string, err error) {
	if c.healthy.CompareAndSwap(true, false) {
		logger.Warn("キャッシュをプロセス内フォールバックに切り替え",
			zap.String("operation", op), zap.Error(err))
		c.metrics.SetCacheDegraded(true)
	}
}

// Get はキーの値を返す。見つからない場合や primary の障害時は ErrCacheMiss
func (c *Coordinator) Get(ctx context.Context, key string) ([]byte, error) {
	if c.Healthy() {
		v, err := c.primary.Get(ctx, key)
		if err == nil || errors.Is(err, ErrCacheMiss) {
			return v, err
		}
		c.markUnhealthy("get", err)
	}
	return c.fallback.Get(ctx, key)
}

// Set は値を保存する。primary で失敗した場合は fallback に保存する
func (c *Coordinator) Set(ctx context.Context, key string, value []byte) {
	if c.Healthy() {
		err := c.primary.Set(ctx, key, value, c.ttl)
		if err == nil {
			return
		}
		c.markUnhealthy("set", err)
	}
	_ = c.fallback.Set(ctx, key, value, c.ttl)
}

// InvalidatePrefix はプレフィックスに一致するエントリを両方のストアから削除する。
// primary に到達できない間の無効化は Probe による復旧時の一括削除で補う
func (c *Coordinator) InvalidatePrefix(ctx context.Context, prefixes ...string) {
	if c == nil {
		return
	}
	for _, prefix := range prefixes {
		c.bump(prefix)
		c.fallback.DeletePrefix(prefix)
		if !c.Healthy() {
			continue
		}
		if err := deleteByPrefix(ctx, c.primary, prefix); err != nil {
			c.markUnhealthy("invalidate", err)
		}
	}
}

// Invalidate はレストランの指定種類のエントリを無効化する
func (c *Coordinator) Invalidate(ctx context.Context, restaurantID string, kinds ...Kind) {
	prefixes := make([]string, len(kinds))
	for i, k := range kinds {
		prefixes[i] = Prefix(k, restaurantID)
	}
	c.InvalidatePrefix(ctx, prefixes...)
}

// Probe は primary の疎通を確認する。
// 障害から復旧した場合は、障害中に適用できなかった無効化を補うため primary の導出データを全削除してから戻す
func (c *Coordinator) Probe(ctx context.Context) error {
	if c.primary == nil {
		return nil
	}
	if err := c.primary.Ping(ctx); err != nil {
		c.markUnhealthy("ping", err)
		return err
	}
	if c.healthy.Load() {
		return nil
	}
	c.bump("")
	for _, kind := range AllKinds {
		if err := deleteByPrefix(ctx, c.primary, string(kind)+":"); err != nil {
			logger.Warn("復旧時のキャッシュ削除に失敗", zap.String("kind", string(kind)), zap.Error(err))
			return err
		}
	}
	_ = c.fallback.FlushAll(ctx)
	c.healthy.Store(true)
	c.metrics.SetCacheDegraded(false)
	logger.Info("共有キャッシュに復帰")
	return nil
}

// Flush は両方のストアを空にする
func (c *Coordinator) Flush(ctx context.Context) error {
	c.bump("")
	_ = c.fallback.FlushAll(ctx)
	if !c.Healthy() {
		return nil
	}
	if err := c.primary.FlushAll(ctx); err != nil {
		c.markUnhealthy("flush", err)
		return err
	}
	return nil
}

// bump は prefix の世代を進める。レストラン単位でないプレフィックスは全体の世代を進める
func (c *Coordinator) bump(prefix string) {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	if prefix == "" || scopeOf(prefix) != prefix {
		c.epoch++
		return
	}
	c.generations[prefix]++
}

// generation はキーが属する "kind:{restaurantId}:" の現在の世代を返す
func (c *Coordinator) generation(key string) uint64 {
	c.genMu.RLock()
	defer c.genMu.RUnlock()
	return c.epoch + c.generations[scopeOf(key)]
}

// setIfCurrent は世代が gen のままの場合だけ保存する。
// 判定と保存の間は無効化を待たせるため、保存後の無効化は必ずこの値を消す
func (c *Coordinator) setIfCurrent(ctx context.Context, key string, value []byte, gen uint64) bool {
	c.genMu.RLock()
	defer c.genMu.RUnlock()
	if c.epoch+c.generations[scopeOf(key)] != gen {
		return false
	}
	c.Set(ctx, key, value)
	return true
}

// scopeOf はキーの先頭2要素 "kind:{restaurantId}:" を返す
func scopeOf(key string) string {
	first := strings.IndexByte(key, ':')
	if first < 0 {
		return key
	}
	second := strings.IndexByte(key[first+1:], ':')
	if second < 0 {
		return key
	}
	return key[:first+second+2]
}

func deleteByPrefix(ctx context.Context, b Backend, prefix string) error {
	keys, err := b.ScanKeys(ctx, prefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return b.Delete(ctx, keys...)
}

// GetOrLoad はキャッシュを読み、無ければ load の結果をJSONで保存して返す。
// キャッシュの失敗は再計算として扱い、呼び出し元には返さない
func GetOrLoad[T any](ctx context.Context, c *Coordinator, kind Kind, key string, load func(ctx context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}
	if raw, err := c.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			logger.Debug("キャッシュヒット", zap.String("key", key))
			c.metrics.RecordCache(string(kind), "hit")
			return v, nil
		}
		logger.Warn("キャッシュのデコードに失敗", zap.String("key", key))
		c.metrics.RecordCache(string(kind), "error")
	} else {
		c.metrics.RecordCache(string(kind), "miss")
	}

	gen := c.generation(key)
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		logger.Warn("キャッシュのエンコードに失敗", zap.String("key", key), zap.Error(err))
		return v, nil
	}
	if !c.setIfCurrent(ctx, key, raw, gen) {
		logger.Debug("ロード中に無効化されたため保存しない", zap.String("key", key))
	}
	return v, nil
}
