// Package cache は空き状況などの導出データを保持する読み込みキャッシュを提供する。
// キャッシュは正本ではなく、失敗時は常に再計算にフォールバックする
package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("キャッシュが見つかりません")

// Backend はキャッシュの保存先
type Backend interface {
	// Get はキーの値を返す。存在しない場合は ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)
	// Set はTTL付きで値を保存する
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// ScanKeys はプレフィックスに一致するキーを列挙する
	ScanKeys(ctx context.Context, prefix string) ([]string, error)
	// Delete はキーを削除する
	Delete(ctx context.Context, keys ...string) error
	// FlushAll は全エントリを削除する
	FlushAll(ctx context.Context) error
	// Ping は疎通を確認する
	Ping(ctx context.Context) error
}
