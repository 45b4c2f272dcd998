package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type localEntry struct {
	value     []byte
	expiresAt time.Time
}

// LocalStore はプロセス内のTTL付きキャッシュ。プロセス間では共有されない
type LocalStore struct {
	mu      sync.RWMutex
	entries map[string]localEntry
	now     func() time.Time
}

// NewLocalStore は新しいLocalStoreを作成する
func NewLocalStore() *LocalStore {
	return &LocalStore{
		entries: make(map[string]localEntry),
		now:     time.Now,
	}
}

// Get は期限内の値を返す。期限切れのエントリはその場で削除する
func (s *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrCacheMiss
	}
	if !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		if cur, ok := s.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return e.value, nil
}

// Set はTTL付きで値を保存する
func (s *LocalStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = localEntry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

// ScanKeys はプレフィックスに一致する期限内のキーを返す
func (s *LocalStore) ScanKeys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	var keys []string
	for k, e := range s.entries {
		if strings.HasPrefix(k, prefix) && now.Before(e.expiresAt) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Delete はキーを削除する
func (s *LocalStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	return nil
}

// DeletePrefix はプレフィックスに一致するキーをまとめて削除する
func (s *LocalStore) DeletePrefix(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			delete(s.entries, k)
		}
	}
}

// FlushAll は全エントリを削除する
func (s *LocalStore) FlushAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]localEntry)
	return nil
}

// Ping は常に成功する
func (s *LocalStore) Ping(_ context.Context) error {
	return nil
}

// Len は保持しているエントリ数を返す（期限切れを含む）
func (s *LocalStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ Backend = (*LocalStore)(nil)
