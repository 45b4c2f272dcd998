package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/logger"
)

const defaultHealthInterval = 5 * time.Second

// CacheProber は共有キャッシュの疎通確認を行うインターフェース
type CacheProber interface {
	Probe(ctx context.Context) error
	Healthy() bool
}

// CacheHealthMonitor は一定間隔で共有キャッシュを確認し、障害からの復帰を検出するワーカー
type CacheHealthMonitor struct {
	cache    CacheProber
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewCacheHealthMonitor は新しいモニターを作成
func NewCacheHealthMonitor(c CacheProber, interval time.Duration) *CacheHealthMonitor {
	if interval <= 0 {
		interval = defaultHealthInterval
	}
	timeout := interval
	if timeout > 2*time.Second {
		timeout = 2 * time.Second
	}
	return &CacheHealthMonitor{
		cache:    c,
		interval: interval,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はモニターを開始
func (m *CacheHealthMonitor) Start(ctx context.Context) {
	logger.Info("キャッシュ監視開始", zap.Duration("interval", m.interval))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	defer close(m.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("キャッシュ監視停止（コンテキストキャンセル）")
			return
		case <-m.stopCh:
			logger.Info("キャッシュ監視停止（シグナル受信）")
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

// Stop はモニターを停止
func (m *CacheHealthMonitor) Stop() {
	close(m.stopCh)
	<-m.doneCh
}

func (m *CacheHealthMonitor) check(ctx context.Context) {
	wasHealthy := m.cache.Healthy()

	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if err := m.cache.Probe(probeCtx); err != nil {
		logger.Get().Debug("共有キャッシュに到達できません", zap.Error(err))
		return
	}

	if !wasHealthy && m.cache.Healthy() {
		logger.Info("共有キャッシュの復旧を確認")
	}
}
