package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// DBPinger はDB疎通確認のインターフェース（*sqlx.DB が満たす）
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// CacheStatus はキャッシュの稼働状態（*cache.Coordinator が満たす）
type CacheStatus interface {
	Healthy() bool
}

// HealthHandler はヘルスチェックハンドラー
type HealthHandler struct {
	db    DBPinger
	cache CacheStatus
}

// NewHealthHandler はHealthHandlerを作成する。引数は nil でもよい
func NewHealthHandler(db DBPinger, cache CacheStatus) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// HealthResponse はヘルスチェックのレスポンス
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database,omitempty"`
	Cache     string `json:"cache,omitempty"`
}

const healthPingTimeout = 2 * time.Second

// Check はヘルスチェックを行う
// @Summary ヘルスチェック
// @Description DBに接続できなければ503、キャッシュがフォールバック中なら degraded を返す
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK

	if h.cache != nil {
		resp.Cache = "redis"
		if !h.cache.Healthy() {
			resp.Cache = "local"
			resp.Status = "degraded"
		}
	}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
		defer cancel()
		resp.Database = "up"
		if err := h.db.PingContext(ctx); err != nil {
			resp.Database = "down"
			resp.Status = "unavailable"
			code = http.StatusServiceUnavailable
		}
	}
	return c.JSON(code, resp)
}
