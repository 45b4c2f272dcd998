package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/config"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/logger"
)

const rateLimitKeyPrefix = "ratelimit"

// RateLimit はクライアントIPごとの固定ウィンドウでリクエスト数を制限する。
// Redis が無効・未接続のときは制限せずに通す
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	windowSec := int64(cfg.Window / time.Second)
	limit := int64(cfg.Requests)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := time.Now().Unix()
			window := now / windowSec
			key := rateLimitKey(c.RealIP(), window)

			ctx := c.Request().Context()
			pipe := rdb.TxPipeline()
			incr := pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, cfg.Window)
			if _, err := pipe.Exec(ctx); err != nil {
				logger.Warn("レート制限のカウントに失敗（制限なしで続行）", zap.String("key", key), zap.Error(err))
				return next(c)
			}

			count := incr.Val()
			remaining := limit - count
			if remaining < 0 {
				remaining = 0
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > limit {
				retryAfter := (window+1)*windowSec - now
				h.Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				return echo.NewHTTPError(http.StatusTooManyRequests, "リクエストが多すぎます。しばらくしてから再試行してください")
			}
			return next(c)
		}
	}
}

func rateLimitKey(ip string, window int64) string {
	if ip == "" {
		ip = "unknown"
	}
	return fmt.Sprintf("%s:%s:%d", rateLimitKeyPrefix, ip, window)
}
