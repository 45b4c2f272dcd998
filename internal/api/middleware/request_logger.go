package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/logger"
)

// RequestLogger はリクエストの構造化ログを出力するミドルウェア
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			req := c.Request()
			res := c.Response()

			// リクエストIDを生成または取得
			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = res.Header().Get(echo.HeaderXRequestID)
			}

			// リクエスト処理
			err := next(c)

			// レスポンス後のログ
			latency := time.Since(start)

			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("method", req.Method),
				zap.String("route", c.Path()),
				zap.String("path", req.URL.Path),
				zap.String("query", req.URL.RawQuery),
				zap.Int("status", res.Status),
				zap.Int64("size", res.Size),
				zap.Duration("latency", latency),
				zap.String("remote_ip", c.RealIP()),
				zap.String("user_agent", req.UserAgent()),
			}

			if restaurantID := c.Param("id"); restaurantID != "" {
				fields = append(fields, logger.RestaurantID(restaurantID))
			}

			if err != nil {
				// ステータスはエラーハンドラーが書き込む前なので HTTPError から補う
				if he, ok := err.(*echo.HTTPError); ok {
					fields = append(fields, zap.Int("error_status", he.Code))
				}
				fields = append(fields, zap.Error(err))
				logger.Warn("request failed", fields...)
			} else if res.Status >= 500 {
				logger.Error("server error", fields...)
			} else if res.Status >= 400 {
				logger.Warn("client error", fields...)
			} else {
				logger.Info("request completed", fields...)
			}

			return err
		}
	}
}

// RequestIDMiddleware はリクエストIDを生成・付与するミドルウェア
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = generateRequestID()
				req.Header.Set(echo.HeaderXRequestID, requestID)
			}
			res.Header().Set(echo.HeaderXRequestID, requestID)

			// 以降の処理のログにリクエストIDを付ける
			ctx := logger.WithContext(req.Context(), logger.With(zap.String("request_id", requestID)))
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}

func generateRequestID() string {
	return uuid.NewString()
}
