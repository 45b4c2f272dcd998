package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/config"
)

const metricsRealm = "metrics"

// MetricsBasicAuth は /metrics エンドポイント用の Basic 認証ミドルウェア。
// ユーザーとパスワードの両方が設定されていなければ認証しない（ローカル開発用）
func MetricsBasicAuth(cfg config.MetricsConfig) echo.MiddlewareFunc {
	if !cfg.AuthEnabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm: metricsRealm,
		Validator: func(username, password string, c echo.Context) (bool, error) {
			userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(cfg.User)) == 1
			passMatch := subtle.ConstantTimeCompare([]byte(password), []byte(cfg.Password)) == 1
			return userMatch && passMatch, nil
		},
	})
}
