package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// WithContext はリクエスト単位のロガーをコンテキストに格納する
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext はコンテキストのロガーを返す。格納されていなければグローバルロガー
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return log
}

func RestaurantID(id string) zap.Field  { return zap.String("restaurant_id", id) }
func ReservationID(id string) zap.Field { return zap.String("reservation_id", id) }
func TableID(id string) zap.Field       { return zap.String("table_id", id) }
func WaitlistID(id string) zap.Field    { return zap.String("waitlist_id", id) }
