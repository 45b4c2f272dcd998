// Package notification は顧客通知の送信実装を提供する
package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/notification"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/logger"
)

// LogSender は通知をログに出力する（開発環境用）
type LogSender struct {
	log *zap.Logger
}

// NewLogSender は新しいLogSenderを作成する
func NewLogSender() *LogSender {
	return &LogSender{log: logger.Get()}
}

func (s *LogSender) Send(_ context.Context, msg notification.Message) error {
	s.log.Info("通知送信",
		zap.String("kind", string(msg.Kind)),
		zap.String("phone", msg.Phone),
		zap.String("body", msg.Text()),
	)
	return nil
}

var _ notification.Sender = (*LogSender)(nil)
