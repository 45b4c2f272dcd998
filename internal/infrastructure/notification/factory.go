package notification

import (
	"fmt"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/config"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/notification"
)

// New は設定のドライバーに応じた Sender を返す
func New(cfg *config.NotificationConfig) (notification.Sender, error) {
	switch cfg.Driver {
	case "", "log":
		return NewLogSender(), nil
	case "twilio":
		return NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	case "amqp":
		return NewAMQPSender(cfg.AMQPURL, cfg.Queue), nil
	default:
		return nil, fmt.Errorf("未対応の通知ドライバー: %s", cfg.Driver)
	}
}
