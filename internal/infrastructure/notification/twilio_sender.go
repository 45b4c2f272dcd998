package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/notification"
)

var ErrTwilioNotConfigured = errors.New("Twilioの認証情報が設定されていません")

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// TwilioSender はSMSで通知を送信する
type TwilioSender struct {
	api  messageCreator
	from string
}

// NewTwilioSender は新しいTwilioSenderを作成する
func NewTwilioSender(accountSID, authToken, from string) (*TwilioSender, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, ErrTwilioNotConfigured
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{api: client.Api, from: from}, nil
}

// Send はSMSを送信する。twilio-go はコンテキストを受け取らないため ctx はキャンセル確認のみに使う
func (s *TwilioSender) Send(ctx context.Context, msg notification.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &openapi.CreateMessageParams{}
	params.SetTo(msg.Phone)
	params.SetFrom(s.from)
	params.SetBody(msg.Text())

	if _, err := s.api.CreateMessage(params); err != nil {
		return fmt.Errorf("SMS送信に失敗: %w", err)
	}
	return nil
}

var _ notification.Sender = (*TwilioSender)(nil)
