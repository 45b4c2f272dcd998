package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/notification"
)

// AMQPSender は通知をRabbitMQのキューに発行し、配信は別プロセスに任せる。
// 接続とチャネルは使い回し、発行に失敗したら次回の送信で張り直す
type AMQPSender struct {
	url   string
	queue string
	dial  func(url string) (*amqp.Connection, error)

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPSender は新しいAMQPSenderを作成する。接続は最初の送信時に行う
func NewAMQPSender(url, queue string) *AMQPSender {
	return &AMQPSender{url: url, queue: queue, dial: amqp.Dial}
}

// envelope はキューに載せるメッセージ本体
type envelope struct {
	notification.Message
	Text string `json:"text"`
}

func buildPublishing(msg notification.Message, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(envelope{Message: msg, Text: msg.Text()})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("通知のエンコードに失敗: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    now.UTC(),
		Type:         string(msg.Kind),
		Body:         body,
	}, nil
}

// Send は永続メッセージとして発行する。チャネルは並行利用できないため送信を直列化する
func (s *AMQPSender) Send(ctx context.Context, msg notification.Message) error {
	pub, err := buildPublishing(msg, time.Now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch, err := s.channel()
	if err != nil {
		return err
	}
	if err := ch.PublishWithContext(ctx, "", s.queue, false, false, pub); err != nil {
		s.reset()
		return fmt.Errorf("通知の発行に失敗: %w", err)
	}
	return nil
}

// channel は開いているチャネルを返す。閉じていれば接続からやり直してキューを宣言する
func (s *AMQPSender) channel() (*amqp.Channel, error) {
	if s.ch != nil && !s.ch.IsClosed() && !s.conn.IsClosed() {
		return s.ch, nil
	}
	s.reset()

	conn, err := s.dial(s.url)
	if err != nil {
		return nil, fmt.Errorf("RabbitMQ接続に失敗: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("チャネル作成に失敗: %w", err)
	}
	if _, err := ch.QueueDeclare(s.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("キュー宣言に失敗: %w", err)
	}

	s.conn, s.ch = conn, ch
	return ch, nil
}

func (s *AMQPSender) reset() {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.conn, s.ch = nil, nil
}

// Close は接続を閉じる
func (s *AMQPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

var _ notification.Sender = (*AMQPSender)(nil)
