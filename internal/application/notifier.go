package application

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/notification"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/waitlist"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/metrics"
)

// Notifier は顧客通知の送信口。送信は非同期で、失敗は呼び出し元に返らない
type Notifier interface {
	NotifyConfirmation(ctx context.Context, r *reservation.Reservation, restaurantName string)
	NotifyCancellation(ctx context.Context, r *reservation.Reservation, restaurantName string)
	NotifyWaitlisted(ctx context.Context, e *waitlist.Entry, restaurantName string)
}

const defaultNotifyTimeout = 10 * time.Second

// Dispatcher は通知をゴルーチンで送信する。
// リクエストのキャンセルに巻き込まれないよう、コンテキストは切り離して送信ごとのタイムアウトを付ける
type Dispatcher struct {
	sender  notification.Sender
	timeout time.Duration
	metrics *metrics.Metrics
	wg      sync.WaitGroup
}

// NewDispatcher は新しいDispatcherを作成する
func NewDispatcher(sender notification.Sender, timeout time.Duration, m *metrics.Metrics) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	return &Dispatcher{sender: sender, timeout: timeout, metrics: m}
}

func (d *Dispatcher) NotifyConfirmation(ctx context.Context, r *reservation.Reservation, restaurantName string) {
	d.dispatch(ctx, notification.NewConfirmation(r, restaurantName))
}

func (d *Dispatcher) NotifyCancellation(ctx context.Context, r *reservation.Reservation, restaurantName string) {
	d.dispatch(ctx, notification.NewCancellation(r, restaurantName))
}

func (d *Dispatcher) NotifyWaitlisted(ctx context.Context, e *waitlist.Entry, restaurantName string) {
	d.dispatch(ctx, notification.NewWaitlisted(e, restaurantName))
}

// Wait は送信中の通知がすべて終わるまで待つ（シャットダウン時に使用）
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(ctx context.Context, msg notification.Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		if err := d.sender.Send(sendCtx, msg); err != nil {
			logger.FromContext(ctx).Warn("通知送信に失敗",
				zap.String("kind", string(msg.Kind)),
				logger.ReservationID(msg.ReservationID),
				zap.Error(err),
			)
			d.metrics.RecordNotification(string(msg.Kind), "failed")
			return
		}
		d.metrics.RecordNotification(string(msg.Kind), "sent")
	}()
}

var _ Notifier = (*Dispatcher)(nil)
