// Package notification は顧客への通知メッセージと送信ポートを定義する
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/waitlist"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/interval"
)

// Kind は通知の種類
type Kind string

const (
	KindConfirmation Kind = "confirmation"
	KindCancellation Kind = "cancellation"
	KindWaitlisted   Kind = "waitlisted"
)

// Message は送信する通知1件
type Message struct {
	Kind           Kind      `json:"kind"`
	CustomerName   string    `json:"customer_name"`
	Phone          string    `json:"phone"`
	RestaurantName string    `json:"restaurant_name"`
	ReservationID  string    `json:"reservation_id,omitempty"`
	PartySize      int       `json:"party_size"`
	StartAt        time.Time `json:"start_at,omitempty"`
	PreferredDate  string    `json:"preferred_date,omitempty"`
}

// Sender は通知の送信先
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewConfirmation は予約受付・確定の通知を作成する
func NewConfirmation(r *reservation.Reservation, restaurantName string) Message {
	return Message{
		Kind:           KindConfirmation,
		CustomerName:   r.CustomerName,
		Phone:          r.Phone,
		RestaurantName: restaurantName,
		ReservationID:  r.ID,
		PartySize:      r.PartySize,
		StartAt:        r.StartAt,
	}
}

// NewCancellation はキャンセル通知を作成する
func NewCancellation(r *reservation.Reservation, restaurantName string) Message {
	return Message{
		Kind:           KindCancellation,
		CustomerName:   r.CustomerName,
		Phone:          r.Phone,
		RestaurantName: restaurantName,
		ReservationID:  r.ID,
		PartySize:      r.PartySize,
		StartAt:        r.StartAt,
	}
}

// NewWaitlisted はウェイティングリスト登録通知を作成する
func NewWaitlisted(e *waitlist.Entry, restaurantName string) Message {
	return Message{
		Kind:           KindWaitlisted,
		CustomerName:   e.CustomerName,
		Phone:          e.Phone,
		RestaurantName: restaurantName,
		PartySize:      e.PartySize,
		PreferredDate:  e.PreferredDateString(),
	}
}

// Text は顧客に送る本文を返す
func (m Message) Text() string {
	switch m.Kind {
	case KindConfirmation:
		return fmt.Sprintf("[RESERVATION CONFIRMED] Hi %s, your reservation (ID: %s) at %s for %d people is confirmed at %s. Contact: %s",
			m.CustomerName, m.ReservationID, m.RestaurantName, m.PartySize, interval.FormatISO(m.StartAt), m.Phone)
	case KindCancellation:
		return fmt.Sprintf("[RESERVATION CANCELLED] Hi %s, your reservation (ID: %s) at %s has been cancelled. Contact: %s",
			m.CustomerName, m.ReservationID, m.RestaurantName, m.Phone)
	case KindWaitlisted:
		return fmt.Sprintf("[WAITLIST] Hi %s, you've been added to the waitlist at %s for %d people on %s. We'll contact you if a table becomes available. Contact: %s",
			m.CustomerName, m.RestaurantName, m.PartySize, m.PreferredDate, m.Phone)
	default:
		return ""
	}
}
