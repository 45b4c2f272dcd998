package reservation

import (
	"time"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/interval"
)

// Status は予約の状態を表す
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// ActiveStatuses はテーブルを占有する状態
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

// MaxDurationMinutes は1件の予約で指定できる滞在分数の上限
const MaxDurationMinutes = 24 * 60

// ValidDuration は滞在分数が 1 以上 MaxDurationMinutes 以下かを返す
func ValidDuration(minutes int) bool {
	return minutes > 0 && minutes <= MaxDurationMinutes
}

// Reservation は予約エンティティを表す
// テーブルの占有区間は [StartAt, EndAt) の半開区間
type Reservation struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	TableID      string    `json:"table_id"`
	CustomerName string    `json:"customer_name"`
	Phone        string    `json:"phone"`
	PartySize    int       `json:"party_size"`
	StartAt      time.Time `json:"start_at"`
	EndAt        time.Time `json:"end_at"`
	Status       Status    `json:"status"`
	Notified     bool      `json:"notified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewReservation は保留中の予約を作成する
func NewReservation(restaurantID, tableID, customerName, phone string, partySize int, startAt, endAt time.Time) *Reservation {
	now := time.Now()
	return &Reservation{
		RestaurantID: restaurantID,
		TableID:      tableID,
		CustomerName: customerName,
		Phone:        phone,
		PartySize:    partySize,
		StartAt:      startAt,
		EndAt:        endAt,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate は予約の検証を行う
func (r *Reservation) Validate() error {
	if r.RestaurantID == "" {
		return ErrRestaurantIDRequired
	}
	if r.TableID == "" {
		return ErrTableIDRequired
	}
	if r.CustomerName == "" {
		return ErrCustomerNameRequired
	}
	if r.Phone == "" {
		return ErrPhoneRequired
	}
	if r.PartySize <= 0 {
		return ErrInvalidPartySize
	}
	if !r.StartAt.Before(r.EndAt) {
		return ErrInvalidWindow
	}
	return nil
}

// IsPending は予約が保留中かを返す
func (r *Reservation) IsPending() bool {
	return r.Status == StatusPending
}

// IsActive はテーブルを占有している状態かを返す
func (r *Reservation) IsActive() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}

// BelongsTo は指定レストランの予約かを返す
func (r *Reservation) BelongsTo(restaurantID string) bool {
	return r.RestaurantID == restaurantID
}

// Overlaps はアクティブな予約が [start, end) と重なるかを返す
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.IsActive() && interval.Overlaps(r.StartAt, r.EndAt, start, end)
}

// DurationMinutes は予約枠の長さを整数分で返す
func (r *Reservation) DurationMinutes() int {
	return interval.Minutes(r.EndAt.Sub(r.StartAt))
}

// Confirm は予約を確定する
func (r *Reservation) Confirm() error {
	if r.Status != StatusPending {
		return ErrReservationNotPending
	}
	r.Status = StatusConfirmed
	r.UpdatedAt = time.Now()
	return nil
}

// Cancel は予約をキャンセルする。確定済みの予約もキャンセルできる
func (r *Reservation) Cancel() error {
	if r.Status == StatusCancelled {
		return ErrReservationAlreadyCancelled
	}
	r.Status = StatusCancelled
	r.UpdatedAt = time.Now()
	return nil
}

// Reschedule は保留中の予約の枠を変更する
func (r *Reservation) Reschedule(startAt, endAt time.Time) error {
	if r.Status != StatusPending {
		return ErrReservationNotPending
	}
	if !startAt.Before(endAt) {
		return ErrInvalidWindow
	}
	r.StartAt = startAt
	r.EndAt = endAt
	r.UpdatedAt = time.Now()
	return nil
}

// MarkNotified は確定通知を送信済みにする。未送信だった場合 true を返す
func (r *Reservation) MarkNotified() bool {
	if r.Notified {
		return false
	}
	r.Notified = true
	return true
}
