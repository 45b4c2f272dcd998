package waitlist

import (
	"time"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/interval"
)

// Entry はウェイティングリストのエントリを表す
type Entry struct {
	ID            string    `json:"id"`
	RestaurantID  string    `json:"restaurant_id"`
	CustomerName  string    `json:"customer_name"`
	Phone         string    `json:"phone"`
	PartySize     int       `json:"party_size"`
	PreferredDate time.Time `json:"preferred_date"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewEntry は新しいエントリを作成する。希望日はUTCの日付に丸める
func NewEntry(restaurantID, customerName, phone string, partySize int, preferredDate time.Time) *Entry {
	return &Entry{
		RestaurantID:  restaurantID,
		CustomerName:  customerName,
		Phone:         phone,
		PartySize:     partySize,
		PreferredDate: interval.DayStart(preferredDate),
		CreatedAt:     time.Now(),
	}
}

// Validate はエントリの検証を行う
func (e *Entry) Validate() error {
	if e.RestaurantID == "" {
		return ErrRestaurantIDRequired
	}
	if e.CustomerName == "" {
		return ErrCustomerNameRequired
	}
	if e.Phone == "" {
		return ErrPhoneRequired
	}
	if e.PartySize <= 0 {
		return ErrInvalidPartySize
	}
	return nil
}

// BelongsTo は指定レストランのエントリかを返す
func (e *Entry) BelongsTo(restaurantID string) bool {
	return e.RestaurantID == restaurantID
}

// PreferredDateString は希望日を "YYYY-MM-DD" で返す
func (e *Entry) PreferredDateString() string {
	return interval.FormatDate(e.PreferredDate)
}
