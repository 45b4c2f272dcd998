package cache

import (
	"fmt"
	"time"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/interval"
)

// Kind はキャッシュエントリの種類（キーの先頭要素）
type Kind string

const (
	KindAvailability Kind = "availability"
	KindTimeSlots    Kind = "timeslots"
	KindReservations Kind = "reservations"
)

// AllKinds は予約状態の変更で無効化対象になる全種類
var AllKinds = []Kind{KindAvailability, KindTimeSlots, KindReservations}

// Prefix はレストラン単位の無効化プレフィックス "kind:{restaurantId}:" を返す
func Prefix(kind Kind, restaurantID string) string {
	return fmt.Sprintf("%s:%s:", kind, restaurantID)
}

// AvailabilityKey は availability:{restaurantId}:{startISO}:{durationMinutes}:{partySize}
func AvailabilityKey(restaurantID string, start time.Time, durationMinutes, partySize int) string {
	return fmt.Sprintf("%s%s:%d:%d", Prefix(KindAvailability, restaurantID), interval.FormatISO(start), durationMinutes, partySize)
}

// TimeSlotsKey は timeslots:{restaurantId}:{date}:{partySize}:{durationMinutes}:{intervalMinutes}
func TimeSlotsKey(restaurantID string, date time.Time, partySize, durationMinutes, intervalMinutes int) string {
	return fmt.Sprintf("%s%s:%d:%d:%d", Prefix(KindTimeSlots, restaurantID), interval.FormatDate(date), partySize, durationMinutes, intervalMinutes)
}

// ReservationsKey は reservations:{restaurantId}:{date}:{page}:{pageSize}
func ReservationsKey(restaurantID string, date time.Time, page, pageSize int) string {
	return fmt.Sprintf("%s%s:%d:%d", Prefix(KindReservations, restaurantID), interval.FormatDate(date), page, pageSize)
}
