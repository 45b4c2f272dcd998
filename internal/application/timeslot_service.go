package application

import (
	"context"
	"iter"
	"time"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/restaurant"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/infrastructure/cache"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/interval"
)

// DefaultSlotIntervalMinutes は時間枠の既定の刻み
const DefaultSlotIntervalMinutes = 30

// SlotQuery は時間枠生成の条件
type SlotQuery struct {
	Restaurant      *restaurant.Restaurant
	Date            time.Time
	PartySize       int
	DurationMinutes int
	IntervalMinutes int
}

// TimeSlotService は予約可能な開始時刻を列挙する
type TimeSlotService struct {
	restaurantRepo restaurant.Repository
	availability   *AvailabilityService
	cache          *cache.Coordinator
}

// NewTimeSlotService は新しいTimeSlotServiceを作成する
func NewTimeSlotService(rr restaurant.Repository, availability *AvailabilityService, c *cache.Coordinator) *TimeSlotService {
	return &TimeSlotService{restaurantRepo: rr, availability: availability, cache: c}
}

// Slots は開店時刻から閉店時刻まで（閉店時刻を含む）刻みごとに候補を進め、
// 営業時間内に収まり空きテーブルがある開始時刻を順に返す。
// 何度でも最初から列挙し直せる。エラー時は1度だけ返して終了する
func (s *TimeSlotService) Slots(ctx context.Context, q SlotQuery) iter.Seq2[time.Time, error] {
	return func(yield func(time.Time, error) bool) {
		if !reservation.ValidDuration(q.DurationMinutes) {
			yield(time.Time{}, reservation.ErrInvalidWindow)
			return
		}
		step := q.IntervalMinutes
		if step <= 0 {
			step = DefaultSlotIntervalMinutes
		}

		r := q.Restaurant
		day := interval.DayStart(q.Date)
		closing := r.CloseTime.On(day)
		for cur := r.OpenTime.On(day); !cur.After(closing); cur = interval.EndAt(cur, step) {
			if err := ctx.Err(); err != nil {
				yield(time.Time{}, err)
				return
			}
			end := interval.EndAt(cur, q.DurationMinutes)
			if !r.WithinOperatingHours(cur, end) {
				continue
			}
			tables, err := s.availability.FindAvailableTables(ctx, r.ID, cur, end, q.PartySize)
			if err != nil {
				yield(time.Time{}, err)
				return
			}
			if len(tables) > 0 && !yield(cur, nil) {
				return
			}
		}
	}
}

// TimeSlotsInput は時間枠照会の入力
type TimeSlotsInput struct {
	RestaurantID    string
	Date            time.Time
	PartySize       int
	DurationMinutes int
	IntervalMinutes int
}

// TimeSlots はキャッシュ経由で予約可能な開始時刻の一覧を返す
func (s *TimeSlotService) TimeSlots(ctx context.Context, input TimeSlotsInput) ([]time.Time, error) {
	if input.IntervalMinutes <= 0 {
		input.IntervalMinutes = DefaultSlotIntervalMinutes
	}
	if input.PartySize <= 0 {
		return nil, reservation.ErrInvalidPartySize
	}
	key := cache.TimeSlotsKey(input.RestaurantID, input.Date, input.PartySize, input.DurationMinutes, input.IntervalMinutes)
	return cache.GetOrLoad(ctx, s.cache, cache.KindTimeSlots, key, func(ctx context.Context) ([]time.Time, error) {
		rest, err := s.restaurantRepo.GetByID(ctx, input.RestaurantID)
		if err != nil {
			return nil, err
		}
		slots := []time.Time{}
		for slot, err := range s.Slots(ctx, SlotQuery{
			Restaurant:      rest,
			Date:            input.Date,
			PartySize:       input.PartySize,
			DurationMinutes: input.DurationMinutes,
			IntervalMinutes: input.IntervalMinutes,
		}) {
			if err != nil {
				return nil, err
			}
			slots = append(slots, slot)
		}
		return slots, nil
	})
}
