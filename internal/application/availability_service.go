package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/restaurant"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/table"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/infrastructure/cache"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/interval"
)

// AvailabilityService は時間枠と人数から空きテーブルを求める
type AvailabilityService struct {
	restaurantRepo  restaurant.Repository
	tableRepo       table.Repository
	reservationRepo reservation.Repository
	cache           *cache.Coordinator
}

// NewAvailabilityService は新しいAvailabilityServiceを作成する
func NewAvailabilityService(rr restaurant.Repository, tr table.Repository, resRepo reservation.Repository, c *cache.Coordinator) *AvailabilityService {
	return &AvailabilityService{restaurantRepo: rr, tableRepo: tr, reservationRepo: resRepo, cache: c}
}

// FindAvailableTables は定員が minCapacity 以上で [start, end) にアクティブな予約がないテーブルを、
// 定員の小さい順に返す
func (s *AvailabilityService) FindAvailableTables(ctx context.Context, restaurantID string, start, end time.Time, minCapacity int) ([]*table.Table, error) {
	if !start.Before(end) {
		return nil, reservation.ErrInvalidWindow
	}
	candidates, err := s.tableRepo.ListWithMinCapacity(ctx, restaurantID, minCapacity)
	if err != nil {
		return nil, fmt.Errorf("候補テーブル取得に失敗: %w", err)
	}
	if len(candidates) == 0 {
		return []*table.Table{}, nil
	}

	active, err := s.reservationRepo.ListActiveOverlapping(ctx, restaurantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	blocked := make(map[string]struct{}, len(active))
	for _, r := range active {
		if r.Overlaps(start, end) {
			blocked[r.TableID] = struct{}{}
		}
	}

	available := make([]*table.Table, 0, len(candidates))
	for _, t := range candidates {
		if _, ok := blocked[t.ID]; !ok {
			available = append(available, t)
		}
	}
	return available, nil
}

// AvailabilityInput は空き状況照会の入力
type AvailabilityInput struct {
	RestaurantID    string
	StartAt         time.Time
	DurationMinutes int
	PartySize       int
}

// AvailableTables はキャッシュ経由で空きテーブルを返す
func (s *AvailabilityService) AvailableTables(ctx context.Context, input AvailabilityInput) ([]*table.Table, error) {
	if !reservation.ValidDuration(input.DurationMinutes) {
		return nil, reservation.ErrInvalidWindow
	}
	if input.PartySize <= 0 {
		return nil, reservation.ErrInvalidPartySize
	}
	start := input.StartAt.UTC()
	key := cache.AvailabilityKey(input.RestaurantID, start, input.DurationMinutes, input.PartySize)
	return cache.GetOrLoad(ctx, s.cache, cache.KindAvailability, key, func(ctx context.Context) ([]*table.Table, error) {
		if _, err := s.restaurantRepo.GetByID(ctx, input.RestaurantID); err != nil {
			return nil, err
		}
		return s.FindAvailableTables(ctx, input.RestaurantID, start, interval.EndAt(start, input.DurationMinutes), input.PartySize)
	})
}
