package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/restaurant"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/table"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/infrastructure/cache"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/interval"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/logger"
)

// RestaurantService はレストランとテーブルの管理を行う
type RestaurantService struct {
	restaurantRepo restaurant.Repository
	tableRepo      table.Repository
	cache          *cache.Coordinator
}

// NewRestaurantService は新しいRestaurantServiceを作成する
func NewRestaurantService(rr restaurant.Repository, tr table.Repository, c *cache.Coordinator) *RestaurantService {
	return &RestaurantService{restaurantRepo: rr, tableRepo: tr, cache: c}
}

// CreateRestaurantInput はレストラン作成の入力
type CreateRestaurantInput struct {
	Name                   string
	OpenTime               interval.ClockTime
	CloseTime              interval.ClockTime
	TotalTables            int
	PeakHourStart          *interval.ClockTime
	PeakHourEnd            *interval.ClockTime
	MaxPeakDurationMinutes *int
}

// CreateRestaurant はレストランを作成する
func (s *RestaurantService) CreateRestaurant(ctx context.Context, input CreateRestaurantInput) (*restaurant.Restaurant, error) {
	var peak *restaurant.PeakPolicy
	if input.PeakHourStart != nil && input.PeakHourEnd != nil {
		peak = &restaurant.PeakPolicy{Start: *input.PeakHourStart, End: *input.PeakHourEnd}
	}
	r := restaurant.NewRestaurant(input.Name, input.OpenTime, input.CloseTime, input.TotalTables, peak)
	// 片方だけの指定は Validate で弾く
	r.PeakHourStart, r.PeakHourEnd = input.PeakHourStart, input.PeakHourEnd
	r.MaxPeakDurationMinutes = input.MaxPeakDurationMinutes
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := s.restaurantRepo.Create(ctx, r); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("レストランを作成", logger.RestaurantID(r.ID), zap.String("name", r.Name))
	return r, nil
}

// GetRestaurant はレストランを取得する
func (s *RestaurantService) GetRestaurant(ctx context.Context, id string) (*restaurant.Restaurant, error) {
	return s.restaurantRepo.GetByID(ctx, id)
}

// AddTableInput はテーブル追加の入力
type AddTableInput struct {
	RestaurantID string
	TableNumber  string
	Capacity     int
}

// AddTable はレストランにテーブルを追加し、空き状況と時間枠のキャッシュを無効化する
func (s *RestaurantService) AddTable(ctx context.Context, input AddTableInput) (*table.Table, error) {
	if _, err := s.restaurantRepo.GetByID(ctx, input.RestaurantID); err != nil {
		return nil, err
	}
	t := table.NewTable(input.RestaurantID, input.TableNumber, input.Capacity)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.tableRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, input.RestaurantID, cache.KindAvailability, cache.KindTimeSlots)
	return t, nil
}

// ListTables はレストランのテーブルをテーブル番号順に返す
func (s *RestaurantService) ListTables(ctx context.Context, restaurantID string) ([]*table.Table, error) {
	if _, err := s.restaurantRepo.GetByID(ctx, restaurantID); err != nil {
		return nil, err
	}
	return s.tableRepo.ListByRestaurant(ctx, restaurantID)
}
