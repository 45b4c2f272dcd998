package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/application"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/restaurant"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/table"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/waitlist"
)

// RestaurantServiceInterface はレストランサービスのインターフェース
type RestaurantServiceInterface interface {
	CreateRestaurant(ctx context.Context, input application.CreateRestaurantInput) (*restaurant.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*restaurant.Restaurant, error)
	AddTable(ctx context.Context, input application.AddTableInput) (*table.Table, error)
	ListTables(ctx context.Context, restaurantID string) ([]*table.Table, error)
}

// AvailabilityServiceInterface は空き状況サービスのインターフェース
type AvailabilityServiceInterface interface {
	AvailableTables(ctx context.Context, input application.AvailabilityInput) ([]*table.Table, error)
}

// TimeSlotServiceInterface は時間枠サービスのインターフェース
type TimeSlotServiceInterface interface {
	TimeSlots(ctx context.Context, input application.TimeSlotsInput) ([]time.Time, error)
}

// ReservationServiceInterface は予約サービスのインターフェース
type ReservationServiceInterface interface {
	CreateReservation(ctx context.Context, input application.CreateReservationInput) (*application.BookingResult, error)
	GetReservation(ctx context.Context, id, restaurantID string) (*reservation.Reservation, error)
	ListReservationsForDate(ctx context.Context, restaurantID string, date time.Time, page, pageSize int) (*application.Page[*reservation.Reservation], error)
	ModifyReservation(ctx context.Context, input application.ModifyReservationInput) (*reservation.Reservation, error)
	ConfirmReservation(ctx context.Context, id, restaurantID string) (*reservation.Reservation, error)
	CancelReservation(ctx context.Context, id, restaurantID string) (*reservation.Reservation, error)
}

// WaitlistServiceInterface はウェイティングリストサービスのインターフェース
type WaitlistServiceInterface interface {
	AddToWaitlist(ctx context.Context, input application.AddToWaitlistInput) (*waitlist.Entry, error)
	ListWaitlist(ctx context.Context, restaurantID string, date time.Time, page, pageSize int) (*application.Page[*waitlist.Entry], error)
	RemoveFromWaitlist(ctx context.Context, id, restaurantID string) error
}
