package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/application"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/restaurant"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/table"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/waitlist"
)

// MockRestaurantService はRestaurantServiceInterfaceのモック
type MockRestaurantService struct {
	mock.Mock
}

func (m *MockRestaurantService) CreateRestaurant(ctx context.Context, input application.CreateRestaurantInput) (*restaurant.Restaurant, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*restaurant.Restaurant), args.Error(1)
}

func (m *MockRestaurantService) GetRestaurant(ctx context.Context, id string) (*restaurant.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*restaurant.Restaurant), args.Error(1)
}

func (m *MockRestaurantService) AddTable(ctx context.Context, input application.AddTableInput) (*table.Table, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*table.Table), args.Error(1)
}

func (m *MockRestaurantService) ListTables(ctx context.Context, restaurantID string) ([]*table.Table, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*table.Table), args.Error(1)
}

// MockAvailabilityService はAvailabilityServiceInterfaceのモック
type MockAvailabilityService struct {
	mock.Mock
}

func (m *MockAvailabilityService) AvailableTables(ctx context.Context, input application.AvailabilityInput) ([]*table.Table, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*table.Table), args.Error(1)
}

// MockTimeSlotService はTimeSlotServiceInterfaceのモック
type MockTimeSlotService struct {
	mock.Mock
}

func (m *MockTimeSlotService) TimeSlots(ctx context.Context, input application.TimeSlotsInput) ([]time.Time, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

// MockReservationService はReservationServiceInterfaceのモック
type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) CreateReservation(ctx context.Context, input application.CreateReservationInput) (*application.BookingResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.BookingResult), args.Error(1)
}

func (m *MockReservationService) GetReservation(ctx context.Context, id, restaurantID string) (*reservation.Reservation, error) {
	args := m.Called(ctx, id, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) ListReservationsForDate(ctx context.Context, restaurantID string, date time.Time, page, pageSize int) (*application.Page[*reservation.Reservation], error) {
	args := m.Called(ctx, restaurantID, date, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.Page[*reservation.Reservation]), args.Error(1)
}

func (m *MockReservationService) ModifyReservation(ctx context.Context, input application.ModifyReservationInput) (*reservation.Reservation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) ConfirmReservation(ctx context.Context, id, restaurantID string) (*reservation.Reservation, error) {
	args := m.Called(ctx, id, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) CancelReservation(ctx context.Context, id, restaurantID string) (*reservation.Reservation, error) {
	args := m.Called(ctx, id, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

// MockWaitlistService はWaitlistServiceInterfaceのモック
type MockWaitlistService struct {
	mock.Mock
}

func (m *MockWaitlistService) AddToWaitlist(ctx context.Context, input application.AddToWaitlistInput) (*waitlist.Entry, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*waitlist.Entry), args.Error(1)
}

func (m *MockWaitlistService) ListWaitlist(ctx context.Context, restaurantID string, date time.Time, page, pageSize int) (*application.Page[*waitlist.Entry], error) {
	args := m.Called(ctx, restaurantID, date, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.Page[*waitlist.Entry]), args.Error(1)
}

func (m *MockWaitlistService) RemoveFromWaitlist(ctx context.Context, id, restaurantID string) error {
	args := m.Called(ctx, id, restaurantID)
	return args.Error(0)
}

// testRouter はモックを差し込んだルーター
type testRouter struct {
	echo         *echo.Echo
	restaurants  *MockRestaurantService
	availability *MockAvailabilityService
	timeSlots    *MockTimeSlotService
	reservations *MockReservationService
	waitlist     *MockWaitlistService
}

func newTestRouter() *testRouter {
	r := &testRouter{
		echo:         NewTestEcho(),
		restaurants:  new(MockRestaurantService),
		availability: new(MockAvailabilityService),
		timeSlots:    new(MockTimeSlotService),
		reservations: new(MockReservationService),
		waitlist:     new(MockWaitlistService),
	}
	RegisterRoutes(r.echo, Handlers{
		Health:       NewHealthHandler(nil, nil),
		Restaurant:   NewRestaurantHandler(r.restaurants, r.availability),
		Availability: NewAvailabilityHandler(r.availability, r.timeSlots),
		Reservation:  NewReservationHandler(r.reservations),
		Waitlist:     NewWaitlistHandler(r.waitlist),
	}, RouteOptions{})
	return r
}

func (r *testRouter) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	r.echo.ServeHTTP(rec, req)
	return rec
}

func (r *testRouter) assertExpectations(t mock.TestingT) {
	r.restaurants.AssertExpectations(t)
	r.availability.AssertExpectations(t)
	r.timeSlots.AssertExpectations(t)
	r.reservations.AssertExpectations(t)
	r.waitlist.AssertExpectations(t)
}

var (
	testDay   = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	testStart = time.Date(2025, 3, 14, 19, 0, 0, 0, time.UTC)
)

func newTestReservation() *reservation.Reservation {
	return &reservation.Reservation{
		ID:           "res-1",
		RestaurantID: "rest-1",
		TableID:      "table-1",
		CustomerName: "Alice",
		Phone:        "+15550001",
		PartySize:    4,
		StartAt:      testStart,
		EndAt:        testStart.Add(90 * time.Minute),
		Status:       reservation.StatusPending,
		CreatedAt:    testStart.Add(-24 * time.Hour),
	}
}
