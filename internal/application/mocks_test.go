package application

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/notification"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/restaurant"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/table"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/waitlist"
)

// === Mock implementations ===

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockRestaurantRepository implements restaurant.Repository
type MockRestaurantRepository struct {
	mock.Mock
}

func (m *MockRestaurantRepository) Create(ctx context.Context, r *restaurant.Restaurant) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRestaurantRepository) GetByID(ctx context.Context, id string) (*restaurant.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*restaurant.Restaurant), args.Error(1)
}

// MockTableRepository implements table.Repository
type MockTableRepository struct {
	mock.Mock
}

func (m *MockTableRepository) Create(ctx context.Context, t *table.Table) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTableRepository) GetByID(ctx context.Context, id string) (*table.Table, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*table.Table), args.Error(1)
}

func (m *MockTableRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]*table.Table, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*table.Table), args.Error(1)
}

func (m *MockTableRepository) ListWithMinCapacity(ctx context.Context, restaurantID string, minCapacity int) ([]*table.Table, error) {
	args := m.Called(ctx, restaurantID, minCapacity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*table.Table), args.Error(1)
}

func (m *MockTableRepository) LockForUpdate(ctx context.Context, tx transaction.Tx, id string) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockReservationRepository implements reservation.Repository
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, tx transaction.Tx, r *reservation.Reservation) error {
	args := m.Called(ctx, tx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*reservation.Reservation, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Update(ctx context.Context, tx transaction.Tx, r *reservation.Reservation) error {
	args := m.Called(ctx, tx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) HasOverlap(ctx context.Context, tx transaction.Tx, tableID string, start, end time.Time, excludeID string) (bool, error) {
	args := m.Called(ctx, tx, tableID, start, end, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepository) ListActiveOverlapping(ctx context.Context, restaurantID string, start, end time.Time) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, restaurantID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) ListByDate(ctx context.Context, restaurantID string, day time.Time, limit, offset int) ([]*reservation.Reservation, int, error) {
	args := m.Called(ctx, restaurantID, day, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*reservation.Reservation), args.Int(1), args.Error(2)
}

// MockWaitlistRepository implements waitlist.Repository
type MockWaitlistRepository struct {
	mock.Mock
}

func (m *MockWaitlistRepository) Create(ctx context.Context, e *waitlist.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockWaitlistRepository) GetByID(ctx context.Context, id string) (*waitlist.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*waitlist.Entry), args.Error(1)
}

func (m *MockWaitlistRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWaitlistRepository) ListByDate(ctx context.Context, restaurantID string, date time.Time, limit, offset int) ([]*waitlist.Entry, int, error) {
	args := m.Called(ctx, restaurantID, date, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*waitlist.Entry), args.Int(1), args.Error(2)
}

// MockTableLocker implements TableLocker
type MockTableLocker struct {
	mock.Mock
}

func (m *MockTableLocker) LockTable(ctx context.Context, tableID string) (func(context.Context) error, error) {
	args := m.Called(ctx, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func(context.Context) error), args.Error(1)
}

// recordingNotifier は送信された通知を同期的に記録する Notifier
type recordingNotifier struct {
	mu       sync.Mutex
	messages []notification.Message
}

func (n *recordingNotifier) record(msg notification.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *recordingNotifier) NotifyConfirmation(_ context.Context, r *reservation.Reservation, restaurantName string) {
	n.record(notification.NewConfirmation(r, restaurantName))
}

func (n *recordingNotifier) NotifyCancellation(_ context.Context, r *reservation.Reservation, restaurantName string) {
	n.record(notification.NewCancellation(r, restaurantName))
}

func (n *recordingNotifier) NotifyWaitlisted(_ context.Context, e *waitlist.Entry, restaurantName string) {
	n.record(notification.NewWaitlisted(e, restaurantName))
}

func (n *recordingNotifier) kinds() []notification.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]notification.Kind, len(n.messages))
	for i, m := range n.messages {
		kinds[i] = m.Kind
	}
	return kinds
}
