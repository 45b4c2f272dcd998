package application

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/restaurant"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/table"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/waitlist"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/infrastructure/cache"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/interval"
)

// memLedger はシナリオテスト用のインメモリ台帳。
// テーブル行ロックはテーブルごとのミューテックスで表し、コミットまたはロールバックで解放する
type memLedger struct {
	mu           sync.Mutex
	seq          int
	restaurants  map[string]restaurant.Restaurant
	tables       map[string]table.Table
	reservations map[string]reservation.Reservation
	entries      map[string]waitlist.Entry
	rowLocks     map[string]*sync.Mutex
}

func newMemLedger() *memLedger {
	return &memLedger{
		restaurants:  map[string]restaurant.Restaurant{},
		tables:       map[string]table.Table{},
		reservations: map[string]reservation.Reservation{},
		entries:      map[string]waitlist.Entry{},
		rowLocks:     map[string]*sync.Mutex{},
	}
}

func (l *memLedger) nextID(prefix string) string {
	l.seq++
	return fmt.Sprintf("%s-%d", prefix, l.seq)
}

// --- transaction ---

type memTx struct {
	mu   sync.Mutex
	held []*sync.Mutex
}

func (t *memTx) release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, m := range t.held {
		m.Unlock()
	}
	t.held = nil
}

func (t *memTx) Commit() error   { t.release(); return nil }
func (t *memTx) Rollback() error { t.release(); return nil }

func (l *memLedger) Begin(_ context.Context) (transaction.Tx, error) {
	return &memTx{}, nil
}

// --- restaurant.Repository ---

type memRestaurants struct{ *memLedger }

func (r memRestaurants) Create(_ context.Context, rest *restaurant.Restaurant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rest.ID = r.nextID("rest")
	r.restaurants[rest.ID] = *rest
	return nil
}

func (r memRestaurants) GetByID(_ context.Context, id string) (*restaurant.Restaurant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rest, ok := r.restaurants[id]
	if !ok {
		return nil, restaurant.ErrRestaurantNotFound
	}
	return &rest, nil
}

// --- table.Repository ---

type memTables struct{ *memLedger }

func (r memTables) Create(_ context.Context, t *table.Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.restaurants[t.RestaurantID]; !ok {
		return restaurant.ErrRestaurantNotFound
	}
	for _, existing := range r.tables {
		if existing.RestaurantID == t.RestaurantID && existing.TableNumber == t.TableNumber {
			return table.ErrDuplicateTableNumber
		}
	}
	t.ID = r.nextID("table")
	r.tables[t.ID] = *t
	r.rowLocks[t.ID] = &sync.Mutex{}
	return nil
}

func (r memTables) GetByID(_ context.Context, id string) (*table.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[id]
	if !ok {
		return nil, table.ErrTableNotFound
	}
	return &t, nil
}

func (r memTables) list(restaurantID string, keep func(table.Table) bool, less func(a, b table.Table) bool) []*table.Table {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []table.Table
	for _, t := range r.tables {
		if t.RestaurantID == restaurantID && keep(t) {
			rows = append(rows, t)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	result := make([]*table.Table, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result
}

func (r memTables) ListByRestaurant(_ context.Context, restaurantID string) ([]*table.Table, error) {
	return r.list(restaurantID,
		func(table.Table) bool { return true },
		func(a, b table.Table) bool { return a.TableNumber < b.TableNumber },
	), nil
}

func (r memTables) ListWithMinCapacity(_ context.Context, restaurantID string, minCapacity int) ([]*table.Table, error) {
	return r.list(restaurantID,
		func(t table.Table) bool { return t.Capacity >= minCapacity },
		func(a, b table.Table) bool {
			if a.Capacity != b.Capacity {
				return a.Capacity < b.Capacity
			}
			if a.TableNumber != b.TableNumber {
				return a.TableNumber < b.TableNumber
			}
			return a.ID < b.ID
		},
	), nil
}

func (r memTables) LockForUpdate(_ context.Context, tx transaction.Tx, id string) error {
	r.mu.Lock()
	m, ok := r.rowLocks[id]
	r.mu.Unlock()
	if !ok {
		return table.ErrTableNotFound
	}
	m.Lock()
	mt := tx.(*memTx)
	mt.mu.Lock()
	mt.held = append(mt.held, m)
	mt.mu.Unlock()
	return nil
}

// --- reservation.Repository ---

type memReservations struct{ *memLedger }

func (r memReservations) Create(_ context.Context, _ transaction.Tx, res *reservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res.ID = r.nextID("res")
	r.reservations[res.ID] = *res
	return nil
}

func (r memReservations) GetByID(_ context.Context, id string) (*reservation.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[id]
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}
	return &res, nil
}

func (r memReservations) GetByIDForUpdate(ctx context.Context, _ transaction.Tx, id string) (*reservation.Reservation, error) {
	return r.GetByID(ctx, id)
}

func (r memReservations) Update(_ context.Context, _ transaction.Tx, res *reservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reservations[res.ID]; !ok {
		return reservation.ErrReservationNotFound
	}
	r.reservations[res.ID] = *res
	return nil
}

func (r memReservations) HasOverlap(_ context.Context, _ transaction.Tx, tableID string, start, end time.Time, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.reservations {
		if res.TableID == tableID && res.ID != excludeID && res.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (r memReservations) ListActiveOverlapping(_ context.Context, restaurantID string, start, end time.Time) ([]*reservation.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*reservation.Reservation
	for _, res := range r.reservations {
		if res.RestaurantID == restaurantID && res.Overlaps(start, end) {
			res := res
			result = append(result, &res)
		}
	}
	return result, nil
}

func (r memReservations) ListByDate(_ context.Context, restaurantID string, day time.Time, limit, offset int) ([]*reservation.Reservation, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	from := interval.DayStart(day)
	to := from.Add(24 * time.Hour)
	var rows []reservation.Reservation
	for _, res := range r.reservations {
		if res.RestaurantID == restaurantID && !res.StartAt.Before(from) && res.StartAt.Before(to) {
			rows = append(rows, res)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].StartAt.Before(rows[j].StartAt) })
	total := len(rows)
	var page []*reservation.Reservation
	for i := offset; i < total && i < offset+limit; i++ {
		page = append(page, &rows[i])
	}
	return page, total, nil
}

// --- waitlist.Repository ---

type memWaitlist struct{ *memLedger }

func (r memWaitlist) Create(_ context.Context, e *waitlist.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.nextID("wl")
	r.entries[e.ID] = *e
	return nil
}

func (r memWaitlist) GetByID(_ context.Context, id string) (*waitlist.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, waitlist.ErrEntryNotFound
	}
	return &e, nil
}

func (r memWaitlist) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return waitlist.ErrEntryNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r memWaitlist) ListByDate(_ context.Context, restaurantID string, date time.Time, limit, offset int) ([]*waitlist.Entry, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := interval.FormatDate(date)
	var rows []waitlist.Entry
	for _, e := range r.entries {
		if e.RestaurantID == restaurantID && e.PreferredDateString() == day {
			rows = append(rows, e)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	total := len(rows)
	var page []*waitlist.Entry
	for i := offset; i < total && i < offset+limit; i++ {
		page = append(page, &rows[i])
	}
	return page, total, nil
}

// services はインメモリ台帳上に組み立てたサービス一式
type services struct {
	ledger       *memLedger
	cache        *cache.Coordinator
	notifier     *recordingNotifier
	restaurants  *RestaurantService
	availability *AvailabilityService
	timeSlots    *TimeSlotService
	waitlist     *WaitlistService
	reservations *ReservationService
}

func newServices(c *cache.Coordinator) *services {
	l := newMemLedger()
	n := &recordingNotifier{}
	rr, tr, resRepo, wr := memRestaurants{l}, memTables{l}, memReservations{l}, memWaitlist{l}

	availability := NewAvailabilityService(rr, tr, resRepo, c)
	wl := NewWaitlistService(wr, rr, n)
	return &services{
		ledger:       l,
		cache:        c,
		notifier:     n,
		restaurants:  NewRestaurantService(rr, tr, c),
		availability: availability,
		timeSlots:    NewTimeSlotService(rr, availability, c),
		waitlist:     wl,
		reservations: NewReservationService(ReservationServiceDeps{
			TxManager:       l,
			RestaurantRepo:  rr,
			TableRepo:       tr,
			ReservationRepo: resRepo,
			Availability:    availability,
			Waitlist:        wl,
			Cache:           c,
			Notifier:        n,
		}),
	}
}
