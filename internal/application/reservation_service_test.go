//go:build integration
// +build integration

package application

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/config"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/restaurant"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/table"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/infrastructure/cache"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-restaurant-table-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/interval"
)

type integrationEnv struct {
	restaurants  *RestaurantService
	reservations *ReservationService
	notifier     *recordingNotifier
}

func setupTestEnv(t *testing.T) (*integrationEnv, func()) {
	cfg := config.Load()
	if os.Getenv("MIGRATIONS_PATH") == "" {
		cfg.Database.MigrationsPath = "../../migrations"
	}

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		t.Skipf("DB接続エラー: %v", err)
	}
	if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
		t.Skipf("マイグレーションエラー: %v", err)
	}

	redisClient := redisinfra.NewClient(&cfg.Redis)
	if err := redisinfra.Ping(context.Background(), redisClient); err != nil {
		t.Skipf("Redis接続エラー: %v", err)
	}

	rr := postgres.NewRestaurantRepository(db)
	tr := postgres.NewTableRepository(db)
	resRepo := postgres.NewReservationRepository(db)
	wr := postgres.NewWaitlistRepository(db)
	c := cache.NewCoordinator(redisinfra.NewCacheStore(redisClient), time.Minute, nil)
	n := &recordingNotifier{}

	availability := NewAvailabilityService(rr, tr, resRepo, c)
	env := &integrationEnv{
		restaurants: NewRestaurantService(rr, tr, c),
		reservations: NewReservationService(ReservationServiceDeps{
			TxManager:       postgres.NewTxManager(db),
			RestaurantRepo:  rr,
			TableRepo:       tr,
			ReservationRepo: resRepo,
			Availability:    availability,
			Waitlist:        NewWaitlistService(wr, rr, n),
			Cache:           c,
			Notifier:        n,
			Locker:          redisinfra.NewTableLocker(redisClient, 5*time.Second, nil),
		}),
		notifier: n,
	}

	cleanup := func() {
		db.Exec("TRUNCATE reservations, waitlist_entries, tables, restaurants")
		_ = c.Flush(context.Background())
		redisClient.Close()
		db.Close()
	}
	return env, cleanup
}

func TestConcurrentReservation(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	rest, err := env.restaurants.CreateRestaurant(ctx, CreateRestaurantInput{
		Name: "並行テスト", OpenTime: interval.Clock(10, 0), CloseTime: interval.Clock(22, 0), TotalTables: 1,
	})
	require.NoError(t, err)
	tbl, err := env.restaurants.AddTable(ctx, AddTableInput{RestaurantID: rest.ID, TableNumber: "T1", Capacity: 4})
	require.NoError(t, err)

	start := interval.DayStart(time.Now().Add(24 * time.Hour)).Add(19 * time.Hour)

	t.Run("10並行リクエストで1件のみ予約成功", func(t *testing.T) {
		const numGoroutines = 10
		var successCount, conflictCount int32
		var wg sync.WaitGroup

		for i := 0; i < numGoroutines; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_, err := env.reservations.CreateReservation(ctx, CreateReservationInput{
					RestaurantID:    rest.ID,
					CustomerName:    fmt.Sprintf("guest-%d", n),
					Phone:           "+15550000",
					PartySize:       2,
					StartAt:         start.Add(time.Duration(n%4) * 10 * time.Minute),
					DurationMinutes: 60,
					TableID:         tbl.ID,
				})
				if err == nil {
					atomic.AddInt32(&successCount, 1)
				} else if assert.ErrorIs(t, err, reservation.ErrTableUnavailable) {
					atomic.AddInt32(&conflictCount, 1)
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, int32(1), successCount, "成功は1つだけ")
		assert.Equal(t, int32(numGoroutines-1), conflictCount, "残りは全て競合")
	})
}

func TestReservationLifecycle(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	rest, err := env.restaurants.CreateRestaurant(ctx, CreateRestaurantInput{
		Name: "ライフサイクル", OpenTime: interval.Clock(10, 0), CloseTime: interval.Clock(22, 0),
	})
	require.NoError(t, err)
	_, err = env.restaurants.AddTable(ctx, AddTableInput{RestaurantID: rest.ID, TableNumber: "T1", Capacity: 4})
	require.NoError(t, err)

	start := interval.DayStart(time.Now().Add(48 * time.Hour)).Add(12 * time.Hour)
	created, err := env.reservations.CreateReservation(ctx, CreateReservationInput{
		RestaurantID: rest.ID, CustomerName: "Alice", Phone: "+15550001",
		PartySize: 4, StartAt: start, DurationMinutes: 90,
	})
	require.NoError(t, err)
	require.False(t, created.OnWaitlist)
	id := created.Reservation.ID

	t.Run("変更", func(t *testing.T) {
		newStart := start.Add(30 * time.Minute)
		res, err := env.reservations.ModifyReservation(ctx, ModifyReservationInput{ID: id, RestaurantID: rest.ID, StartAt: &newStart})
		require.NoError(t, err)
		assert.True(t, newStart.Equal(res.StartAt))
	})

	t.Run("確定", func(t *testing.T) {
		res, err := env.reservations.ConfirmReservation(ctx, id, rest.ID)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusConfirmed, res.Status)
		assert.True(t, res.Notified)
	})

	t.Run("満席ならウェイティングリスト", func(t *testing.T) {
		result, err := env.reservations.CreateReservation(ctx, CreateReservationInput{
			RestaurantID: rest.ID, CustomerName: "Bob", Phone: "+15550002",
			PartySize: 2, StartAt: start.Add(time.Hour), DurationMinutes: 60,
		})
		require.NoError(t, err)
		assert.True(t, result.OnWaitlist)
	})

	t.Run("キャンセル", func(t *testing.T) {
		res, err := env.reservations.CancelReservation(ctx, id, rest.ID)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusCancelled, res.Status)

		page, err := env.reservations.ListReservationsForDate(ctx, rest.ID, start, 1, 20)
		require.NoError(t, err)
		require.Equal(t, 1, page.Total)
		assert.Equal(t, reservation.StatusCancelled, page.Data[0].Status)
	})
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	rest, err := env.restaurants.CreateRestaurant(ctx, CreateRestaurantInput{
		Name: "ID形式テスト", OpenTime: interval.Clock(10, 0), CloseTime: interval.Clock(22, 0), TotalTables: 1,
	})
	require.NoError(t, err)
	_, err = env.restaurants.AddTable(ctx, AddTableInput{RestaurantID: rest.ID, TableNumber: "T1", Capacity: 4})
	require.NoError(t, err)
	start := interval.DayStart(time.Now().Add(72 * time.Hour)).Add(12 * time.Hour)

	t.Run("レストラン", func(t *testing.T) {
		_, err := env.restaurants.GetRestaurant(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, restaurant.ErrRestaurantNotFound)
	})

	t.Run("予約", func(t *testing.T) {
		_, err := env.reservations.GetReservation(ctx, "not-a-uuid", rest.ID)
		assert.ErrorIs(t, err, reservation.ErrReservationNotFound)
		_, err = env.reservations.CancelReservation(ctx, "not-a-uuid", rest.ID)
		assert.ErrorIs(t, err, reservation.ErrReservationNotFound)
	})

	t.Run("指定テーブル", func(t *testing.T) {
		_, err := env.reservations.CreateReservation(ctx, CreateReservationInput{
			RestaurantID: rest.ID, CustomerName: "Alice", Phone: "+15550001",
			PartySize: 2, StartAt: start, DurationMinutes: 60, TableID: "not-a-uuid",
		})
		assert.ErrorIs(t, err, table.ErrTableNotFound)
	})

	t.Run("新規予約の重複確認は除外IDなしで動く", func(t *testing.T) {
		result, err := env.reservations.CreateReservation(ctx, CreateReservationInput{
			RestaurantID: rest.ID, CustomerName: "Bob", Phone: "+15550002",
			PartySize: 2, StartAt: start, DurationMinutes: 60,
		})
		require.NoError(t, err)
		assert.False(t, result.OnWaitlist)
	})
}
