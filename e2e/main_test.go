package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/api"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/api/handler"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/application"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/config"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/infrastructure/cache"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/infrastructure/notification"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-restaurant-table-reservation/internal/infrastructure/redis"
)

var (
	testServer  *TestServer
	testDB      *sqlx.DB
	redisClient *redis.Client
	coordinator *cache.Coordinator
)

// TestMain はE2Eテストのエントリポイント
// パッケージ全体で1回だけサーバーを組み立てる
func TestMain(m *testing.M) {
	cfg := config.Load()
	if os.Getenv("MIGRATIONS_PATH") == "" {
		cfg.Database.MigrationsPath = "../migrations"
	}

	// DB接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		os.Exit(0) // DB未起動時はスキップ
	}
	if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
		db.Close()
		os.Exit(0)
	}
	testDB = db

	// Redis接続
	rc := redisinfra.NewClient(&cfg.Redis)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	err = redisinfra.Ping(ctx, rc)
	cancel()
	if err != nil {
		rc.Close()
		db.Close()
		os.Exit(0) // Redis未起動時はスキップ
	}
	redisClient = rc

	// サービス初期化
	coordinator = cache.NewCoordinator(redisinfra.NewCacheStore(redisClient), time.Minute, nil)
	dispatcher := application.NewDispatcher(notification.NewLogSender(), time.Second, nil)

	restaurantRepo := postgres.NewRestaurantRepository(db)
	tableRepo := postgres.NewTableRepository(db)
	reservationRepo := postgres.NewReservationRepository(db)
	waitlistRepo := postgres.NewWaitlistRepository(db)

	restaurantService := application.NewRestaurantService(restaurantRepo, tableRepo, coordinator)
	availabilityService := application.NewAvailabilityService(restaurantRepo, tableRepo, reservationRepo, coordinator)
	timeSlotService := application.NewTimeSlotService(restaurantRepo, availabilityService, coordinator)
	waitlistService := application.NewWaitlistService(waitlistRepo, restaurantRepo, dispatcher)
	reservationService := application.NewReservationService(application.ReservationServiceDeps{
		TxManager:       postgres.NewTxManager(db),
		RestaurantRepo:  restaurantRepo,
		TableRepo:       tableRepo,
		ReservationRepo: reservationRepo,
		Availability:    availabilityService,
		Waitlist:        waitlistService,
		Cache:           coordinator,
		Notifier:        dispatcher,
		Locker:          redisinfra.NewTableLocker(redisClient, 5*time.Second, nil),
	})

	// Echo セットアップ
	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e)

	handler.RegisterRoutes(e, handler.Handlers{
		Health:       handler.NewHealthHandler(db, coordinator),
		Restaurant:   handler.NewRestaurantHandler(restaurantService, availabilityService),
		Availability: handler.NewAvailabilityHandler(availabilityService, timeSlotService),
		Reservation:  handler.NewReservationHandler(reservationService),
		Waitlist:     handler.NewWaitlistHandler(waitlistService),
	}, handler.RouteOptions{})

	testServer = &TestServer{Echo: e}

	// テスト実行
	code := m.Run()

	// 最終クリーンアップ
	dispatcher.Wait()
	cleanupTables()
	redisClient.Close()
	db.Close()

	os.Exit(code)
}

// cleanupTables はテーブルとキャッシュをクリーンアップ
func cleanupTables() {
	testDB.Exec("TRUNCATE reservations, waitlist_entries, tables, restaurants")
	_ = coordinator.Flush(context.Background())
}

// getTestServer は共有サーバーを取得（テスト前にテーブルをクリーンアップ）
func getTestServer(t *testing.T) *TestServer {
	t.Helper()
	if testServer == nil {
		t.Skip("テスト環境が利用できません")
	}
	cleanupTables()
	return testServer
}
