package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/api"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/api/handler"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/application"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/config"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/infrastructure/cache"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/infrastructure/notification"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-restaurant-table-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/worker"
)

func newServeCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "APIサーバーを起動する",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			defer func() { _ = logger.Sync() }()
			return serve(cfg, migrateUp)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "起動時にマイグレーションを適用する")
	return cmd
}

func serve(cfg *config.Config, migrateUp bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.Init()

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("データベース接続完了", zap.String("host", cfg.Database.Host))

	if migrateUp {
		if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
			return err
		}
	}

	redisClient := connectRedis(ctx, cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// 共有キャッシュがなければローカルキャッシュとDBの行ロックだけで動作する
	var (
		coordinator *cache.Coordinator
		locker      application.TableLocker
	)
	if redisClient != nil {
		coordinator = cache.NewCoordinator(redisinfra.NewCacheStore(redisClient), cfg.Cache.TTL, m)
		locker = redisinfra.NewTableLocker(redisClient, cfg.Cache.LockTTL, m)
	} else {
		coordinator = cache.NewLocalCoordinator(cfg.Cache.TTL)
		m.SetCacheDegraded(true)
	}

	monitor := worker.NewCacheHealthMonitor(coordinator, cfg.Cache.HealthInterval)
	go monitor.Start(ctx)

	sender, err := notification.New(&cfg.Notification)
	if err != nil {
		return err
	}
	dispatcher := application.NewDispatcher(sender, cfg.Notification.Timeout, m)

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
		Locker:          locker,
		Metrics:         m,
	})

	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	middleware.SetupMiddleware(e)
	e.Use(middleware.PrometheusMiddleware(m))

	handler.RegisterRoutes(e, handler.Handlers{
		Health:       handler.NewHealthHandler(db, coordinator),
		Restaurant:   handler.NewRestaurantHandler(restaurantService, availabilityService),
		Availability: handler.NewAvailabilityHandler(availabilityService, timeSlotService),
		Reservation:  handler.NewReservationHandler(reservationService),
		Waitlist:     handler.NewWaitlistHandler(waitlistService),
	}, handler.RouteOptions{
		Metrics:       cfg.Metrics,
		APIMiddleware: []echo.MiddlewareFunc{middleware.RateLimit(cfg.RateLimit, redisClient)},
	})

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("サーバー起動", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("サーバー起動エラー: %w", err)
	}

	logger.Info("サーバーをシャットダウンしています...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
	}
	monitor.Stop()
	dispatcher.Wait()
	if c, ok := sender.(io.Closer); ok {
		_ = c.Close()
	}

	logger.Info("サーバーが正常にシャットダウンしました")
	return nil
}

// connectRedis は Redis が有効かつ疎通できる場合だけクライアントを返す
func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		logger.Info("Redis無効: ローカルキャッシュで起動します")
		return nil
	}

	client := redisinfra.NewClient(&cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := redisinfra.Ping(pingCtx, client); err != nil {
		logger.Warn("Redis接続失敗: ローカルキャッシュで起動します", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		_ = client.Close()
		return nil
	}
	logger.Info("Redis接続完了", zap.String("addr", cfg.Redis.Addr()))
	return client
}
