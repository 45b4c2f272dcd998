package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/config"
)

// Handlers はルーティングに登録するハンドラー一式
type Handlers struct {
	Health       *HealthHandler
	Restaurant   *RestaurantHandler
	Availability *AvailabilityHandler
	Reservation  *ReservationHandler
	Waitlist     *WaitlistHandler
}

// RouteOptions はルーティング時の追加設定
type RouteOptions struct {
	Metrics config.MetricsConfig
	// APIMiddleware は /api/v1 配下にのみ適用する
	APIMiddleware []echo.MiddlewareFunc
}

// RegisterRoutes はルートを登録する
func RegisterRoutes(e *echo.Echo, h Handlers, opts RouteOptions) {
	e.GET("/health", h.Health.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(opts.Metrics))

	v1 := e.Group("/api/v1", opts.APIMiddleware...)

	v1.POST("/restaurants", h.Restaurant.Create)
	v1.GET("/restaurants/:id", h.Restaurant.GetByID)
	v1.POST("/restaurants/:id/tables", h.Restaurant.AddTable)
	v1.GET("/restaurants/:id/tables", h.Restaurant.ListTables)

	v1.GET("/restaurants/:id/availability", h.Availability.Availability)
	v1.GET("/restaurants/:id/time-slots", h.Availability.TimeSlots)

	v1.POST("/restaurants/:id/reservations", h.Reservation.Create)
	v1.GET("/restaurants/:id/reservations", h.Reservation.List)
	v1.GET("/restaurants/:id/reservations/:reservation_id", h.Reservation.GetByID)
	v1.PATCH("/restaurants/:id/reservations/:reservation_id", h.Reservation.Modify)
	v1.POST("/restaurants/:id/reservations/:reservation_id/confirm", h.Reservation.Confirm)
	v1.DELETE("/restaurants/:id/reservations/:reservation_id", h.Reservation.Cancel)

	v1.POST("/restaurants/:id/waitlist", h.Waitlist.Create)
	v1.GET("/restaurants/:id/waitlist", h.Waitlist.List)
	v1.DELETE("/restaurants/:id/waitlist/:waitlist_id", h.Waitlist.Delete)
}
