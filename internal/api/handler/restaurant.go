package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/application"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/restaurant"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/table"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/interval"
)

type RestaurantHandler struct {
	restaurants  RestaurantServiceInterface
	availability AvailabilityServiceInterface
}

func NewRestaurantHandler(restaurants RestaurantServiceInterface, availability AvailabilityServiceInterface) *RestaurantHandler {
	return &RestaurantHandler{restaurants: restaurants, availability: availability}
}

type CreateRestaurantRequest struct {
	Name                   string `json:"name" validate:"required" example:"Trattoria"`
	OpenTime               string `json:"open_time" validate:"required,clock" example:"10:00"`
	CloseTime              string `json:"close_time" validate:"required,clock" example:"22:00"`
	TotalTables            int    `json:"total_tables" validate:"gte=0" example:"10"`
	PeakHourStart          string `json:"peak_hour_start" validate:"omitempty,clock" example:"18:00"`
	PeakHourEnd            string `json:"peak_hour_end" validate:"omitempty,clock" example:"21:00"`
	MaxPeakDurationMinutes *int   `json:"max_peak_duration_minutes" validate:"omitempty,gt=0,lte=1440" example:"90"`
}

type RestaurantResponse struct {
	ID                     string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name                   string  `json:"name" example:"Trattoria"`
	OpenTime               string  `json:"open_time" example:"10:00"`
	CloseTime              string  `json:"close_time" example:"22:00"`
	TotalTables            int     `json:"total_tables" example:"10"`
	PeakHourStart          *string `json:"peak_hour_start,omitempty" example:"18:00"`
	PeakHourEnd            *string `json:"peak_hour_end,omitempty" example:"21:00"`
	MaxPeakDurationMinutes *int    `json:"max_peak_duration_minutes,omitempty" example:"90"`
	CreatedAt              string  `json:"created_at"`
	UpdatedAt              string  `json:"updated_at"`
}

func toRestaurantResponse(r *restaurant.Restaurant) *RestaurantResponse {
	return &RestaurantResponse{
		ID:                     r.ID,
		Name:                   r.Name,
		OpenTime:               r.OpenTime.String(),
		CloseTime:              r.CloseTime.String(),
		TotalTables:            r.TotalTables,
		PeakHourStart:          formatClockPtr(r.PeakHourStart),
		PeakHourEnd:            formatClockPtr(r.PeakHourEnd),
		MaxPeakDurationMinutes: r.MaxPeakDurationMinutes,
		CreatedAt:              r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:              r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type AddTableRequest struct {
	TableNumber string `json:"table_number" validate:"required" example:"A1"`
	Capacity    int    `json:"capacity" validate:"required,gt=0" example:"4"`
}

type TableResponse struct {
	ID           string `json:"id"`
	RestaurantID string `json:"restaurant_id"`
	TableNumber  string `json:"table_number" example:"A1"`
	Capacity     int    `json:"capacity" example:"4"`
}

func toTableResponse(t *table.Table) TableResponse {
	return TableResponse{ID: t.ID, RestaurantID: t.RestaurantID, TableNumber: t.TableNumber, Capacity: t.Capacity}
}

func toTableResponses(tables []*table.Table) []TableResponse {
	resp := make([]TableResponse, len(tables))
	for i, t := range tables {
		resp[i] = toTableResponse(t)
	}
	return resp
}

// RestaurantDetailResponse はレストラン詳細。空き状況の条件が揃っていれば空きテーブルも含める
type RestaurantDetailResponse struct {
	Restaurant      *RestaurantResponse `json:"restaurant"`
	Tables          []TableResponse     `json:"tables"`
	AvailableTables []TableResponse     `json:"available_tables,omitempty"`
}

// Create godoc
// @Summary レストランを登録
// @Tags restaurants
// @Accept json
// @Produce json
// @Param request body CreateRestaurantRequest true "レストラン情報"
// @Success 201 {object} RestaurantResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /restaurants [post]
func (h *RestaurantHandler) Create(c echo.Context) error {
	var req CreateRestaurantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	// validate 済みなのでエラーにならない
	open, _ := interval.ParseClockTime(req.OpenTime)
	closeAt, _ := interval.ParseClockTime(req.CloseTime)
	peakStart, _ := parseClockPtr(req.PeakHourStart)
	peakEnd, _ := parseClockPtr(req.PeakHourEnd)

	r, err := h.restaurants.CreateRestaurant(c.Request().Context(), application.CreateRestaurantInput{
		Name:                   req.Name,
		OpenTime:               open,
		CloseTime:              closeAt,
		TotalTables:            req.TotalTables,
		PeakHourStart:          peakStart,
		PeakHourEnd:            peakEnd,
		MaxPeakDurationMinutes: req.MaxPeakDurationMinutes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toRestaurantResponse(r))
}

type restaurantDetailQuery struct {
	StartTime       string `query:"start_time" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	DurationMinutes int    `query:"duration_minutes" validate:"omitempty,gt=0,lte=1440"`
	PartySize       int    `query:"party_size" validate:"omitempty,gt=0"`
}

// GetByID godoc
// @Summary レストラン詳細を取得
// @Description start_time, duration_minutes, party_size が揃っていれば空きテーブルも返す
// @Tags restaurants
// @Produce json
// @Param id path string true "レストランID"
// @Success 200 {object} RestaurantDetailResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /restaurants/{id} [get]
func (h *RestaurantHandler) GetByID(c echo.Context) error {
	var q restaurantDetailQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	ctx := c.Request().Context()
	id := c.Param("id")

	r, err := h.restaurants.GetRestaurant(ctx, id)
	if err != nil {
		return err
	}
	tables, err := h.restaurants.ListTables(ctx, id)
	if err != nil {
		return err
	}
	resp := RestaurantDetailResponse{
		Restaurant: toRestaurantResponse(r),
		Tables:     toTableResponses(tables),
	}

	if q.StartTime != "" && q.DurationMinutes > 0 && q.PartySize > 0 {
		start, err := parseStartTime(q.StartTime)
		if err != nil {
			return err
		}
		available, err := h.availability.AvailableTables(ctx, application.AvailabilityInput{
			RestaurantID:    id,
			StartAt:         start,
			DurationMinutes: q.DurationMinutes,
			PartySize:       q.PartySize,
		})
		if err != nil {
			return err
		}
		resp.AvailableTables = toTableResponses(available)
	}
	return c.JSON(http.StatusOK, resp)
}

// AddTable godoc
// @Summary テーブルを追加
// @Tags restaurants
// @Accept json
// @Produce json
// @Param id path string true "レストランID"
// @Param request body AddTableRequest true "テーブル情報"
// @Success 201 {object} TableResponse
// @Failure 409 {object} api.ErrorResponse "テーブル番号が重複"
// @Router /restaurants/{id}/tables [post]
func (h *RestaurantHandler) AddTable(c echo.Context) error {
	var req AddTableRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	t, err := h.restaurants.AddTable(c.Request().Context(), application.AddTableInput{
		RestaurantID: c.Param("id"),
		TableNumber:  req.TableNumber,
		Capacity:     req.Capacity,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTableResponse(t))
}

func (h *RestaurantHandler) ListTables(c echo.Context) error {
	tables, err := h.restaurants.ListTables(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTableResponses(tables))
}
