package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/application"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/interval"
)

type ReservationHandler struct {
	service ReservationServiceInterface
}

func NewReservationHandler(s ReservationServiceInterface) *ReservationHandler {
	return &ReservationHandler{service: s}
}

type CreateReservationRequest struct {
	CustomerName    string `json:"customer_name" validate:"required" example:"Alice"`
	Phone           string `json:"phone" validate:"required,min=3" example:"+15550001"`
	PartySize       int    `json:"party_size" validate:"required,gt=0" example:"4"`
	StartTime       string `json:"start_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00" example:"2025-03-14T19:00:00Z"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0,lte=1440" example:"90"`
	// TableID を省略すると人数に合う最小のテーブルを自動で割り当てる
	TableID string `json:"table_id" example:"550e8400-e29b-41d4-a716-446655440000"`
}

type ModifyReservationRequest struct {
	StartTime       *string `json:"start_time" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00" example:"2025-03-14T20:00:00Z"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,gt=0,lte=1440" example:"60"`
}

type ReservationResponse struct {
	ID              string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	RestaurantID    string `json:"restaurant_id"`
	TableID         string `json:"table_id"`
	CustomerName    string `json:"customer_name" example:"Alice"`
	Phone           string `json:"phone" example:"+15550001"`
	PartySize       int    `json:"party_size" example:"4"`
	StartTime       string `json:"start_time" example:"2025-03-14T19:00:00.000Z"`
	EndTime         string `json:"end_time" example:"2025-03-14T20:30:00.000Z"`
	DurationMinutes int    `json:"duration_minutes" example:"90"`
	Status          string `json:"status" example:"pending"`
	CreatedAt       string `json:"created_at"`
}

func toReservationResponse(r *reservation.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:              r.ID,
		RestaurantID:    r.RestaurantID,
		TableID:         r.TableID,
		CustomerName:    r.CustomerName,
		Phone:           r.Phone,
		PartySize:       r.PartySize,
		StartTime:       interval.FormatISO(r.StartAt),
		EndTime:         interval.FormatISO(r.EndAt),
		DurationMinutes: r.DurationMinutes(),
		Status:          string(r.Status),
		CreatedAt:       r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// BookingResponse は予約作成の結果。空きがなければ waitlist_entry が入る
type BookingResponse struct {
	Reservation   *ReservationResponse `json:"reservation,omitempty"`
	WaitlistEntry *WaitlistResponse    `json:"waitlist_entry,omitempty"`
	OnWaitlist    bool                 `json:"on_waitlist"`
}

// Create godoc
// @Summary 予約を作成
// @Description 空きがなければウェイティングリストに登録して202を返す
// @Tags reservations
// @Accept json
// @Produce json
// @Param id path string true "レストランID"
// @Param request body CreateReservationRequest true "予約情報"
// @Success 201 {object} BookingResponse
// @Success 202 {object} BookingResponse "ウェイティングリストに登録"
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "テーブルが既に予約済み"
// @Router /restaurants/{id}/reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	var req CreateReservationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	start, err := parseStartTime(req.StartTime)
	if err != nil {
		return err
	}
	result, err := h.service.CreateReservation(c.Request().Context(), application.CreateReservationInput{
		RestaurantID:    c.Param("id"),
		CustomerName:    req.CustomerName,
		Phone:           req.Phone,
		PartySize:       req.PartySize,
		StartAt:         start,
		DurationMinutes: req.DurationMinutes,
		TableID:         req.TableID,
	})
	if err != nil {
		return err
	}
	if result.OnWaitlist {
		w := toWaitlistResponse(result.WaitlistEntry)
		return c.JSON(http.StatusAccepted, BookingResponse{WaitlistEntry: &w, OnWaitlist: true})
	}
	return c.JSON(http.StatusCreated, BookingResponse{Reservation: toReservationResponse(result.Reservation)})
}

// List godoc
// @Summary 指定日の予約一覧
// @Tags reservations
// @Produce json
// @Param id path string true "レストランID"
// @Param date query string true "日付（YYYY-MM-DD）"
// @Param page query int false "ページ番号" default(1)
// @Param page_size query int false "ページサイズ" default(20)
// @Success 200 {object} PageResponse[ReservationResponse]
// @Router /restaurants/{id}/reservations [get]
func (h *ReservationHandler) List(c echo.Context) error {
	var q ListQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	date, err := interval.ParseDate(q.Date)
	if err != nil {
		return err
	}
	page, err := h.service.ListReservationsForDate(c.Request().Context(), c.Param("id"), date, q.Page, q.PageSize)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(page, toReservationResponse))
}

// GetByID godoc
// @Summary 予約を取得
// @Tags reservations
// @Produce json
// @Param id path string true "レストランID"
// @Param reservation_id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /restaurants/{id}/reservations/{reservation_id} [get]
func (h *ReservationHandler) GetByID(c echo.Context) error {
	r, err := h.service.GetReservation(c.Request().Context(), c.Param("reservation_id"), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// Modify godoc
// @Summary 保留中の予約の時間を変更
// @Description テーブルはそのまま。省略した項目は現在の値を引き継ぐ
// @Tags reservations
// @Accept json
// @Produce json
// @Param id path string true "レストランID"
// @Param reservation_id path string true "予約ID"
// @Param request body ModifyReservationRequest true "変更内容"
// @Success 200 {object} ReservationResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /restaurants/{id}/reservations/{reservation_id} [patch]
func (h *ReservationHandler) Modify(c echo.Context) error {
	var req ModifyReservationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	input := application.ModifyReservationInput{
		ID:              c.Param("reservation_id"),
		RestaurantID:    c.Param("id"),
		DurationMinutes: req.DurationMinutes,
	}
	if req.StartTime != nil {
		start, err := parseStartTime(*req.StartTime)
		if err != nil {
			return err
		}
		input.StartAt = &start
	}
	r, err := h.service.ModifyReservation(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// Confirm godoc
// @Summary 予約を確定
// @Tags reservations
// @Produce json
// @Param id path string true "レストランID"
// @Param reservation_id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /restaurants/{id}/reservations/{reservation_id}/confirm [post]
func (h *ReservationHandler) Confirm(c echo.Context) error {
	r, err := h.service.ConfirmReservation(c.Request().Context(), c.Param("reservation_id"), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Tags reservations
// @Produce json
// @Param id path string true "レストランID"
// @Param reservation_id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /restaurants/{id}/reservations/{reservation_id} [delete]
func (h *ReservationHandler) Cancel(c echo.Context) error {
	r, err := h.service.CancelReservation(c.Request().Context(), c.Param("reservation_id"), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}
