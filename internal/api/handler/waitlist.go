package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/application"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/waitlist"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/interval"
)

type WaitlistHandler struct {
	service WaitlistServiceInterface
}

func NewWaitlistHandler(s WaitlistServiceInterface) *WaitlistHandler {
	return &WaitlistHandler{service: s}
}

type AddToWaitlistRequest struct {
	CustomerName  string `json:"customer_name" validate:"required" example:"Bob"`
	Phone         string `json:"phone" validate:"required,min=3" example:"+15550002"`
	PartySize     int    `json:"party_size" validate:"required,gt=0" example:"2"`
	PreferredDate string `json:"preferred_date" validate:"required,date" example:"2025-03-14"`
}

type WaitlistResponse struct {
	ID            string `json:"id"`
	RestaurantID  string `json:"restaurant_id"`
	CustomerName  string `json:"customer_name" example:"Bob"`
	Phone         string `json:"phone" example:"+15550002"`
	PartySize     int    `json:"party_size" example:"2"`
	PreferredDate string `json:"preferred_date" example:"2025-03-14"`
	CreatedAt     string `json:"created_at"`
}

func toWaitlistResponse(e *waitlist.Entry) WaitlistResponse {
	return WaitlistResponse{
		ID:            e.ID,
		RestaurantID:  e.RestaurantID,
		CustomerName:  e.CustomerName,
		Phone:         e.Phone,
		PartySize:     e.PartySize,
		PreferredDate: e.PreferredDateString(),
		CreatedAt:     e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Create godoc
// @Summary ウェイティングリストに登録
// @Tags waitlist
// @Accept json
// @Produce json
// @Param id path string true "レストランID"
// @Param request body AddToWaitlistRequest true "登録情報"
// @Success 201 {object} WaitlistResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /restaurants/{id}/waitlist [post]
func (h *WaitlistHandler) Create(c echo.Context) error {
	var req AddToWaitlistRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	date, err := interval.ParseDate(req.PreferredDate)
	if err != nil {
		return err
	}
	e, err := h.service.AddToWaitlist(c.Request().Context(), application.AddToWaitlistInput{
		RestaurantID:  c.Param("id"),
		CustomerName:  req.CustomerName,
		Phone:         req.Phone,
		PartySize:     req.PartySize,
		PreferredDate: date,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toWaitlistResponse(e))
}

// List godoc
// @Summary 指定日のウェイティングリスト
// @Tags waitlist
// @Produce json
// @Param id path string true "レストランID"
// @Param date query string true "日付（YYYY-MM-DD）"
// @Success 200 {object} PageResponse[WaitlistResponse]
// @Router /restaurants/{id}/waitlist [get]
func (h *WaitlistHandler) List(c echo.Context) error {
	var q ListQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	date, err := interval.ParseDate(q.Date)
	if err != nil {
		return err
	}
	page, err := h.service.ListWaitlist(c.Request().Context(), c.Param("id"), date, q.Page, q.PageSize)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(page, toWaitlistResponse))
}

// Delete godoc
// @Summary ウェイティングリストから削除
// @Tags waitlist
// @Param id path string true "レストランID"
// @Param waitlist_id path string true "エントリID"
// @Success 204
// @Failure 404 {object} api.ErrorResponse
// @Router /restaurants/{id}/waitlist/{waitlist_id} [delete]
func (h *WaitlistHandler) Delete(c echo.Context) error {
	if err := h.service.RemoveFromWaitlist(c.Request().Context(), c.Param("waitlist_id"), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
